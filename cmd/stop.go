package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/errors"
	"github.com/lovenityjade/APTwitchBot/internal/pidfile"
)

// NewStopCmd creates the `stop` command.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running fetcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			rp := resolveRuntimePaths(cmd)

			running, pid, err := pidfile.IsRunning(rp.pidFile)
			if err != nil {
				return err
			}
			if !running {
				return errors.NotRunning()
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return errors.Internal("find fetcher process", err).WithDetail("pid", pid)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return errors.Internal("signal fetcher process", err).WithDetail("pid", pid)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}
