package cmd

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/errors"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the fetcher log",
		Long: `Prints the tail of the fetcher log file. With -f the command keeps
running and streams new lines as the fetcher writes them.`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().IntP("tail", "n", 200, "Number of lines to show from the end of the log")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	rp := resolveRuntimePaths(cmd)

	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	printed, err := printLastLines(rp.logFile, tailLines)
	if err != nil {
		return err
	}
	if !follow {
		if !printed {
			fmt.Fprintf(os.Stderr, "No log file at %s\n", rp.logFile)
		}
		return nil
	}

	// ReOpen keeps the stream alive across log rotation and lets the
	// command start before the fetcher has written anything.
	t, err := tail.TailFile(rp.logFile, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return errors.Internal("tail log file", err).WithDetail("path", rp.logFile)
	}
	defer t.Stop()

	for line := range t.Lines {
		if line.Err != nil {
			continue
		}
		fmt.Println(line.Text)
	}
	return nil
}

// printLastLines prints the last n lines of the file, reporting whether the
// file existed. n < 0 prints the whole file.
func printLastLines(path string, n int) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Internal("read log file", err).WithDetail("path", path)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		if line != "" {
			fmt.Println(line)
		}
	}
	return true, nil
}
