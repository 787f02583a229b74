package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/logging"
	"github.com/lovenityjade/APTwitchBot/snapshot"
)

// NewStateCmd creates the `state` command.
func NewStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the published state document",
		Long: `Reads the state document the fetcher publishes and prints it. The
fetcher does not need to be running; whatever the last flush left on
disk is shown.

With --watch the command keeps running and re-prints the document each
time a flush lands, the same way a downstream consumer would follow it.`,
		RunE: runStateE,
	}

	cmd.Flags().BoolP("watch", "w", false, "Keep watching and re-print on every change")

	return cmd
}

func runStateE(cmd *cobra.Command, args []string) error {
	rp := resolveRuntimePaths(cmd)
	reader := snapshot.NewReader(rp.stateFile)

	printDoc := func() error {
		doc, err := reader.Load()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if err := printDoc(); err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}

	logger := logging.NewLogger("apfetcher-cli")
	watcher, err := snapshot.NewWatcher(rp.stateFile, 0, logger, func(string) {
		// A re-load can race a flush mid-write; skip the torn read and wait
		// for the next change event.
		if err := printDoc(); err != nil {
			logger.WithError(err).Debug("Skipping unreadable document revision")
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	watcher.Start(ctx)
	return nil
}
