package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/cli"
	"github.com/lovenityjade/APTwitchBot/config"
	"github.com/lovenityjade/APTwitchBot/fetcher"
	"github.com/lovenityjade/APTwitchBot/identity"
	"github.com/lovenityjade/APTwitchBot/internal/pidfile"
	"github.com/lovenityjade/APTwitchBot/logging"
	"github.com/lovenityjade/APTwitchBot/pkg/profiling"
	"github.com/lovenityjade/APTwitchBot/protocol"
	"github.com/lovenityjade/APTwitchBot/snapshot"
	"github.com/lovenityjade/APTwitchBot/state"
)

// NewRunCmd returns the foreground fetcher command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the fetcher in the foreground",
		Long: `Connects to the configured Archipelago server as a passive subscriber
and keeps the state document on disk current until interrupted.`,
		RunE: runFetcherE,
	}

	cmd.Flags().String("cpu-profile", "", "Write a CPU profile of the run to file")
	cmd.Flags().String("mem-profile", "", "Write a heap profile at shutdown to file")

	return cmd
}

func runFetcherE(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger("apfetcher")
	opts := cli.GetOptions(cmd)
	if opts.Verbose {
		logger.Logger.SetLevel(logrus.DebugLevel)
	}

	var cfg *config.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	cpuProfile, _ := cmd.Flags().GetString("cpu-profile")
	memProfile, _ := cmd.Flags().GetString("mem-profile")
	prof := profiling.New(cpuProfile, memProfile)
	if err := prof.Start(); err != nil {
		return err
	}
	defer func() {
		if err := prof.Stop(); err != nil {
			logger.WithError(err).Warn("Profile could not be written")
			return
		}
		if path := prof.CPUPath(); path != "" {
			logger.WithField("path", path).Info("CPU profile written")
		}
		if path := prof.MemPath(); path != "" {
			logger.WithField("path", path).Info("Heap profile written")
		}
	}()

	// 1. Acquire the single-writer lock
	pidPath := cfg.Paths.PidFile
	if err := pidfile.Acquire(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.Errorf("Failed to release pidfile: %v", err)
		}
	}()

	// 2. Resolve the per-host client identity. A persist failure is worth a
	// warning, never an abort: the minted id still works for this run.
	clientID, err := identity.Resolve(cfg.Paths.UUIDFile, cfg.Archipelago.Host)
	if err != nil {
		logger.WithError(err).Warn("Client UUID could not be cached")
	}

	// 3. Wire the store, writer, protocol client, and loop
	st := state.New()
	writer := snapshot.NewWriter(cfg.Paths.StateFile, &snapshot.ArchipelagoEcho{
		Host:          cfg.Archipelago.Host,
		Port:          cfg.Archipelago.Port,
		SlotName:      cfg.Archipelago.SlotName,
		Game:          cfg.Archipelago.Game,
		ItemsHandling: *cfg.Archipelago.ItemsHandling,
		Tags:          cfg.Archipelago.Tags,
	})
	client := protocol.New(protocol.Options{
		Server:        cfg.Archipelago.Addr(),
		Game:          cfg.Archipelago.Game,
		SlotName:      cfg.Archipelago.SlotName,
		Password:      cfg.Archipelago.Password,
		UUID:          clientID,
		ItemsHandling: *cfg.Archipelago.ItemsHandling,
		Tags:          cfg.Archipelago.Tags,
	}, logging.NewLogger("apfetcher-protocol"))

	f := fetcher.New(st, writer, client, logger, fetcher.Config{
		SlotName:      cfg.Archipelago.SlotName,
		Game:          cfg.Archipelago.Game,
		FlushInterval: cfg.Fetcher.FlushIntervalDuration(),
		PollInterval:  cfg.Fetcher.PollInterval(),
	})
	client.SetHandlers(f.Handlers())

	// 4. Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-stop
		logger.WithField("signal", sig.String()).Info("Received stop signal")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"pid":    os.Getpid(),
		"server": cfg.Archipelago.Addr(),
		"slot":   cfg.Archipelago.SlotName,
		"state":  cfg.Paths.StateFile,
	}).Info("Starting fetcher")

	// 5. Run the loop (blocking)
	runErr := f.Run(ctx)
	if closeErr := client.Close(); closeErr != nil {
		logger.WithError(closeErr).Warn("Socket close failed")
	}

	// Cancellation is the one expected way out
	if runErr == context.Canceled {
		return nil
	}
	return runErr
}
