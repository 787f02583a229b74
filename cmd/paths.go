package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/cli"
	"github.com/lovenityjade/APTwitchBot/config"
	"github.com/lovenityjade/APTwitchBot/pkg/paths"
)

// PathsOutput represents the resolved file locations the fetcher uses.
type PathsOutput struct {
	ConfigDir string `json:"config_dir"`
	DataDir   string `json:"data_dir"`
	StateDir  string `json:"state_dir"`
	StateFile string `json:"state_file"`
	LogFile   string `json:"log_file"`
	UUIDFile  string `json:"uuid_file"`
	PidFile   string `json:"pid_file"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the file locations the fetcher uses",
		Long: `Print the file locations the fetcher uses, after applying any
overrides from the loaded configuration.

This command outputs the paths in JSON format, making it easy to parse
from scripts and other tools.

The base directories follow the XDG Base Directory Specification:
- config_dir: Configuration files (aptwitchbot.yml)
- data_dir: Durable per-host data (client UUID cache)
- state_dir: Runtime state (state document, log, pidfile)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp := resolveRuntimePaths(cmd)
			output := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				DataDir:   paths.DataDir(),
				StateDir:  paths.StateDir(),
				StateFile: rp.stateFile,
				LogFile:   rp.logFile,
				UUIDFile:  rp.uuidFile,
				PidFile:   rp.pidFile,
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		},
	}

	return cmd
}

// runtimePaths carries the resolved runtime file locations for one command
// invocation.
type runtimePaths struct {
	pidFile   string
	stateFile string
	logFile   string
	uuidFile  string
}

// resolveRuntimePaths loads the configuration if one can be found and
// returns the file locations commands operate on. Without a config the
// default XDG locations apply, so lifecycle commands keep working from any
// directory.
func resolveRuntimePaths(cmd *cobra.Command) runtimePaths {
	rp := runtimePaths{
		pidFile:   paths.PidFilePath(),
		stateFile: paths.StateFilePath(),
		logFile:   paths.LogFilePath(),
		uuidFile:  paths.UUIDFilePath(),
	}

	opts := cli.GetOptions(cmd)
	var cfg *config.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return rp
	}

	if cfg.Paths.PidFile != "" {
		rp.pidFile = cfg.Paths.PidFile
	}
	if cfg.Paths.StateFile != "" {
		rp.stateFile = cfg.Paths.StateFile
	}
	if cfg.Paths.FetcherLog != "" {
		rp.logFile = cfg.Paths.FetcherLog
	}
	if cfg.Paths.UUIDFile != "" {
		rp.uuidFile = cfg.Paths.UUIDFile
	}
	return rp
}
