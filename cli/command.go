package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lovenityjade/APTwitchBot/config"
	"github.com/lovenityjade/APTwitchBot/logging"
)

// CommandOptions holds common options for fetcher commands
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard fetcher flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		// Errors reach the user through ErrorHandler, not cobra's printer
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	RegisterStandardFlags(cmd.PersistentFlags())

	return cmd
}

// RegisterStandardFlags attaches the shared fetcher flags to a flag set.
func RegisterStandardFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.Bool("json", false, "Output in JSON format")
	flags.StringP("config", "c", "", "Path to aptwitchbot.yml config file")
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	// logging.NewLogger returns a logrus.Entry; flags adjust the
	// underlying logger it shares with the rest of the process.
	entry := logging.NewLogger("apfetcher-cli")
	logger := entry.Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// InitConfig resolves the configuration file path for a command. An explicit
// flag value wins; otherwise the search walks up from the working directory.
func InitConfig(configFile string) (string, error) {
	if configFile != "" {
		// Use config file from flag
		return configFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	foundConfigFile, err := config.FindConfigFile(cwd)
	if err != nil {
		// No config file found, that's okay for some commands
		return "", nil
	}

	return foundConfigFile, nil
}
