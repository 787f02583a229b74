package main

import (
	"os"

	"github.com/lovenityjade/APTwitchBot/cli"
	"github.com/lovenityjade/APTwitchBot/cmd"
	"github.com/lovenityjade/APTwitchBot/schema"
	"github.com/lovenityjade/APTwitchBot/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"apfetcher",
		"Archipelago session fetcher for APTwitchBot",
	)

	info := version.GetInfo()
	rootCmd.Version = info.Version
	cli.SetVersionTemplate(rootCmd, info)

	// Add subcommands
	rootCmd.AddCommand(cmd.NewRunCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewStateCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cli.NewSchemaCommand(schema.Embedded()))
	rootCmd.AddCommand(cli.NewVersionCommand("apfetcher"))

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
