package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lovenityjade/APTwitchBot/cli"
	"github.com/lovenityjade/APTwitchBot/config"
)

func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration the fetcher would run with, built by merging:
1. Global config (~/.config/aptwitchbot/aptwitchbot.yml)
2. Project config (aptwitchbot.yml, searched upward from the working directory)
3. Local overrides (aptwitchbot.override.yml)
plus APTB_* environment variable overrides, defaults, and validation.
This is useful for debugging configuration issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)

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

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}
