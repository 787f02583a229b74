package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates a standard 'schema' command that prints an embedded
// JSON Schema, which editors and other tools can use for completion.
func NewSchemaCommand(schemaJSON []byte) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for aptwitchbot.yml",
		Long:  `Outputs the JSON Schema the fetcher validates its configuration against.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(string(schemaJSON))
			return nil
		},
	}
}
