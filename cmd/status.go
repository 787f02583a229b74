package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lovenityjade/APTwitchBot/internal/pidfile"
	"github.com/lovenityjade/APTwitchBot/snapshot"
)

// StatusOutput is the machine-readable shape of the status command.
type StatusOutput struct {
	Running          bool   `json:"running"`
	PID              int    `json:"pid,omitempty"`
	StateFile        string `json:"state_file"`
	Seed             string `json:"seed,omitempty"`
	SlotName         string `json:"slot_name,omitempty"`
	Game             string `json:"game,omitempty"`
	CheckedLocations int    `json:"checked_locations"`
	LocationCount    int    `json:"location_count"`
	Items            int    `json:"items"`
}

// NewStatusCmd creates the `status` command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check fetcher status",
		Long: `Reports whether a fetcher process is alive and summarizes the last
published state document. Exits non-zero when the fetcher is stopped,
so scripts can branch on it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rp := resolveRuntimePaths(cmd)

			running, pid, err := pidfile.IsRunning(rp.pidFile)
			if err != nil {
				return err
			}

			// The document summary works from whatever the last flush left
			// behind, whether or not the process is still alive.
			doc := snapshot.NewReader(rp.stateFile).LoadOrEmpty()

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				out := StatusOutput{
					Running:          running,
					PID:              pid,
					StateFile:        rp.stateFile,
					Seed:             doc.Room.Seed,
					SlotName:         doc.Me.SlotName,
					Game:             doc.Me.Game,
					CheckedLocations: len(doc.CheckedLocations),
					LocationCount:    doc.Room.LocationCount,
					Items:            len(doc.Items),
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				if !running {
					os.Exit(1)
				}
				return nil
			}

			if !running {
				fmt.Println("Stopped")
				os.Exit(1)
			}

			fmt.Printf("Running (PID: %d)\nState: %s\n", pid, rp.stateFile)
			if doc.Room.Seed != "" {
				fmt.Printf("Seed: %s\n", doc.Room.Seed)
				fmt.Printf("Slot: %s (%s)\n", doc.Me.SlotName, doc.Me.Game)
				fmt.Printf("Checked: %d/%d locations\n", len(doc.CheckedLocations), doc.Room.LocationCount)
				fmt.Printf("Items: %d received\n", len(doc.Items))
			}
			return nil
		},
	}
}
