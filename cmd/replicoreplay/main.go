// Command replicoreplay inspects a frame recording produced by
// replicoresrv: it lists the frames captured for a given peer so a
// desync can be diagnosed offline, without re-running the live session.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapnet/replicore/internal/record"
)

func main() {
	root := &cobra.Command{
		Use:   "replicoreplay",
		Short: "inspect a replicore frame recording",
	}

	root.AddCommand(listCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <peer-id>",
		Short: "list every recorded frame for a peer, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			peerID := args[0]

			rec, err := record.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer rec.Close()

			frames, err := rec.ForPeer(peerID)
			if err != nil {
				return fmt.Errorf("read frames: %w", err)
			}

			for _, f := range frames {
				fmt.Printf("%-6d %-20s tick=%-10d %-8s %d bytes\n",
					f.ID,
					time.Unix(f.RecordedAt, 0).Format(time.RFC3339),
					f.TickSignature,
					f.Kind,
					len(f.Payload),
				)
			}
			fmt.Printf("%d frames total\n", len(frames))
			return nil
		},
	}
	cmd.Flags().String("db", "replicore.db", "frame recording database path")
	return cmd
}
