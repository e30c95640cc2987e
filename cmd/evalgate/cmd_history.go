package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/versioning"
)

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history <target-dir>",
		Short: "Show the version history of a target's prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Clean(args[0])
			name := filepath.Base(dir)
			mgr := versioning.NewManager(filepath.Dir(dir))

			current, err := mgr.CurrentVersion(name)
			if err != nil {
				return fmt.Errorf("failed to load version metadata: %w", err)
			}

			entries, err := mgr.History(name)
			if err != nil {
				return fmt.Errorf("failed to load version history: %w", err)
			}

			fmt.Printf("Version history for %s (current: %s)\n", name, current)
			for _, e := range entries {
				fmt.Printf("  %-8s %s", e.Version, e.Date)
				if e.Author != "" {
					fmt.Printf("  by %s", e.Author)
				}
				if e.Changes != "" {
					fmt.Printf("  - %s", e.Changes)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
