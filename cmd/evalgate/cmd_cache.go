package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/cache"
	"github.com/evalgate/evalgate/internal/projectconfig"
)

var cacheClearDir string

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage evaluation result cache",
		Long: `Manage the evaluation result cache.

The cache stores quick-mode case verdicts to speed up repeated runs with the
same inputs. Cached results are keyed by suite configuration, prompt template,
test case, and expectations.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the evaluation result cache",
		Long: `Clear all cached case verdicts.

The next evaluation run will re-execute all cases from scratch.`,
		RunE: cacheClearE,
	}

	cmd.Flags().StringVar(&cacheClearDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory to clear")

	return cmd
}

func cacheClearE(cmd *cobra.Command, args []string) error {
	// Resolve to absolute path
	absDir, err := filepath.Abs(cacheClearDir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	c := cache.New(absDir)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Printf("Cache cleared: %s\n", absDir)
	return nil
}
