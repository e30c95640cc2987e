package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evalgate",
		Short: "Evalgate - prompt evaluation and regression gating",
		Long: `Evalgate is a command-line tool for evaluating prompts.

It runs versioned prompt templates against test datasets, scores the outputs
with rule checks and an LLM judge, and compares runs against stored baselines
to catch regressions before they ship.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newBaselineCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newHistoryCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
