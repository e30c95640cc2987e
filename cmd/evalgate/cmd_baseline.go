package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/projectconfig"
	"github.com/evalgate/evalgate/internal/regression"
	"github.com/evalgate/evalgate/internal/reporting"
)

var (
	baselineVersion string
	baselineNote    string
	baselineFrom    string
)

func newBaselineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage stored evaluation baselines",
		Long: `Manage stored evaluation baselines.

Baselines are run records saved under results/baselines/<prompt>/<version>.json.
The compare command and run --baseline check new runs against them.`,
	}

	cmd.AddCommand(newBaselineSetCommand())
	cmd.AddCommand(newBaselineListCommand())
	cmd.AddCommand(newBaselineShowCommand())
	cmd.AddCommand(newBaselineDeleteCommand())

	return cmd
}

func newBaselineSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <target-dir>",
		Short: "Run a target and save the results as a baseline",
		Long: `Run a target and save the results as a baseline.

With --from, a previously saved run record JSON file is stored instead of
running the target again.`,
		Args: cobra.ExactArgs(1),
		RunE: baselineSetE,
	}

	cmd.Flags().StringVar(&baselineVersion, "version", regression.DefaultVersion, "Version label for the baseline")
	cmd.Flags().StringVar(&baselineNote, "note", "", "Note stored with the baseline")
	cmd.Flags().StringVar(&baselineFrom, "from", "", "Run record JSON file to store instead of re-running")

	return cmd
}

func baselineSetE(cmd *cobra.Command, args []string) error {
	targetDir := args[0]

	cfg, err := projectconfig.Load(targetDir)
	if err != nil {
		return err
	}

	record, err := baselineRecord(cmd, targetDir, cfg)
	if err != nil {
		return err
	}

	var metadata map[string]string
	if baselineNote != "" {
		metadata = map[string]string{"note": baselineNote}
	}

	store := regression.NewStore(cfg.Paths.Baselines)
	path, err := store.Save(record.PromptName, record, baselineVersion, metadata)
	if err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}

	fmt.Printf("Baseline %s for %s saved to: %s\n", baselineVersion, record.PromptName, path)
	fmt.Printf("Pass rate: %.1f%%\n", record.Summary.PassRate*100)
	return nil
}

func baselineRecord(cmd *cobra.Command, targetDir string, cfg *projectconfig.ProjectConfig) (*models.RunRecord, error) {
	if baselineFrom != "" {
		r, err := loadRecordFile(baselineFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", baselineFrom, err)
		}
		return r, nil
	}
	return executeTarget(cmd.Context(), targetDir, cfg, runSettings{})
}

func newBaselineListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <prompt-name>",
		Short: "List stored baselines for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			store := regression.NewStore(cfg.Paths.Baselines)
			infos, err := store.List(args[0])
			if err != nil {
				return fmt.Errorf("failed to list baselines: %w", err)
			}
			if len(infos) == 0 {
				fmt.Printf("No baselines stored for %s\n", args[0])
				return nil
			}

			fmt.Printf("Baselines for %s:\n", args[0])
			for _, info := range infos {
				fmt.Printf("  %-12s pass_rate=%.1f%%  created=%s\n",
					info.Version, info.PassRate*100, info.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newBaselineShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <prompt-name> [version]",
		Short: "Show a stored baseline",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := regression.DefaultVersion
			if len(args) > 1 {
				version = args[1]
			}

			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			store := regression.NewStore(cfg.Paths.Baselines)
			baseline, err := store.Load(args[0], version)
			if err != nil {
				return fmt.Errorf("failed to load baseline: %w", err)
			}

			fmt.Printf("Baseline %s for %s (created %s)\n",
				baseline.Version, baseline.PromptName, baseline.CreatedAt.Format("2006-01-02 15:04"))
			if note := baseline.Metadata["note"]; note != "" {
				fmt.Printf("Note: %s\n", note)
			}
			fmt.Println()
			fmt.Println(reporting.FormatRunReport(&baseline.Results))
			return nil
		},
	}
}

func newBaselineDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <prompt-name> <version>",
		Short: "Delete a stored baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			store := regression.NewStore(cfg.Paths.Baselines)
			if err := store.Delete(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete baseline: %w", err)
			}

			fmt.Printf("Deleted baseline %s for %s\n", args[1], args[0])
			return nil
		},
	}
}
