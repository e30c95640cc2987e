package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/projectconfig"
	"github.com/evalgate/evalgate/internal/regression"
	"github.com/evalgate/evalgate/internal/reporting"
)

var (
	compareBaselineVersion string
	compareThreshold       float64
	compareFrom            string
	compareFormat          string
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <target-dir>",
		Short: "Compare a run against a stored baseline",
		Long: `Run a target and compare the results against a stored baseline.

The command exits non-zero when the pass rate dropped by more than the
regression threshold. With --from, a previously saved run record JSON file
is compared instead of running the target again.`,
		Args: cobra.ExactArgs(1),
		RunE: compareCommandE,
	}

	cmd.Flags().StringVar(&compareBaselineVersion, "baseline", regression.DefaultVersion, "Baseline version to compare against")
	cmd.Flags().Float64Var(&compareThreshold, "threshold", -1, "Pass-rate drop that counts as a regression (default: 0.05)")
	cmd.Flags().StringVar(&compareFrom, "from", "", "Run record JSON file to compare instead of re-running")
	cmd.Flags().StringVarP(&compareFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func compareCommandE(cmd *cobra.Command, args []string) error {
	if compareFormat != "text" && compareFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", compareFormat)
	}

	targetDir := args[0]

	cfg, err := projectconfig.Load(targetDir)
	if err != nil {
		return err
	}

	var record *models.RunRecord
	if compareFrom != "" {
		record, err = loadRecordFile(compareFrom)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", compareFrom, err)
		}
	} else {
		record, err = executeTarget(cmd.Context(), targetDir, cfg, runSettings{})
		if err != nil {
			return err
		}
	}

	store := regression.NewStore(cfg.Paths.Baselines)
	baseline, err := store.Load(record.PromptName, compareBaselineVersion)
	if err != nil {
		return fmt.Errorf("failed to load baseline: %w", err)
	}

	threshold := compareThreshold
	if threshold < 0 {
		threshold = cfg.Regression.Threshold
	}

	report := regression.Compare(baseline, record, threshold)

	if compareFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(reporting.FormatRegressionReport(report))
	}

	if report.HasRegression {
		return &EvalFailureError{
			Message: fmt.Sprintf("regression detected: pass rate dropped %.1f%%", -report.PassRateDelta*100),
		}
	}
	return nil
}
