package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/cache"
	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/execution"
	"github.com/evalgate/evalgate/internal/judge"
	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/orchestration"
	"github.com/evalgate/evalgate/internal/projectconfig"
	"github.com/evalgate/evalgate/internal/regression"
	"github.com/evalgate/evalgate/internal/reporting"
	"github.com/evalgate/evalgate/internal/versioning"
)

var (
	runOutputPath      string
	runFormat          string
	runModeOverride    string
	runModelOverride   string
	runExecutorKind    string
	runJudgeModel      string
	runWorkers         int
	runEnableCache     bool
	runDisableCache    bool
	runCacheDir        string
	runRubricsDir      string
	runBaselineVersion string
	runSaveBaseline    string
	runThreshold       float64
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <target-dir>",
		Short: "Run an evaluation target",
		Long: `Run a prompt evaluation target.

The target directory holds prompt.txt, cases.yaml (or cases.csv), and the
optional expected.yaml and config.yaml. Quick mode runs deterministic rule
checks only; full mode adds LLM judge criteria.

With --baseline, the run is compared against the stored baseline and the
command fails when a regression is detected.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommandE,
	}

	cmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Output file for results (JSON, or XML with --format junit)")
	cmd.Flags().StringVar(&runFormat, "format", "default", "Output format: default, junit")
	cmd.Flags().StringVar(&runModeOverride, "mode", "", "Run mode override: quick or full")
	cmd.Flags().StringVar(&runModelOverride, "model", "", "Model to use (overrides target config)")
	cmd.Flags().StringVar(&runExecutorKind, "executor", "", "Executor override: mock or openai")
	cmd.Flags().StringVar(&runJudgeModel, "judge-model", "", "Model for the LLM judge (full mode)")
	cmd.Flags().IntVar(&runWorkers, "workers", 0, "Number of concurrent workers (default: 4)")
	cmd.Flags().BoolVar(&runEnableCache, "cache", false, "Enable result caching (quick mode only)")
	cmd.Flags().BoolVar(&runDisableCache, "no-cache", false, "Disable result caching")
	cmd.Flags().StringVar(&runCacheDir, "cache-dir", "", "Cache directory for storing results")
	cmd.Flags().StringVar(&runRubricsDir, "rubrics-dir", "", "Directory of custom judge rubrics")
	cmd.Flags().StringVar(&runBaselineVersion, "baseline", "", "Compare against this baseline version after the run")
	cmd.Flags().StringVar(&runSaveBaseline, "save-baseline", "", "Save the run as a baseline under this version")
	cmd.Flags().Float64Var(&runThreshold, "threshold", -1, "Pass-rate drop that counts as a regression (default: 0.05)")

	return cmd
}

// runSettings carries the resolved per-run options shared by run, baseline
// set, and compare.
type runSettings struct {
	Mode       string
	Model      string
	Executor   string
	JudgeModel string
	Workers    int
	UseCache   bool
	CacheDir   string
	RubricsDir string
}

func runCommandE(cmd *cobra.Command, args []string) error {
	targetDir := args[0]

	cfg, err := projectconfig.Load(targetDir)
	if err != nil {
		return err
	}

	settings := runSettings{
		Mode:       runModeOverride,
		Model:      runModelOverride,
		Executor:   runExecutorKind,
		JudgeModel: runJudgeModel,
		Workers:    runWorkers,
		UseCache:   cacheEnabled(cfg),
		CacheDir:   runCacheDir,
		RubricsDir: runRubricsDir,
	}

	record, err := executeTarget(cmd.Context(), targetDir, cfg, settings)
	if err != nil {
		return err
	}

	// Print results based on format
	switch runFormat {
	case "junit":
		if runOutputPath == "" {
			return fmt.Errorf("--format junit requires --output")
		}
		if err := reporting.WriteJUnitXML(record, runOutputPath); err != nil {
			return fmt.Errorf("failed to write JUnit XML: %w", err)
		}
		fmt.Printf("JUnit results saved to: %s\n", runOutputPath)
	case "default":
		fmt.Println(reporting.FormatRunReport(record))
		if runOutputPath != "" {
			if err := saveRecord(record, runOutputPath); err != nil {
				return fmt.Errorf("failed to save output: %w", err)
			}
			fmt.Printf("\nResults saved to: %s\n", runOutputPath)
		}
	default:
		return fmt.Errorf("unknown output format: %s (supported: default, junit)", runFormat)
	}

	store := regression.NewStore(cfg.Paths.Baselines)

	if runSaveBaseline != "" {
		path, err := store.Save(record.PromptName, record, runSaveBaseline, nil)
		if err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		fmt.Printf("Baseline saved to: %s\n", path)
	}

	if runBaselineVersion != "" {
		baseline, err := store.Load(record.PromptName, runBaselineVersion)
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		threshold := runThreshold
		if threshold < 0 {
			threshold = cfg.Regression.Threshold
		}
		report := regression.Compare(baseline, record, threshold)
		fmt.Println()
		fmt.Println(reporting.FormatRegressionReport(report))
		if report.HasRegression {
			return &EvalFailureError{
				Message: fmt.Sprintf("regression detected: pass rate dropped %.1f%%", -report.PassRateDelta*100),
			}
		}
	}

	if record.Summary.Failed > 0 {
		return &EvalFailureError{
			Message: fmt.Sprintf("evaluation completed with %d of %d case(s) failed", record.Summary.Failed, record.Summary.Total),
		}
	}

	return nil
}

// executeTarget loads and evaluates one target directory, returning the run
// record. It applies CLI and project-config overrides to the suite config,
// bumps the prompt version when the prompt content changed, and dispatches
// to the chain pipeline for chain targets.
func executeTarget(ctx context.Context, targetDir string, cfg *projectconfig.ProjectConfig, settings runSettings) (*models.RunRecord, error) {
	target, err := dataset.LoadTarget(targetDir)
	if err != nil {
		return nil, err
	}

	applyOverrides(target.Suite, cfg, settings)
	if err := target.Suite.Validate(); err != nil {
		return nil, err
	}

	// Record the prompt version, bumping it when the content changed.
	targetsDir := filepath.Dir(target.Dir)
	mgr := versioning.NewManager(targetsDir)
	meta, err := mgr.Ensure(target.Name, "")
	if err != nil {
		return nil, fmt.Errorf("versioning %s: %w", target.Name, err)
	}
	if meta.LastSeenHash == "" {
		// First sighting of this prompt: record the hash without bumping.
		hash, err := mgr.PromptHash(target.Name)
		if err != nil {
			return nil, fmt.Errorf("versioning %s: %w", target.Name, err)
		}
		if err := mgr.MarkSeen(target.Name, hash); err != nil {
			return nil, fmt.Errorf("versioning %s: %w", target.Name, err)
		}
	}
	ver, err := mgr.AutoVersion(target.Name, "", "prompt content changed")
	if err != nil {
		return nil, fmt.Errorf("versioning %s: %w", target.Name, err)
	}

	executor, err := execution.NewExecutor(target.Suite.Config.Executor, target.Suite.Config.Model)
	if err != nil {
		return nil, err
	}

	caseJudge, err := buildJudge(target.Suite, settings.RubricsDir)
	if err != nil {
		return nil, err
	}

	if target.Suite.Chain != nil {
		return runChain(ctx, target, targetsDir, executor, caseJudge, ver.Version)
	}

	var resultCache *cache.Cache
	if settings.UseCache && cache.Cacheable(target.Suite) {
		dir := settings.CacheDir
		if dir == "" {
			dir = cfg.Cache.Dir
		}
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		resultCache = cache.New(absDir)
	}

	adapter := execution.NewLocalAdapter(execution.AdapterArgs{
		Executor: executor,
		Judge:    caseJudge,
		Cache:    resultCache,
	})
	pipeline := orchestration.NewPipeline(orchestration.PipelineArgs{
		Adapter: adapter,
		Version: ver.Version,
	})
	return pipeline.Run(ctx, target)
}

// runChain evaluates a two-phase chain target. The phase templates come from
// sibling targets named in the chain config.
func runChain(ctx context.Context, target *dataset.Target, targetsDir string, executor execution.PromptExecutor, caseJudge execution.CaseJudge, version string) (*models.RunRecord, error) {
	chain := target.Suite.Chain

	phase1, err := dataset.LoadTarget(filepath.Join(targetsDir, chain.Phase1))
	if err != nil {
		return nil, fmt.Errorf("loading chain phase 1 target %q: %w", chain.Phase1, err)
	}
	phase2, err := dataset.LoadTarget(filepath.Join(targetsDir, chain.Phase2))
	if err != nil {
		return nil, fmt.Errorf("loading chain phase 2 target %q: %w", chain.Phase2, err)
	}

	pipeline := orchestration.NewChainPipeline(orchestration.ChainArgs{
		Executor: executor,
		Judge:    caseJudge,
		Version:  version,
	})
	return pipeline.Run(ctx, target, phase1.PromptTemplate, phase2.PromptTemplate)
}

// buildJudge constructs the LLM judge for full-mode suites. Quick-mode
// suites never call the judge, so nil is returned for them.
func buildJudge(suite *models.EvalSuite, rubricsDir string) (execution.CaseJudge, error) {
	if suite.EffectiveMode() != models.ModeFull || !suite.Judge.IsJudgeEnabled() {
		return nil, nil
	}

	registry := judge.NewRegistry()
	if rubricsDir != "" {
		if err := registry.LoadDir(rubricsDir); err != nil {
			return nil, fmt.Errorf("loading rubrics: %w", err)
		}
	}

	client, err := judge.NewOpenAIClient()
	if err != nil {
		return nil, fmt.Errorf("judge requires an OpenAI client in full mode: %w", err)
	}

	return judge.New(client, registry, suite.Config.JudgeModel), nil
}

// applyOverrides layers project-config defaults and CLI flags onto the suite
// config. Flags win over file config.
func applyOverrides(suite *models.EvalSuite, cfg *projectconfig.ProjectConfig, settings runSettings) {
	if suite.Config.Executor == "" {
		suite.Config.Executor = cfg.Defaults.Executor
	}
	if suite.Config.Model == "" {
		suite.Config.Model = cfg.Defaults.Model
	}
	if suite.Config.JudgeModel == "" {
		suite.Config.JudgeModel = cfg.Defaults.JudgeModel
	}
	if suite.Config.TimeoutSec == 0 {
		suite.Config.TimeoutSec = cfg.Defaults.Timeout
	}
	if suite.Config.Workers == 0 {
		suite.Config.Workers = cfg.Defaults.Workers
	}
	if suite.Config.Mode == "" && cfg.Defaults.Mode != "" {
		suite.Config.Mode = models.RunMode(cfg.Defaults.Mode)
	}

	if settings.Mode != "" {
		suite.Config.Mode = models.RunMode(settings.Mode)
	}
	if settings.Model != "" {
		suite.Config.Model = settings.Model
	}
	if settings.Executor != "" {
		suite.Config.Executor = settings.Executor
	}
	if settings.JudgeModel != "" {
		suite.Config.JudgeModel = settings.JudgeModel
	}
	if settings.Workers > 0 {
		suite.Config.Workers = settings.Workers
	}
}

func cacheEnabled(cfg *projectconfig.ProjectConfig) bool {
	if runDisableCache {
		return false
	}
	if runEnableCache {
		return true
	}
	return cfg.Cache.Enabled != nil && *cfg.Cache.Enabled
}

func saveRecord(record *models.RunRecord, path string) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadRecordFile reads a saved run record JSON file.
func loadRecordFile(path string) (*models.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var record models.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.PromptName == "" {
		return nil, errors.New("not a run record: missing prompt_name")
	}
	return &record, nil
}
