package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evalgate/evalgate/internal/cache"
	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/judge"
	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/rules"
	"github.com/evalgate/evalgate/internal/scoring"
	"github.com/evalgate/evalgate/internal/template"
)

// DefaultWorkers bounds per-case concurrency when the suite does not.
const DefaultWorkers = 4

// CaseJudge is the slice of the judge the adapter needs.
type CaseJudge interface {
	Evaluate(ctx context.Context, in judge.EvalInput) map[string]models.JudgeCriterionResult
}

// AdapterArgs configures a LocalAdapter.
type AdapterArgs struct {
	Executor PromptExecutor
	// Judge runs in full mode. Nil means rule checks only.
	Judge CaseJudge
	// Cache, when set, skips unchanged quick-mode cases.
	Cache *cache.Cache
}

// LocalAdapter turns a target's test cases into verdicts: render the prompt,
// execute it, run the rule checks, run the judge in full mode, and aggregate.
type LocalAdapter struct {
	executor PromptExecutor
	judge    CaseJudge
	cache    *cache.Cache
}

// NewLocalAdapter creates a LocalAdapter.
func NewLocalAdapter(args AdapterArgs) *LocalAdapter {
	return &LocalAdapter{
		executor: args.Executor,
		judge:    args.Judge,
		cache:    args.Cache,
	}
}

// RunCases evaluates every case in the target. Case failures, including
// execution errors, produce failed verdicts; only context cancellation
// aborts the run.
func (a *LocalAdapter) RunCases(ctx context.Context, target *dataset.Target) ([]models.CaseVerdict, error) {
	suite := target.Suite

	workers := suite.Config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	verdicts := make([]models.CaseVerdict, len(target.Cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range target.Cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = a.runCase(gctx, target, &target.Cases[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return verdicts, nil
}

func (a *LocalAdapter) runCase(ctx context.Context, target *dataset.Target, tc *models.TestCase) models.CaseVerdict {
	suite := target.Suite
	expected := expectedFor(target, tc)

	var cacheKey string
	if a.cache != nil && cache.Cacheable(suite) {
		key, err := cache.CacheKey(suite, target.PromptTemplate, tc, expected)
		if err != nil {
			slog.WarnContext(ctx, "cache key failed", "case", tc.CaseID, "error", err)
		} else {
			cacheKey = key
			if verdict, ok := a.cache.Get(key); ok {
				slog.DebugContext(ctx, "cache hit", "case", tc.CaseID)
				return *verdict
			}
		}
	}

	start := time.Now()

	verdict, err := a.evaluateCase(ctx, target, tc, expected)
	if err != nil {
		return failedVerdict(tc, fmt.Sprintf("execution_error: %v", err), time.Since(start).Milliseconds())
	}
	verdict.DurationMs = time.Since(start).Milliseconds()

	if cacheKey != "" {
		if err := a.cache.Put(cacheKey, &verdict); err != nil {
			slog.WarnContext(ctx, "cache write failed", "case", tc.CaseID, "error", err)
		}
	}

	return verdict
}

func (a *LocalAdapter) evaluateCase(ctx context.Context, target *dataset.Target, tc *models.TestCase, expected *models.ExpectedResult) (models.CaseVerdict, error) {
	suite := target.Suite

	if suite.Config.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(suite.Config.TimeoutSec)*time.Second)
		defer cancel()
	}

	prompt, err := template.Render(target.PromptTemplate, tc.Inputs)
	if err != nil {
		return models.CaseVerdict{}, err
	}

	resp, err := a.executor.Execute(ctx, &ExecutionRequest{
		Prompt: prompt,
		Model:  suite.Config.Model,
	})
	if err != nil {
		return models.CaseVerdict{}, err
	}

	ruleResults, err := rules.Run(resp.Output, expected, suite.Checks)
	if err != nil {
		return models.CaseVerdict{}, err
	}

	var judgeResults map[string]models.JudgeCriterionResult
	if suite.EffectiveMode() == models.ModeFull && a.judge != nil && suite.Judge.IsJudgeEnabled() {
		judgeResults = a.judge.Evaluate(ctx, judge.EvalInput{
			Output:         resp.Output,
			Inputs:         tc.Inputs,
			PromptTemplate: target.PromptTemplate,
			Criteria:       suite.Judge.Criteria,
			Domain:         suite.Judge.Domain,
		})
	}

	return scoring.BuildCaseVerdict(scoring.VerdictInput{
		CaseID:       tc.CaseID,
		RunID:        uuid.NewString(),
		Description:  tc.Description,
		Inputs:       tc.Inputs,
		Output:       resp.Output,
		RuleResults:  ruleResults,
		JudgeResults: judgeResults,
		MinScore:     suite.EffectiveMinScore(),
	}), nil
}

func expectedFor(target *dataset.Target, tc *models.TestCase) *models.ExpectedResult {
	if expected, ok := target.Expected[tc.CaseID]; ok {
		return &expected
	}
	return nil
}

func failedVerdict(tc *models.TestCase, reason string, durationMs int64) models.CaseVerdict {
	return models.CaseVerdict{
		CaseID:      tc.CaseID,
		RunID:       uuid.NewString(),
		Description: tc.Description,
		Inputs:      tc.Inputs,
		FailReason:  reason,
		DurationMs:  durationMs,
	}
}
