package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/execution"
	"github.com/evalgate/evalgate/internal/judge"
	"github.com/evalgate/evalgate/internal/models"
	"github.com/evalgate/evalgate/internal/rules"
	"github.com/evalgate/evalgate/internal/scoring"
	"github.com/evalgate/evalgate/internal/template"
)

// ChainArgs configures a ChainPipeline.
type ChainArgs struct {
	Executor execution.PromptExecutor
	// Judge runs on the final output in full mode.
	Judge   execution.CaseJudge
	Version string
}

// ChainPipeline evaluates a two-phase chain as a black box: phase 1 output
// is parsed as JSON and bridged into phase 2's inputs, and only the final
// output is scored.
type ChainPipeline struct {
	executor execution.PromptExecutor
	judge    execution.CaseJudge
	version  string
}

// NewChainPipeline creates a ChainPipeline.
func NewChainPipeline(args ChainArgs) *ChainPipeline {
	return &ChainPipeline{
		executor: args.Executor,
		judge:    args.Judge,
		version:  args.Version,
	}
}

// Run evaluates every case in the chain target. The chain target supplies
// the cases, expectations, and eval config; the phase templates come from
// the targets named in its chain config.
func (c *ChainPipeline) Run(ctx context.Context, chainTarget *dataset.Target, phase1Template, phase2Template string) (*models.RunRecord, error) {
	if chainTarget.Suite.Chain == nil {
		return nil, fmt.Errorf("target %s has no chain config", chainTarget.Name)
	}

	start := time.Now()
	cases := make([]models.CaseVerdict, 0, len(chainTarget.Cases))

	for i := range chainTarget.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cases = append(cases, c.runCase(ctx, chainTarget, &chainTarget.Cases[i], phase1Template, phase2Template))
	}

	return &models.RunRecord{
		RunID:      uuid.NewString(),
		PromptName: chainTarget.Name,
		Version:    c.version,
		Mode:       chainTarget.Suite.EffectiveMode(),
		Model:      chainTarget.Suite.Config.Model,
		Timestamp:  start.UTC(),
		Summary:    scoring.BuildRunSummary(cases),
		Cases:      cases,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *ChainPipeline) runCase(ctx context.Context, chainTarget *dataset.Target, tc *models.TestCase, phase1Template, phase2Template string) models.CaseVerdict {
	suite := chainTarget.Suite
	start := time.Now()

	fail := func(reason string) models.CaseVerdict {
		return models.CaseVerdict{
			CaseID:      tc.CaseID,
			RunID:       uuid.NewString(),
			Description: tc.Description,
			Inputs:      tc.Inputs,
			FailReason:  reason,
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	phase1Output, err := c.execute(ctx, phase1Template, tc.Inputs, suite.Config.Model)
	if err != nil {
		return fail(fmt.Sprintf("execution_error: %v", err))
	}

	// Phase 1 must emit JSON the bridge can carry into phase 2. A parse
	// failure fails the case, not the run.
	bridged, err := bridgeInputs(phase1Output, tc.Inputs, suite.Chain.BridgeField)
	if err != nil {
		return fail(fmt.Sprintf("phase1_json_parse_error: %v", err))
	}

	finalOutput, err := c.execute(ctx, phase2Template, bridged, suite.Config.Model)
	if err != nil {
		return fail(fmt.Sprintf("execution_error: %v", err))
	}

	var expected *models.ExpectedResult
	if e, ok := chainTarget.Expected[tc.CaseID]; ok {
		expected = &e
	}

	ruleResults, err := rules.Run(finalOutput, expected, suite.Checks)
	if err != nil {
		return fail(fmt.Sprintf("execution_error: %v", err))
	}

	var judgeResults map[string]models.JudgeCriterionResult
	if suite.EffectiveMode() == models.ModeFull && c.judge != nil && suite.Judge.IsJudgeEnabled() {
		judgeResults = c.judge.Evaluate(ctx, judge.EvalInput{
			Output:         finalOutput,
			Inputs:         tc.Inputs,
			PromptTemplate: phase2Template,
			Criteria:       suite.Judge.Criteria,
			Domain:         suite.Judge.Domain,
		})
	}

	verdict := scoring.BuildCaseVerdict(scoring.VerdictInput{
		CaseID:       tc.CaseID,
		RunID:        uuid.NewString(),
		Description:  tc.Description,
		Inputs:       tc.Inputs,
		Output:       finalOutput,
		RuleResults:  ruleResults,
		JudgeResults: judgeResults,
		MinScore:     suite.EffectiveMinScore(),
	})
	verdict.DurationMs = time.Since(start).Milliseconds()
	return verdict
}

func (c *ChainPipeline) execute(ctx context.Context, tmpl string, inputs map[string]any, model string) (string, error) {
	prompt, err := template.Render(tmpl, inputs)
	if err != nil {
		return "", err
	}

	resp, err := c.executor.Execute(ctx, &execution.ExecutionRequest{Prompt: prompt, Model: model})
	if err != nil {
		return "", err
	}
	return resp.Output, nil
}

// bridgeInputs parses phase 1 output as JSON and merges it into the case
// inputs for phase 2. When bridgeField is set, only that field of the parsed
// object is carried over, under the same name; otherwise the whole object is
// merged. Case inputs win on key conflicts.
func bridgeInputs(phase1Output string, caseInputs map[string]any, bridgeField string) (map[string]any, error) {
	payload, err := judge.ExtractJSON(phase1Output)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, err
	}

	bridged := make(map[string]any, len(caseInputs)+len(parsed))
	if bridgeField != "" {
		bridged[bridgeField] = parsed[bridgeField]
	} else {
		for k, v := range parsed {
			bridged[k] = v
		}
	}
	for k, v := range caseInputs {
		bridged[k] = v
	}
	return bridged, nil
}
