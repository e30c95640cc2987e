package orchestration

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/dataset"
	"github.com/evalgate/evalgate/internal/execution"
	"github.com/evalgate/evalgate/internal/models"
)

func chainTarget(cases ...models.TestCase) *dataset.Target {
	return &dataset.Target{
		Name:           "e2e-coaching",
		PromptTemplate: "",
		Suite: &models.EvalSuite{
			Name:   "e2e-coaching",
			Config: models.SuiteConfig{Mode: models.ModeQuick},
			Chain: &models.ChainConfig{
				Phase1:      "analyze",
				Phase2:      "questions",
				BridgeField: "question_context",
			},
		},
		Cases:    cases,
		Expected: map[string]models.ExpectedResult{},
	}
}

// phaseExecutor answers phase 1 and phase 2 prompts differently, keyed on a
// marker each template contains.
type phaseExecutor struct {
	phase1 string
	phase2 string
}

func (p *phaseExecutor) Name() string { return "phased" }

func (p *phaseExecutor) Execute(_ context.Context, req *execution.ExecutionRequest) (*execution.ExecutionResponse, error) {
	if strings.Contains(req.Prompt, "PHASE1") {
		return &execution.ExecutionResponse{Output: p.phase1}, nil
	}
	return &execution.ExecutionResponse{Output: p.phase2}, nil
}

func TestChainPipelineRun(t *testing.T) {
	target := chainTarget(models.TestCase{
		CaseID: "c1",
		Inputs: map[string]any{"member_name": "Alice"},
	})
	target.Expected["c1"] = models.ExpectedResult{Keywords: []string{"growth"}}

	exec := &phaseExecutor{
		phase1: "```json\n{\"question_context\": [\"career goals\"]}\n```",
		phase2: "Ask Alice about her growth and career goals.",
	}

	c := NewChainPipeline(ChainArgs{Executor: exec, Version: "v1.0"})

	record, err := c.Run(context.Background(), target,
		"PHASE1 analyze for {{.member_name}}",
		"PHASE2 questions from {{.question_context}} for {{.member_name}}")
	require.NoError(t, err)

	require.Len(t, record.Cases, 1)
	verdict := record.Cases[0]
	assert.True(t, verdict.Passed)
	assert.Equal(t, "Ask Alice about her growth and career goals.", verdict.Output)
	assert.Equal(t, 1, record.Summary.Passed)
}

func TestChainPipelinePhase1ParseFailure(t *testing.T) {
	target := chainTarget(
		models.TestCase{CaseID: "bad", Inputs: map[string]any{"member_name": "Bob"}},
		models.TestCase{CaseID: "good", Inputs: map[string]any{"member_name": "Alice"}},
	)

	exec := execution.NewMockExecutor("mock")
	exec.Respond = func(prompt string) string {
		if strings.Contains(prompt, "PHASE1") {
			if strings.Contains(prompt, "Bob") {
				return "I could not produce structured output, sorry."
			}
			return `{"question_context": ["wellbeing"]}`
		}
		return "Final hints about wellbeing."
	}

	c := NewChainPipeline(ChainArgs{Executor: exec})

	record, err := c.Run(context.Background(), target,
		"PHASE1 for {{.member_name}}",
		"PHASE2 {{.question_context}}")
	require.NoError(t, err, "a parse failure fails the case, not the run")

	require.Len(t, record.Cases, 2)
	bad := record.Cases[0]
	assert.False(t, bad.Passed)
	assert.Contains(t, bad.FailReason, "phase1_json_parse_error:")
	assert.Empty(t, bad.Output)

	good := record.Cases[1]
	assert.True(t, good.Passed)
	assert.Equal(t, 1, record.Summary.Passed)
	assert.Equal(t, 1, record.Summary.Failed)
}

func TestChainPipelineRequiresChainConfig(t *testing.T) {
	target := evalTarget(models.ModeQuick, models.TestCase{CaseID: "c1", Inputs: map[string]any{"topic": "x"}})

	c := NewChainPipeline(ChainArgs{Executor: execution.NewMockExecutor("mock")})
	_, err := c.Run(context.Background(), target, "p1", "p2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chain config")
}

func TestBridgeInputs(t *testing.T) {
	t.Run("bridges a single field", func(t *testing.T) {
		bridged, err := bridgeInputs(`{"question_context": ["a"], "noise": 1}`,
			map[string]any{"language": "ko-KR"}, "question_context")
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, bridged["question_context"])
		assert.Equal(t, "ko-KR", bridged["language"])
		assert.NotContains(t, bridged, "noise")
	})

	t.Run("merges the whole object without a bridge field", func(t *testing.T) {
		bridged, err := bridgeInputs(`{"a": 1, "b": 2}`, map[string]any{"c": 3}, "")
		require.NoError(t, err)
		assert.Len(t, bridged, 3)
	})

	t.Run("case inputs win on conflicts", func(t *testing.T) {
		bridged, err := bridgeInputs(`{"language": "en-US"}`, map[string]any{"language": "ko-KR"}, "")
		require.NoError(t, err)
		assert.Equal(t, "ko-KR", bridged["language"])
	})

	t.Run("fenced output", func(t *testing.T) {
		bridged, err := bridgeInputs("```json\n{\"x\": true}\n```", nil, "")
		require.NoError(t, err)
		assert.Equal(t, true, bridged["x"])
	})

	t.Run("non-json output errors", func(t *testing.T) {
		_, err := bridgeInputs("plain prose", nil, "")
		require.Error(t, err)
	})

	t.Run("json array errors", func(t *testing.T) {
		_, err := bridgeInputs(`[1, 2]`, nil, "")
		require.Error(t, err)
	})
}
