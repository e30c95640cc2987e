package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTestCases(t *testing.T) {
	content := `- id: case-001
  description: typical request
  inputs:
    topic: testing
    count: 3

- id: case-002
  inputs:
    topic: caching
`
	cases, err := LoadTestCases(writeTemp(t, "cases.yaml", content))
	require.NoError(t, err)

	require.Len(t, cases, 2)
	assert.Equal(t, "case-001", cases[0].CaseID)
	assert.Equal(t, "typical request", cases[0].Description)
	assert.Equal(t, "testing", cases[0].Inputs["topic"])
	assert.Equal(t, 3, cases[0].Inputs["count"])
}

func TestLoadTestCasesMissingID(t *testing.T) {
	content := "- description: no id here\n  inputs:\n    x: 1\n"
	_, err := LoadTestCases(writeTemp(t, "cases.yaml", content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing an id")
}

func TestLoadExpected(t *testing.T) {
	content := `case-001:
  keywords:
    - paris
  forbidden:
    - guarantee
  min_length: 50
case-002:
  reference: "42"
  format: json
  schema:
    type: object
`
	expected, err := LoadExpected(writeTemp(t, "expected.yaml", content))
	require.NoError(t, err)

	require.Len(t, expected, 2)
	assert.Equal(t, []string{"paris"}, expected["case-001"].Keywords)
	assert.Equal(t, 50, expected["case-001"].MinLength)
	assert.Equal(t, "42", expected["case-002"].Reference)
	assert.Equal(t, "object", expected["case-002"].Schema["type"])
}

func TestVerdictScoreLookups(t *testing.T) {
	v := &CaseVerdict{
		RuleResults: map[string]RuleCheckResult{
			CheckKeywordInclusion: {Name: CheckKeywordInclusion, Score: 0.75},
		},
		JudgeResults: map[string]JudgeCriterionResult{
			"output_quality": {Criterion: "output_quality", Score: 0.6},
		},
	}

	assert.Equal(t, 0.75, v.RuleScore(CheckKeywordInclusion))
	assert.Equal(t, 1.0, v.RuleScore(CheckForbiddenWord), "missing rule checks default to clean")
	assert.Equal(t, 0.6, v.JudgeScore("output_quality"))
	assert.Equal(t, 0.0, v.JudgeScore("missing"))
}
