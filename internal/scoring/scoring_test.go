package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgate/evalgate/internal/models"
)

func rule(name string, score float64, passed bool) models.RuleCheckResult {
	return models.RuleCheckResult{Name: name, Score: score, Passed: passed}
}

func judged(criterion string, score float64) models.JudgeCriterionResult {
	return models.JudgeCriterionResult{Criterion: criterion, Score: score}
}

func TestBuildCaseVerdictQuickMode(t *testing.T) {
	v := BuildCaseVerdict(VerdictInput{
		CaseID: "case-1",
		Output: "fine output",
		RuleResults: map[string]models.RuleCheckResult{
			models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 0.5, true),
			models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 1.0, true),
		},
	})

	assert.True(t, v.SanityPassed)
	assert.Nil(t, v.OverallScore, "no judge criteria means no overall score")
	assert.True(t, v.Passed, "sanity alone decides quick-mode cases")
	assert.Empty(t, v.FailReason)
}

func TestBuildCaseVerdictSanityGate(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]models.RuleCheckResult
		want    bool
	}{
		{
			"both clean",
			map[string]models.RuleCheckResult{
				models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 1.0, true),
				models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 1.0, true),
			},
			true,
		},
		{
			"keyword at boundary",
			map[string]models.RuleCheckResult{
				models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 0.5, true),
				models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 1.0, true),
			},
			true,
		},
		{
			"keyword below boundary",
			map[string]models.RuleCheckResult{
				models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 0.49, false),
				models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 1.0, true),
			},
			false,
		},
		{
			"forbidden violation",
			map[string]models.RuleCheckResult{
				models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 1.0, true),
				models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 0.0, false),
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := BuildCaseVerdict(VerdictInput{RuleResults: tt.results})
			assert.Equal(t, tt.want, v.SanityPassed)
			if !tt.want {
				assert.False(t, v.Passed)
				assert.Equal(t, models.FailReasonSanity, v.FailReason)
			}
		})
	}
}

func TestBuildCaseVerdictConfiguredCheckGates(t *testing.T) {
	// Every configured check gates the case, not just the default pair.
	for _, extra := range []string{"exact_match", "length_compliance", "format_validity"} {
		t.Run(extra, func(t *testing.T) {
			v := BuildCaseVerdict(VerdictInput{
				RuleResults: map[string]models.RuleCheckResult{
					models.CheckKeywordInclusion: rule(models.CheckKeywordInclusion, 1.0, true),
					models.CheckForbiddenWord:    rule(models.CheckForbiddenWord, 1.0, true),
					extra:                        rule(extra, 0.0, false),
				},
			})

			assert.False(t, v.SanityPassed)
			assert.False(t, v.Passed)
			assert.Equal(t, models.FailReasonSanity, v.FailReason)
		})
	}
}

func TestBuildCaseVerdictMissingChecksCountAsClean(t *testing.T) {
	v := BuildCaseVerdict(VerdictInput{RuleResults: map[string]models.RuleCheckResult{}})
	assert.True(t, v.SanityPassed)
	assert.True(t, v.Passed)
}

func TestBuildCaseVerdictSanityDominatesJudge(t *testing.T) {
	// A perfect judge score cannot rescue a case that failed sanity.
	v := BuildCaseVerdict(VerdictInput{
		RuleResults: map[string]models.RuleCheckResult{
			models.CheckForbiddenWord: rule(models.CheckForbiddenWord, 0.0, false),
		},
		JudgeResults: map[string]models.JudgeCriterionResult{
			"output_quality": judged("output_quality", 1.0),
		},
	})

	assert.False(t, v.Passed)
	assert.Equal(t, models.FailReasonSanity, v.FailReason)
	require.NotNil(t, v.OverallScore)
	assert.Equal(t, 1.0, *v.OverallScore)
}

func TestBuildCaseVerdictScoreThreshold(t *testing.T) {
	judge := map[string]models.JudgeCriterionResult{
		"a": judged("a", 0.2),
		"b": judged("b", 0.4),
	}

	v := BuildCaseVerdict(VerdictInput{JudgeResults: judge})
	require.NotNil(t, v.OverallScore)
	assert.InDelta(t, 0.3, *v.OverallScore, 1e-9)
	assert.False(t, v.Passed)
	assert.Equal(t, "score_below_threshold (0.300 < 0.5)", v.FailReason)

	// A custom threshold below the mean lets the same case pass.
	v = BuildCaseVerdict(VerdictInput{JudgeResults: judge, MinScore: 0.25})
	assert.True(t, v.Passed)
	assert.Empty(t, v.FailReason)
}

func TestBuildCaseVerdictThresholdBoundary(t *testing.T) {
	v := BuildCaseVerdict(VerdictInput{
		JudgeResults: map[string]models.JudgeCriterionResult{
			"a": judged("a", 0.5),
		},
	})
	assert.True(t, v.Passed, "exactly the threshold passes")
}

func TestBuildCaseVerdictWeights(t *testing.T) {
	v := BuildCaseVerdict(VerdictInput{
		JudgeResults: map[string]models.JudgeCriterionResult{
			"heavy": {Criterion: "heavy", Score: 1.0, Weight: 3.0},
			"light": {Criterion: "light", Score: 0.0, Weight: 1.0},
		},
	})

	require.NotNil(t, v.OverallScore)
	assert.InDelta(t, 0.75, *v.OverallScore, 1e-9)
	assert.True(t, v.Passed)
}

func TestBuildCaseVerdictClampsJudgeScores(t *testing.T) {
	v := BuildCaseVerdict(VerdictInput{
		JudgeResults: map[string]models.JudgeCriterionResult{
			"over":  judged("over", 1.7),
			"under": judged("under", -0.3),
		},
	})

	require.NotNil(t, v.OverallScore)
	assert.InDelta(t, 0.5, *v.OverallScore, 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 0.25, Clamp(0.25))
	assert.Equal(t, 1.0, Clamp(2))
}

func TestBuildRunSummary(t *testing.T) {
	score := func(f float64) *float64 { return &f }
	cases := []models.CaseVerdict{
		{Passed: true, OverallScore: score(0.9)},
		{Passed: true, OverallScore: score(0.7)},
		{Passed: false, OverallScore: score(0.2)},
		{Passed: false},
	}

	s := BuildRunSummary(cases)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 2, s.Failed)
	assert.InDelta(t, 0.5, s.PassRate, 1e-9)
	require.NotNil(t, s.AvgScore)
	assert.InDelta(t, 0.6, *s.AvgScore, 1e-9, "scoreless cases are excluded from the average")
}

func TestBuildRunSummaryEmpty(t *testing.T) {
	s := BuildRunSummary(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.PassRate)
	assert.Nil(t, s.AvgScore)
}

func TestBuildRunSummaryQuickMode(t *testing.T) {
	s := BuildRunSummary([]models.CaseVerdict{{Passed: true}, {Passed: true}})
	assert.Equal(t, 1.0, s.PassRate)
	assert.Nil(t, s.AvgScore)
}
