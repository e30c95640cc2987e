// Package scoring turns raw check and judge results into case verdicts and
// run summaries.
package scoring

import (
	"fmt"

	"github.com/evalgate/evalgate/internal/models"
)

// VerdictInput carries everything BuildCaseVerdict needs for one case.
type VerdictInput struct {
	CaseID      string
	RunID       string
	Description string
	Inputs      map[string]any
	Output      string

	RuleResults  map[string]models.RuleCheckResult
	JudgeResults map[string]models.JudgeCriterionResult

	// MinScore is the pass threshold for the overall judge score.
	// Zero means models.DefaultMinScore.
	MinScore   float64
	DurationMs int64
}

// BuildCaseVerdict aggregates rule and judge results into a single verdict.
//
// The sanity gate is the AND over every rule check's pass flag, so a failing
// configured check (exact match, length, format) gates the case the same way
// the keyword and forbidden-word checks do. No rule results means the gate
// passes. The overall score is the weighted mean of the judge criteria
// (weights default to 1.0) and is nil when no criteria ran, in which case
// sanity alone decides the case.
func BuildCaseVerdict(in VerdictInput) models.CaseVerdict {
	minScore := in.MinScore
	if minScore <= 0 {
		minScore = models.DefaultMinScore
	}

	v := models.CaseVerdict{
		CaseID:       in.CaseID,
		RunID:        in.RunID,
		Description:  in.Description,
		Inputs:       in.Inputs,
		Output:       in.Output,
		RuleResults:  in.RuleResults,
		JudgeResults: in.JudgeResults,
		DurationMs:   in.DurationMs,
	}

	v.SanityPassed = true
	for _, r := range in.RuleResults {
		if !r.Passed {
			v.SanityPassed = false
			break
		}
	}

	v.OverallScore = computeOverallScore(in.JudgeResults)

	v.Passed = v.SanityPassed && (v.OverallScore == nil || *v.OverallScore >= minScore)

	if !v.SanityPassed {
		v.FailReason = models.FailReasonSanity
	} else if v.OverallScore != nil && *v.OverallScore < minScore {
		v.FailReason = fmt.Sprintf("score_below_threshold (%.3f < %g)", *v.OverallScore, minScore)
	}

	return v
}

// computeOverallScore returns the weighted mean of the judge criterion
// scores, or nil when there are none. Scores are clamped to [0, 1] and
// non-positive weights fall back to 1.0.
func computeOverallScore(judge map[string]models.JudgeCriterionResult) *float64 {
	if len(judge) == 0 {
		return nil
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, r := range judge {
		w := r.Weight
		if w <= 0 {
			w = 1.0
		}
		weightedSum += Clamp(r.Score) * w
		totalWeight += w
	}

	score := weightedSum / totalWeight
	return &score
}

// BuildRunSummary aggregates case verdicts into run-level counts. An empty
// run yields a zero pass rate and a nil average score rather than NaN.
func BuildRunSummary(cases []models.CaseVerdict) models.RunSummary {
	summary := models.RunSummary{Total: len(cases)}

	scoreSum := 0.0
	scoreCount := 0
	for _, c := range cases {
		if c.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		if c.OverallScore != nil {
			scoreSum += *c.OverallScore
			scoreCount++
		}
	}

	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	if scoreCount > 0 {
		avg := scoreSum / float64(scoreCount)
		summary.AvgScore = &avg
	}

	return summary
}

// Clamp bounds a score to [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
