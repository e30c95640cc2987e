// Package regression compares evaluation runs against stored baselines.
package regression

import (
	"encoding/json"

	"github.com/evalgate/evalgate/internal/models"
)

// DefaultThreshold is the pass rate drop that counts as a regression.
const DefaultThreshold = 0.05

// ChangeNewFailure marks a case that passed in the baseline and fails now.
const ChangeNewFailure = "new_failure"

// CaseChange records a per-case verdict flip between two runs.
type CaseChange struct {
	CaseKey        string `json:"case_key"`
	Type           string `json:"type"`
	BaselinePassed bool   `json:"baseline_passed"`
	CurrentPassed  bool   `json:"current_passed"`
}

// RegressionReport summarizes a baseline-to-current comparison.
type RegressionReport struct {
	PromptName      string `json:"prompt_name"`
	BaselineVersion string `json:"baseline_version"`
	CurrentVersion  string `json:"current_version"`

	BaselinePassRate float64 `json:"baseline_pass_rate"`
	CurrentPassRate  float64 `json:"current_pass_rate"`
	PassRateDelta    float64 `json:"pass_rate_delta"`

	BaselineAvgScore *float64 `json:"baseline_avg_score"`
	CurrentAvgScore  *float64 `json:"current_avg_score"`
	AvgScoreDelta    *float64 `json:"avg_score_delta"`

	HasRegression bool    `json:"has_regression"`
	Threshold     float64 `json:"regression_threshold"`

	CaseRegressions []CaseChange `json:"case_regressions"`
	NewFailures     []string     `json:"new_failures"`
	FixedCases      []string     `json:"fixed_cases"`
}

// Compare diffs a current run against a baseline. A regression is a pass
// rate drop strictly larger than the threshold; a drop of exactly the
// threshold is not one. A zero threshold means any drop regresses; a
// negative threshold selects the default. Cases present on only one side
// are ignored.
func Compare(baseline *Baseline, current *models.RunRecord, threshold float64) *RegressionReport {
	if threshold < 0 {
		threshold = DefaultThreshold
	}

	report := &RegressionReport{
		PromptName:      baseline.PromptName,
		BaselineVersion: baseline.Version,
		CurrentVersion:  current.Version,
		Threshold:       threshold,
	}
	if report.CurrentVersion == "" {
		report.CurrentVersion = "current"
	}

	report.BaselinePassRate = baseline.Results.Summary.PassRate
	report.CurrentPassRate = current.Summary.PassRate
	report.PassRateDelta = report.CurrentPassRate - report.BaselinePassRate

	report.BaselineAvgScore = baseline.Results.Summary.AvgScore
	report.CurrentAvgScore = current.Summary.AvgScore
	if report.BaselineAvgScore != nil && report.CurrentAvgScore != nil {
		delta := *report.CurrentAvgScore - *report.BaselineAvgScore
		report.AvgScoreDelta = &delta
	}

	report.HasRegression = report.PassRateDelta < -threshold

	currentByKey := make(map[string]*models.CaseVerdict, len(current.Cases))
	for i := range current.Cases {
		currentByKey[caseKey(&current.Cases[i])] = &current.Cases[i]
	}

	for i := range baseline.Results.Cases {
		baselineCase := &baseline.Results.Cases[i]
		key := caseKey(baselineCase)
		currentCase, ok := currentByKey[key]
		if !ok {
			continue
		}

		switch {
		case baselineCase.Passed && !currentCase.Passed:
			report.NewFailures = append(report.NewFailures, key)
			report.CaseRegressions = append(report.CaseRegressions, CaseChange{
				CaseKey:        key,
				Type:           ChangeNewFailure,
				BaselinePassed: true,
				CurrentPassed:  false,
			})
		case !baselineCase.Passed && currentCase.Passed:
			report.FixedCases = append(report.FixedCases, key)
		}
	}

	return report
}

// caseKey identifies a case across runs: the case id when set, then the run
// id, then a canonical JSON form of the inputs.
func caseKey(c *models.CaseVerdict) string {
	if c.CaseID != "" {
		return c.CaseID
	}
	if c.RunID != "" {
		return c.RunID
	}
	key, err := json.Marshal(c.Inputs)
	if err != nil {
		return c.Description
	}
	return string(key)
}
