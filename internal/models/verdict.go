package models

import (
	"time"
)

// RunMode selects how much evaluation work is done per case.
type RunMode string

const (
	// ModeQuick runs only the deterministic rule checks.
	ModeQuick RunMode = "quick"
	// ModeFull runs rule checks plus the LLM judge criteria.
	ModeFull RunMode = "full"
)

// Rule check identifiers. KeywordInclusion and ForbiddenWordCheck are the
// sanity checks every case gets by default.
const (
	CheckKeywordInclusion = "keyword_inclusion"
	CheckForbiddenWord    = "forbidden_word_check"
	CheckLengthCompliance = "length_compliance"
	CheckExactMatch       = "exact_match"
	CheckFormatValidity   = "format_validity"
)

// Fail reasons attached to a CaseVerdict when Passed is false.
const (
	FailReasonSanity = "sanity_check_failed"
)

// RuleCheckResult is the outcome of one deterministic rule check.
type RuleCheckResult struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Details string  `json:"details"`
}

// JudgeCriterionResult is the outcome of one LLM judge criterion.
// Errored marks criteria where the judge call itself failed; those still
// count as 0.0 toward the overall score but are distinguishable in reports.
type JudgeCriterionResult struct {
	Criterion   string   `json:"criterion"`
	Score       float64  `json:"score"`
	Weight      float64  `json:"weight,omitempty"`
	FailedItems []string `json:"failed_items,omitempty"`
	Rationale   string   `json:"rationale,omitempty"`
	Errored     bool     `json:"errored,omitempty"`
}

// CaseVerdict is the complete evaluation result for a single test case.
type CaseVerdict struct {
	CaseID       string                          `json:"case_id,omitempty"`
	RunID        string                          `json:"run_id,omitempty"`
	Description  string                          `json:"description,omitempty"`
	Inputs       map[string]any                  `json:"inputs,omitempty"`
	Output       string                          `json:"output"`
	RuleResults  map[string]RuleCheckResult      `json:"rule_results"`
	JudgeResults map[string]JudgeCriterionResult `json:"judge_results,omitempty"`
	SanityPassed bool                            `json:"sanity_passed"`
	// OverallScore is nil for quick-mode verdicts (no judge criteria ran).
	OverallScore *float64 `json:"overall_score"`
	Passed       bool     `json:"passed"`
	FailReason   string   `json:"fail_reason,omitempty"`
	DurationMs   int64    `json:"duration_ms"`
}

// RunSummary aggregates pass/fail counts across a run's case verdicts.
type RunSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"pass_rate"`
	// AvgScore is nil when no case produced an overall score (quick mode).
	AvgScore *float64 `json:"avg_score"`
}

// RunRecord is the persisted result of one evaluation run. It is both the
// run output format and the payload stored as a baseline.
type RunRecord struct {
	RunID      string        `json:"run_id"`
	PromptName string        `json:"prompt_name"`
	Version    string        `json:"version"`
	Mode       RunMode       `json:"mode"`
	Model      string        `json:"model,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	Summary    RunSummary    `json:"summary"`
	Cases      []CaseVerdict `json:"cases"`
	DurationMs int64         `json:"duration_ms"`
}

// JudgeScore returns the named criterion score, or 0 if absent.
func (v *CaseVerdict) JudgeScore(criterion string) float64 {
	if r, ok := v.JudgeResults[criterion]; ok {
		return r.Score
	}
	return 0.0
}

// RuleScore returns the named rule check score. Missing checks default to
// 1.0 so that an unconfigured sanity check never fails a case.
func (v *CaseVerdict) RuleScore(name string) float64 {
	if r, ok := v.RuleResults[name]; ok {
		return r.Score
	}
	return 1.0
}
