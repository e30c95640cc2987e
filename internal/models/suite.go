package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMinScore is the pass threshold applied to the overall judge score
// in full mode when the suite config does not set one.
const DefaultMinScore = 0.5

// CheckKind identifies the type of a rule check (e.g. keyword, length).
type CheckKind string

const (
	CheckKindKeyword   CheckKind = "keyword_inclusion"
	CheckKindForbidden CheckKind = "forbidden_word_check"
	CheckKindLength    CheckKind = "length_compliance"
	CheckKindExact     CheckKind = "exact_match"
	CheckKindFormat    CheckKind = "format_validity"
)

// EvalSuite is the per-target evaluation configuration, loaded from
// config.yaml inside a target directory.
type EvalSuite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Config SuiteConfig `yaml:"config"`

	// Checks lists the rule checks to run beyond the default sanity pair.
	Checks []CheckConfig `yaml:"checks,omitempty"`

	// Judge configures the LLM judge (full mode).
	Judge JudgeConfig `yaml:"judge,omitempty"`

	// Chain, when set, switches the target to two-phase execution.
	Chain *ChainConfig `yaml:"chain,omitempty"`
}

// SuiteConfig controls execution behavior.
type SuiteConfig struct {
	Mode       RunMode `yaml:"mode,omitempty"`
	Executor   string  `yaml:"executor,omitempty"`
	Model      string  `yaml:"model,omitempty"`
	JudgeModel string  `yaml:"judge_model,omitempty"`
	TimeoutSec int     `yaml:"timeout_seconds,omitempty"`
	Workers    int     `yaml:"max_workers,omitempty"`
	MinScore   float64 `yaml:"min_score,omitempty"`
}

// CheckConfig defines one rule check.
type CheckConfig struct {
	Kind       CheckKind      `yaml:"type"`
	Name       string         `yaml:"name,omitempty"`
	Parameters map[string]any `yaml:"config,omitempty"`
}

// JudgeConfig defines the LLM judge criteria for a suite.
type JudgeConfig struct {
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Criteria []string `yaml:"criteria,omitempty"`
	Domain   string   `yaml:"domain,omitempty"`
}

// ChainConfig names the two targets a chained pipeline runs in sequence.
// Phase 1's output is parsed as JSON and the named field is fed into phase 2.
type ChainConfig struct {
	Phase1      string `yaml:"phase1"`
	Phase2      string `yaml:"phase2"`
	BridgeField string `yaml:"bridge_field"`
}

// IsJudgeEnabled reports whether the judge should run. Defaults to true when
// criteria are configured.
func (j JudgeConfig) IsJudgeEnabled() bool {
	if j.Enabled != nil {
		return *j.Enabled
	}
	return len(j.Criteria) > 0
}

// EffectiveMinScore returns the configured pass threshold or the default.
func (s *EvalSuite) EffectiveMinScore() float64 {
	if s.Config.MinScore > 0 {
		return s.Config.MinScore
	}
	return DefaultMinScore
}

// EffectiveMode returns the configured run mode, defaulting to quick.
func (s *EvalSuite) EffectiveMode() RunMode {
	if s.Config.Mode == "" {
		return ModeQuick
	}
	return s.Config.Mode
}

// LoadEvalSuite loads and validates a suite config from a YAML file.
func LoadEvalSuite(path string) (*EvalSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite EvalSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := suite.Validate(); err != nil {
		return nil, err
	}

	return &suite, nil
}

// Validate checks that the suite config is usable.
func (s *EvalSuite) Validate() error {
	switch s.Config.Mode {
	case "", ModeQuick, ModeFull:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeQuick, ModeFull, s.Config.Mode)
	}
	if s.Config.MinScore < 0 || s.Config.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %g", s.Config.MinScore)
	}
	if s.Chain != nil {
		if s.Chain.Phase1 == "" || s.Chain.Phase2 == "" {
			return fmt.Errorf("chain requires both phase1 and phase2 targets")
		}
	}
	return nil
}
