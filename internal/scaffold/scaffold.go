// Package scaffold provides shared template functions for generating
// eval target directories used by evalgate init.
package scaffold

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evalgate/evalgate/internal/projectconfig"
)

// ValidateName rejects names with path-traversal characters or empty names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("target name must not be empty")
	}
	cleaned := filepath.Clean(name)
	if cleaned == ".." || strings.Contains(cleaned, "/") || strings.Contains(cleaned, "\\") {
		return fmt.Errorf("target name %q contains invalid path characters", name)
	}
	return nil
}

// TitleCase converts a kebab-case name to Title Case.
func TitleCase(s string) string {
	words := strings.Split(s, "-")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ReadProjectDefaults reads executor and model from .evalgate.yaml if one is
// found above dir. Falls back to the built-in defaults.
func ReadProjectDefaults(dir string) (executor, model string) {
	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return projectconfig.DefaultExecutor, projectconfig.DefaultModel
	}
	return cfg.Defaults.Executor, cfg.Defaults.Model
}

// PromptTXT returns a starter prompt template for the given target name.
func PromptTXT(name string) string {
	return fmt.Sprintf(`You are a helpful assistant for %s.

User request:
{{.request}}

Respond clearly and concisely.
`, TitleCase(name))
}

// ConfigYAML returns a default config.yaml for the given target.
func ConfigYAML(name, executor, model string) string {
	return fmt.Sprintf(`name: %s
description: Evaluation suite for %s.
config:
  mode: quick
  executor: %s
  model: %s
  timeout_seconds: 300
  max_workers: 4
  min_score: 0.5
checks:
  - type: keyword_inclusion
  - type: forbidden_word_check
  - type: length_compliance
    config:
      unit: chars
judge:
  enabled: false
  criteria:
    - instruction_following
    - output_quality
`, name, name, executor, model)
}

// CasesYAML returns a starter cases.yaml with two example cases.
func CasesYAML() string {
	return `- id: basic-001
  description: Typical request the prompt should handle well.
  inputs:
    request: "Summarize the benefits of automated testing."

- id: edge-empty-001
  description: Edge case with a minimal request.
  inputs:
    request: "Help"
`
}

// ExpectedYAML returns a starter expected.yaml keyed by case ID.
func ExpectedYAML() string {
	return `basic-001:
  keywords:
    - testing
  forbidden:
    - "I cannot help"

edge-empty-001:
  min_length: 10
`
}
