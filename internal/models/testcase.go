package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TestCase is one evaluation input: a set of template variables plus an
// optional description. Cases come from cases.yaml or CSV rows.
type TestCase struct {
	CaseID      string         `yaml:"id" json:"case_id"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs      map[string]any `yaml:"inputs" json:"inputs"`
}

// ExpectedResult holds the per-case expectations the rule checks run against.
type ExpectedResult struct {
	Keywords  []string       `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Forbidden []string       `yaml:"forbidden,omitempty" json:"forbidden,omitempty"`
	Reference string         `yaml:"reference,omitempty" json:"reference,omitempty"`
	MinLength int            `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength int            `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Format    string         `yaml:"format,omitempty" json:"format,omitempty"`
	Schema    map[string]any `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// LoadTestCases loads a cases.yaml file: a list of TestCase entries.
func LoadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cases []TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, tc := range cases {
		if tc.CaseID == "" {
			return nil, fmt.Errorf("%s: case %d is missing an id", path, i+1)
		}
	}

	return cases, nil
}

// LoadExpected loads an expected.yaml file: a map of case ID to expectations.
func LoadExpected(path string) (map[string]ExpectedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var expected map[string]ExpectedResult
	if err := yaml.Unmarshal(data, &expected); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return expected, nil
}
