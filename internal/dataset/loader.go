// Package dataset loads evaluation targets from disk.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/evalgate/evalgate/internal/models"
)

// Well-known files inside a target directory.
const (
	PromptFile   = "prompt.txt"
	CasesFile    = "cases.yaml"
	CasesCSVFile = "cases.csv"
	ExpectedFile = "expected.yaml"
	ConfigFile   = "config.yaml"
)

// Target is one evaluation target: a prompt template plus its dataset and
// suite configuration.
type Target struct {
	Name           string
	Dir            string
	PromptTemplate string
	Suite          *models.EvalSuite
	Cases          []models.TestCase
	Expected       map[string]models.ExpectedResult
}

// LoadTarget reads a target directory. prompt.txt and a case file
// (cases.yaml, or cases.csv as a fallback) are required; expected.yaml and
// config.yaml are optional.
func LoadTarget(dir string) (*Target, error) {
	promptData, err := os.ReadFile(filepath.Join(dir, PromptFile))
	if err != nil {
		return nil, fmt.Errorf("dataset: reading prompt template: %w", err)
	}

	target := &Target{
		Name:           filepath.Base(dir),
		Dir:            dir,
		PromptTemplate: string(promptData),
		Expected:       map[string]models.ExpectedResult{},
	}

	casesPath := filepath.Join(dir, CasesFile)
	switch _, err := os.Stat(casesPath); {
	case err == nil:
		target.Cases, err = models.LoadTestCases(casesPath)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
	case os.IsNotExist(err):
		rows, csvErr := LoadCSV(filepath.Join(dir, CasesCSVFile))
		if csvErr != nil {
			return nil, fmt.Errorf("dataset: no %s and no usable %s in %s: %w", CasesFile, CasesCSVFile, dir, csvErr)
		}
		target.Cases = CasesFromRows(rows)
	default:
		return nil, fmt.Errorf("dataset: reading cases: %w", err)
	}
	if len(target.Cases) == 0 {
		return nil, fmt.Errorf("dataset: target %s has no test cases", target.Name)
	}

	expectedPath := filepath.Join(dir, ExpectedFile)
	if _, err := os.Stat(expectedPath); err == nil {
		target.Expected, err = models.LoadExpected(expectedPath)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
	}

	configPath := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		target.Suite, err = models.LoadEvalSuite(configPath)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
	} else {
		target.Suite = &models.EvalSuite{Name: target.Name}
	}

	return target, nil
}

// ListTargets finds target directories under root: every directory that
// carries a prompt.txt, sorted by name.
func ListTargets(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", root, err)
	}

	var targets []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), PromptFile)); err == nil {
			targets = append(targets, filepath.Join(root, entry.Name()))
		}
	}

	sort.Strings(targets)
	return targets, nil
}
