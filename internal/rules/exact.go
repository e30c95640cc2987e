package rules

import (
	"strings"

	"github.com/evalgate/evalgate/internal/models"
)

// ExactMatchArgs holds the arguments for creating an exact match check.
type ExactMatchArgs struct {
	Name string
	// Normalize collapses runs of whitespace before comparing.
	Normalize bool
}

// exactMatchCheck compares the output to the expected reference string.
type exactMatchCheck struct {
	name      string
	normalize bool
}

// NewExactMatchCheck creates an exact match check against expected.Reference.
func NewExactMatchCheck(args ExactMatchArgs) *exactMatchCheck {
	name := args.Name
	if name == "" {
		name = models.CheckExactMatch
	}
	return &exactMatchCheck{name: name, normalize: args.Normalize}
}

func (e *exactMatchCheck) Name() string           { return e.name }
func (e *exactMatchCheck) Kind() models.CheckKind { return models.CheckKindExact }

func (e *exactMatchCheck) Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult {
	if expected.Reference == "" {
		return models.RuleCheckResult{
			Name:    e.name,
			Score:   1.0,
			Passed:  true,
			Details: "No reference to match",
		}
	}

	got, want := output, expected.Reference
	if e.normalize {
		got = strings.Join(strings.Fields(got), " ")
		want = strings.Join(strings.Fields(want), " ")
	}

	if got == want {
		return models.RuleCheckResult{
			Name:    e.name,
			Score:   1.0,
			Passed:  true,
			Details: "Exact match",
		}
	}

	return models.RuleCheckResult{
		Name:    e.name,
		Score:   0.0,
		Passed:  false,
		Details: "Not an exact match",
	}
}
