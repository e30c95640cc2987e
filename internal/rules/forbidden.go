package rules

import (
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/internal/models"
)

// ForbiddenCheckArgs holds the arguments for creating a forbidden word check.
type ForbiddenCheckArgs struct {
	Name          string
	CaseSensitive bool
}

// forbiddenCheck is binary: the score is 1.0 when none of the forbidden
// words appear in the output and 0.0 when any does. There is no partial
// credit; a single violation fails the check.
type forbiddenCheck struct {
	name          string
	caseSensitive bool
}

// NewForbiddenCheck creates the forbidden word check.
func NewForbiddenCheck(args ForbiddenCheckArgs) *forbiddenCheck {
	name := args.Name
	if name == "" {
		name = models.CheckForbiddenWord
	}
	return &forbiddenCheck{
		name:          name,
		caseSensitive: args.CaseSensitive,
	}
}

func (f *forbiddenCheck) Name() string           { return f.name }
func (f *forbiddenCheck) Kind() models.CheckKind { return models.CheckKindForbidden }

func (f *forbiddenCheck) Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult {
	words := expected.Forbidden
	if len(words) == 0 {
		return models.RuleCheckResult{
			Name:    f.name,
			Score:   1.0,
			Passed:  true,
			Details: "No forbidden words to check",
		}
	}

	haystack := output
	if !f.caseSensitive {
		haystack = strings.ToLower(output)
	}

	var violations []string
	for _, w := range words {
		needle := w
		if !f.caseSensitive {
			needle = strings.ToLower(w)
		}
		if strings.Contains(haystack, needle) {
			violations = append(violations, w)
		}
	}

	if len(violations) > 0 {
		return models.RuleCheckResult{
			Name:    f.name,
			Score:   0.0,
			Passed:  false,
			Details: fmt.Sprintf("Found %d forbidden words: %s", len(violations), strings.Join(violations, ", ")),
		}
	}

	return models.RuleCheckResult{
		Name:    f.name,
		Score:   1.0,
		Passed:  true,
		Details: "No violations",
	}
}
