package rules

import (
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/internal/models"
)

// KeywordCheckArgs holds the arguments for creating a keyword inclusion check.
type KeywordCheckArgs struct {
	// Name overrides the default identifier.
	Name string
	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool
}

// keywordCheck scores what fraction of the expected keywords appear in the
// output. A case with no expected keywords scores 1.0.
type keywordCheck struct {
	name          string
	caseSensitive bool
}

// NewKeywordCheck creates the keyword inclusion check. The check passes when
// at least half of the expected keywords are present.
func NewKeywordCheck(args KeywordCheckArgs) *keywordCheck {
	name := args.Name
	if name == "" {
		name = models.CheckKeywordInclusion
	}
	return &keywordCheck{
		name:          name,
		caseSensitive: args.CaseSensitive,
	}
}

func (k *keywordCheck) Name() string           { return k.name }
func (k *keywordCheck) Kind() models.CheckKind { return models.CheckKindKeyword }

func (k *keywordCheck) Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult {
	keywords := expected.Keywords
	if len(keywords) == 0 {
		return models.RuleCheckResult{
			Name:    k.name,
			Score:   1.0,
			Passed:  true,
			Details: "No keywords to check",
		}
	}

	haystack := output
	if !k.caseSensitive {
		haystack = strings.ToLower(output)
	}

	found := 0
	var missing []string
	for _, kw := range keywords {
		needle := kw
		if !k.caseSensitive {
			needle = strings.ToLower(kw)
		}
		if strings.Contains(haystack, needle) {
			found++
		} else {
			missing = append(missing, kw)
		}
	}

	score := float64(found) / float64(len(keywords))

	details := fmt.Sprintf("Found %d/%d keywords", found, len(keywords))
	if len(missing) > 0 {
		details += fmt.Sprintf(" (missing: %s)", strings.Join(missing, ", "))
	}

	return models.RuleCheckResult{
		Name:    k.name,
		Score:   score,
		Passed:  score >= 0.5,
		Details: details,
	}
}
