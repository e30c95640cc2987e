package rules

import (
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/internal/models"
)

// LengthUnit selects how output length is measured.
type LengthUnit string

const (
	UnitChars LengthUnit = "chars"
	UnitWords LengthUnit = "words"
)

// LengthCheckArgs holds the arguments for creating a length compliance check.
type LengthCheckArgs struct {
	Name string
	Unit LengthUnit
}

// lengthCheck verifies the output length sits inside the expected bounds.
// Bounds of zero are treated as unset.
type lengthCheck struct {
	name string
	unit LengthUnit
}

// NewLengthCheck creates a length compliance check measuring in the given unit.
func NewLengthCheck(args LengthCheckArgs) (*lengthCheck, error) {
	unit := args.Unit
	if unit == "" {
		unit = UnitChars
	}
	if unit != UnitChars && unit != UnitWords {
		return nil, fmt.Errorf("length unit must be %q or %q, got %q", UnitChars, UnitWords, unit)
	}

	name := args.Name
	if name == "" {
		name = models.CheckLengthCompliance
	}

	return &lengthCheck{name: name, unit: unit}, nil
}

func (l *lengthCheck) Name() string           { return l.name }
func (l *lengthCheck) Kind() models.CheckKind { return models.CheckKindLength }

func (l *lengthCheck) Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult {
	var actual int
	if l.unit == UnitWords {
		actual = len(strings.Fields(output))
	} else {
		actual = len([]rune(output))
	}

	var issues []string
	if expected.MinLength > 0 && actual < expected.MinLength {
		issues = append(issues, fmt.Sprintf("too short (min: %d)", expected.MinLength))
	}
	if expected.MaxLength > 0 && actual > expected.MaxLength {
		issues = append(issues, fmt.Sprintf("too long (max: %d)", expected.MaxLength))
	}

	details := fmt.Sprintf("Length: %d %s", actual, l.unit)
	if len(issues) > 0 {
		details += " - " + strings.Join(issues, ", ")
		return models.RuleCheckResult{
			Name:    l.name,
			Score:   0.0,
			Passed:  false,
			Details: details,
		}
	}

	return models.RuleCheckResult{
		Name:    l.name,
		Score:   1.0,
		Passed:  true,
		Details: details,
	}
}
