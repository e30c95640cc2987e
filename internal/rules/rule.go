package rules

import (
	"fmt"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/go-viper/mapstructure/v2"
)

// Check is the interface for all deterministic rule checks.
type Check interface {
	// Name returns the check identifier used in results.
	Name() string

	// Kind returns the check type.
	Kind() models.CheckKind

	// Evaluate runs the check against the given output and expectations.
	Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult
}

// Create builds a check from a config entry. Parameters are decoded with
// mapstructure, matching how check configs appear in config.yaml.
func Create(kind models.CheckKind, name string, params map[string]any) (Check, error) {
	switch kind {
	case models.CheckKindKeyword:
		var v *struct {
			CaseSensitive bool `mapstructure:"case_sensitive"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		return NewKeywordCheck(KeywordCheckArgs{Name: name, CaseSensitive: v != nil && v.CaseSensitive}), nil
	case models.CheckKindForbidden:
		var v *struct {
			CaseSensitive bool `mapstructure:"case_sensitive"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		return NewForbiddenCheck(ForbiddenCheckArgs{Name: name, CaseSensitive: v != nil && v.CaseSensitive}), nil
	case models.CheckKindLength:
		var v *struct {
			Unit string `mapstructure:"unit"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		unit := UnitChars
		if v != nil && v.Unit != "" {
			unit = LengthUnit(v.Unit)
		}
		return NewLengthCheck(LengthCheckArgs{Name: name, Unit: unit})
	case models.CheckKindExact:
		var v *struct {
			Normalize *bool `mapstructure:"normalize"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		normalize := true
		if v != nil && v.Normalize != nil {
			normalize = *v.Normalize
		}
		return NewExactMatchCheck(ExactMatchArgs{Name: name, Normalize: normalize}), nil
	case models.CheckKindFormat:
		var v *struct {
			Format string `mapstructure:"format"`
		}
		if err := mapstructure.Decode(params, &v); err != nil {
			return nil, err
		}
		format := "json"
		if v != nil && v.Format != "" {
			format = v.Format
		}
		return NewFormatCheck(FormatCheckArgs{Name: name, Format: format}), nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid check type", kind)
	}
}

// Run executes the default sanity checks plus any configured extras and
// returns results keyed by check name. The keyword and forbidden-word checks
// always run; together with the configured checks they form the sanity gate
// every case passes through.
func Run(output string, expected *models.ExpectedResult, extra []models.CheckConfig) (map[string]models.RuleCheckResult, error) {
	if expected == nil {
		// A case with no expectations has no constraints; every check
		// treats the empty result as vacuously satisfied.
		expected = &models.ExpectedResult{}
	}

	checks := []Check{
		NewKeywordCheck(KeywordCheckArgs{}),
		NewForbiddenCheck(ForbiddenCheckArgs{}),
	}

	for _, cfg := range extra {
		c, err := Create(cfg.Kind, cfg.Name, cfg.Parameters)
		if err != nil {
			return nil, fmt.Errorf("creating check %q: %w", cfg.Kind, err)
		}
		checks = append(checks, c)
	}

	results := make(map[string]models.RuleCheckResult, len(checks))
	for _, c := range checks {
		results[c.Name()] = c.Evaluate(output, expected)
	}

	return results, nil
}
