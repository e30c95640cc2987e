package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/evalgate/evalgate/internal/models"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// FormatCheckArgs holds the arguments for creating a format validity check.
type FormatCheckArgs struct {
	Name string
	// Format is the expected output format. Only "json" is supported.
	Format string
}

// formatCheck verifies the output parses as the expected format and, when the
// case carries a schema, validates the parsed value against it. A fenced
// ```json block is extracted first so prose around the payload doesn't fail
// the parse.
type formatCheck struct {
	name   string
	format string
}

var jsonFenceRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// NewFormatCheck creates a format validity check.
func NewFormatCheck(args FormatCheckArgs) *formatCheck {
	name := args.Name
	if name == "" {
		name = models.CheckFormatValidity
	}
	format := args.Format
	if format == "" {
		format = "json"
	}
	return &formatCheck{name: name, format: format}
}

func (f *formatCheck) Name() string           { return f.name }
func (f *formatCheck) Kind() models.CheckKind { return models.CheckKindFormat }

func (f *formatCheck) Evaluate(output string, expected *models.ExpectedResult) models.RuleCheckResult {
	if f.format != "json" {
		return models.RuleCheckResult{
			Name:    f.name,
			Score:   0.0,
			Passed:  false,
			Details: fmt.Sprintf("Unsupported format: %s", f.format),
		}
	}

	payload := strings.TrimSpace(output)
	if m := jsonFenceRe.FindStringSubmatch(output); m != nil {
		payload = m[1]
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return models.RuleCheckResult{
			Name:    f.name,
			Score:   0.0,
			Passed:  false,
			Details: fmt.Sprintf("Invalid JSON: %v", err),
		}
	}

	if len(expected.Schema) > 0 {
		if failure := validateAgainstSchema(parsed, expected.Schema); failure != "" {
			// Valid JSON but wrong shape gets partial credit.
			return models.RuleCheckResult{
				Name:    f.name,
				Score:   0.5,
				Passed:  false,
				Details: failure,
			}
		}
	}

	return models.RuleCheckResult{
		Name:    f.name,
		Score:   1.0,
		Passed:  true,
		Details: "Valid JSON format",
	}
}

// validateAgainstSchema validates value against a JSON schema expressed as a
// map. Returns a failure description, or "" when the value conforms.
func validateAgainstSchema(value any, schemaMap map[string]any) string {
	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Sprintf("Schema serialization failed: %v", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return fmt.Sprintf("Schema parse failed: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaValue); err != nil {
		return fmt.Sprintf("Schema resource failed: %v", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Sprintf("Schema compile failed: %v", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Sprintf("Schema validation failed: %v", err)
	}

	return ""
}
