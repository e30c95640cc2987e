// Package template renders prompt templates against test case inputs.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Render resolves template expressions against case inputs.
// Uses Go's text/template syntax: {{.topic}}, {{.question}}.
// Structured inputs (maps, lists) are substituted as indented JSON so a
// prompt can embed them directly. Referencing a missing input is an error.
// Returns the input unchanged if it contains no template delimiters.
func Render(tmpl string, inputs map[string]any) (string, error) {
	// Fast path: no template delimiters means no work to do.
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	vars := make(map[string]string, len(inputs))
	for key, value := range inputs {
		s, err := stringify(value)
		if err != nil {
			return "", fmt.Errorf("template: input %q: %w", key, err)
		}
		vars[key] = s
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("template: render: %w", err)
	}

	return buf.String(), nil
}

func stringify(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case map[string]any, []any:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}
