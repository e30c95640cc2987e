// Package wizard implements the interactive target-creation flow behind
// evalgate init --interactive.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/evalgate/evalgate/internal/scaffold"
)

// TargetSpec holds all fields collected during the interactive wizard.
type TargetSpec struct {
	Name        string
	Description string
	Executor    string
	Model       string
	Mode        string
	Criteria    []string
}

const configTemplate = `name: {{ .Name }}
description: >-
  {{ .Description }}
config:
  mode: {{ .Mode }}
  executor: {{ .Executor }}
  model: {{ .Model }}
  timeout_seconds: 300
  max_workers: 4
  min_score: 0.5
checks:
  - type: keyword_inclusion
  - type: forbidden_word_check
  - type: length_compliance
judge:
  enabled: {{ if eq .Mode "full" }}true{{ else }}false{{ end }}
{{- if .Criteria }}
  criteria:
{{- range .Criteria }}
    - {{ . }}
{{- end }}
{{- end }}
`

// RunTargetWizard runs an interactive huh form to collect target metadata.
// If initialName is non-empty, it pre-populates the name field.
func RunTargetWizard(in io.Reader, out io.Writer, initialName string) (*TargetSpec, error) {
	var (
		name        = initialName
		description string
		executor    string
		model       string
		mode        string
		criteriaRaw string
	)

	defaultExecutor, defaultModel := scaffold.ReadProjectDefaults(".")
	executor = defaultExecutor
	model = defaultModel

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Target name").
				Description("A kebab-case name for your prompt target").
				Placeholder("my-prompt").
				Value(&name).
				Validate(func(s string) error {
					return scaffold.ValidateName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Description").
				Description("What is this prompt for?").
				Placeholder("Describe your prompt").
				Value(&description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Executor").
				Options(
					huh.NewOption("mock", "mock"),
					huh.NewOption("openai", "openai"),
				).
				Value(&executor),
			huh.NewInput().
				Title("Model").
				Description("Model identifier for execution").
				Value(&model),
			huh.NewSelect[string]().
				Title("Run mode").
				Description("quick runs rule checks only, full adds the LLM judge").
				Options(
					huh.NewOption("quick", "quick"),
					huh.NewOption("full", "full"),
				).
				Value(&mode),
			huh.NewInput().
				Title("Judge criteria").
				Description("Comma-separated criteria for full mode (blank for defaults)").
				Placeholder("instruction_following, output_quality").
				Value(&criteriaRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &TargetSpec{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Executor:    executor,
		Model:       strings.TrimSpace(model),
		Mode:        mode,
		Criteria:    splitAndTrim(criteriaRaw),
	}, nil
}

// GenerateConfigYAML renders a config.yaml from the given spec.
func GenerateConfigYAML(spec *TargetSpec) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
