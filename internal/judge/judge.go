// Package judge scores outputs against rubric checklists using an LLM.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/template"

	"github.com/evalgate/evalgate/internal/models"
)

const systemPrompt = "You are a precise evaluator. Score each checklist item as 0 (fail) or 1 (pass). Be strict but fair. Respond with valid JSON only."

// LLM is the completion interface the judge depends on. Implementations are
// injected so tests can run against a fake.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single judge call.
type CompletionRequest struct {
	System string
	Prompt string
	Model  string
	// JSONOnly asks the provider to constrain the response to a JSON object.
	JSONOnly bool
}

// EvalInput carries one case through the checklist evaluation.
type EvalInput struct {
	Output string
	Inputs map[string]any
	// PromptTemplate is the original prompt, shown to rubrics that grade
	// instruction adherence.
	PromptTemplate string
	Criteria       []string
	Domain         string
}

// Judge runs rubric checklists against case outputs.
type Judge struct {
	llm      LLM
	registry *Registry
	model    string
}

// New creates a Judge. A nil registry gets the built-in rubrics.
func New(llm LLM, registry *Registry, model string) *Judge {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Judge{llm: llm, registry: registry, model: model}
}

// DefaultCriteria is used when a suite enables the judge without listing
// criteria.
var DefaultCriteria = []string{
	"instruction_following",
	"factual_accuracy",
	"output_quality",
}

// Evaluate runs every criterion's rubric and returns results keyed by
// criterion name. A failure in one criterion never aborts the others: the
// failed criterion scores 0.0 and carries the error in its rationale.
func (j *Judge) Evaluate(ctx context.Context, in EvalInput) map[string]models.JudgeCriterionResult {
	criteria := in.Criteria
	if len(criteria) == 0 {
		criteria = DefaultCriteria
	}

	results := make(map[string]models.JudgeCriterionResult, len(criteria))
	for _, criterion := range criteria {
		results[criterion] = j.evaluateCriterion(ctx, criterion, in)
	}

	return results
}

func (j *Judge) evaluateCriterion(ctx context.Context, criterion string, in EvalInput) models.JudgeCriterionResult {
	rubric, ok := j.registry.Lookup(criterion, in.Domain)
	if !ok {
		return models.JudgeCriterionResult{
			Criterion: criterion,
			Score:     0.0,
			Errored:   true,
			Rationale: fmt.Sprintf("Error: no rubric found for criterion %q", criterion),
		}
	}

	prompt, err := renderRubric(rubric, in)
	if err != nil {
		return errorResult(criterion, err)
	}

	resp, err := j.llm.Complete(ctx, CompletionRequest{
		System:   systemPrompt,
		Prompt:   prompt,
		Model:    j.model,
		JSONOnly: true,
	})
	if err != nil {
		slog.WarnContext(ctx, "judge call failed", "criterion", criterion, "error", err)
		return errorResult(criterion, err)
	}

	result, err := parseJudgeResponse(criterion, resp)
	if err != nil {
		slog.WarnContext(ctx, "judge response unparseable", "criterion", criterion, "error", err)
		return errorResult(criterion, err)
	}

	return result
}

func errorResult(criterion string, err error) models.JudgeCriterionResult {
	return models.JudgeCriterionResult{
		Criterion: criterion,
		Score:     0.0,
		Errored:   true,
		Rationale: fmt.Sprintf("Error: %v", err),
	}
}

// Rubric slot budgets keep judge calls from ballooning on large cases.
const (
	maxPromptRunes = 2000
	maxInputRunes  = 3000
	maxOutputRunes = 3000
)

// renderRubric fills the rubric template with the prompt, the case inputs
// (serialized as indented JSON), and the output under evaluation. Each slot
// is truncated to its budget.
func renderRubric(rubric string, in EvalInput) (string, error) {
	inputJSON, err := json.MarshalIndent(in.Inputs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing inputs: %w", err)
	}

	promptText := in.PromptTemplate
	if promptText == "" {
		promptText = "(no prompt)"
	}

	t, err := template.New("rubric").Option("missingkey=error").Parse(rubric)
	if err != nil {
		return "", fmt.Errorf("parsing rubric: %w", err)
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, map[string]string{
		"Prompt": truncateRunes(promptText, maxPromptRunes),
		"Input":  truncateRunes(string(inputJSON), maxInputRunes),
		"Output": truncateRunes(in.Output, maxOutputRunes),
	})
	if err != nil {
		return "", fmt.Errorf("rendering rubric: %w", err)
	}

	return buf.String(), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// parseJudgeResponse extracts the criterion score from the judge's JSON
// reply. The score is the mean of the checklist item values when a checklist
// is present, otherwise the top-level "score" field.
func parseJudgeResponse(criterion, resp string) (models.JudgeCriterionResult, error) {
	payload, err := ExtractJSON(resp)
	if err != nil {
		return models.JudgeCriterionResult{}, err
	}

	var body struct {
		Checklist map[string]any `json:"checklist"`
		Score     float64        `json:"score"`
		Issues    []string       `json:"issues"`
		Feedback  string         `json:"feedback"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return models.JudgeCriterionResult{}, fmt.Errorf("parsing judge response: %w", err)
	}

	result := models.JudgeCriterionResult{Criterion: criterion}

	if len(body.Checklist) > 0 {
		sum := 0.0
		var failed []string
		for item, raw := range body.Checklist {
			v := checklistValue(raw)
			sum += v
			if v < 1.0 {
				failed = append(failed, item)
			}
		}
		sort.Strings(failed)
		result.Score = sum / float64(len(body.Checklist))
		result.FailedItems = failed
	} else {
		result.Score = body.Score
	}

	if len(body.Issues) > 0 {
		result.Rationale = strings.Join(body.Issues, "; ")
	} else if body.Feedback != "" {
		result.Rationale = body.Feedback
	}
	if len(result.FailedItems) > 0 {
		failed := "Failed: " + strings.Join(result.FailedItems, ", ")
		if result.Rationale != "" {
			result.Rationale += " (" + failed + ")"
		} else {
			result.Rationale = failed
		}
	}

	return result, nil
}

// checklistValue tolerates the value shapes judges actually emit: numbers,
// booleans, and numeric strings.
func checklistValue(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case bool:
		if v {
			return 1.0
		}
		return 0.0
	case string:
		if strings.TrimSpace(v) == "1" {
			return 1.0
		}
		return 0.0
	default:
		return 0.0
	}
}

// ExtractJSON pulls a JSON payload out of LLM text. It tries a fenced
// ```json block first, then any fenced block, then the raw text.
func ExtractJSON(text string) ([]byte, error) {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return validJSON(strings.TrimSpace(rest[:end]))
		}
	}

	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return validJSON(strings.TrimSpace(rest[:end]))
		}
	}

	return validJSON(strings.TrimSpace(text))
}

func validJSON(s string) ([]byte, error) {
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("text is not valid JSON")
	}
	return []byte(s), nil
}
