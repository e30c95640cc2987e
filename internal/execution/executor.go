// Package execution runs prompts against model backends and turns test
// cases into verdicts.
package execution

import (
	"context"
	"fmt"
)

// ExecutionRequest is one prompt execution.
type ExecutionRequest struct {
	// Prompt is the fully rendered prompt text.
	Prompt string
	// Model overrides the executor's default model when set.
	Model string
}

// ExecutionResponse is the model's reply.
type ExecutionResponse struct {
	Output     string
	Model      string
	DurationMs int64
}

// PromptExecutor executes a rendered prompt against a backend.
type PromptExecutor interface {
	Name() string
	Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error)
}

// Executor kinds accepted in suite config.
const (
	ExecutorMock   = "mock"
	ExecutorOpenAI = "openai"
)

// NewExecutor builds an executor by kind. An empty kind gets the mock
// executor so quick local runs need no credentials.
func NewExecutor(kind, model string) (PromptExecutor, error) {
	switch kind {
	case "", ExecutorMock:
		return NewMockExecutor(model), nil
	case ExecutorOpenAI:
		return NewOpenAIExecutor(model)
	default:
		return nil, fmt.Errorf("unknown executor %q", kind)
	}
}
