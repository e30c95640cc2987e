package execution

import (
	"context"
	"fmt"
	"time"
)

// MockExecutor is a deterministic executor for local runs and tests.
type MockExecutor struct {
	modelID string

	// Respond, when set, computes the output for a prompt. The default
	// echoes the prompt back.
	Respond func(prompt string) string
}

// NewMockExecutor creates a new mock executor
func NewMockExecutor(modelID string) *MockExecutor {
	if modelID == "" {
		modelID = "mock"
	}
	return &MockExecutor{modelID: modelID}
}

func (m *MockExecutor) Name() string { return ExecutorMock }

func (m *MockExecutor) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output := fmt.Sprintf("Mock response for: %s", req.Prompt)
	if m.Respond != nil {
		output = m.Respond(req.Prompt)
	}

	return &ExecutionResponse{
		Output:     output,
		Model:      m.modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
