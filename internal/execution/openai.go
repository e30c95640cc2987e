package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when neither the suite nor the request names one.
const DefaultModel = "gpt-4o-mini"

// OpenAIExecutor runs prompts through the OpenAI chat completions API.
type OpenAIExecutor struct {
	client  *openai.Client
	modelID string
}

// NewOpenAIExecutor builds an executor from OPENAI_API_KEY. OPENAI_BASE_URL
// overrides the endpoint for compatible providers.
func NewOpenAIExecutor(modelID string) (*OpenAIExecutor, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if modelID == "" {
		modelID = DefaultModel
	}

	return &OpenAIExecutor{
		client:  openai.NewClientWithConfig(cfg),
		modelID: modelID,
	}, nil
}

func (e *OpenAIExecutor) Name() string { return ExecutorOpenAI }

func (e *OpenAIExecutor) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = e.modelID
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &ExecutionResponse{
		Output:     resp.Choices[0].Message.Content,
		Model:      model,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
