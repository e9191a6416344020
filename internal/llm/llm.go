package llm

import (
	"context"
	_ "embed"
	"errors"
)

//go:embed prompts/evaluate_v1.txt
var evaluatePromptV1 string

// EvaluationSystemPrompt returns the system prompt that asks for the three-section
// report: relevance summary, rubric evaluation, suggestions for improvement.
func EvaluationSystemPrompt() string {
	return evaluatePromptV1
}

// Client abstracts LLM providers for course material evaluation.
type Client interface {
	Evaluate(ctx context.Context, input EvaluateInput) (Completion, error)
}

// EvaluateInput is one chat completion request. An empty System uses
// EvaluationSystemPrompt.
type EvaluateInput struct {
	System string
	Prompt string
}

// Completion is the model reply and its token usage, when reported.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM client not configured: set OPENAI_API_KEY")

// PlaceholderClient is used when no provider credentials are configured.
type PlaceholderClient struct{}

// Evaluate returns ErrNotConfigured.
func (PlaceholderClient) Evaluate(ctx context.Context, input EvaluateInput) (Completion, error) {
	_ = ctx
	_ = input
	return Completion{}, ErrNotConfigured
}
