package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eduqa-backend/internal/llm"
	"eduqa-backend/internal/shared/telemetry"
)

// Config defines configuration options for the OpenAI client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// BaseURL overrides the API endpoint, e.g. for a proxy or a test server.
	BaseURL string
	// NoTemperatureModels lists models that only accept the default temperature.
	// gpt-5 and o-series models are always treated this way.
	NoTemperatureModels []string
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	client *goopenai.Client
	cfg    Config
	tracer trace.Tracer
}

// NewClient constructs a new OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 5000
	}

	config := goopenai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		client: goopenai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("eduqa-backend/internal/llm/openai"),
	}, nil
}

// Evaluate sends the system and user prompts and returns the reply text.
func (c *Client) Evaluate(parent context.Context, input llm.EvaluateInput) (llm.Completion, error) {
	ctx, span := c.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	system := input.System
	if strings.TrimSpace(system) == "" {
		system = llm.EvaluationSystemPrompt()
	}

	withTemperature := !c.noTemperature()
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, c.request(system, input.Prompt, withTemperature))
	if err != nil && withTemperature && isTemperatureUnsupported(err) {
		telemetry.Warn("llm.temperature.unsupported", map[string]any{"model": c.cfg.Model})
		resp, err = c.client.CreateChatCompletion(ctx, c.request(system, input.Prompt, false))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.Completion{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := errors.New("openai response missing choices")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.Completion{}, err
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		err := errors.New("openai response empty content")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return llm.Completion{}, err
	}

	telemetry.Info("llm.response", map[string]any{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return llm.Completion{
		Content:          content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *Client) request(system, prompt string, withTemperature bool) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if isReasoningModel(c.cfg.Model) {
		req.MaxCompletionTokens = c.cfg.MaxTokens
	} else {
		req.MaxTokens = c.cfg.MaxTokens
	}
	if withTemperature {
		req.Temperature = c.cfg.Temperature
	}
	return req
}

func (c *Client) noTemperature() bool {
	if isReasoningModel(c.cfg.Model) {
		return true
	}
	model := normalizeModel(c.cfg.Model)
	for _, m := range c.cfg.NoTemperatureModels {
		if normalizeModel(m) == model {
			return true
		}
	}
	return false
}

func isTemperatureUnsupported(err error) bool {
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Param != nil && *apiErr.Param == "temperature" {
		return true
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func isGPT5(model string) bool {
	return strings.HasPrefix(normalizeModel(model), "gpt-5")
}

func isReasoningModel(model string) bool {
	m := normalizeModel(model)
	return isGPT5(m) || strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4")
}

func normalizeModel(model string) string {
	return strings.ToLower(strings.TrimSpace(model))
}

var _ llm.Client = (*Client)(nil)
