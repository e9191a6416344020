package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"eduqa-backend/internal/grader"
	"eduqa-backend/internal/llm"
	"eduqa-backend/internal/llm/openai"
	"eduqa-backend/internal/shared/config"
	"eduqa-backend/internal/shared/telemetry"
)

func main() {
	// stdout carries the report only.
	telemetry.SetOutput(os.Stderr)
	cfg := config.Load()

	client := llm.Client(llm.PlaceholderClient{})
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		c, err := openai.NewClient(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			Model:               cfg.LLMModel,
			MaxTokens:           cfg.LLMMaxTokens,
			Temperature:         cfg.LLMTemperature,
			BaseURL:             os.Getenv("OPENAI_BASE_URL"),
			NoTemperatureModels: strings.Split(os.Getenv("LLM_NO_TEMP_MODELS"), ","),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "LLM setup failed: %v\n", err)
			os.Exit(1)
		}
		client = c
	}

	g := &grader.Grader{
		LLM:         client,
		Cache:       &grader.Cache{Dir: cfg.CacheDir},
		TokenBudget: cfg.TokenBudget,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := g.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
