// Package grader is the external grading process: it extracts the rubric, lesson
// and course overview, combines them into one prompt and asks the LLM for the
// three-section report, which it prints to stdout.
//
// Exit status is 0 only when a report was printed. Diagnostics and progress go to
// stderr.
package grader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"eduqa-backend/internal/extract"
	"eduqa-backend/internal/llm"
	"eduqa-backend/internal/shared/telemetry"
	"eduqa-backend/internal/shared/util"
)

// Block titles, in argument order.
var Titles = [3]string{"Rubric", "Lesson", "Course Overview"}

// DefaultTokenBudget caps the combined prompt size.
const DefaultTokenBudget = 5000

const usage = "Usage: grader <rubric.docx> <lesson.pptx> <overview.pdf>"

// Grader turns three document paths into a report.
type Grader struct {
	LLM         llm.Client
	Cache       *Cache
	TokenBudget int
}

// Run executes one grading pass over args and returns the process exit code.
func (g *Grader) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != len(Titles) {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	start := time.Now()
	texts, err := g.extractAll(ctx, args)
	if err != nil {
		fmt.Fprintf(stderr, "Extraction failed: %v\n", err)
		return 1
	}

	combined := Combine(texts)
	tokens := EstimateTokens(combined)
	telemetry.Info("grader.combined", map[string]any{
		"tokens":      tokens,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	budget := g.TokenBudget
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	if tokens > budget {
		fmt.Fprintf(stderr, "Too many tokens (%d > %d). Skipping LLM call.\n", tokens, budget)
		return 1
	}

	client := g.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	callStart := time.Now()
	out, err := client.Evaluate(ctx, llm.EvaluateInput{Prompt: combined})
	if err != nil {
		fmt.Fprintf(stderr, "LLM call failed: %v\n", err)
		return 1
	}
	telemetry.Info("grader.evaluated", map[string]any{
		"model":       out.Model,
		"duration_ms": time.Since(callStart).Milliseconds(),
	})

	fmt.Fprintln(stdout, out.Content)
	return 0
}

// extractAll extracts every path concurrently; results keep argument order.
func (g *Grader) extractAll(ctx context.Context, paths []string) ([]string, error) {
	texts := make([]string, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			start := time.Now()
			text, err := g.extractCached(egCtx, path)
			if err != nil {
				return fmt.Errorf("%s (%s): %w", Titles[i], filepath.Base(path), err)
			}
			texts[i] = text
			telemetry.Info("grader.extracted", map[string]any{
				"title":       Titles[i],
				"chars":       len(text),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

func (g *Grader) extractCached(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	key := util.HashBytes(data)
	if text, ok := g.Cache.Get(key); ok {
		return text, nil
	}

	text, err := extract.Extract(ctx, data, "", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if err := g.Cache.Put(key, text); err != nil {
		telemetry.Warn("grader.cache.write_failed", map[string]any{"err": err.Error()})
	}
	return text, nil
}

// Combine joins the extracted texts as titled blocks separated by blank lines.
func Combine(texts []string) string {
	blocks := make([]string, 0, len(texts))
	for i, text := range texts {
		title := fmt.Sprintf("Document %d", i+1)
		if i < len(Titles) {
			title = Titles[i]
		}
		blocks = append(blocks, fmt.Sprintf("### %s ###\n%s", title, text))
	}
	return strings.Join(blocks, "\n\n")
}

// EstimateTokens approximates the token count at four bytes per token.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}
