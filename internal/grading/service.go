package grading

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eduqa-backend/internal/shared/metrics"
	"eduqa-backend/internal/shared/storage/transient"
	"eduqa-backend/internal/shared/telemetry"
)

// Upload is one user-supplied document.
type Upload struct {
	FileName  string
	MediaType string
	Body      io.Reader
}

// FileStore persists uploads for the duration of a run.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (transient.File, error)
	Remove(path string) error
}

// Service runs the grader over the bundled rubric and two uploads.
type Service struct {
	Store      FileStore
	Runner     Runner
	RubricPath string
	tracer     trace.Tracer
}

// NewService constructs a Service. rubricPath must be absolute.
func NewService(store FileStore, runner Runner, rubricPath string) *Service {
	return &Service{
		Store:      store,
		Runner:     runner,
		RubricPath: rubricPath,
		tracer:     otel.Tracer("eduqa-backend/internal/grading"),
	}
}

// Grade stores lesson and overview, runs the grader with (rubric, lesson, overview)
// and returns its stdout verbatim. Both stored files are removed before Grade
// returns, whatever the outcome.
func (s *Service) Grade(ctx context.Context, lesson, overview *Upload) (string, error) {
	if lesson == nil || overview == nil || lesson.Body == nil || overview.Body == nil {
		return "", ErrMissingInput
	}

	tracer := s.tracer
	if tracer == nil {
		tracer = otel.Tracer("eduqa-backend/internal/grading")
	}
	ctx, span := tracer.Start(ctx, "grading.grade", trace.WithAttributes(
		attribute.String("grading.lesson", lesson.FileName),
		attribute.String("grading.overview", overview.FileName),
	))
	defer span.End()

	var stored []transient.File
	defer func() { s.cleanup(stored) }()

	for _, up := range []*Upload{lesson, overview} {
		f, err := s.Store.Save(ctx, up.FileName, up.Body)
		if err != nil {
			metrics.IncGradingFailed(metrics.ReasonStore)
			span.RecordError(err)
			span.SetStatus(codes.Error, "store upload")
			return "", fmt.Errorf("store %s: %w", up.FileName, err)
		}
		stored = append(stored, f)
	}

	telemetry.Info("grading.received", map[string]any{
		"rubric":   s.RubricPath,
		"lesson":   stored[0].Path,
		"overview": stored[1].Path,
	})

	metrics.IncGradingStarted()
	task, err := s.Runner.Start(ctx, s.RubricPath, stored[0].Path, stored[1].Path)
	if err != nil {
		metrics.IncGradingFailed(metrics.ReasonStart)
		span.RecordError(err)
		span.SetStatus(codes.Error, "start grader")
		return "", &StartError{Err: err}
	}

	res, err := task.Wait()
	metrics.ObserveGradingDurationSeconds(res.Duration.Seconds())
	span.SetAttributes(attribute.Int("grading.exit_code", res.ExitCode))
	if err != nil {
		metrics.IncGradingFailed(metrics.ReasonStart)
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait grader")
		return "", &StartError{Err: err}
	}
	if res.ExitCode != 0 {
		metrics.IncGradingFailed(metrics.ReasonExit)
		telemetry.Error("grading.failed", map[string]any{
			"exit_code":   res.ExitCode,
			"duration_ms": res.Duration.Milliseconds(),
		})
		span.SetStatus(codes.Error, "nonzero exit")
		return "", &ProcessError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	metrics.IncGradingCompleted()
	telemetry.Info("grading.complete", map[string]any{
		"duration_ms":  res.Duration.Milliseconds(),
		"stdout_bytes": len(res.Stdout),
	})
	return res.Stdout, nil
}

func (s *Service) cleanup(files []transient.File) {
	for _, f := range files {
		if err := s.Store.Remove(f.Path); err != nil {
			metrics.IncCleanupFailures()
			telemetry.Warn("grading.cleanup.failed", map[string]any{
				"path": f.Path,
				"err":  err.Error(),
			})
		}
	}
}
