package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/grading"
	"eduqa-backend/internal/report"
	"eduqa-backend/internal/services/health"
	"eduqa-backend/internal/shared/config"
	"eduqa-backend/internal/shared/server"
	"eduqa-backend/internal/shared/storage/transient"
	"eduqa-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	Store          *transient.Store
	Runner         grading.Runner
	GradingService *grading.Service
	GradingHandler *grading.Handler
	ReportHandler  *report.Handler
	Health         *health.Service
}

// Option overrides a dependency before the router is built.
type Option func(*App)

// WithRunner replaces the grader process runner. Tests use it to avoid spawning.
func WithRunner(r grading.Runner) Option {
	return func(a *App) { a.Runner = r }
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.UploadsDir) == "" {
		return nil, errors.New("UPLOADS_DIR is required")
	}

	store, err := transient.New(cfg.UploadsDir)
	if err != nil {
		return nil, fmt.Errorf("uploads dir: %w", err)
	}
	checkRubric(cfg)

	app := &App{
		Config: cfg,
		Store:  store,
		Runner: grading.ExecRunner{
			Command: cfg.GraderCommand,
			Args:    cfg.GraderArgs,
			Dir:     cfg.GraderDir,
			Timeout: cfg.GraderTimeout,
		},
		ReportHandler: report.NewHandler(),
		Health:        health.NewService(cfg.RubricPath, store.Dir()),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.GradingService = grading.NewService(app.Store, app.Runner, cfg.RubricPath)
	app.GradingHandler = grading.NewHandler(app.GradingService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		GradingHandler: app.GradingHandler,
		ReportHandler:  app.ReportHandler,
		Health:         app.Health,
	})

	return app, nil
}

// checkRubric warns when the bundled rubric is missing.
func checkRubric(cfg config.Config) {
	if _, err := os.Stat(cfg.RubricPath); err != nil {
		telemetry.Warn("bootstrap.rubric.missing", map[string]any{
			"path": cfg.RubricPath,
			"env":  cfg.Env,
			"err":  err.Error(),
		})
	}
}
