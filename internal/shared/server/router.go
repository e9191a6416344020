package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/grading"
	"eduqa-backend/internal/report"
	"eduqa-backend/internal/services/health"
	"eduqa-backend/internal/shared/config"
	"eduqa-backend/internal/shared/metrics"
	"eduqa-backend/internal/shared/server/middleware"
	"eduqa-backend/internal/shared/server/respond"
)

// RubricRoute serves the bundled rubric document.
const RubricRoute = "/assets/rubric.docx"

// RouterDeps holds dependencies required to register routes.
type RouterDeps struct {
	Config         config.Config
	GradingHandler *grading.Handler
	ReportHandler  *report.Handler
	Health         *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.BodyLimit(cfg.MaxUploadBytes),
	)

	if deps.GradingHandler != nil {
		deps.GradingHandler.RegisterRoutes(r)
	}
	if cfg.RubricPath != "" {
		r.StaticFile(RubricRoute, cfg.RubricPath)
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status()
		code := http.StatusOK
		if !status["ok"] {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.ReportHandler != nil {
		deps.ReportHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
