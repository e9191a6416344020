package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/shared/metrics"
	"eduqa-backend/internal/shared/server/respond"
	"eduqa-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 carrying "Server error: <panic>",
// plain text on routes that asked for it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanics(c.FullPath())
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"route":      c.FullPath(),
				"lesson":     c.GetString(LessonFileKey),
				"overview":   c.GetString(OverviewFileKey),
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", fmt.Sprintf("Server error: %v", rec), nil)
			c.Abort()
		}()
		c.Next()
	}
}
