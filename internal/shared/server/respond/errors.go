package respond

import (
	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/shared/telemetry"
)

const plainErrorsKey = "plainErrors"

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// PlainErrors makes Error write the bare message as text/plain for the routes it wraps.
func PlainErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(plainErrorsKey, true)
		c.Next()
	}
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	if c.GetBool(plainErrorsKey) {
		Text(c, status, message)
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
