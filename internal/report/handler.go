package report

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/shared/server/respond"
	"eduqa-backend/internal/shared/telemetry"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the report parser over HTTP.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes attaches report routes to the router group.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/reports/parse", h.parse)
}

type parseRequest struct {
	Report string `json:"report" binding:"required"`
}

func (h *Handler) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "report is required", nil)
		return
	}

	rep := Parse(req.Report)
	telemetry.Info("report.parsed", map[string]any{
		"rubric_rows": len(rep.Rubric),
		"suggestions": len(rep.Suggestions),
		"total_score": rep.TotalScore(),
	})

	if strings.EqualFold(c.Query("format"), "xlsx") {
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rep); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export report", nil)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="report.xlsx"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	respond.OK(c, rep.Summarize())
}
