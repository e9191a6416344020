package grading

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"eduqa-backend/internal/shared/server/middleware"
	"eduqa-backend/internal/shared/server/respond"
)

// Multipart field names of the two uploads.
const (
	FieldLesson   = "file2"
	FieldOverview = "file3"
)

const missingInputMessage = "Please upload both the lesson and course overview files."

// Grader is the subset of Service the handler needs.
type Grader interface {
	Grade(ctx context.Context, lesson, overview *Upload) (string, error)
}

// Handler wires HTTP handlers to the grading service.
type Handler struct {
	Svc Grader
	// DetachContext runs the grader without the request's cancellation, so a
	// client that goes away does not stop a run in progress.
	DetachContext bool
}

// NewHandler constructs a Handler.
func NewHandler(svc Grader) *Handler {
	return &Handler{Svc: svc, DetachContext: true}
}

// RegisterRoutes attaches the upload route.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/upload", respond.PlainErrors(), h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	lessonHeader, lessonErr := c.FormFile(FieldLesson)
	overviewHeader, overviewErr := c.FormFile(FieldOverview)
	if lessonErr != nil || overviewErr != nil {
		if err := firstUnexpected(lessonErr, overviewErr); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal", "Server error: "+err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", missingInputMessage, nil)
		return
	}
	c.Set(middleware.LessonFileKey, lessonHeader.Filename)
	c.Set(middleware.OverviewFileKey, overviewHeader.Filename)

	lesson, err := openUpload(lessonHeader)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Server error: "+err.Error(), nil)
		return
	}
	defer lesson.close()
	overview, err := openUpload(overviewHeader)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Server error: "+err.Error(), nil)
		return
	}
	defer overview.close()

	ctx := c.Request.Context()
	if h.DetachContext {
		ctx = context.WithoutCancel(ctx)
	}

	out, err := h.Svc.Grade(ctx, &lesson.Upload, &overview.Upload)
	if err != nil {
		var procErr *ProcessError
		switch {
		case errors.Is(err, ErrMissingInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", missingInputMessage, nil)
		case errors.As(err, &procErr):
			respond.Error(c, http.StatusInternalServerError, "grader_failed", procErr.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Server error: "+err.Error(), nil)
		}
		return
	}

	respond.Text(c, http.StatusOK, out)
}

type openedUpload struct {
	Upload
	file multipart.File
}

func (u *openedUpload) close() {
	_ = u.file.Close()
}

func openUpload(fh *multipart.FileHeader) (*openedUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &openedUpload{
		Upload: Upload{
			FileName:  fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Body:      f,
		},
		file: f,
	}, nil
}

// firstUnexpected returns the first error that is not a plain missing field.
func firstUnexpected(errs ...error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			return err
		}
	}
	return nil
}
