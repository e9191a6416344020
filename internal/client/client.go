// Package client talks to the grading server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"eduqa-backend/internal/flow"
	"eduqa-backend/internal/report"
	"eduqa-backend/internal/shared/telemetry"
)

// Client calls the grading server rooted at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client. Grading runs are unbounded on the server, so the default
// HTTP client has no timeout; callers bound runs with the context.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

// StatusError is a non-2xx response. Body is the server's message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return "Upload failed"
}

// Submit uploads lesson and overview to POST /upload and returns the raw report.
func (c *Client) Submit(ctx context.Context, lesson, overview flow.File) (string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := writePart(w, "file2", lesson); err != nil {
		return "", err
	}
	if err := writePart(w, "file3", overview); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/upload", w.FormDataContentType(), body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParseReport sends raw report text to the server's parser.
func (c *Client) ParseReport(ctx context.Context, raw string) (report.Summary, error) {
	payload, err := json.Marshal(map[string]string{"report": raw})
	if err != nil {
		return report.Summary{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/reports/parse", "application/json", bytes.NewReader(payload))
	if err != nil {
		return report.Summary{}, err
	}
	var out report.Summary
	if err := json.Unmarshal(resp, &out); err != nil {
		return report.Summary{}, fmt.Errorf("decode report: %w", err)
	}
	return out, nil
}

// DownloadRubric copies the bundled rubric document to w.
func (c *Client) DownloadRubric(ctx context.Context, w io.Writer) error {
	raw, err := c.do(ctx, http.MethodGet, "/assets/rubric.docx", "", nil)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", reqID)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		telemetry.Error("client.http.send_error", map[string]any{
			"req_id":     reqID,
			"path":       path,
			"err":        err.Error(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	telemetry.Debug("client.http.response", map[string]any{
		"req_id":     reqID,
		"path":       path,
		"status":     resp.StatusCode,
		"bytes":      len(raw),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode/100 != 2 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: errorMessage(resp.Header.Get("Content-Type"), raw)}
	}
	return raw, nil
}

// errorMessage unwraps the JSON error envelope; plain-text bodies pass through.
func errorMessage(contentType string, raw []byte) string {
	if strings.HasPrefix(contentType, "application/json") {
		var env struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
			return env.Error.Message
		}
	}
	return string(raw)
}

func writePart(w *multipart.Writer, field string, f flow.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write part %s: %w", field, err)
	}
	return nil
}

var _ flow.Submitter = (*Client)(nil)
