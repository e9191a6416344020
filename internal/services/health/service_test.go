package health

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	rubric := filepath.Join(dir, "rubric.docx")

	svc := NewService(rubric, dir)
	if got := svc.Status(); got["ok"] || got["rubric"] || !got["uploads"] {
		t.Fatalf("expected missing rubric, got %v", got)
	}

	if err := os.WriteFile(rubric, []byte("docx"), 0o644); err != nil {
		t.Fatalf("write rubric: %v", err)
	}
	if got := svc.Status(); !got["ok"] {
		t.Fatalf("expected ok, got %v", got)
	}
}
