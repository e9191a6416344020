package transient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"eduqa-backend/internal/shared/util"
)

const sniffLen = 3072

// File is an upload persisted for the duration of one grading run.
type File struct {
	Path         string
	Name         string
	OriginalName string
	MimeType     string
	SizeBytes    int64
}

// Store writes uploads to a shared directory under generated unique names.
// Concurrent requests share the directory; the name scheme is the only isolation.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a store rooted at dir. dir is made absolute so stored paths can be
// handed to another process.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{dir: abs, now: time.Now}, nil
}

// Dir returns the absolute storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r to disk as <unix-millis>-<random><ext>, keeping the original extension.
func (s *Store) Save(ctx context.Context, originalName string, r io.Reader) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	name := s.uniqueName(originalName)
	fullPath := filepath.Join(s.dir, name)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return File{}, fmt.Errorf("open file: %w", err)
	}

	size, mimeType, err := writeSniffed(f, r)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return File{}, err
	}

	return File{
		Path:         fullPath,
		Name:         name,
		OriginalName: originalName,
		MimeType:     mimeType,
		SizeBytes:    size,
	}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(path string) error {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != s.dir {
		return fmt.Errorf("path %s is outside %s", path, s.dir)
	}
	if err := os.Remove(clean); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) uniqueName(originalName string) string {
	ext := util.SafeExt(originalName)
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + token + ext
}

func writeSniffed(w io.Writer, r io.Reader) (int64, string, error) {
	sniff := make([]byte, sniffLen)
	n, readErr := io.ReadFull(r, sniff)
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		return 0, "", fmt.Errorf("read sniff: %w", readErr)
	}
	sniff = sniff[:n]
	mimeType := mimetype.Detect(sniff).String()

	size := int64(0)
	if n > 0 {
		if _, err := w.Write(sniff); err != nil {
			return 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(w, r)
	if err != nil {
		return 0, "", fmt.Errorf("write body: %w", err)
	}
	return size + written, mimeType, nil
}
