package grader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores extracted text under Dir keyed by the SHA-256 of the source bytes.
// A nil Cache or an empty Dir disables caching.
type Cache struct {
	Dir string
}

// Get returns the cached text for key.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil || c.Dir == "" {
		return "", false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put writes text for key. The file is written to a temp name and renamed so a
// concurrent reader never sees a partial entry.
func (c *Cache) Put(key, text string) error {
	if c == nil || c.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	_, werr := tmp.WriteString(text)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".txt")
}
