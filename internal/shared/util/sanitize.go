package util

import (
	"path/filepath"
	"strings"
)

// SafeExt returns the extension of the last path element of name with its case
// kept, or "" when it contains anything other than ASCII letters and digits.
func SafeExt(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	ext := filepath.Ext(base)
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, ch := range ext[1:] {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			return ""
		}
	}
	return ext
}
