package health

import (
	"os"
)

// Service reports whether the server can accept grading requests.
type Service struct {
	RubricPath string
	UploadsDir string
}

// NewService constructs a new health service.
func NewService(rubricPath, uploadsDir string) *Service {
	return &Service{RubricPath: rubricPath, UploadsDir: uploadsDir}
}

// Status reports the bundled rubric and the uploads directory. ok is false when
// either is missing.
func (s *Service) Status() map[string]bool {
	rubric := isFile(s.RubricPath)
	uploads := isDir(s.UploadsDir)
	return map[string]bool{
		"ok":      rubric && uploads,
		"rubric":  rubric,
		"uploads": uploads,
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
