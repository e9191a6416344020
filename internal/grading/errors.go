package grading

import (
	"errors"
	"fmt"
)

// ErrMissingInput is returned when the lesson or overview upload is absent.
var ErrMissingInput = errors.New("please upload both the lesson and course overview files")

// ProcessError reports a grader run that exited with a nonzero status.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("Grading script failed with code %d.\n\n%s", e.ExitCode, e.Stderr)
}

// StartError reports a grader process that could not be spawned or awaited.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return "failed to run grading script: " + e.Err.Error()
}

func (e *StartError) Unwrap() error { return e.Err }
