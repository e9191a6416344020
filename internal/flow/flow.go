// Package flow drives the client side of a grading run: a splash screen, two
// upload steps, a loading state while the server grades, and the results.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"eduqa-backend/internal/report"
)

// State is one screen of the flow.
type State string

const (
	StateSplash      State = "splash"
	StateUploadStep1 State = "upload-step-1"
	StateUploadStep2 State = "upload-step-2"
	StateLoading     State = "loading"
	StateResults     State = "results"
)

// ErrorPrefix marks a failed run in the results text.
const ErrorPrefix = "❗ Error: "

const defaultFailure = "Upload failed"

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid flow transition")

// File is a document picked by the user.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Submitter sends both documents for grading and returns the raw report text.
type Submitter interface {
	Submit(ctx context.Context, lesson, overview File) (string, error)
}

// Transition records one state change. Fade is set on the step-1 to step-2 change.
type Transition struct {
	From State
	To   State
	Fade bool
}

// Result is what the results screen renders. Text is the raw report on success
// or ErrorPrefix followed by the failure message.
type Result struct {
	Text   string
	Failed bool
	Report report.Summary
}

// Flow is safe for concurrent use.
type Flow struct {
	mu        sync.Mutex
	submitter Submitter
	state     State
	overview  *File
	lesson    *File
	result    Result
	history   []Transition
}

// New returns a Flow on the splash screen.
func New(s Submitter) *Flow {
	return &Flow{submitter: s, state: StateSplash}
}

// State returns the current screen.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the last run's outcome. It is zero until the flow reaches results.
func (f *Flow) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// History returns every transition so far.
func (f *Flow) History() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Transition(nil), f.history...)
}

// Start leaves the splash screen.
func (f *Flow) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSplash {
		return f.invalid("start")
	}
	f.move(StateUploadStep1, false)
	return nil
}

// SelectOverview records the course overview and fades to the lesson step.
func (f *Flow) SelectOverview(file File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateUploadStep1 {
		return f.invalid("select overview")
	}
	f.overview = &file
	f.move(StateUploadStep2, true)
	return nil
}

// SelectLesson records the lesson and, with both files present, submits them.
// It blocks in the loading state until the submitter returns and always ends on
// the results screen.
func (f *Flow) SelectLesson(ctx context.Context, file File) (Result, error) {
	f.mu.Lock()
	if f.state != StateUploadStep2 || f.overview == nil {
		err := f.invalid("select lesson")
		f.mu.Unlock()
		return Result{}, err
	}
	f.lesson = &file
	f.move(StateLoading, false)
	lesson, overview := *f.lesson, *f.overview
	f.mu.Unlock()

	res := f.submit(ctx, lesson, overview)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
	f.move(StateResults, false)
	return res, nil
}

// Reset returns to the first upload step and forgets both files. It is refused
// while a submission is in flight.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateLoading {
		return f.invalid("reset")
	}
	f.overview, f.lesson = nil, nil
	f.result = Result{}
	f.move(StateUploadStep1, false)
	return nil
}

func (f *Flow) submit(ctx context.Context, lesson, overview File) Result {
	if f.submitter == nil {
		return failed(errors.New("no submitter configured"))
	}
	text, err := f.submitter.Submit(ctx, lesson, overview)
	if err != nil {
		return failed(err)
	}
	return Result{Text: text, Report: report.Parse(text).Summarize()}
}

func failed(err error) Result {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = defaultFailure
	}
	text := ErrorPrefix + msg
	return Result{Text: text, Failed: true, Report: report.Parse(text).Summarize()}
}

func (f *Flow) move(to State, fade bool) {
	f.history = append(f.history, Transition{From: f.state, To: to, Fade: fade})
	f.state = to
}

func (f *Flow) invalid(action string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, f.state)
}
