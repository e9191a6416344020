package grading

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"eduqa-backend/internal/shared/telemetry"
)

// Result is the outcome of one grader run, resolved once the process has exited.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner starts the grader with the given file paths. Tests stub it.
type Runner interface {
	Start(ctx context.Context, paths ...string) (*Task, error)
}

// Task is a running grader process. Wait resolves it to a single Result.
type Task struct {
	done   chan struct{}
	result Result
	err    error
}

// NewTask returns a Task that completes when fn returns. Used by runners that are
// not backed by os/exec.
func NewTask(fn func() (Result, error)) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = fn()
	}()
	return t
}

// Wait blocks until the process exits. A nonzero exit is reported through
// Result.ExitCode, not err.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}

// Done is closed when the task has completed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// ExecRunner runs Command with Args followed by the file paths.
type ExecRunner struct {
	Command string
	Args    []string
	Dir     string
	// Timeout bounds a run when positive. Zero leaves the process unbounded.
	Timeout time.Duration
	// PipeGrace is how long Wait keeps reading output after the grader has
	// exited or been killed. Defaults to DefaultPipeGrace.
	PipeGrace time.Duration
}

// DefaultPipeGrace bounds how long descendants that inherited the output pipes
// can keep a finished run open.
const DefaultPipeGrace = 2 * time.Second

// Start spawns the process and collects stdout and stderr separately while it runs.
func (r ExecRunner) Start(ctx context.Context, paths ...string) (*Task, error) {
	if strings.TrimSpace(r.Command) == "" {
		return nil, errors.New("grader command is not configured")
	}

	cancel := context.CancelFunc(func() {})
	if r.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
	}

	args := append(append([]string{}, r.Args...), paths...)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = r.PipeGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultPipeGrace
	}
	killProcessGroup(cmd)

	var stdout bytes.Buffer
	stderr := &stderrCollector{}
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", r.Command, err)
	}
	telemetry.Debug("grading.spawned", map[string]any{
		"cmd":  r.Command,
		"args": strings.Join(args, " "),
		"pid":  cmd.Process.Pid,
	})

	return NewTask(func() (Result, error) {
		defer cancel()
		waitErr := cmd.Wait()
		res := Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Duration: time.Since(start),
		}
		if waitErr == nil {
			return res, nil
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			if res.ExitCode == -1 {
				// Killed by a signal, e.g. on timeout.
				res.ExitCode = 1
				if ctx.Err() != nil {
					res.Stderr += fmt.Sprintf("\ngrader stopped: %v", ctx.Err())
				}
			}
			return res, nil
		}
		if errors.Is(waitErr, exec.ErrWaitDelay) {
			telemetry.Warn("grading.pipes.abandoned", map[string]any{"cmd": r.Command})
			return res, nil
		}
		return res, fmt.Errorf("wait %s: %w", r.Command, waitErr)
	}), nil
}

// stderrCollector accumulates stderr and logs each chunk as it arrives.
type stderrCollector struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *stderrCollector) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	telemetry.Warn("grading.stderr", map[string]any{"chunk": truncate(string(p), 8<<10)})
	return c.buf.Write(p)
}

func (c *stderrCollector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
