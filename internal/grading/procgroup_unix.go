//go:build unix

package grading

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup starts the grader in its own process group and kills the
// whole group on cancellation, so interpreters and their children stop together.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
