//go:build !unix

package grading

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
