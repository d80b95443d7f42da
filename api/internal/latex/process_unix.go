//go:build !windows

package latex

import (
	"os/exec"
	"syscall"
)

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the whole process group (negative PID).
func killProcessGroup(pid int) {
	// best effort; the caller also kills the leader
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
