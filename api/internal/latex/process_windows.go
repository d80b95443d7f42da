//go:build windows

package latex

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

func killProcessGroup(int) {}
