//go:build !windows

// pkg/launcher/detach_other.go - starts child processes in their own process group.

package launcher

import (
	"os/exec"
	"syscall"
)

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
