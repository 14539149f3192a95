//go:build windows

package service

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr starts the child in a new process group, so Ctrl+C in the
// supervisor's console is not delivered to it.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
