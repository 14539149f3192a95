//go:build unix

package service

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr detaches the child into its own process group, so SIGINT
// sent to the foreground group by the terminal leaves the job running.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
