//go:build !windows

package execute

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so that a
// later kill reaches every descendant, not just the direct child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree terminates the process and its descendants by signaling the
// whole process group. Children that re-exec'd into a new group escape
// this; best effort is the accepted contract.
func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return cmd.Process.Kill()
	}
	return syscall.Kill(-pgid, syscall.SIGKILL)
}
