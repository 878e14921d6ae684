//go:build windows

package execute

import (
	"os/exec"
	"strconv"
)

// setProcessGroup is a no-op on Windows; taskkill walks the tree itself.
func setProcessGroup(cmd *exec.Cmd) {}

// killTree terminates the process and its descendants via taskkill,
// falling back to killing the direct child when taskkill is unavailable.
func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := exec.Command("taskkill", "/t", "/f", "/pid", strconv.Itoa(cmd.Process.Pid))
	if err := kill.Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
