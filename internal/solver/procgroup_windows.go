//go:build windows

package solver

import "os/exec"

// setupProcessGroup is a no-op on Windows where Setpgid is unavailable.
func setupProcessGroup(cmd *exec.Cmd) {}

// terminateGroup kills the process directly; Windows has no SIGTERM
// equivalent for console-less children.
func terminateGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// killGroup kills the process directly.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
