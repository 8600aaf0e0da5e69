package solver

import (
	"errors"
	"os/exec"
)

// handle is the narrow capability the supervisor needs from a running
// process. Keeping it small lets the escalation logic be exercised with
// a fake that ignores the graceful signal.
type handle interface {
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
	// ExitCode is valid only after Done is closed.
	ExitCode() int
	// Terminate sends the graceful termination signal.
	Terminate() error
	// Kill forcibly ends the process.
	Kill() error
}

// procHandle wraps a started exec.Cmd. A single goroutine performs the
// one blocking Wait; every exit path in the supervisor selects on the
// same done channel.
type procHandle struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// startProcess starts cmd in its own process group and begins reaping it.
func startProcess(cmd *exec.Cmd) (*procHandle, error) {
	setupProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	h := &procHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

func (h *procHandle) Done() <-chan struct{} { return h.done }

func (h *procHandle) ExitCode() int {
	if h.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(h.waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (h *procHandle) Terminate() error { return terminateGroup(h.cmd) }

func (h *procHandle) Kill() error { return killGroup(h.cmd) }
