package solver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// termState tracks the termination escalation for one run.
type termState int

const (
	stateRunning  termState = iota // process alive, no signal sent
	stateTermSent                  // graceful signal sent, grace timer armed
	stateKilled                    // force kill sent, waiting for reap
	stateExited                    // process reaped
)

// Run launches the solver described by req and blocks until it exits or
// the timeout escalation completes. stdout and stderr are redirected to
// the sink files; nothing is buffered in memory. Sink-creation and spawn
// failures are returned as errors; a timeout is a normal outcome with
// TimedOut set and ExitCode == ExitTimeout.
//
// Cancelling ctx funnels into the same graceful-then-forced termination
// path as a timeout, so an interrupted run never leaks a process.
func Run(ctx context.Context, req RunRequest) (ProcessOutcome, error) {
	argv := make([]string, 0, len(req.LauncherPrefix)+3)
	argv = append(argv, req.LauncherPrefix...)
	argv = append(argv, req.Executable, "-in", req.InputPath)

	outFile, err := os.Create(req.OutputPath)
	if err != nil {
		return ProcessOutcome{}, fmt.Errorf("create output sink: %w", err)
	}
	defer func() { _ = outFile.Close() }()

	errFile, err := os.Create(req.ErrorPath)
	if err != nil {
		return ProcessOutcome{}, fmt.Errorf("create error sink: %w", err)
	}
	defer func() { _ = errFile.Close() }()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Stdout = outFile
	cmd.Stderr = errFile

	slog.Info("running solver", "cmd", strings.Join(argv, " "), "timeout", req.Timeout)

	start := time.Now()
	h, err := startProcess(cmd)
	if err != nil {
		return ProcessOutcome{}, fmt.Errorf("start solver: %w", err)
	}

	grace := req.Grace
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	exitCode, timedOut := supervise(ctx, h, req.Timeout, grace)
	elapsed := time.Since(start)

	if timedOut {
		slog.Error("solver timed out", "timeout", req.Timeout, "input", req.InputPath)
	} else {
		slog.Info("solver finished", "elapsed", elapsed.Round(100*time.Millisecond), "exit_code", exitCode)
	}

	return ProcessOutcome{
		ExitCode:   exitCode,
		TimedOut:   timedOut,
		Elapsed:    elapsed,
		OutputPath: req.OutputPath,
		ErrorPath:  req.ErrorPath,
	}, nil
}

// supervise blocks until the process exits, escalating termination on
// timeout or context cancellation: graceful signal, grace wait, forced
// kill. Normal exit and escalation select on the same done channel, so
// the two can never race. Returns ExitTimeout when the timeout fired.
func supervise(ctx context.Context, h handle, timeout, grace time.Duration) (int, bool) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	state := stateRunning
	timedOut := false

	for state != stateExited {
		switch state {
		case stateRunning:
			select {
			case <-h.Done():
				state = stateExited
			case <-deadline:
				timedOut = true
				_ = h.Terminate()
				state = stateTermSent
			case <-ctx.Done():
				slog.Warn("run cancelled, terminating solver")
				_ = h.Terminate()
				state = stateTermSent
			}
		case stateTermSent:
			graceTimer := time.NewTimer(grace)
			select {
			case <-h.Done():
				graceTimer.Stop()
				state = stateExited
			case <-graceTimer.C:
				_ = h.Kill()
				state = stateKilled
			}
		case stateKilled:
			<-h.Done()
			state = stateExited
		}
	}

	if timedOut {
		return ExitTimeout, true
	}
	return h.ExitCode(), false
}
