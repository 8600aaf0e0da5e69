// Package solver launches the pw.x process and supervises its lifecycle:
// output redirection, wall-clock timeout, and graceful-then-forced
// termination.
package solver

import "time"

// ExitTimeout is the sentinel exit code reported when the solver is
// terminated for exceeding its wall-clock timeout. Matches the shell
// timeout(1) convention.
const ExitTimeout = 124

// DefaultGracePeriod is how long the supervisor waits between the
// graceful termination signal and the forced kill.
const DefaultGracePeriod = 10 * time.Second

// RunRequest describes a single solver invocation. Immutable once
// constructed; passed by value to Run.
type RunRequest struct {
	InputPath      string        // absolute path to the input deck
	Executable     string        // resolved solver path (see ResolveExecutable)
	LauncherPrefix []string      // e.g. ["mpirun", "-np", "4"], prepended to the command
	Timeout        time.Duration // 0 = no timeout
	Grace          time.Duration // 0 = DefaultGracePeriod
	WorkDir        string        // working directory for the solver process
	OutputPath     string        // stdout sink file
	ErrorPath      string        // stderr sink file
}

// ProcessOutcome reports how one solver run ended. Produced exactly once
// per RunRequest.
type ProcessOutcome struct {
	ExitCode   int // ExitTimeout when TimedOut
	TimedOut   bool
	Elapsed    time.Duration
	OutputPath string
	ErrorPath  string
}
