package cli

// ExitError carries a specific process exit code from a command to
// main, which otherwise exits 1 on any error.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string { return e.Msg }
