// Package watch runs the drop-directory daemon: new input decks placed
// in an incoming directory are executed and filed under completed or
// failed state directories.
package watch

import (
	"os"
	"path/filepath"
)

// Dirs holds the directory layout for watch state.
type Dirs struct {
	Incoming   string // decks are dropped here
	Processing string // decks currently being executed
	Completed  string // decks whose run succeeded
	Failed     string // decks whose run failed or timed out
}

// NewDirs derives the state layout from the incoming and state
// directories.
func NewDirs(incoming, stateDir string) Dirs {
	return Dirs{
		Incoming:   incoming,
		Processing: filepath.Join(stateDir, "processing"),
		Completed:  filepath.Join(stateDir, "completed"),
		Failed:     filepath.Join(stateDir, "failed"),
	}
}

// EnsureDirs creates all watch directories.
func EnsureDirs(d Dirs) error {
	for _, dir := range []string{d.Incoming, d.Processing, d.Completed, d.Failed} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
