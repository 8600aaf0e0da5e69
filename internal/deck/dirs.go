package deck

import (
	"log/slog"
	"os"
	"path/filepath"
)

// EnsureDirs prepares the directories a deck declares before the solver
// starts: outdir is created (with parents) if absent, pseudo_dir is only
// checked since the solver gives a clearer diagnostic when it is truly
// missing. Relative paths resolve against the deck's own directory.
//
// An unreadable deck is a silent no-op; the solver surfaces the real
// error.
func EnsureDirs(inputPath string) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return
	}
	text := string(data)
	base := filepath.Dir(inputPath)

	if outdir := firstGroup(outdirPattern, text); outdir != "" {
		path := resolveAgainst(base, outdir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			slog.Warn("cannot create outdir", "path", path, "error", err)
		}
	}

	if pseudoDir := firstGroup(pseudoDirPattern, text); pseudoDir != "" {
		path := resolveAgainst(base, pseudoDir)
		if _, err := os.Stat(path); err != nil {
			slog.Warn("pseudo directory not found", "path", path)
		}
	}
}

func resolveAgainst(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
