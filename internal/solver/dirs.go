package solver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunDirs holds the derived working paths for one run. Created before
// the process launches, never mutated afterward.
type RunDirs struct {
	Dir        string
	OutputPath string
	ErrorPath  string
}

// InputStem returns the input file's base name without extension, used
// to derive run directory and sink file names.
func InputStem(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PrepareRunDirs creates the run directory and derives the sink file
// paths. With timestamped set, the directory is qualified with the input
// stem and a timestamp so concurrent runs cannot collide; otherwise
// sinks land directly in base.
func PrepareRunDirs(inputPath, base, outName string, timestamped bool, now time.Time) (RunDirs, error) {
	stem := InputStem(inputPath)

	dir := base
	if timestamped {
		dir = filepath.Join(base, fmt.Sprintf("%s_%s", stem, now.Format("20060102_150405")))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return RunDirs{}, fmt.Errorf("create run dir: %w", err)
	}

	if outName == "" {
		outName = stem + ".out"
	}

	return RunDirs{
		Dir:        dir,
		OutputPath: filepath.Join(dir, outName),
		ErrorPath:  filepath.Join(dir, stem+".err"),
	}, nil
}
