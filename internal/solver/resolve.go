package solver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrExecutableNotFound indicates the solver binary could not be located.
var ErrExecutableNotFound = errors.New("solver executable not found")

// ResolveExecutable locates the solver binary. A bare name is looked up
// on PATH; anything containing a path separator must exist at that exact
// path, with no PATH fallback.
func ResolveExecutable(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty executable name", ErrExecutableNotFound)
	}

	if filepath.IsAbs(name) || strings.ContainsRune(name, '/') {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, name)
		}
		return name, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q not on PATH", ErrExecutableNotFound, name)
	}
	return path, nil
}
