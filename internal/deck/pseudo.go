package deck

import (
	"fmt"
	"path/filepath"
)

// FindPseudo locates a pseudopotential file for the element inside dir,
// matching <El>*.UPF then <El>*.upf. Returns the bare file name as pw.x
// expects it in ATOMIC_SPECIES.
func FindPseudo(dir, element string) (string, error) {
	for _, pattern := range []string{element + "*.UPF", element + "*.upf"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return "", fmt.Errorf("glob pseudo dir: %w", err)
		}
		if len(matches) > 0 {
			return filepath.Base(matches[0]), nil
		}
	}
	return "", fmt.Errorf("no pseudopotential for %s in %s", element, dir)
}
