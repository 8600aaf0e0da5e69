// Package structure holds a minimal crystal structure model: a lattice,
// fractional sites, and just enough parsing to bridge the Materials
// Project API and pw.x deck generation.
package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Site is one atom at fractional lattice coordinates.
type Site struct {
	Species string
	Frac    [3]float64
}

// Structure is a periodic crystal: lattice row vectors in Angstrom plus
// occupied sites.
type Structure struct {
	Lattice [3][3]float64
	Sites   []Site
}

// Species returns the distinct species in first-seen order.
func (s *Structure) Species() []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, site := range s.Sites {
		if _, ok := seen[site.Species]; ok {
			continue
		}
		seen[site.Species] = struct{}{}
		out = append(out, site.Species)
	}
	return out
}

// Formula returns the cell formula with per-species counts, e.g. "Ga2N2".
// Counts of one are omitted.
func (s *Structure) Formula() string {
	counts := make(map[string]int)
	for _, site := range s.Sites {
		counts[site.Species]++
	}
	var b strings.Builder
	for _, sp := range s.Species() {
		b.WriteString(sp)
		if counts[sp] > 1 {
			fmt.Fprintf(&b, "%d", counts[sp])
		}
	}
	return b.String()
}

// FromFile reads a structure from a JSON (Materials Project dict form)
// or POSCAR/VASP file, dispatching on the file name.
func FromFile(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read structure: %w", err)
	}

	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".json"):
		return FromJSON(data)
	case strings.HasSuffix(base, ".vasp"), strings.HasSuffix(base, ".poscar"),
		strings.HasPrefix(base, "poscar"), strings.HasPrefix(base, "contcar"):
		return ParsePOSCAR(data)
	default:
		return nil, fmt.Errorf("unrecognized structure format: %s", filepath.Base(path))
	}
}
