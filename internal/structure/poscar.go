package structure

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePOSCAR reads a VASP POSCAR/CONTCAR file with the VASP 5 species
// line. Only direct (fractional) coordinates are supported; Cartesian
// decks are rejected rather than silently misread.
func ParsePOSCAR(data []byte) (*Structure, error) {
	lines := nonEmptyLines(string(data))
	if len(lines) < 8 {
		return nil, fmt.Errorf("poscar too short: %d lines", len(lines))
	}

	scale, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("poscar scale: %w", err)
	}

	var lattice [3][3]float64
	for i := 0; i < 3; i++ {
		row, err := parseVector(lines[2+i])
		if err != nil {
			return nil, fmt.Errorf("poscar lattice row %d: %w", i+1, err)
		}
		for j := 0; j < 3; j++ {
			lattice[i][j] = row[j] * scale
		}
	}

	species := strings.Fields(lines[5])
	countFields := strings.Fields(lines[6])
	if len(species) == 0 || len(species) != len(countFields) {
		return nil, fmt.Errorf("poscar species/count mismatch")
	}
	counts := make([]int, len(countFields))
	total := 0
	for i, f := range countFields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("poscar species count: %w", err)
		}
		counts[i] = n
		total += n
	}

	coordLine := 7
	mode := strings.ToLower(strings.TrimSpace(lines[coordLine]))
	if strings.HasPrefix(mode, "s") { // selective dynamics
		coordLine++
		mode = strings.ToLower(strings.TrimSpace(lines[coordLine]))
	}
	if !strings.HasPrefix(mode, "d") {
		return nil, fmt.Errorf("poscar: only direct coordinates are supported, got %q", lines[coordLine])
	}
	coordLine++

	if len(lines) < coordLine+total {
		return nil, fmt.Errorf("poscar: expected %d coordinate lines, have %d", total, len(lines)-coordLine)
	}

	s := &Structure{Lattice: lattice}
	idx := coordLine
	for i, sp := range species {
		for n := 0; n < counts[i]; n++ {
			frac, err := parseVector(lines[idx])
			if err != nil {
				return nil, fmt.Errorf("poscar coordinate line %d: %w", idx+1, err)
			}
			s.Sites = append(s.Sites, Site{Species: sp, Frac: frac})
			idx++
		}
	}
	return s, nil
}

func parseVector(line string) ([3]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return [3]float64{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	var v [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return [3]float64{}, err
		}
		v[i] = f
	}
	return v, nil
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
