package deck

import (
	"fmt"
	"strings"

	"github.com/qeforge/qeforge/internal/structure"
)

// Params controls deck generation. Zero values fall back to sensible
// SCF defaults.
type Params struct {
	Calculation string // scf, relax, vc-relax, nscf
	Prefix      string
	OutDir      string
	PseudoDir   string
	ECutWfc     float64 // Ry
	ECutRho     float64 // Ry; 0 means 4 x ECutWfc
	KPoints     [3]int
	Pseudos     map[string]string // species -> UPF file name
}

var calculationTypes = map[string]bool{
	"scf":      true,
	"relax":    true,
	"vc-relax": true,
	"nscf":     true,
}

// Generate renders a pw.x input deck for the structure: CONTROL, SYSTEM
// and ELECTRONS namelists followed by the species, positions, k-point
// and cell cards.
func Generate(s *structure.Structure, p Params) ([]byte, error) {
	if len(s.Sites) == 0 {
		return nil, fmt.Errorf("structure has no sites")
	}

	if p.Calculation == "" {
		p.Calculation = "scf"
	}
	if !calculationTypes[p.Calculation] {
		return nil, fmt.Errorf("unknown calculation type %q", p.Calculation)
	}
	if p.Prefix == "" {
		p.Prefix = strings.ToLower(s.Formula())
	}
	if p.OutDir == "" {
		p.OutDir = "./out/"
	}
	if p.PseudoDir == "" {
		p.PseudoDir = "./pseudopotentials"
	}
	if p.ECutWfc == 0 {
		p.ECutWfc = 50.0
	}
	if p.ECutRho == 0 {
		p.ECutRho = 4 * p.ECutWfc
	}
	if p.KPoints == ([3]int{}) {
		p.KPoints = [3]int{4, 4, 4}
	}

	species := s.Species()

	var b strings.Builder
	fmt.Fprintf(&b, "&CONTROL\n")
	fmt.Fprintf(&b, "  calculation = '%s',\n", p.Calculation)
	fmt.Fprintf(&b, "  prefix = '%s',\n", p.Prefix)
	fmt.Fprintf(&b, "  outdir = '%s',\n", p.OutDir)
	fmt.Fprintf(&b, "  pseudo_dir = '%s',\n", p.PseudoDir)
	fmt.Fprintf(&b, "  verbosity = 'low',\n")
	fmt.Fprintf(&b, "/\n")

	fmt.Fprintf(&b, "&SYSTEM\n")
	fmt.Fprintf(&b, "  ibrav = 0,\n")
	fmt.Fprintf(&b, "  nat = %d,\n", len(s.Sites))
	fmt.Fprintf(&b, "  ntyp = %d,\n", len(species))
	fmt.Fprintf(&b, "  ecutwfc = %.1f,\n", p.ECutWfc)
	fmt.Fprintf(&b, "  ecutrho = %.1f,\n", p.ECutRho)
	fmt.Fprintf(&b, "/\n")

	fmt.Fprintf(&b, "&ELECTRONS\n")
	fmt.Fprintf(&b, "  conv_thr = 1.0d-8,\n")
	fmt.Fprintf(&b, "  mixing_beta = 0.7,\n")
	fmt.Fprintf(&b, "/\n")

	fmt.Fprintf(&b, "ATOMIC_SPECIES\n")
	for _, sp := range species {
		upf := p.Pseudos[sp]
		if upf == "" {
			upf = sp + ".UPF"
		}
		fmt.Fprintf(&b, "  %-3s %10.4f  %s\n", sp, AtomicMass(sp), upf)
	}

	fmt.Fprintf(&b, "ATOMIC_POSITIONS crystal\n")
	for _, site := range s.Sites {
		fmt.Fprintf(&b, "  %-3s %12.8f %12.8f %12.8f\n", site.Species, site.Frac[0], site.Frac[1], site.Frac[2])
	}

	fmt.Fprintf(&b, "K_POINTS automatic\n")
	fmt.Fprintf(&b, "  %d %d %d 0 0 0\n", p.KPoints[0], p.KPoints[1], p.KPoints[2])

	fmt.Fprintf(&b, "CELL_PARAMETERS angstrom\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "  %12.8f %12.8f %12.8f\n", s.Lattice[i][0], s.Lattice[i][1], s.Lattice[i][2])
	}

	return []byte(b.String()), nil
}
