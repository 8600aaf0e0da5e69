package structure

import (
	"os"
	"path/filepath"
	"testing"
)

const siliconPOSCAR = `Si2
1.0
  0.000000  2.715000  2.715000
  2.715000  0.000000  2.715000
  2.715000  2.715000  0.000000
Si
2
Direct
  0.000000  0.000000  0.000000
  0.250000  0.250000  0.250000
`

const ganJSON = `{
  "lattice": {"matrix": [[3.19, 0, 0], [-1.595, 2.7626, 0], [0, 0, 5.189]]},
  "sites": [
    {"species": [{"element": "Ga"}], "abc": [0.3333, 0.6667, 0.0]},
    {"species": [{"element": "Ga"}], "abc": [0.6667, 0.3333, 0.5]},
    {"species": [{"element": "N"}], "abc": [0.3333, 0.6667, 0.3772]},
    {"species": [{"element": "N"}], "abc": [0.6667, 0.3333, 0.8772]}
  ]
}`

func TestParsePOSCAR(t *testing.T) {
	s, err := ParsePOSCAR([]byte(siliconPOSCAR))
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Sites) != 2 {
		t.Fatalf("sites: got %d, want 2", len(s.Sites))
	}
	if s.Sites[1].Species != "Si" {
		t.Errorf("species: got %q", s.Sites[1].Species)
	}
	if s.Sites[1].Frac != [3]float64{0.25, 0.25, 0.25} {
		t.Errorf("frac: got %v", s.Sites[1].Frac)
	}
	if s.Lattice[0][1] != 2.715 {
		t.Errorf("lattice: got %v", s.Lattice[0])
	}
	if s.Formula() != "Si2" {
		t.Errorf("formula: got %q, want Si2", s.Formula())
	}
}

func TestParsePOSCAR_ScaleApplied(t *testing.T) {
	scaled := `Si
2.0
  1.0 0.0 0.0
  0.0 1.0 0.0
  0.0 0.0 1.0
Si
1
Direct
  0.0 0.0 0.0
`
	s, err := ParsePOSCAR([]byte(scaled))
	if err != nil {
		t.Fatal(err)
	}
	if s.Lattice[0][0] != 2.0 {
		t.Errorf("scale not applied: %v", s.Lattice[0][0])
	}
}

func TestParsePOSCAR_CartesianRejected(t *testing.T) {
	bad := `Si
1.0
  1.0 0.0 0.0
  0.0 1.0 0.0
  0.0 0.0 1.0
Si
1
Cartesian
  0.0 0.0 0.0
`
	if _, err := ParsePOSCAR([]byte(bad)); err == nil {
		t.Fatal("cartesian coordinates should be rejected")
	}
}

func TestFromJSON(t *testing.T) {
	s, err := FromJSON([]byte(ganJSON))
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Species(); len(got) != 2 || got[0] != "Ga" || got[1] != "N" {
		t.Errorf("species: got %v", got)
	}
	if s.Formula() != "Ga2N2" {
		t.Errorf("formula: got %q, want Ga2N2", s.Formula())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig, err := FromJSON([]byte(ganJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := orig.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	again, err := FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Sites) != len(orig.Sites) || again.Lattice != orig.Lattice {
		t.Error("round trip lost data")
	}
}

func TestFromFile_Dispatch(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "gan.json")
	if err := os.WriteFile(jsonPath, []byte(ganJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromFile(jsonPath); err != nil {
		t.Errorf("json dispatch: %v", err)
	}

	vaspPath := filepath.Join(dir, "si.vasp")
	if err := os.WriteFile(vaspPath, []byte(siliconPOSCAR), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromFile(vaspPath); err != nil {
		t.Errorf("vasp dispatch: %v", err)
	}

	unknown := filepath.Join(dir, "si.xyz")
	if err := os.WriteFile(unknown, []byte("2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromFile(unknown); err == nil {
		t.Error("unknown format should error")
	}
}
