package deck

import "log/slog"

// atomicMasses covers the elements the toolchain is commonly used with.
// Values in unified atomic mass units.
var atomicMasses = map[string]float64{
	"H": 1.008, "He": 4.0026,
	"Li": 6.94, "Be": 9.0122, "B": 10.81, "C": 12.011, "N": 14.007,
	"O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085,
	"P": 30.974, "S": 32.06, "Cl": 35.45, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Ti": 47.867, "V": 50.942,
	"Cr": 51.996, "Mn": 54.938, "Fe": 55.845, "Co": 58.933,
	"Ni": 58.693, "Cu": 63.546, "Zn": 65.38, "Ga": 69.723,
	"Ge": 72.630, "As": 74.922, "Se": 78.971, "Br": 79.904,
	"Sr": 87.62, "Zr": 91.224, "Mo": 95.95, "Ag": 107.87,
	"Cd": 112.41, "In": 114.82, "Sn": 118.71, "Sb": 121.76,
	"Te": 127.60, "I": 126.90, "Ba": 137.33, "W": 183.84,
	"Pt": 195.08, "Au": 196.97, "Pb": 207.2, "Bi": 208.98,
}

// AtomicMass returns the element's mass, or 1.0 with a warning for
// elements outside the table so the generated deck stays loadable.
func AtomicMass(element string) float64 {
	if m, ok := atomicMasses[element]; ok {
		return m
	}
	slog.Warn("unknown element, using unit mass", "element", element)
	return 1.0
}
