package structure

import (
	"encoding/json"
	"fmt"
)

// jsonDoc mirrors the subset of the Materials Project structure dict the
// generator needs: lattice matrix plus species at fractional positions.
type jsonDoc struct {
	Lattice struct {
		Matrix [3][3]float64 `json:"matrix"`
	} `json:"lattice"`
	Sites []struct {
		Species []struct {
			Element string `json:"element"`
		} `json:"species"`
		ABC [3]float64 `json:"abc"`
	} `json:"sites"`
}

// FromJSON parses a structure in Materials Project dict form.
func FromJSON(data []byte) (*Structure, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse structure json: %w", err)
	}
	if len(doc.Sites) == 0 {
		return nil, fmt.Errorf("structure json has no sites")
	}

	s := &Structure{Lattice: doc.Lattice.Matrix}
	for i, site := range doc.Sites {
		if len(site.Species) == 0 || site.Species[0].Element == "" {
			return nil, fmt.Errorf("site %d has no species", i)
		}
		s.Sites = append(s.Sites, Site{
			Species: site.Species[0].Element,
			Frac:    site.ABC,
		})
	}
	return s, nil
}

// ToJSON renders the structure back into the same dict form, so fetched
// structures can be saved and re-read by the generate command.
func (s *Structure) ToJSON() ([]byte, error) {
	var doc jsonDoc
	doc.Lattice.Matrix = s.Lattice
	for _, site := range s.Sites {
		j := struct {
			Species []struct {
				Element string `json:"element"`
			} `json:"species"`
			ABC [3]float64 `json:"abc"`
		}{ABC: site.Frac}
		j.Species = append(j.Species, struct {
			Element string `json:"element"`
		}{Element: site.Species})
		doc.Sites = append(doc.Sites, j)
	}
	return json.MarshalIndent(&doc, "", "  ")
}
