// Package atoms defines the molecular input of the forward imaging path: a
// set of sphere centers with per-atom radii, plus the standard name-to-radius
// lookup table. The set is static for the duration of one render.
package atoms

import "fmt"

// Set is an ordered sequence of atom positions with a parallel sequence of
// radii, both in the same length unit as the stage configuration (the table
// in this package is in nanometers).
type Set struct {
	// Coords holds the (x, y, z) position of each atom.
	Coords [][3]float64

	// Radii holds the sphere radius of each atom, parallel to Coords.
	Radii []float64
}

// Len returns the number of atoms.
func (s *Set) Len() int { return len(s.Coords) }

// Validate checks the parallel-slice invariant and that all radii are
// positive.
func (s *Set) Validate() error {
	if len(s.Coords) != len(s.Radii) {
		return fmt.Errorf("atoms: %d coordinates but %d radii", len(s.Coords), len(s.Radii))
	}
	for i, r := range s.Radii {
		if r <= 0 {
			return fmt.Errorf("atoms: atom %d has non-positive radius %v", i, r)
		}
	}
	return nil
}

// FromNames builds a set from positions and atom names, resolving each name
// through the standard radius table. It fails on the first unknown name.
func FromNames(coords [][3]float64, names []string) (*Set, error) {
	if len(coords) != len(names) {
		return nil, fmt.Errorf("atoms: %d coordinates but %d names", len(coords), len(names))
	}
	radii, err := RadiiFor(names)
	if err != nil {
		return nil, err
	}
	return &Set{Coords: coords, Radii: radii}, nil
}
