package atoms

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseXYZ reads an atom list with one atom per line: either
//
//	NAME X Y Z
//
// where NAME resolves through the standard radius table, or
//
//	RADIUS X Y Z
//
// where the first column parses as a positive number and is taken as the
// sphere radius directly. Blank lines and lines starting with '#' are
// skipped.
func ParseXYZ(r io.Reader) (*Set, error) {
	set := &Set{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 4 {
			return nil, fmt.Errorf("atoms: line %d: want 4 columns, got %d", lineNo, len(parts))
		}

		var radius float64
		if v, err := strconv.ParseFloat(parts[0], 64); err == nil {
			radius = v
		} else {
			radius, err = Radius(parts[0])
			if err != nil {
				return nil, fmt.Errorf("atoms: line %d: %w", lineNo, err)
			}
		}
		if radius <= 0 {
			return nil, fmt.Errorf("atoms: line %d: non-positive radius %v", lineNo, radius)
		}

		var coord [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("atoms: line %d: bad coordinate %q: %v", lineNo, parts[i+1], err)
			}
			coord[i] = v
		}
		set.Coords = append(set.Coords, coord)
		set.Radii = append(set.Radii, radius)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("atoms: read failed: %w", err)
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("atoms: no atoms in input")
	}
	return set, nil
}
