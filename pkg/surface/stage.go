// Package surface renders the visible top surface of a union of atom
// spheres onto the AFM stage grid, and composes that height field with the
// morphology engine to synthesize AFM images from molecular structures.
package surface

import (
	"fmt"
	"math"
)

// StageConfig defines the sampling grid of the AFM stage. Grid cell centers
// are offset by half a resolution step from the lower bounds, so the first
// x sample is MinX + 0.5*ResolutionX.
type StageConfig struct {
	MinX        float64 `yaml:"minX"`
	MaxX        float64 `yaml:"maxX"`
	ResolutionX float64 `yaml:"resolutionX"`
	MinY        float64 `yaml:"minY"`
	MaxY        float64 `yaml:"maxY"`
	ResolutionY float64 `yaml:"resolutionY"`
}

// Validate checks bounds ordering and positive resolutions.
func (c StageConfig) Validate() error {
	if c.ResolutionX <= 0 || c.ResolutionY <= 0 {
		return fmt.Errorf("surface: resolutions must be positive, got (%v, %v)", c.ResolutionX, c.ResolutionY)
	}
	if c.MaxX <= c.MinX || c.MaxY <= c.MinY {
		return fmt.Errorf("surface: empty stage bounds x[%v,%v] y[%v,%v]", c.MinX, c.MaxX, c.MinY, c.MaxY)
	}
	return nil
}

// GridSize returns the stage grid dimensions: rows = ceil((MaxY-MinY)/ResolutionY),
// cols analogous for x.
func (c StageConfig) GridSize() (rows, cols int) {
	rows = int(math.Ceil((c.MaxY - c.MinY) / c.ResolutionY))
	cols = int(math.Ceil((c.MaxX - c.MinX) / c.ResolutionX))
	return rows, cols
}

// xAt returns the x coordinate of grid column i.
func (c StageConfig) xAt(i int) float64 {
	return c.MinX + (float64(i)+0.5)*c.ResolutionX
}

// yAt returns the y coordinate of grid index j in ascending-y order. Note
// the rendered field stores ascending y in descending row order.
func (c StageConfig) yAt(j int) float64 {
	return c.MinY + (float64(j)+0.5)*c.ResolutionY
}
