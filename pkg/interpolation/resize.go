// Package interpolation resamples height fields between grid resolutions,
// used to supersample rendered surfaces and to bring acquired images onto a
// common grid before reconstruction.
package interpolation

import (
	"fmt"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// Resize resamples f onto a rows x cols grid with bilinear interpolation.
// Sample positions are aligned so the corner cells of the output coincide
// with the corner cells of the input.
func Resize(f *field.Field, rows, cols int) (*field.Field, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("interpolation: target size must be at least 1x1, got %dx%d", rows, cols)
	}

	out := field.New(rows, cols)
	scaleR := axisScale(f.Rows, rows)
	scaleC := axisScale(f.Cols, cols)

	for i := 0; i < rows; i++ {
		sr := float64(i) * scaleR
		r0 := int(sr)
		if r0 > f.Rows-2 {
			r0 = f.Rows - 2
		}
		if r0 < 0 {
			r0 = 0
		}
		fr := sr - float64(r0)

		for j := 0; j < cols; j++ {
			sc := float64(j) * scaleC
			c0 := int(sc)
			if c0 > f.Cols-2 {
				c0 = f.Cols - 2
			}
			if c0 < 0 {
				c0 = 0
			}
			fc := sc - float64(c0)

			if f.Rows == 1 {
				r0, fr = 0, 0
			}
			if f.Cols == 1 {
				c0, fc = 0, 0
			}
			r1, c1 := r0, c0
			if f.Rows > 1 {
				r1 = r0 + 1
			}
			if f.Cols > 1 {
				c1 = c0 + 1
			}

			top := f.At(r0, c0)*(1-fc) + f.At(r0, c1)*fc
			bottom := f.At(r1, c0)*(1-fc) + f.At(r1, c1)*fc
			out.Set(i, j, top*(1-fr)+bottom*fr)
		}
	}
	return out, nil
}

// axisScale maps output index space onto input index space so both ends
// align. A single-sample axis collapses to scale zero.
func axisScale(in, out int) float64 {
	if out <= 1 || in <= 1 {
		return 0
	}
	return float64(in-1) / float64(out-1)
}
