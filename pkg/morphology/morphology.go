// Package morphology implements grayscale morphological dilation and erosion
// of a 2D height field by a structuring element (the probe tip), plus the
// tip recentering projection used by the blind tip estimator.
//
// Both operators are computed by explicit enumeration of the tip offsets
// rather than a sliding-window reduction. Every intermediate step is a
// circular shift, a scalar add and an elementwise max/min, which is what
// allows the estimator to propagate gradients through the exact same
// arithmetic. Boundary handling is wrap-around by construction; this is a
// deliberate approximation and must not be replaced with padding, since
// existing tip estimates depend on it.
package morphology

import (
	"fmt"
	"math"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// Center returns the canonical center cell of a tip. The convention is
// round((n-1)/2) per axis with round-half-to-even semantics, which for even
// sizes is intentionally not the geometric center. Downstream comparisons
// assume this exact asymmetry.
func Center(tip *field.Field) (cr, cc int) {
	cr = int(math.RoundToEven(float64(tip.Rows-1) / 2))
	cc = int(math.RoundToEven(float64(tip.Cols-1) / 2))
	return cr, cc
}

// checkShapes validates the operand shapes shared by Dilate and Erode.
func checkShapes(f, tip *field.Field) error {
	if tip.Rows < 1 || tip.Cols < 1 {
		return fmt.Errorf("morphology: tip must be at least 1x1, got %dx%d", tip.Rows, tip.Cols)
	}
	if tip.Rows > f.Rows || tip.Cols > f.Cols {
		return fmt.Errorf("morphology: tip %dx%d exceeds field %dx%d", tip.Rows, tip.Cols, f.Rows, f.Cols)
	}
	return nil
}

// Dilate computes the grayscale dilation of surface by tip. For every tip
// offset (pr, pc) relative to the center cell it shifts the surface by
// (-pr, -pc), adds the tip height at that offset, and takes the running
// elementwise maximum, starting from -Inf. The result has the surface shape.
//
// Physically this is the forward model of tip-surface convolution: the
// image an ideal probe of this shape would record over the surface.
func Dilate(surface, tip *field.Field) (*field.Field, error) {
	if err := checkShapes(surface, tip); err != nil {
		return nil, err
	}
	cr, cc := Center(tip)
	r := field.Full(surface.Rows, surface.Cols, math.Inf(-1))
	for pr := -cr; pr < tip.Rows-cr; pr++ {
		for pc := -cc; pc < tip.Cols-cc; pc++ {
			var err error
			r, err = field.ShiftCompare(r, surface, -pr, -pc, tip.At(cr+pr, cc+pc), math.Max)
			if err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Erode computes the grayscale erosion of image by tip: the symmetric
// construction to Dilate, shifting by (+pr, +pc), subtracting the tip height
// and taking the running elementwise minimum from +Inf. Erosion by the tip
// that formed an image recovers a lower bound of the original surface.
func Erode(image, tip *field.Field) (*field.Field, error) {
	if err := checkShapes(image, tip); err != nil {
		return nil, err
	}
	cr, cc := Center(tip)
	r := field.Full(image.Rows, image.Cols, math.Inf(1))
	for pr := -cr; pr < tip.Rows-cr; pr++ {
		for pc := -cc; pc < tip.Cols-cc; pc++ {
			var err error
			r, err = field.ShiftCompare(r, image, pr, pc, -tip.At(cr+pr, cc+pc), math.Min)
			if err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Open is erosion followed by dilation by the same tip. Opening never
// exceeds the input pointwise away from the wrap-around boundary, and an
// image produced by dilation is a fixed point of opening by the same tip.
func Open(image, tip *field.Field) (*field.Field, error) {
	eroded, err := Erode(image, tip)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, tip)
}

// Reflect returns the tip rotated 180 degrees. For odd-sized tips this is
// the reflection about the center cell that appears in the erosion/dilation
// duality identity.
func Reflect(tip *field.Field) *field.Field {
	out := field.New(tip.Rows, tip.Cols)
	for i := 0; i < tip.Rows; i++ {
		for j := 0; j < tip.Cols; j++ {
			out.Set(i, j, tip.At(tip.Rows-1-i, tip.Cols-1-j))
		}
	}
	return out
}
