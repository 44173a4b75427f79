package morphology

import (
	"testing"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// TestCenterConvention pins down the round((n-1)/2) center convention,
// including the asymmetric even sizes.
func TestCenterConvention(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{1, 0},
		{2, 0}, // round(0.5) ties to even
		{3, 1},
		{4, 2}, // round(1.5) ties to even
		{5, 2},
		{6, 2}, // round(2.5) ties to even
		{7, 3},
	}
	for _, tc := range cases {
		cr, cc := Center(field.New(tc.n, tc.n))
		if cr != tc.want || cc != tc.want {
			t.Errorf("Center for %dx%d tip: got (%d,%d), want (%d,%d)", tc.n, tc.n, cr, cc, tc.want, tc.want)
		}
	}
}

// TestIdentityTip checks that a single zero-valued 1x1 tip leaves any field
// unchanged under both dilation and erosion.
func TestIdentityTip(t *testing.T) {
	f, _ := field.FromRows([][]float64{
		{0.1, -2, 3.5, 0},
		{7, 1, -1, 4},
		{2, 2, 0.25, -9},
	})
	tip := field.New(1, 1)

	dilated, err := Dilate(f, tip)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	if !dilated.EqualApprox(f, 0) {
		t.Errorf("dilation by identity tip changed the field")
	}

	eroded, err := Erode(f, tip)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}
	if !eroded.EqualApprox(f, 0) {
		t.Errorf("erosion by identity tip changed the field")
	}
}

// TestDilateLocalMax verifies dilation by a flat 3x3 tip against the
// hand-computed circular local maximum.
func TestDilateLocalMax(t *testing.T) {
	f, _ := field.FromRows([][]float64{
		{1, 0, 0},
		{0, 0, 0},
		{0, 0, 5},
	})
	tip := field.New(3, 3) // all-zero structuring element: plain local max

	got, err := Dilate(f, tip)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	// Every cell of a 3x3 field is within a circular 3x3 window of every
	// other cell, so the result is uniformly the global maximum.
	want := field.Full(3, 3, 5)
	if !got.EqualApprox(want, 0) {
		t.Errorf("dilation by flat 3x3 tip: got %v, want all 5", got.Data)
	}
}

// TestOpeningIsContraction checks dilate(erode(image)) <= image pointwise
// for a non-positive tip. The anti-extensivity of opening holds under the
// circular boundary convention as well, since the winning erosion offset
// always includes the one that cancels the dilation shift.
func TestOpeningIsContraction(t *testing.T) {
	image, _ := field.FromRows([][]float64{
		{0.0, 1.2, 0.3, 0.0, 0.7},
		{0.4, 2.0, 1.1, 0.2, 0.0},
		{0.0, 0.9, 3.0, 0.8, 0.1},
		{0.5, 0.0, 1.4, 0.6, 0.0},
		{0.2, 0.3, 0.0, 0.9, 1.0},
	})
	tip, _ := field.FromRows([][]float64{
		{-2, -1, -2},
		{-1, 0, -1},
		{-2, -1, -2},
	})

	opened, err := Open(image, tip)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for i := 0; i < image.Rows; i++ {
		for j := 0; j < image.Cols; j++ {
			if opened.At(i, j) > image.At(i, j)+1e-12 {
				t.Errorf("opening exceeds image at (%d,%d): %v > %v", i, j, opened.At(i, j), image.At(i, j))
			}
		}
	}
}

// TestOpeningReconstructsDilation: an image formed by dilation is a fixed
// point of opening by the same tip. This is the exact-recovery case the
// estimator drives its loss toward.
func TestOpeningReconstructsDilation(t *testing.T) {
	surface, _ := field.FromRows([][]float64{
		{0, 0, 0, 0, 0},
		{0, 0, 2, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 0, 0, 3, 0},
		{0, 0, 0, 0, 0},
	})
	tip, _ := field.FromRows([][]float64{
		{-1.5, -0.5, -1.5},
		{-0.5, 0, -0.5},
		{-1.5, -0.5, -1.5},
	})

	image, err := Dilate(surface, tip)
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	opened, err := Open(image, tip)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !opened.EqualApprox(image, 1e-12) {
		t.Errorf("opening of a dilated image should reproduce it exactly")
	}
}

// TestErosionDilationDuality verifies erode(I,T) == -dilate(-I, reflect(T))
// for an odd-sized tip under the shared circular-shift convention.
func TestErosionDilationDuality(t *testing.T) {
	image, _ := field.FromRows([][]float64{
		{0.3, 1.0, -0.2, 0.8},
		{2.1, 0.0, 0.5, -1.0},
		{0.7, 0.4, 1.9, 0.2},
		{-0.6, 1.3, 0.1, 0.9},
	})
	tip, _ := field.FromRows([][]float64{
		{-1.0, -0.2, -0.7},
		{-0.4, 0, -0.3},
		{-0.9, -0.1, -0.8},
	})

	eroded, err := Erode(image, tip)
	if err != nil {
		t.Fatalf("Erode failed: %v", err)
	}

	neg := image.Clone()
	neg.Scale(-1)
	dual, err := Dilate(neg, Reflect(tip))
	if err != nil {
		t.Fatalf("Dilate failed: %v", err)
	}
	dual.Scale(-1)

	if !eroded.EqualApprox(dual, 1e-12) {
		t.Errorf("duality violated:\nerode   = %v\n-dilate = %v", eroded.Data, dual.Data)
	}
}

// TestShapeMismatch ensures a tip larger than the field fails fast with a
// descriptive error before any computation.
func TestShapeMismatch(t *testing.T) {
	f := field.New(2, 2)
	tip := field.New(3, 3)
	if _, err := Dilate(f, tip); err == nil {
		t.Errorf("Dilate should reject a 3x3 tip on a 2x2 field")
	}
	if _, err := Erode(f, tip); err == nil {
		t.Errorf("Erode should reject a 3x3 tip on a 2x2 field")
	}
}
