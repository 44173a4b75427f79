package field

import (
	"math"
	"strings"
	"testing"
)

// TestRollWrapAround verifies the circular shift convention: cell (i,j) of
// the result holds f[(i-dr) mod R, (j-dc) mod C].
func TestRollWrapAround(t *testing.T) {
	f, err := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	rolled := f.Roll(1, 0)
	want := [][]float64{
		{7, 8, 9},
		{1, 2, 3},
		{4, 5, 6},
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if rolled.At(i, j) != want[i][j] {
				t.Errorf("Roll(1,0) at (%d,%d): got %v, want %v", i, j, rolled.At(i, j), want[i][j])
			}
		}
	}

	// Negative shifts wrap the other way.
	rolled = f.Roll(0, -1)
	if rolled.At(0, 0) != 2 || rolled.At(0, 2) != 1 {
		t.Errorf("Roll(0,-1) first row: got [%v %v %v]", rolled.At(0, 0), rolled.At(0, 1), rolled.At(0, 2))
	}

	// A full-period shift is the identity.
	if !f.Roll(3, 3).EqualApprox(f, 0) {
		t.Errorf("Roll by full period should be identity")
	}

	// Shifts larger than the dimensions reduce modulo the period.
	if !f.Roll(4, -5).EqualApprox(f.Roll(1, 1), 0) {
		t.Errorf("Roll(4,-5) should equal Roll(1,1) on a 3x3 field")
	}
}

// TestShiftCompare checks the shift/compare primitive against a hand
// computation with both max and min combiners.
func TestShiftCompare(t *testing.T) {
	src, _ := FromRows([][]float64{
		{0, 1},
		{2, 3},
	})

	acc := Full(2, 2, math.Inf(-1))
	out, err := ShiftCompare(acc, src, 0, 1, 10, math.Max)
	if err != nil {
		t.Fatalf("ShiftCompare failed: %v", err)
	}
	// roll(src,0,1) = [[1,0],[3,2]], plus 10.
	want := [][]float64{{11, 10}, {13, 12}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if out.At(i, j) != want[i][j] {
				t.Errorf("max combine at (%d,%d): got %v, want %v", i, j, out.At(i, j), want[i][j])
			}
		}
	}

	// With a +Inf accumulator and min combine, the result is the shifted
	// field plus the offset.
	acc = Full(2, 2, math.Inf(1))
	out, err = ShiftCompare(acc, src, 1, 0, -1, math.Min)
	if err != nil {
		t.Fatalf("ShiftCompare failed: %v", err)
	}
	// roll(src,1,0) = [[2,3],[0,1]], minus 1.
	want = [][]float64{{1, 2}, {-1, 0}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if out.At(i, j) != want[i][j] {
				t.Errorf("min combine at (%d,%d): got %v, want %v", i, j, out.At(i, j), want[i][j])
			}
		}
	}

	// Shape mismatch must fail fast.
	if _, err := ShiftCompare(Full(2, 3, 0), src, 0, 0, 0, math.Max); err == nil {
		t.Errorf("expected shape mismatch error for 2x3 vs 2x2")
	}
}

// TestCloneIndependence ensures Clone produces a detached copy.
func TestCloneIndependence(t *testing.T) {
	f := Full(2, 2, 1)
	g := f.Clone()
	g.Set(0, 0, 99)
	if f.At(0, 0) != 1 {
		t.Errorf("mutating clone changed original: got %v", f.At(0, 0))
	}
}

// TestClamp verifies the non-positive projection used on tips.
func TestClamp(t *testing.T) {
	f, _ := FromRows([][]float64{{-1, 0.5}, {2, -3}})
	f.Clamp(0)
	want := []float64{-1, 0, 0, -3}
	for i, v := range f.Data {
		if v != want[i] {
			t.Errorf("Clamp at %d: got %v, want %v", i, v, want[i])
		}
	}
}

// TestParseWriteMatrix round-trips a field through the text format.
func TestParseWriteMatrix(t *testing.T) {
	in := "# synthetic frame\n0 0.5 -1\n2.25 3 4\n"
	f, err := ParseMatrix(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseMatrix failed: %v", err)
	}
	if f.Rows != 2 || f.Cols != 3 {
		t.Fatalf("expected 2x3 field, got %dx%d", f.Rows, f.Cols)
	}

	var sb strings.Builder
	if err := f.WriteMatrix(&sb); err != nil {
		t.Fatalf("WriteMatrix failed: %v", err)
	}
	g, err := ParseMatrix(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !f.EqualApprox(g, 0) {
		t.Errorf("round trip changed values: %v vs %v", f.Data, g.Data)
	}

	// Ragged input is rejected.
	if _, err := ParseMatrix(strings.NewReader("1 2\n3\n")); err == nil {
		t.Errorf("expected error for ragged matrix")
	}
}

// TestIsFinite covers NaN and Inf detection.
func TestIsFinite(t *testing.T) {
	f := Full(2, 2, 0)
	if !f.IsFinite() {
		t.Errorf("zero field should be finite")
	}
	f.Set(1, 1, math.NaN())
	if f.IsFinite() {
		t.Errorf("field with NaN should not be finite")
	}
}
