// Package field provides the 2D height field value type shared by the
// morphology engine, the surface renderer and the tip estimator. A field is
// stored as a flat row-major float64 slice with explicit dimensions, which
// keeps every operation a plain loop over contiguous memory.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is a 2D array of real-valued heights over a regular grid, indexed
// (row, col). It represents a surface, an acquired or synthetic image, a
// probe tip, or an intermediate morphological result. Fields are value-like:
// operations return new fields and never alias the input data.
type Field struct {
	// Data holds the heights in row-major order, Data[r*Cols+c].
	Data []float64

	// Rows and Cols are the grid dimensions.
	Rows, Cols int
}

// New returns a zero-filled field of the given dimensions.
func New(rows, cols int) *Field {
	return &Field{
		Data: make([]float64, rows*cols),
		Rows: rows,
		Cols: cols,
	}
}

// Full returns a field of the given dimensions with every cell set to v.
func Full(rows, cols int, v float64) *Field {
	f := New(rows, cols)
	for i := range f.Data {
		f.Data[i] = v
	}
	return f
}

// FromRows builds a field from a rectangular slice of rows. It returns an
// error if the rows are ragged or empty.
func FromRows(rows [][]float64) (*Field, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("field: empty input, got %d rows", len(rows))
	}
	f := New(len(rows), len(rows[0]))
	for r, row := range rows {
		if len(row) != f.Cols {
			return nil, fmt.Errorf("field: ragged input, row %d has %d columns, want %d", r, len(row), f.Cols)
		}
		copy(f.Data[r*f.Cols:(r+1)*f.Cols], row)
	}
	return f, nil
}

// At returns the value at (row, col).
func (f *Field) At(r, c int) float64 {
	return f.Data[r*f.Cols+c]
}

// Set stores v at (row, col).
func (f *Field) Set(r, c int, v float64) {
	f.Data[r*f.Cols+c] = v
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	out := New(f.Rows, f.Cols)
	copy(out.Data, f.Data)
	return out
}

// SameShape reports whether f and g have identical dimensions.
func (f *Field) SameShape(g *Field) bool {
	return f.Rows == g.Rows && f.Cols == g.Cols
}

// Min returns the smallest value in the field.
func (f *Field) Min() float64 {
	return floats.Min(f.Data)
}

// Max returns the largest value in the field.
func (f *Field) Max() float64 {
	return floats.Max(f.Data)
}

// AddConst adds v to every cell in place.
func (f *Field) AddConst(v float64) {
	floats.AddConst(v, f.Data)
}

// Scale multiplies every cell by v in place.
func (f *Field) Scale(v float64) {
	floats.Scale(v, f.Data)
}

// EqualApprox reports whether f and g have the same shape and all cells
// agree within tol.
func (f *Field) EqualApprox(g *Field, tol float64) bool {
	return f.SameShape(g) && floats.EqualApprox(f.Data, g.Data, tol)
}

// mod returns x modulo n with a non-negative result, matching the
// wrap-around index convention of a circular shift.
func mod(x, n int) int {
	m := x % n
	if m < 0 {
		m += n
	}
	return m
}

// Roll returns the field circularly shifted by dr rows and dc columns.
// Cell (i, j) of the result holds f[(i-dr) mod Rows, (j-dc) mod Cols], so a
// positive shift moves content toward larger indices with wrap-around.
func (f *Field) Roll(dr, dc int) *Field {
	out := New(f.Rows, f.Cols)
	for i := 0; i < f.Rows; i++ {
		src := mod(i-dr, f.Rows) * f.Cols
		dst := i * f.Cols
		for j := 0; j < f.Cols; j++ {
			out.Data[dst+j] = f.Data[src+mod(j-dc, f.Cols)]
		}
	}
	return out
}

// CombineFunc merges an accumulator cell with a shifted-and-offset cell.
// The two useful instances are math.Max and math.Min.
type CombineFunc func(acc, v float64) float64

// ShiftCompare is the grid shift/compare primitive underlying grayscale
// dilation and erosion. It returns a new field where every cell is
// combine(acc[i,j], roll(src, dr, dc)[i,j] + offset). The boundary handling
// is circular by construction; acc and src must share a shape.
func ShiftCompare(acc, src *Field, dr, dc int, offset float64, combine CombineFunc) (*Field, error) {
	if !acc.SameShape(src) {
		return nil, fmt.Errorf("field: shape mismatch %dx%d vs %dx%d", acc.Rows, acc.Cols, src.Rows, src.Cols)
	}
	out := New(acc.Rows, acc.Cols)
	for i := 0; i < acc.Rows; i++ {
		src0 := mod(i-dr, acc.Rows) * acc.Cols
		dst := i * acc.Cols
		for j := 0; j < acc.Cols; j++ {
			out.Data[dst+j] = combine(acc.Data[dst+j], src.Data[src0+mod(j-dc, acc.Cols)]+offset)
		}
	}
	return out, nil
}

// Clamp limits every cell to at most max, in place. The tip convention keeps
// heights non-positive, so the estimator clamps with max = 0 after each
// optimizer step.
func (f *Field) Clamp(max float64) {
	for i, v := range f.Data {
		if v > max {
			f.Data[i] = max
		}
	}
}

// IsFinite reports whether every cell is a finite number.
func (f *Field) IsFinite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
