package morphology

import (
	"math"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// DefaultCutoff is the weight threshold below which a cell is ignored when
// locating the tip's center of mass.
const DefaultCutoff = 1e-8

// degenerateCutoff decides when the weight mass is too small to trust and
// the centroid falls back to uniform weights (the geometric center).
const degenerateCutoff = 1e-10

// Recenter translates the tip so that its intensity-weighted center of mass
// sits on the canonical center cell. The weight of a cell is its height
// above the tip minimum; weights below cutoff are masked out, and a fully
// masked (flat) tip falls back to uniform weights. The content is copied
// through a window clamped to the tip bounds, and uncovered cells keep the
// background level min(tip). Recentering an already centered tip is a no-op
// up to that clamping.
func Recenter(tip *field.Field, cutoff float64) *field.Field {
	rows, cols := tip.Rows, tip.Cols
	cr, cc := Center(tip)

	pmin := tip.Min()
	weight := make([]float64, len(tip.Data))
	for i, v := range tip.Data {
		w := v - pmin
		if w < cutoff {
			w = 0
		}
		weight[i] = w
	}

	degenerate := true
	for _, w := range weight {
		if w >= degenerateCutoff {
			degenerate = false
			break
		}
	}
	if degenerate {
		for i := range weight {
			weight[i] = 1
		}
	}

	var wsum, comR, comC float64
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			w := weight[r*cols+c]
			wsum += w
			comR += float64(r) * w
			comC += float64(c) * w
		}
	}
	idR := int(math.RoundToEven(comR / wsum))
	idC := int(math.RoundToEven(comC / wsum))

	// Overlap window between the centroid-aligned region and the canonical
	// center region, clamped so neither side indexes outside the tip.
	prMin := maxInt(-cr, -idR)
	pcMin := maxInt(-cc, -idC)
	prMax := minInt(rows-cr, rows-idR)
	pcMax := minInt(cols-cc, cols-idC)

	out := field.Full(rows, cols, pmin)
	for pr := prMin; pr < prMax; pr++ {
		for pc := pcMin; pc < pcMax; pc++ {
			out.Set(cr+pr, cc+pc, tip.At(idR+pr, idC+pc))
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
