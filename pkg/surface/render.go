package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/kakikik/ColabBTR/pkg/atoms"
	"github.com/kakikik/ColabBTR/pkg/field"
)

// kdTreeThreshold is the atom count above which Render switches from the
// direct per-atom scan to a kd-tree over lateral positions. Both paths
// evaluate the same candidate formula, and the maximum over candidates is
// order-independent, so the results agree.
const kdTreeThreshold = 64

// Render computes the highest sphere-surface height visible at each stage
// grid point, looking down from z = +infinity. An atom at (ax, ay, az) with
// radius r contributes az + sqrt(r^2 - d^2) at lateral distance d < r, and
// nothing beyond its lateral radius. Grid points covered by no atom render
// as exactly 0 (bare stage).
//
// Output orientation: row 0 corresponds to the maximum y; the image is
// flipped vertically relative to ascending y. Downstream consumers depend
// on this.
func Render(set *atoms.Set, cfg StageConfig) (*field.Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	rows, cols := cfg.GridSize()

	if set.Len() > kdTreeThreshold {
		return renderKDTree(set, cfg, rows, cols), nil
	}
	return renderDirect(set, cfg, rows, cols), nil
}

// contribution returns the sphere-top height of atom i over the stage point
// (x, y) and whether the point lies within the atom's lateral radius.
func contribution(set *atoms.Set, i int, x, y float64) (float64, bool) {
	dx := set.Coords[i][0] - x
	dy := set.Coords[i][1] - y
	d2 := dx*dx + dy*dy
	r2 := set.Radii[i] * set.Radii[i]
	if d2 >= r2 {
		return 0, false
	}
	return set.Coords[i][2] + math.Sqrt(r2-d2), true
}

// renderDirect scans every atom for every grid point.
func renderDirect(set *atoms.Set, cfg StageConfig, rows, cols int) *field.Field {
	out := field.New(rows, cols)
	for iy := 0; iy < rows; iy++ {
		y := cfg.yAt(iy)
		for ix := 0; ix < cols; ix++ {
			x := cfg.xAt(ix)
			best := math.Inf(-1)
			covered := false
			for i := 0; i < set.Len(); i++ {
				if z, ok := contribution(set, i, x, y); ok {
					covered = true
					if z > best {
						best = z
					}
				}
			}
			if covered {
				// Ascending y fills rows bottom-up.
				out.Set(rows-1-iy, ix, best)
			}
		}
	}
	return out
}

// renderKDTree restricts the per-point scan to atoms whose lateral position
// is within the largest radius of the set, found through a kd-tree range
// query.
func renderKDTree(set *atoms.Set, cfg StageConfig, rows, cols int) *field.Field {
	pts := make(atomPoints, set.Len())
	maxR := 0.0
	for i := range pts {
		pts[i] = atomPoint{x: set.Coords[i][0], y: set.Coords[i][1], idx: i}
		if set.Radii[i] > maxR {
			maxR = set.Radii[i]
		}
	}
	tree := kdtree.New(pts, true)

	out := field.New(rows, cols)
	for iy := 0; iy < rows; iy++ {
		y := cfg.yAt(iy)
		for ix := 0; ix < cols; ix++ {
			x := cfg.xAt(ix)
			// Distance is squared, so the keeper radius is too.
			keeper := kdtree.NewDistKeeper(maxR * maxR)
			tree.NearestSet(keeper, atomPoint{x: x, y: y, idx: -1})

			best := math.Inf(-1)
			covered := false
			for _, item := range keeper.Heap {
				if item.Comparable == nil {
					continue // sentinel
				}
				p := item.Comparable.(atomPoint)
				if z, ok := contribution(set, p.idx, x, y); ok {
					covered = true
					if z > best {
						best = z
					}
				}
			}
			if covered {
				out.Set(rows-1-iy, ix, best)
			}
		}
	}
	return out
}
