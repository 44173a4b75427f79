package surface

import "gonum.org/v1/gonum/spatial/kdtree"

// atomPoint is the lateral (x, y) position of one atom together with its
// index into the atom set, so a kd-tree hit can be mapped back to its
// radius and z coordinate.
type atomPoint struct {
	x, y float64
	idx  int
}

// Compare implements the kdtree.Comparable interface.
func (p atomPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(atomPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the kd-tree.
func (p atomPoint) Dims() int { return 2 }

// Distance returns the squared lateral distance between two points.
func (p atomPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(atomPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

// atomPoints is a collection of atomPoint that satisfies kdtree.Interface.
type atomPoints []atomPoint

func (p atomPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p atomPoints) Len() int                              { return len(p) }
func (p atomPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p atomPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(atomPlane{atomPoints: p, Dim: d}, kdtree.MedianOfRandoms(atomPlane{atomPoints: p, Dim: d}, 100))
}

// atomPlane implements sort.Interface and kdtree.SortSlicer for atomPoints.
type atomPlane struct {
	atomPoints
	kdtree.Dim
}

func (p atomPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.atomPoints[i].x < p.atomPoints[j].x
	case 1:
		return p.atomPoints[i].y < p.atomPoints[j].y
	default:
		panic("illegal dimension")
	}
}

func (p atomPlane) Slice(start, end int) kdtree.SortSlicer {
	return atomPlane{atomPoints: p.atomPoints[start:end], Dim: p.Dim}
}

func (p atomPlane) Swap(i, j int) {
	p.atomPoints[i], p.atomPoints[j] = p.atomPoints[j], p.atomPoints[i]
}
