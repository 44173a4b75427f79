// Package stl triangulates height fields and writes binary STL files, used
// to export estimated tip shapes and rendered surfaces as 3D meshes.
package stl

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// Triangle represents a single triangle in 3D space with a normal vector
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
}

// HeightFieldTriangles triangulates a height field into a surface mesh.
// Each grid quad yields two triangles; column index maps to x, row index to
// y, and the cell value to z, each multiplied by its scale factor. A field
// smaller than 2x2 has no quads and yields an empty mesh.
func HeightFieldTriangles(f *field.Field, scaleX, scaleY, scaleZ float64) []Triangle {
	if f.Rows < 2 || f.Cols < 2 {
		return nil
	}
	vertex := func(i, j int) [3]float32 {
		return [3]float32{
			float32(float64(j) * scaleX),
			float32(float64(i) * scaleY),
			float32(f.At(i, j) * scaleZ),
		}
	}

	triangles := make([]Triangle, 0, 2*(f.Rows-1)*(f.Cols-1))
	for i := 0; i < f.Rows-1; i++ {
		for j := 0; j < f.Cols-1; j++ {
			a := vertex(i, j)
			b := vertex(i, j+1)
			c := vertex(i+1, j)
			d := vertex(i+1, j+1)
			triangles = append(triangles,
				newTriangle(a, b, c),
				newTriangle(b, d, c),
			)
		}
	}
	return triangles
}

// newTriangle builds a triangle with its unit normal from the vertex cross
// product. Degenerate triangles get a zero normal.
func newTriangle(v1, v2, v3 [3]float32) Triangle {
	e1 := [3]float32{v2[0] - v1[0], v2[1] - v1[1], v2[2] - v1[2]}
	e2 := [3]float32{v3[0] - v1[0], v3[1] - v1[1], v3[2] - v1[2]}
	n := [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	mag := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	if mag > 0 {
		n[0] /= mag
		n[1] /= mag
		n[2] /= mag
	}
	return Triangle{Normal: n, Vertex1: v1, Vertex2: v2, Vertex3: v3}
}

// SaveToSTL writes the triangles to a binary STL file: an 80-byte header, a
// uint32 triangle count, then 50 bytes per triangle (normal, three vertices,
// and a zero attribute word), all little-endian.
func SaveToSTL(filename string, triangles []Triangle) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %v", err)
	}
	defer file.Close()

	var header [80]byte
	copy(header[:], "colabbtr height field mesh")
	if _, err := file.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write STL header: %v", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(len(triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %v", err)
	}

	for i, tri := range triangles {
		if err := binary.Write(file, binary.LittleEndian, tri.Normal); err != nil {
			return fmt.Errorf("failed to write triangle %d: %v", i, err)
		}
		for _, v := range [][3]float32{tri.Vertex1, tri.Vertex2, tri.Vertex3} {
			if err := binary.Write(file, binary.LittleEndian, v); err != nil {
				return fmt.Errorf("failed to write triangle %d: %v", i, err)
			}
		}
		if err := binary.Write(file, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("failed to write triangle %d: %v", i, err)
		}
	}
	return nil
}
