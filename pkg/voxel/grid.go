// Package voxel provides the dense voxel world grid and its on-disk codec.
package voxel

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Empty is the cell value of unoccupied space.
const Empty byte = 0

// MaxEdge is the largest supported grid edge. Cell coordinates inside a
// chunk must fit in a byte.
const MaxEdge = 256

// Grid errors.
var (
	ErrInvalidWorldSize = errors.New("invalid world size")
)

// Grid is a dense cubic array of cells stored row-major in (x, y, z):
// index = x*edge*edge + y*edge + z.
type Grid struct {
	edge int
	data []byte
}

// New allocates an empty grid with the given edge length.
func New(edge int) (*Grid, error) {
	if edge <= 0 || edge > MaxEdge {
		return nil, fmt.Errorf("%w: edge %d", ErrInvalidWorldSize, edge)
	}
	return &Grid{edge: edge, data: make([]byte, edge*edge*edge)}, nil
}

// FromBytes wraps data as a grid. The slice is not copied.
func FromBytes(edge int, data []byte) (*Grid, error) {
	if edge <= 0 || edge > MaxEdge {
		return nil, fmt.Errorf("%w: edge %d", ErrInvalidWorldSize, edge)
	}
	if len(data) != edge*edge*edge {
		return nil, fmt.Errorf("%w: %d bytes for edge %d", ErrInvalidWorldSize, len(data), edge)
	}
	return &Grid{edge: edge, data: data}, nil
}

// Edge returns the number of cells along each axis.
func (g *Grid) Edge() int { return g.edge }

// Bytes returns the backing cell array.
func (g *Grid) Bytes() []byte { return g.data }

// Index returns the flat index of (x, y, z). It does not bounds-check.
func (g *Grid) Index(x, y, z int) int {
	return (x*g.edge+y)*g.edge + z
}

// InBounds reports whether (x, y, z) is inside the grid.
func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.edge && y < g.edge && z < g.edge
}

// At returns the cell value, or Empty outside the grid.
func (g *Grid) At(x, y, z int) byte {
	if !g.InBounds(x, y, z) {
		return Empty
	}
	return g.data[g.Index(x, y, z)]
}

// Occupied reports whether the cell holds anything.
func (g *Grid) Occupied(x, y, z int) bool {
	return g.At(x, y, z) != Empty
}

// Set writes a cell. Out-of-range writes are ignored.
func (g *Grid) Set(x, y, z int, v byte) {
	if g.InBounds(x, y, z) {
		g.data[g.Index(x, y, z)] = v
	}
}

// Fill sets every cell in the half-open range [min, max).
func (g *Grid) Fill(min, max [3]int, v byte) {
	for x := min[0]; x < max[0]; x++ {
		for y := min[1]; y < max[1]; y++ {
			for z := min[2]; z < max[2]; z++ {
				g.Set(x, y, z, v)
			}
		}
	}
}

// Sphere sets every cell whose center lies within radius of center.
func (g *Grid) Sphere(center mgl32.Vec3, radius float32, v byte) {
	r2 := radius * radius
	for x := 0; x < g.edge; x++ {
		for y := 0; y < g.edge; y++ {
			for z := 0; z < g.edge; z++ {
				d := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}.Sub(center)
				if d.Dot(d) <= r2 {
					g.data[g.Index(x, y, z)] = v
				}
			}
		}
	}
}

// Terrain fills every column from y=0 up to (excluding) height(x, z).
func (g *Grid) Terrain(height func(x, z int) int, v byte) {
	for x := 0; x < g.edge; x++ {
		for z := 0; z < g.edge; z++ {
			h := min(height(x, z), g.edge)
			for y := 0; y < h; y++ {
				g.data[g.Index(x, y, z)] = v
			}
		}
	}
}

// CountOccupied returns the number of non-empty cells.
func (g *Grid) CountOccupied() int {
	n := 0
	for _, b := range g.data {
		if b != Empty {
			n++
		}
	}
	return n
}
