package mesher

import "fmt"

// ChunkLevel is the size class of a chunk. Level l covers 2^l voxels per edge.
type ChunkLevel int

// Chunk levels from the indivisible single cell up to the largest root chunk.
const (
	Cube1 ChunkLevel = iota
	Cube2
	Cube4
	Cube8
	Cube16
	Cube32
	Cube64
	Cube128
	Cube256
)

const (
	// MinLevel is the smallest chunk; it never subdivides.
	MinLevel = Cube1
	// MaxLevel is the largest supported root chunk.
	MaxLevel = Cube256
)

// EdgeCubes returns the number of voxels along one edge of a chunk at this level.
func (l ChunkLevel) EdgeCubes() int {
	return 1 << l
}

// CellCount returns the number of voxels in a chunk at this level.
func (l ChunkLevel) CellCount() int {
	e := l.EdgeCubes()
	return e * e * e
}

// Valid reports whether l is between MinLevel and MaxLevel.
func (l ChunkLevel) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

func (l ChunkLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("ChunkLevel(%d)", int(l))
	}
	return fmt.Sprintf("Cube%d", l.EdgeCubes())
}
