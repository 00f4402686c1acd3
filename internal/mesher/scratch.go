package mesher

import (
	"fmt"
	"sync/atomic"
)

// cellXYZ is the chunk-local coordinate of a cell, precomputed per level so
// parallel passes index cells without division.
type cellXYZ struct {
	X, Y, Z uint8
}

// levelScratch holds the buffers shared by every chunk of one level.
// Only one chunk may use it at a time.
type levelScratch struct {
	level        ChunkLevel
	xyz          []cellXYZ
	countOffsets []uint32
	busy         atomic.Bool
}

// release hands the buffers back for the next chunk of this level.
func (s *levelScratch) release() {
	s.busy.Store(false)
}

// scratchArena owns one levelScratch per level up to the configured maximum.
type scratchArena struct {
	levels []*levelScratch
}

func newScratchArena(top ChunkLevel) *scratchArena {
	a := &scratchArena{levels: make([]*levelScratch, top+1)}
	for l := MinLevel; l <= top; l++ {
		edge := l.EdgeCubes()
		s := &levelScratch{
			level:        l,
			xyz:          make([]cellXYZ, l.CellCount()),
			countOffsets: make([]uint32, l.CellCount()),
		}
		// Same order as voxel.Grid.Index: x outer, z inner.
		i := 0
		for x := 0; x < edge; x++ {
			for y := 0; y < edge; y++ {
				for z := 0; z < edge; z++ {
					s.xyz[i] = cellXYZ{uint8(x), uint8(y), uint8(z)}
					i++
				}
			}
		}
		a.levels[l] = s
	}
	return a
}

// acquire claims the scratch buffers of level l. A second claim before
// release means two chunks of one level overlapped.
func (a *scratchArena) acquire(l ChunkLevel) (*levelScratch, error) {
	if a.levels == nil {
		return nil, ErrShutdown
	}
	if int(l) < 0 || int(l) >= len(a.levels) {
		return nil, fmt.Errorf("%w: no scratch for level %s", ErrInvariantViolation, l)
	}
	s := a.levels[l]
	if !s.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: scratch for %s already in use", ErrInvariantViolation, l)
	}
	return s, nil
}

// bytes returns the memory held by the arena.
func (a *scratchArena) bytes() int {
	n := 0
	for _, s := range a.levels {
		n += len(s.xyz)*3 + len(s.countOffsets)*4
	}
	return n
}

func (a *scratchArena) free() {
	a.levels = nil
}
