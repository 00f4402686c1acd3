package mesher

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/geom"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

// boundsPadding is added around the nominal chunk box; template geometry
// extends half a voxel past cell coordinates.
const boundsPadding = 0.5

// Stage names a step of surface generation.
type Stage int

const (
	StageCount Stage = iota
	StagePrefixSum
	StageAllocate
	StageIndex
	StageScatter
	StageBounds
)

var stageNames = [...]string{"count", "prefix-sum", "allocate", "index", "scatter", "bounds"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// BatchSizes sets how many indices each parallel task handles, per job type.
type BatchSizes struct {
	Count    int
	Index    int
	Scatter  int
	Distance int
	Bake     int
}

// DefaultBatchSizes returns the batch sizes used when none are configured.
func DefaultBatchSizes() BatchSizes {
	return BatchSizes{Count: 8, Index: 128, Scatter: 8, Distance: 1, Bake: 1}
}

// Pipeline generates chunk surfaces from the voxel grid with a count,
// prefix-sum and scatter pass so buffers are sized exactly before writing.
type Pipeline struct {
	grid        *voxel.Grid
	tmpl        *cubetemplate.Template
	pool        *Pool
	arena       *scratchArena
	batch       BatchSizes
	maxVertices int
	colors      []float32

	// stageHook runs after each stage on the generating goroutine.
	stageHook func(stage Stage, offset [3]int, level ChunkLevel)
}

// Generate builds the surface of the chunk at voxel offset with the given
// level. It returns nil and no error when the chunk has no geometry.
func (p *Pipeline) Generate(offset [3]int, level ChunkLevel) (*Surface, error) {
	scratch, err := p.arena.acquire(level)
	if err != nil {
		return nil, err
	}
	defer scratch.release()

	cells := level.CellCount()
	xyz := scratch.xyz[:cells]
	offsets := scratch.countOffsets[:cells]

	configuration := func(i int) int {
		c := xyz[i]
		return cubetemplate.ConfigurationID(p.grid, offset[0]+int(c.X), offset[1]+int(c.Y), offset[2]+int(c.Z))
	}

	err = p.pool.ParallelFor(cells, p.batch.Count, func(i int) {
		if id := configuration(i); id >= 0 {
			offsets[i] = p.tmpl.Count(id)
		} else {
			offsets[i] = 0
		}
	})
	if err != nil {
		return nil, fmt.Errorf("count pass: %w", err)
	}
	p.stage(StageCount, offset, level)

	var total uint64
	err = p.pool.Background(func() error {
		total = exclusiveScan(offsets)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prefix sum: %w", err)
	}
	p.stage(StagePrefixSum, offset, level)

	if total == 0 {
		return nil, nil
	}
	if total > uint64(p.maxVertices) || total > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s chunk at %v needs %d vertices, budget %d",
			ErrResourceExhausted, level, offset, total, p.maxVertices)
	}

	vertices := make([]cubetemplate.Vertex, total)
	indices := make([]uint32, total)
	p.stage(StageAllocate, offset, level)

	err = p.pool.ParallelFor(int(total), p.batch.Index, func(i int) {
		indices[i] = uint32(i)
	})
	if err != nil {
		return nil, fmt.Errorf("index fill: %w", err)
	}
	p.stage(StageIndex, offset, level)

	err = p.pool.ParallelFor(cells, p.batch.Scatter, func(i int) {
		id := configuration(i)
		if id < 0 {
			return
		}
		c := xyz[i]
		at := mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
		dst := vertices[offsets[i]:]
		for j, v := range p.tmpl.VerticesOf(id) {
			dst[j] = cubetemplate.Vertex{Position: v.Position.Add(at), Normal: v.Normal}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("vertex scatter: %w", err)
	}
	p.stage(StageScatter, offset, level)

	bounds := geom.Cube(mgl32.Vec3{}, float32(level.EdgeCubes())).Pad(boundsPadding)
	p.stage(StageBounds, offset, level)

	return &Surface{
		ID:       uuid.New(),
		Level:    level,
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
		Color:    p.color(level),
	}, nil
}

func (p *Pipeline) stage(s Stage, offset [3]int, level ChunkLevel) {
	if p.stageHook != nil {
		p.stageHook(s, offset, level)
	}
}

func (p *Pipeline) color(level ChunkLevel) float32 {
	if len(p.colors) == 0 {
		return 1
	}
	return p.colors[min(int(level), len(p.colors)-1)]
}

// exclusiveScan replaces every count with the sum of the counts before it
// and returns the grand total.
func exclusiveScan(counts []uint32) uint64 {
	var sum uint64
	for i, c := range counts {
		counts[i] = uint32(sum)
		sum += uint64(c)
	}
	return sum
}
