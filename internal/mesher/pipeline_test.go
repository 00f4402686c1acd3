package mesher

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

func TestChunkLevel(t *testing.T) {
	assert.Equal(t, 1, Cube1.EdgeCubes())
	assert.Equal(t, 256, Cube256.EdgeCubes())
	assert.Equal(t, 4096, Cube16.CellCount())
	assert.Equal(t, "Cube32", Cube32.String())
	assert.False(t, ChunkLevel(9).Valid())
	assert.False(t, ChunkLevel(-1).Valid())
}

func TestExclusiveScan(t *testing.T) {
	counts := []uint32{3, 0, 6, 1}
	total := exclusiveScan(counts)
	assert.Equal(t, uint64(10), total)
	assert.Equal(t, []uint32{0, 3, 3, 9}, counts)
}

func TestScratchCoordinates(t *testing.T) {
	a := newScratchArena(Cube4)
	require.Len(t, a.levels, 3)

	s, err := a.acquire(Cube4)
	require.NoError(t, err)
	defer s.release()

	g, err := voxel.New(4)
	require.NoError(t, err)
	for i, c := range s.xyz {
		if g.Index(int(c.X), int(c.Y), int(c.Z)) != i {
			t.Fatalf("cell %d has coordinate %v", i, c)
		}
	}
}

func TestScratchOverlapIsInvariantViolation(t *testing.T) {
	a := newScratchArena(Cube2)

	s, err := a.acquire(Cube2)
	require.NoError(t, err)

	_, err = a.acquire(Cube2)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	s.release()
	_, err = a.acquire(Cube2)
	assert.NoError(t, err)

	_, err = a.acquire(Cube4)
	assert.ErrorIs(t, err, ErrInvariantViolation, "level above the arena")

	a.free()
	_, err = a.acquire(Cube1)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestGenerateEmptyAtEveryLevel(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube16), nil)

	for l := MinLevel; l <= Cube16; l++ {
		s, err := m.pipeline.Generate([3]int{0, 0, 0}, l)
		require.NoError(t, err, l)
		assert.Nil(t, s, l)
	}
}

func TestGenerateSingleVoxel(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube4), func(g *voxel.Grid) {
		g.Set(1, 2, 3, 7)
	})

	s, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube4)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, 36, s.VertexCount())
	assert.Equal(t, 12, s.TriangleCount())
	for i, idx := range s.Indices {
		require.Equal(t, uint32(i), idx)
	}

	cell := mgl32.Vec3{1, 2, 3}
	for _, v := range s.Vertices {
		d := v.Position.Sub(cell)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 0, d[k], 0.5001, "vertex %v strays from cell %v", v.Position, cell)
		}
	}

	// Nominal chunk box padded by half a voxel, not the tight geometry box.
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, s.Bounds.Min)
	assert.Equal(t, mgl32.Vec3{4.5, 4.5, 4.5}, s.Bounds.Max)
	assert.Equal(t, Cube4, s.Level)
}

func TestGenerateUsesChunkOffset(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube8), func(g *voxel.Grid) {
		g.Set(5, 1, 1, 1)
	})

	s, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube4)
	require.NoError(t, err)
	assert.Nil(t, s, "voxel lies outside the first chunk")

	s, err = m.pipeline.Generate([3]int{4, 0, 0}, Cube4)
	require.NoError(t, err)
	require.NotNil(t, s)

	center := mgl32.Vec3{}
	for _, v := range s.Vertices {
		center = center.Add(v.Position)
	}
	center = center.Mul(1 / float32(s.VertexCount()))
	assert.InDelta(t, 1, center.X(), 1e-4)
	assert.InDelta(t, 1, center.Y(), 1e-4)
	assert.InDelta(t, 1, center.Z(), 1e-4)
}

func TestGenerateConservation(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube16), sphere)
	tmpl := cubetemplate.Basic()

	chunks := []struct {
		offset [3]int
		level  ChunkLevel
	}{
		{[3]int{0, 0, 0}, Cube16},
		{[3]int{0, 0, 0}, Cube8},
		{[3]int{8, 0, 8}, Cube8},
		{[3]int{4, 4, 4}, Cube4},
		{[3]int{2, 8, 6}, Cube2},
	}

	for _, c := range chunks {
		var want uint32
		edge := c.level.EdgeCubes()
		for x := 0; x < edge; x++ {
			for y := 0; y < edge; y++ {
				for z := 0; z < edge; z++ {
					id := cubetemplate.ConfigurationID(m.grid, c.offset[0]+x, c.offset[1]+y, c.offset[2]+z)
					if id >= 0 {
						want += tmpl.Count(id)
					}
				}
			}
		}

		s, err := m.pipeline.Generate(c.offset, c.level)
		require.NoError(t, err)
		if want == 0 {
			assert.Nil(t, s)
			continue
		}
		require.NotNil(t, s, "%s at %v", c.level, c.offset)
		assert.Equal(t, int(want), len(s.Vertices), "%s at %v", c.level, c.offset)
		assert.Equal(t, int(want), len(s.Indices), "%s at %v", c.level, c.offset)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube16), sphere)

	a, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube16)
	require.NoError(t, err)
	b, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube16)
	require.NoError(t, err)

	require.NotNil(t, a)
	assert.Equal(t, a.Vertices, b.Vertices)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestGenerateResourceExhausted(t *testing.T) {
	opts := testOptions(Cube4)
	opts.MaxChunkVertices = 35
	m, _ := newTestMesher(t, opts, func(g *voxel.Grid) {
		g.Set(0, 0, 0, 1)
	})

	_, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube4)
	assert.ErrorIs(t, err, ErrResourceExhausted)

	// The scratch buffers are released after a failed chunk.
	_, err = m.pipeline.Generate([3]int{0, 0, 0}, Cube4)
	assert.ErrorIs(t, err, ErrResourceExhausted)
}

func TestGenerateStagesInOrder(t *testing.T) {
	m, _ := newTestMesher(t, testOptions(Cube2), fillAll)

	var stages []Stage
	m.pipeline.stageHook = func(s Stage, _ [3]int, _ ChunkLevel) {
		stages = append(stages, s)
	}

	_, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube2)
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageCount, StagePrefixSum, StageAllocate, StageIndex, StageScatter, StageBounds}, stages)
}

func TestLevelColors(t *testing.T) {
	opts := testOptions(Cube2)
	opts.LevelColors = []float32{0.25, 0.75}
	m, _ := newTestMesher(t, opts, fillAll)

	s1, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube1)
	require.NoError(t, err)
	s2, err := m.pipeline.Generate([3]int{0, 0, 0}, Cube2)
	require.NoError(t, err)

	assert.Equal(t, float32(0.25), s1.Color)
	assert.Equal(t, float32(0.75), s2.Color)
	assert.Equal(t, mgl32.Vec3{0.75, 0.75, 0.75}, s2.Tint())
}
