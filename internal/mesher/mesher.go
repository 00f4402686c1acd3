// Package mesher builds renderable and collidable surfaces for a cubic voxel
// world, refining octree chunks near interaction points and rebuilding them
// in cancellable passes.
package mesher

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/octomesh/internal/logger"
	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/geom"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

// Options configures a Mesher.
type Options struct {
	MaxLevel         ChunkLevel // level of every root; the world edge must match
	Workers          int        // 0 means one per CPU
	FarCullDistance  float32
	PollInterval     time.Duration
	MaxChunkVertices int
	Batch            BatchSizes
	LevelColors      []float32
}

// DefaultOptions returns options for a Cube256 world.
func DefaultOptions() Options {
	return Options{
		MaxLevel:         MaxLevel,
		FarCullDistance:  DefaultFarCullDistance,
		PollInterval:     DefaultPollInterval,
		MaxChunkVertices: 50_000_000,
		Batch:            DefaultBatchSizes(),
		LevelColors:      []float32{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
	}
}

// Collaborators are the presentation-side services the mesher drives.
type Collaborators struct {
	Factory ObjectFactory
	View    ViewSource // optional
}

// TreeStats counts the contents of every root's tree.
type TreeStats struct {
	Roots        int
	Nodes        int
	Internal     int
	Leaves       int
	Empty        int
	Unbuilt      int
	Surfaces     int
	Vertices     int
	ScratchBytes int
}

// Mesher owns the voxel grid, cube template, scratch buffers, worker pool
// and the chunk trees built from them.
type Mesher struct {
	mu          sync.Mutex
	opts        Options
	grid        *voxel.Grid
	tmpl        *cubetemplate.Template
	factory     ObjectFactory
	pool        *Pool
	arena       *scratchArena
	pipeline    *Pipeline
	coordinator *Coordinator
	roots       []*ChunkNode
	shut        bool
	log         *zap.Logger
}

// Initialize takes ownership of grid and tmpl and allocates the per-level
// scratch buffers and worker pool.
func Initialize(grid *voxel.Grid, tmpl *cubetemplate.Template, collab Collaborators, opts Options) (*Mesher, error) {
	if grid == nil || tmpl == nil {
		return nil, errors.New("mesher needs a voxel grid and a cube template")
	}
	if collab.Factory == nil {
		return nil, errors.New("mesher needs an object factory")
	}
	if !opts.MaxLevel.Valid() {
		return nil, fmt.Errorf("invalid max level %d", int(opts.MaxLevel))
	}
	if grid.Edge() != opts.MaxLevel.EdgeCubes() {
		return nil, fmt.Errorf("%w: world edge %d does not match %s", voxel.ErrInvalidWorldSize, grid.Edge(), opts.MaxLevel)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("cube template: %w", err)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxChunkVertices <= 0 {
		opts.MaxChunkVertices = DefaultOptions().MaxChunkVertices
	}

	log := logger.Named("mesher")
	m := &Mesher{
		opts:    opts,
		grid:    grid,
		tmpl:    tmpl,
		factory: collab.Factory,
		pool:    NewPool(opts.Workers),
		arena:   newScratchArena(opts.MaxLevel),
		log:     log,
	}
	m.pipeline = &Pipeline{
		grid:        grid,
		tmpl:        tmpl,
		pool:        m.pool,
		arena:       m.arena,
		batch:       opts.Batch,
		maxVertices: opts.MaxChunkVertices,
		colors:      opts.LevelColors,
	}
	baker := &Baker{pool: m.pool, batch: opts.Batch.Bake}
	m.coordinator = &Coordinator{
		roots:     m.Roots,
		scheduler: &Scheduler{pool: m.pool, batch: opts.Batch.Distance, farCull: opts.FarCullDistance},
		subdivider: &Subdivider{
			pipeline: m.pipeline,
			baker:    baker,
			factory:  collab.Factory,
			log:      log,
		},
		baker: baker,
		view:  collab.View,
		poll:  opts.PollInterval,
		log:   logger.Named("coordinator"),
	}

	log.Info("mesher initialized",
		zap.Stringer("max_level", opts.MaxLevel),
		zap.Int("workers", m.pool.Workers()),
		zap.Int("scratch_bytes", m.arena.bytes()),
		zap.Int("occupied_cells", grid.CountOccupied()))
	return m, nil
}

func (m *Mesher) usable() error {
	if m.pool == nil {
		return ErrNotInitialized
	}
	if m.shut {
		return ErrShutdown
	}
	return nil
}

// AddRoot creates a max-level root chunk placed at origin under parent.
// The root stays unbuilt until the next pass.
func (m *Mesher) AddRoot(parent Object, origin mgl32.Vec3) (*ChunkNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return nil, err
	}

	level := m.opts.MaxLevel
	obj := m.factory.NewObject(fmt.Sprintf("%s %v", level, origin))
	if parent != nil {
		obj.SetParent(parent)
	}
	obj.SetLocalPosition(origin)

	root := newChunkNode(level, [3]int{}, geom.Cube(origin, float32(level.EdgeCubes())), obj)
	m.roots = append(m.roots, root)
	return root, nil
}

// Roots returns the root chunks in creation order.
func (m *Mesher) Roots() []*ChunkNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roots)
}

// Coordinator returns the rebuild coordinator, or nil before Initialize.
func (m *Mesher) Coordinator() *Coordinator {
	return m.coordinator
}

// Trigger starts a rebuild pass for points.
func (m *Mesher) Trigger(points []mgl32.Vec3) error {
	m.mu.Lock()
	err := m.usable()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.coordinator.Trigger(points)
}

// GenerateChunk runs the surface pipeline for one chunk outside the tree.
// It waits for a running pass to finish.
func (m *Mesher) GenerateChunk(offset [3]int, level ChunkLevel) (*Surface, error) {
	m.mu.Lock()
	err := m.usable()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if level < MinLevel || level > m.opts.MaxLevel {
		return nil, fmt.Errorf("level %s outside %s..%s", level, MinLevel, m.opts.MaxLevel)
	}
	edge := m.opts.MaxLevel.EdgeCubes()
	for _, o := range offset {
		if o < 0 || o+level.EdgeCubes() > edge {
			return nil, fmt.Errorf("%s chunk at %v outside the world", level, offset)
		}
	}

	var s *Surface
	m.coordinator.withTree(func() {
		// Shutdown may have started while waiting for the tree.
		m.mu.Lock()
		err = m.usable()
		m.mu.Unlock()
		if err != nil {
			return
		}
		s, err = m.pipeline.Generate(offset, level)
	})
	return s, err
}

// Stats walks every tree. It waits for a running pass to finish.
func (m *Mesher) Stats() (TreeStats, error) {
	m.mu.Lock()
	if err := m.usable(); err != nil {
		m.mu.Unlock()
		return TreeStats{}, err
	}
	roots := slices.Clone(m.roots)
	m.mu.Unlock()

	st := TreeStats{Roots: len(roots), ScratchBytes: m.arena.bytes()}
	m.coordinator.withTree(func() {
		for _, r := range roots {
			Walk(r, func(n *ChunkNode) {
				st.Nodes++
				switch s := n.state.(type) {
				case nil:
					st.Unbuilt++
				case internalState:
					st.Internal++
				case leafState:
					st.Leaves++
					if s.surface == nil {
						st.Empty++
						return
					}
					st.Surfaces++
					st.Vertices += s.surface.VertexCount()
				}
			})
		}
	})
	return st, nil
}

// CheckTrees verifies every root's tree. It waits for a running pass to finish.
func (m *Mesher) CheckTrees() error {
	m.mu.Lock()
	if err := m.usable(); err != nil {
		m.mu.Unlock()
		return err
	}
	roots := slices.Clone(m.roots)
	m.mu.Unlock()

	var err error
	m.coordinator.withTree(func() {
		for _, r := range roots {
			if err = CheckTree(r); err != nil {
				return
			}
		}
	})
	return err
}

// Shutdown stops any running pass, destroys every chunk and releases the
// scratch buffers, worker pool, grid and template.
func (m *Mesher) Shutdown() error {
	m.mu.Lock()
	if err := m.usable(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.shut = true
	roots := m.roots
	m.roots = nil
	m.mu.Unlock()

	m.coordinator.stop()
	m.coordinator.withTree(func() {
		for _, r := range roots {
			r.destroy()
		}
		m.arena.free()
		m.grid = nil
		m.tmpl = nil
		m.pipeline.grid = nil
		m.pipeline.tmpl = nil
	})
	m.pool.Stop()

	m.log.Info("mesher shut down", zap.Int("roots", len(roots)))
	return nil
}
