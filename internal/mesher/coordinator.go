package mesher

import (
	"errors"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often Trigger checks whether a cancelled pass has exited.
const DefaultPollInterval = 100 * time.Millisecond

// State is the coordinator state.
type State int32

const (
	Idle State = iota
	Building
)

func (s State) String() string {
	if s == Building {
		return "building"
	}
	return "idle"
}

// PassStats summarizes one build pass.
type PassStats struct {
	Started   time.Time
	Duration  time.Duration
	Chunks    int // top-level chunks considered
	Walked    int // top-level chunks built
	Culled    int
	Surfaces  int // surfaces generated
	Vertices  int
	Empty     int // leaves without geometry
	Exhausted int // leaves skipped for exceeding the vertex budget
	Cancelled bool
}

// Coordinator runs build passes over the roots, one at a time. A new Trigger
// cancels the running pass, waits for it to stop, then starts its own.
type Coordinator struct {
	roots      func() []*ChunkNode
	scheduler  *Scheduler
	subdivider *Subdivider
	baker      *Baker
	view       ViewSource
	poll       time.Duration
	log        *zap.Logger

	triggerMu sync.Mutex // serializes Trigger and stop
	treeMu    sync.Mutex // held by the pass walking the tree
	state     atomic.Int32
	cancel    atomic.Bool
	stopped   bool

	mu      sync.Mutex
	done    chan struct{}
	last    PassStats
	lastErr error
	passes  int
}

// Trigger starts a build pass for points, first cancelling and awaiting any
// pass in flight. It returns once the new pass has started.
func (c *Coordinator) Trigger(points []mgl32.Vec3) error {
	c.triggerMu.Lock()
	defer c.triggerMu.Unlock()

	if c.stopped {
		return ErrShutdown
	}
	c.cancelAndWait()

	done := make(chan struct{})
	c.mu.Lock()
	c.done = done
	c.mu.Unlock()

	c.cancel.Store(false)
	c.state.Store(int32(Building))
	go c.run(slices.Clone(points), done)
	return nil
}

// cancelAndWait requests cancellation and polls until the pass is idle.
func (c *Coordinator) cancelAndWait() {
	if c.State() != Building {
		return
	}
	c.log.Info("cancelling build pass")
	for c.State() == Building {
		c.cancel.Store(true)
		time.Sleep(c.poll)
	}
}

// Wait blocks until the most recently triggered pass has finished.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// State returns Building while a pass runs.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// LastStats returns the statistics of the last finished pass.
func (c *Coordinator) LastStats() PassStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// LastErr returns the error that aborted the last finished pass, if any.
func (c *Coordinator) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Passes returns the number of finished passes.
func (c *Coordinator) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// stop cancels any pass and rejects further triggers.
func (c *Coordinator) stop() {
	c.triggerMu.Lock()
	defer c.triggerMu.Unlock()
	c.stopped = true
	c.cancelAndWait()
}

func (c *Coordinator) run(points []mgl32.Vec3, done chan struct{}) {
	stats := PassStats{Started: time.Now()}
	err := c.pass(points, &stats)
	stats.Duration = time.Since(stats.Started)

	switch {
	case errors.Is(err, ErrInvariantViolation):
		c.log.Error("build pass aborted", zap.Error(err))
	case err != nil:
		c.log.Error("build pass failed", zap.Error(err))
	case stats.Cancelled:
		c.log.Info("build pass cancelled",
			zap.Int("walked", stats.Walked),
			zap.Int("remaining", stats.Chunks-stats.Walked-stats.Culled),
			zap.Duration("duration", stats.Duration))
	default:
		c.log.Info("build pass finished",
			zap.Int("chunks", stats.Chunks),
			zap.Int("walked", stats.Walked),
			zap.Int("culled", stats.Culled),
			zap.Int("surfaces", stats.Surfaces),
			zap.Int("vertices", stats.Vertices),
			zap.Int("empty", stats.Empty),
			zap.Int("exhausted", stats.Exhausted),
			zap.Duration("duration", stats.Duration))
	}

	c.mu.Lock()
	c.last = stats
	c.lastErr = err
	c.passes++
	c.mu.Unlock()

	c.state.Store(int32(Idle))
	close(done)
}

func (c *Coordinator) pass(points []mgl32.Vec3, stats *PassStats) error {
	c.treeMu.Lock()
	defer c.treeMu.Unlock()

	chunks := slices.Clone(c.roots())
	stats.Chunks = len(chunks)

	viewPoint, viewDir := c.viewOf(points)
	if err := c.scheduler.Order(chunks, viewPoint, viewDir); err != nil {
		return err
	}

	for _, n := range chunks {
		if c.cancel.Load() {
			stats.Cancelled = true
			return nil
		}
		if c.scheduler.Culled(n) {
			stats.Culled++
			continue
		}

		items, err := c.subdivider.Build(n, points, stats)
		if err != nil {
			return err
		}
		if err := c.baker.Bake(items); err != nil {
			return err
		}
		stats.Walked++

		runtime.Gosched()
	}
	return nil
}

// viewOf returns the view used for ordering. Without a view source the first
// interaction point is used with no direction, which disables culling.
func (c *Coordinator) viewOf(points []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if c.view != nil {
		return c.view.View()
	}
	if len(points) > 0 {
		return points[0], mgl32.Vec3{}
	}
	return mgl32.Vec3{}, mgl32.Vec3{}
}

// withTree runs fn while no pass is walking the tree.
func (c *Coordinator) withTree(fn func()) {
	c.treeMu.Lock()
	defer c.treeMu.Unlock()
	fn()
}
