package mesher

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultFarCullDistance is the distance beyond which chunks behind the view are skipped.
const DefaultFarCullDistance = 256

// Scheduler orders chunks by distance from the view point.
type Scheduler struct {
	pool    *Pool
	batch   int
	farCull float32
}

// Order computes Distance and FacingDot for every chunk and sorts chunks by
// ascending distance. Chunks at equal distance keep their relative order.
func (s *Scheduler) Order(chunks []*ChunkNode, viewPoint, viewDir mgl32.Vec3) error {
	err := s.pool.ParallelFor(len(chunks), s.batch, func(i int) {
		c := chunks[i]
		d := c.Center().Sub(viewPoint)
		c.Distance = math32.Sqrt(d.Dot(d))
		if c.Distance == 0 {
			c.FacingDot = 1
			return
		}
		c.FacingDot = d.Mul(1 / c.Distance).Dot(viewDir)
	})
	if err != nil {
		return err
	}

	slices.SortStableFunc(chunks, func(a, b *ChunkNode) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return nil
}

// Culled reports whether c is behind the view and far enough to skip this pass.
func (s *Scheduler) Culled(c *ChunkNode) bool {
	return c.FacingDot < 0 && c.Distance > s.farCull
}
