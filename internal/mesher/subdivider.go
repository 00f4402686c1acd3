package mesher

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/octomesh/pkg/geom"
)

// Subdivider refines chunk nodes around interaction points: nodes holding a
// point split into octants, all others are meshed as leaves.
type Subdivider struct {
	pipeline *Pipeline
	baker    *Baker
	factory  ObjectFactory
	log      *zap.Logger
}

// Build refines n for points. It returns the newly generated leaves that
// still need colliders; leaves below n are baked per completed child set.
func (s *Subdivider) Build(n *ChunkNode, points []mgl32.Vec3, stats *PassStats) ([]BakeItem, error) {
	if err := n.check(); err != nil {
		return nil, err
	}
	if n.Level > MinLevel && n.Bounds.ContainsAny(points) {
		return nil, s.split(n, points, stats)
	}
	return s.leaf(n, stats)
}

func (s *Subdivider) split(n *ChunkNode, points []mgl32.Vec3, stats *PassStats) error {
	children, created := s.children(n)

	var fresh []BakeItem
	for _, c := range children {
		items, err := s.Build(c, points, stats)
		if err != nil {
			if created {
				for _, c := range children {
					c.destroy()
				}
			}
			return err
		}
		fresh = append(fresh, items...)
	}
	if err := s.baker.Bake(fresh); err != nil {
		return err
	}

	n.becomeInternal(children)
	return nil
}

// children returns n's existing children or allocates a new set.
func (s *Subdivider) children(n *ChunkNode) (*[geom.OctantCount]*ChunkNode, bool) {
	if in, ok := n.state.(internalState); ok {
		return in.children, false
	}

	level := n.Level - 1
	edge := level.EdgeCubes()
	children := new([geom.OctantCount]*ChunkNode)
	for i := range children {
		o := geom.Octant(i)
		local := mgl32.Vec3{float32(o[0] * edge), float32(o[1] * edge), float32(o[2] * edge)}

		obj := s.factory.NewObject(fmt.Sprintf("%d, %d, %d", o[0], o[1], o[2]))
		obj.SetParent(n.object)
		obj.SetLocalPosition(local)

		offset := [3]int{n.Offset[0] + o[0]*edge, n.Offset[1] + o[1]*edge, n.Offset[2] + o[2]*edge}
		children[i] = newChunkNode(level, offset, n.Bounds.OctantBox(i), obj)
	}
	return children, true
}

func (s *Subdivider) leaf(n *ChunkNode, stats *PassStats) ([]BakeItem, error) {
	if leaf, ok := n.state.(leafState); ok && leaf.surface != nil {
		return nil, nil
	}

	surface, err := s.pipeline.Generate(n.Offset, n.Level)
	switch {
	case errors.Is(err, ErrResourceExhausted):
		s.log.Warn("skipping chunk", zap.Stringer("level", n.Level), zap.Ints("offset", n.Offset[:]), zap.Error(err))
		stats.Exhausted++
		// Whatever the node already shows stays until a later pass succeeds.
		if n.state == nil {
			n.becomeLeaf(nil, nil)
		}
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("building %s: %w", n, err)
	}

	if surface == nil {
		s.log.Debug("empty chunk", zap.Stringer("level", n.Level), zap.Ints("offset", n.Offset[:]))
		stats.Empty++
		n.becomeLeaf(nil, nil)
		return nil, nil
	}

	obj := s.factory.NewObject(surface.ID.String())
	obj.SetParent(n.object)
	obj.AttachRenderable(surface)
	n.becomeLeaf(surface, obj)

	stats.Surfaces++
	stats.Vertices += surface.VertexCount()
	return []BakeItem{{Surface: surface, Target: obj}}, nil
}
