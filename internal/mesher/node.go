package mesher

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/octomesh/pkg/geom"
)

// nodeState is either leafState or internalState. A nil state is a node
// that has not been built yet.
type nodeState interface {
	isNodeState()
}

// leafState holds the node's own surface. surface is nil for a chunk with no geometry.
type leafState struct {
	surface *Surface
	object  Object
}

// internalState holds exactly eight children, indexed by geom.Octant order.
type internalState struct {
	children *[geom.OctantCount]*ChunkNode
}

func (leafState) isNodeState()     {}
func (internalState) isNodeState() {}

// ChunkNode is one octree node covering a cubic voxel range.
type ChunkNode struct {
	Level     ChunkLevel
	Offset    [3]int    // voxel-space origin
	Bounds    geom.AABB // world space
	Distance  float32
	FacingDot float32

	object Object
	state  nodeState
}

func newChunkNode(level ChunkLevel, offset [3]int, bounds geom.AABB, object Object) *ChunkNode {
	return &ChunkNode{Level: level, Offset: offset, Bounds: bounds, object: object}
}

// IsLeaf reports whether the node was last built as a leaf.
func (n *ChunkNode) IsLeaf() bool {
	_, ok := n.state.(leafState)
	return ok
}

// IsInternal reports whether the node holds children.
func (n *ChunkNode) IsInternal() bool {
	_, ok := n.state.(internalState)
	return ok
}

// Surface returns the node's surface, or nil when it has none.
func (n *ChunkNode) Surface() *Surface {
	if leaf, ok := n.state.(leafState); ok {
		return leaf.surface
	}
	return nil
}

// Children returns the node's children, or nil for leaves and unbuilt nodes.
func (n *ChunkNode) Children() []*ChunkNode {
	if in, ok := n.state.(internalState); ok && in.children != nil {
		return in.children[:]
	}
	return nil
}

// Object returns the presentation object the node is placed by.
func (n *ChunkNode) Object() Object {
	return n.object
}

// Center returns the world-space center of the chunk.
func (n *ChunkNode) Center() mgl32.Vec3 {
	return n.Bounds.Center()
}

func (n *ChunkNode) String() string {
	return fmt.Sprintf("%s@%v", n.Level, n.Offset)
}

// becomeLeaf replaces the node's contents with surface, held by object.
func (n *ChunkNode) becomeLeaf(surface *Surface, object Object) {
	n.clear()
	n.state = leafState{surface: surface, object: object}
}

// becomeInternal replaces the node's contents with children.
func (n *ChunkNode) becomeInternal(children *[geom.OctantCount]*ChunkNode) {
	if in, ok := n.state.(internalState); ok && in.children == children {
		return
	}
	n.clear()
	n.state = internalState{children: children}
}

// clear releases the surface object or the children subtree.
func (n *ChunkNode) clear() {
	switch s := n.state.(type) {
	case leafState:
		if s.object != nil {
			s.object.Destroy()
		}
	case internalState:
		if s.children != nil {
			for _, c := range s.children {
				if c != nil {
					c.destroy()
				}
			}
		}
	}
	n.state = nil
}

// destroy releases everything the node owns, including its own object.
func (n *ChunkNode) destroy() {
	n.clear()
	if n.object != nil {
		n.object.Destroy()
		n.object = nil
	}
}

// CheckTree verifies the structure under n: every internal node has eight
// children one level down tiling its bounds, and only n itself may be unbuilt.
func CheckTree(n *ChunkNode) error {
	return checkNode(n, true)
}

func checkNode(n *ChunkNode, root bool) error {
	if n.state == nil && !root {
		return fmt.Errorf("%w: %s is unbuilt below a built parent", ErrInvariantViolation, n)
	}
	if err := n.check(); err != nil {
		return err
	}
	for _, c := range n.Children() {
		if err := checkNode(c, false); err != nil {
			return err
		}
	}
	return nil
}

// check verifies n's own state and its direct children.
func (n *ChunkNode) check() error {
	switch s := n.state.(type) {
	case nil:
	case leafState:
		if s.surface != nil && s.object == nil {
			return fmt.Errorf("%w: %s has a surface without an object", ErrInvariantViolation, n)
		}
		if s.surface != nil && len(s.surface.Vertices) != len(s.surface.Indices) {
			return fmt.Errorf("%w: %s has %d vertices and %d indices", ErrInvariantViolation,
				n, len(s.surface.Vertices), len(s.surface.Indices))
		}
	case internalState:
		if n.Level == MinLevel {
			return fmt.Errorf("%w: %s has children", ErrInvariantViolation, n)
		}
		if s.children == nil {
			return fmt.Errorf("%w: %s is internal without children", ErrInvariantViolation, n)
		}
		for i, c := range s.children {
			if c == nil {
				return fmt.Errorf("%w: %s child %d missing", ErrInvariantViolation, n, i)
			}
			if c.Level != n.Level-1 {
				return fmt.Errorf("%w: %s child %d has level %s", ErrInvariantViolation, n, i, c.Level)
			}
			if c.Bounds != n.Bounds.OctantBox(i) {
				return fmt.Errorf("%w: %s child %d bounds %v outside octant", ErrInvariantViolation, n, i, c.Bounds)
			}
		}
	default:
		return fmt.Errorf("%w: %s has unknown state %T", ErrInvariantViolation, n, s)
	}
	return nil
}

// Walk calls fn for n and every node below it, parents first.
func Walk(n *ChunkNode, fn func(*ChunkNode)) {
	fn(n)
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
