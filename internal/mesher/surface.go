package mesher

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/geom"
)

// Surface is the renderable geometry of one leaf chunk, in chunk-local space.
// Indices form a flat triangle list.
type Surface struct {
	ID       uuid.UUID
	Level    ChunkLevel
	Vertices []cubetemplate.Vertex
	Indices  []uint32
	Bounds   geom.AABB
	Color    float32 // gray level of the chunk tint
}

// VertexCount returns the number of vertices.
func (s *Surface) VertexCount() int {
	return len(s.Vertices)
}

// TriangleCount returns the number of triangles.
func (s *Surface) TriangleCount() int {
	return len(s.Indices) / 3
}

// Tint returns the surface color as opaque RGB.
func (s *Surface) Tint() mgl32.Vec3 {
	return mgl32.Vec3{s.Color, s.Color, s.Color}
}

// Object is the presentation-side handle a chunk or surface lives in.
type Object interface {
	AttachRenderable(s *Surface)
	AttachCollider(c *Collider)
	SetParent(parent Object)
	SetLocalPosition(p mgl32.Vec3)
	// Destroy releases the object and every object parented to it.
	Destroy()
}

// ObjectFactory creates presentation objects.
type ObjectFactory interface {
	NewObject(name string) Object
}

// ViewSource provides the view point and direction used to order chunks.
type ViewSource interface {
	View() (position, forward mgl32.Vec3)
}
