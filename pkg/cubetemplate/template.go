// Package cubetemplate provides the precomputed per-configuration cube geometry
// used to mesh voxel cells, and the binary asset format it is stored in.
package cubetemplate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ConfigurationCount is the number of distinct cell configurations: one bit
// per face that may be exposed.
const ConfigurationCount = 64

// Face is a bit in a configuration id.
type Face uint8

// Face bits, in configuration-id bit order.
const (
	FacePosX Face = 1 << iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Faces lists every face in bit order.
var Faces = [6]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	switch f {
	case FacePosX:
		return mgl32.Vec3{1, 0, 0}
	case FaceNegX:
		return mgl32.Vec3{-1, 0, 0}
	case FacePosY:
		return mgl32.Vec3{0, 1, 0}
	case FaceNegY:
		return mgl32.Vec3{0, -1, 0}
	case FacePosZ:
		return mgl32.Vec3{0, 0, 1}
	case FaceNegZ:
		return mgl32.Vec3{0, 0, -1}
	}
	return mgl32.Vec3{}
}

// Vertex is one template vertex. Positions are relative to the cell center.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Template maps a configuration id to a fixed run of vertices.
// Vertices holds MaxVertices slots per configuration; only the first
// VertexCounts[id] of each run are meaningful.
type Template struct {
	VertexCounts []uint32
	MaxVertices  int
	Vertices     []Vertex
}

// Count returns the number of vertices emitted for configuration id.
func (t *Template) Count(id int) uint32 {
	return t.VertexCounts[id]
}

// VerticesOf returns the vertices of configuration id.
func (t *Template) VerticesOf(id int) []Vertex {
	start := id * t.MaxVertices
	return t.Vertices[start : start+int(t.VertexCounts[id])]
}

// Validate checks that counts and vertex storage agree.
func (t *Template) Validate() error {
	if len(t.VertexCounts) != ConfigurationCount {
		return fmt.Errorf("%w: %d", ErrConfigurationCount, len(t.VertexCounts))
	}
	if t.MaxVertices <= 0 {
		return fmt.Errorf("invalid max vertices per configuration: %d", t.MaxVertices)
	}
	if len(t.Vertices) != len(t.VertexCounts)*t.MaxVertices {
		return fmt.Errorf("vertex table holds %d entries, want %d", len(t.Vertices), len(t.VertexCounts)*t.MaxVertices)
	}
	for id, c := range t.VertexCounts {
		if int(c) > t.MaxVertices {
			return fmt.Errorf("configuration %d: %d vertices exceeds max %d", id, c, t.MaxVertices)
		}
		if c%3 != 0 {
			return fmt.Errorf("configuration %d: %d vertices is not a triangle list", id, c)
		}
	}
	return nil
}

// TotalVertices sums the vertex counts of every configuration.
func (t *Template) TotalVertices() int {
	n := 0
	for _, c := range t.VertexCounts {
		n += int(c)
	}
	return n
}
