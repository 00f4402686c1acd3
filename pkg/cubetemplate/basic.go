package cubetemplate

import "github.com/go-gl/mathgl/mgl32"

// VerticesPerFace is two triangles.
const VerticesPerFace = 6

// faceQuads lists each face's triangle-list corners, counter-clockwise when
// viewed from outside, for a unit cube centered on the origin.
var faceQuads = map[Face][VerticesPerFace]mgl32.Vec3{
	FacePosX: {
		{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5},
		{0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5},
	},
	FaceNegX: {
		{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5},
		{-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}, {-0.5, -0.5, -0.5},
	},
	FacePosY: {
		{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5},
		{0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5},
	},
	FaceNegY: {
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5},
		{0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5},
	},
	FacePosZ: {
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5},
		{0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, -0.5, 0.5},
	},
	FaceNegZ: {
		{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, -0.5, -0.5},
	},
}

// Basic builds the unit-cube template: every exposed face contributes one
// quad, so configuration id emits popcount(id)*6 vertices.
func Basic() *Template {
	maxVerts := len(Faces) * VerticesPerFace
	t := &Template{
		VertexCounts: make([]uint32, ConfigurationCount),
		MaxVertices:  maxVerts,
		Vertices:     make([]Vertex, ConfigurationCount*maxVerts),
	}

	for id := 0; id < ConfigurationCount; id++ {
		run := t.Vertices[id*maxVerts : (id+1)*maxVerts]
		n := 0
		for _, f := range Faces {
			if id&int(f) == 0 {
				continue
			}
			normal := f.Normal()
			for _, p := range faceQuads[f] {
				run[n] = Vertex{Position: p, Normal: normal}
				n++
			}
		}
		t.VertexCounts[id] = uint32(n)
	}
	return t
}
