package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/octomesh/internal/mesher"
	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

func TestHierarchy(t *testing.T) {
	s := New()
	a := s.Add("a")
	b := s.Add("b")
	b.SetParent(a)
	a.SetLocalPosition(mgl32.Vec3{1, 2, 3})
	b.SetLocalPosition(mgl32.Vec3{10, 0, 0})

	assert.Same(t, a, b.Parent())
	assert.Same(t, s.Root(), a.Parent())
	assert.Equal(t, mgl32.Vec3{11, 2, 3}, b.WorldPosition())
	assert.Equal(t, 3, s.Stats().Objects)

	var names []string
	s.Walk(func(o *Object, depth int) { names = append(names, o.Name) })
	assert.Equal(t, []string{"scene", "a", "b"}, names)
}

func TestDestroyRemovesSubtree(t *testing.T) {
	s := New()
	a := s.Add("a")
	b := s.Add("b")
	b.SetParent(a)
	c := s.Add("c")

	a.Destroy()
	assert.True(t, a.Destroyed())
	assert.True(t, b.Destroyed())
	assert.False(t, c.Destroyed())
	_, ok := s.Lookup(b.ID)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Stats().Objects)

	a.Destroy()
	s.Root().Destroy()
	assert.False(t, s.Root().Destroyed())
}

func TestAttachments(t *testing.T) {
	s := New()
	o := s.Add("chunk")
	surface := &mesher.Surface{
		Vertices: make([]cubetemplate.Vertex, 6),
		Indices:  []uint32{0, 1, 2, 3, 4, 5},
	}
	o.AttachRenderable(surface)
	o.AttachCollider(mesher.BuildCollider(surface))

	st := s.Stats()
	assert.Equal(t, 1, st.Renderables)
	assert.Equal(t, 1, st.Colliders)
	assert.Equal(t, 6, st.Vertices)
	assert.Equal(t, 2, st.Triangles)
	assert.Same(t, surface, o.Renderable())
	assert.NotNil(t, o.Collider())
}

func TestMesherPopulatesScene(t *testing.T) {
	g, err := voxel.New(16)
	require.NoError(t, err)
	g.Sphere(mgl32.Vec3{8, 8, 8}, 6, 1)

	s := New()
	opts := mesher.DefaultOptions()
	opts.MaxLevel = mesher.Cube16
	opts.Workers = 2
	m, err := mesher.Initialize(g, cubetemplate.Basic(), mesher.Collaborators{Factory: s}, opts)
	require.NoError(t, err)

	origin := mgl32.Vec3{100, 0, 0}
	root, err := m.AddRoot(s.Root(), origin)
	require.NoError(t, err)

	require.NoError(t, m.Trigger([]mgl32.Vec3{{101, 1, 1}}))
	m.Coordinator().Wait()
	require.NoError(t, m.Coordinator().LastErr())

	ts, err := m.Stats()
	require.NoError(t, err)
	st := s.Stats()
	assert.Equal(t, ts.Surfaces, st.Renderables)
	assert.Equal(t, ts.Surfaces, st.Colliders)
	assert.Equal(t, ts.Vertices, st.Vertices)

	// Chunk objects are placed so that their world position is the chunk's min corner.
	mesher.Walk(root, func(n *mesher.ChunkNode) {
		assert.Equal(t, n.Bounds.Min, n.Object().(*Object).WorldPosition(), n.String())
	})

	require.NoError(t, m.Shutdown())
	assert.Equal(t, 1, s.Stats().Objects, "only the scene root remains")
}
