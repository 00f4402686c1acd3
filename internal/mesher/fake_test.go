package mesher

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

type fakeObject struct {
	factory    *fakeFactory
	name       string
	parent     *fakeObject
	children   []*fakeObject
	position   mgl32.Vec3
	renderable *Surface
	collider   *Collider
	destroyed  bool
}

func (o *fakeObject) AttachRenderable(s *Surface) { o.renderable = s }
func (o *fakeObject) AttachCollider(c *Collider)  { o.collider = c }
func (o *fakeObject) SetLocalPosition(p mgl32.Vec3) {
	o.position = p
}

func (o *fakeObject) SetParent(parent Object) {
	p := parent.(*fakeObject)
	o.parent = p
	p.children = append(p.children, o)
}

func (o *fakeObject) Destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	for _, c := range o.children {
		c.Destroy()
	}
	o.factory.mu.Lock()
	o.factory.live--
	o.factory.mu.Unlock()
}

type fakeFactory struct {
	mu      sync.Mutex
	live    int
	created int
}

func (f *fakeFactory) NewObject(name string) Object {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live++
	f.created++
	return &fakeObject{factory: f, name: name}
}

func (f *fakeFactory) counts() (live, created int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.created
}

type fixedView struct {
	position, forward mgl32.Vec3
}

func (v fixedView) View() (mgl32.Vec3, mgl32.Vec3) { return v.position, v.forward }

func testOptions(level ChunkLevel) Options {
	opts := DefaultOptions()
	opts.MaxLevel = level
	opts.Workers = 4
	opts.PollInterval = 5 * time.Millisecond
	return opts
}

// newTestMesher returns a mesher over a world of the given level filled by fill.
func newTestMesher(t *testing.T, opts Options, fill func(g *voxel.Grid)) (*Mesher, *fakeFactory) {
	t.Helper()
	g, err := voxel.New(opts.MaxLevel.EdgeCubes())
	require.NoError(t, err)
	if fill != nil {
		fill(g)
	}

	factory := &fakeFactory{}
	m, err := Initialize(g, cubetemplate.Basic(), Collaborators{Factory: factory}, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := m.Shutdown(); err != nil && !errors.Is(err, ErrShutdown) {
			t.Errorf("shutdown: %v", err)
		}
	})
	return m, factory
}

func fillAll(g *voxel.Grid) {
	e := g.Edge()
	g.Fill([3]int{0, 0, 0}, [3]int{e, e, e}, 1)
}

func sphere(g *voxel.Grid) {
	c := float32(g.Edge()) / 2
	g.Sphere(mgl32.Vec3{c, c, c}, c*0.8, 1)
}

// build runs one pass and waits for it.
func build(t *testing.T, m *Mesher, points ...mgl32.Vec3) PassStats {
	t.Helper()
	require.NoError(t, m.Trigger(points))
	m.Coordinator().Wait()
	require.NoError(t, m.Coordinator().LastErr())
	return m.Coordinator().LastStats()
}
