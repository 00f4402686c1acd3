// Package scene provides an in-memory scene graph that holds the surfaces
// and colliders produced by the mesher.
package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/octomesh/internal/mesher"
)

// Stats counts the live contents of a scene.
type Stats struct {
	Objects     int
	Renderables int
	Colliders   int
	Vertices    int
	Triangles   int
}

// Scene owns a forest of objects. It is safe for concurrent use.
type Scene struct {
	mu      sync.Mutex
	objects map[uuid.UUID]*Object
	root    *Object
}

// New creates an empty scene with a single root object.
func New() *Scene {
	s := &Scene{objects: make(map[uuid.UUID]*Object)}
	s.root = s.newObject("scene")
	return s
}

// Root returns the scene root. It cannot be destroyed.
func (s *Scene) Root() *Object {
	return s.root
}

// NewObject creates an object parented to the scene root.
func (s *Scene) NewObject(name string) mesher.Object {
	return s.Add(name)
}

// Add creates an object parented to the scene root.
func (s *Scene) Add(name string) *Object {
	o := s.newObject(name)
	o.SetParent(s.root)
	return o
}

func (s *Scene) newObject(name string) *Object {
	o := &Object{scene: s, ID: uuid.New(), Name: name}
	s.mu.Lock()
	s.objects[o.ID] = o
	s.mu.Unlock()
	return o
}

// Lookup returns the live object with id.
func (s *Scene) Lookup(id uuid.UUID) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	return o, ok
}

// Stats counts live objects and the geometry attached to them.
func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	for _, o := range s.objects {
		st.Objects++
		if o.renderable != nil {
			st.Renderables++
			st.Vertices += o.renderable.VertexCount()
			st.Triangles += o.renderable.TriangleCount()
		}
		if o.collider != nil {
			st.Colliders++
		}
	}
	return st
}

// Walk calls fn for every live object, parents first. fn runs with the
// scene locked and must not call Object methods.
func (s *Scene) Walk(fn func(o *Object, depth int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root.walk(0, fn)
}

// Object is a node of the scene graph.
type Object struct {
	scene    *Scene
	ID       uuid.UUID
	Name     string
	parent   *Object
	children []*Object
	position mgl32.Vec3

	renderable *mesher.Surface
	collider   *mesher.Collider
	destroyed  bool
}

// AttachRenderable sets the surface drawn at this object.
func (o *Object) AttachRenderable(s *mesher.Surface) {
	o.scene.mu.Lock()
	o.renderable = s
	o.scene.mu.Unlock()
}

// AttachCollider sets the collider of this object.
func (o *Object) AttachCollider(c *mesher.Collider) {
	o.scene.mu.Lock()
	o.collider = c
	o.scene.mu.Unlock()
}

// SetParent moves o under parent. parent must belong to the same scene.
func (o *Object) SetParent(parent mesher.Object) {
	p := parent.(*Object)

	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	if o.parent != nil {
		o.parent.removeChild(o)
	}
	o.parent = p
	p.children = append(p.children, o)
}

// SetLocalPosition sets the position relative to the parent.
func (o *Object) SetLocalPosition(p mgl32.Vec3) {
	o.scene.mu.Lock()
	o.position = p
	o.scene.mu.Unlock()
}

// LocalPosition returns the position relative to the parent.
func (o *Object) LocalPosition() mgl32.Vec3 {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	return o.position
}

// WorldPosition sums the local positions up to the root.
func (o *Object) WorldPosition() mgl32.Vec3 {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()

	var p mgl32.Vec3
	for n := o; n != nil; n = n.parent {
		p = p.Add(n.position)
	}
	return p
}

// Renderable returns the attached surface.
func (o *Object) Renderable() *mesher.Surface {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	return o.renderable
}

// Collider returns the attached collider.
func (o *Object) Collider() *mesher.Collider {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	return o.collider
}

// Parent returns the parent object, nil for the root.
func (o *Object) Parent() *Object {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	return o.parent
}

// Destroyed reports whether Destroy was called on o or an ancestor.
func (o *Object) Destroyed() bool {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	return o.destroyed
}

// Destroy removes o and its subtree from the scene.
func (o *Object) Destroy() {
	o.scene.mu.Lock()
	defer o.scene.mu.Unlock()
	if o == o.scene.root || o.destroyed {
		return
	}
	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}
	o.destroy()
}

func (o *Object) destroy() {
	o.destroyed = true
	o.renderable = nil
	o.collider = nil
	delete(o.scene.objects, o.ID)
	for _, c := range o.children {
		c.parent = nil
		c.destroy()
	}
	o.children = nil
}

func (o *Object) removeChild(c *Object) {
	for i, x := range o.children {
		if x == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (o *Object) walk(depth int, fn func(*Object, int)) {
	fn(o, depth)
	for _, c := range o.children {
		c.walk(depth+1, fn)
	}
}
