package mesher

import (
	"cmp"
	"slices"

	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/octomesh/pkg/geom"
)

// maxLeafTriangles is the most triangles a BVH leaf holds.
const maxLeafTriangles = 4

// Triangle is three world-local corner positions.
type Triangle [3]mgl32.Vec3

// Bounds returns the box enclosing the triangle.
func (t Triangle) Bounds() geom.AABB {
	return geom.Empty().Extend(t[0]).Extend(t[1]).Extend(t[2])
}

func (t Triangle) centroid() mgl32.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3)
}

// BVHNode is a node of a collider hierarchy. Leaves have Count > 0 and cover
// Triangles[First:First+Count]; inner nodes point at two children.
type BVHNode struct {
	Bounds      geom.AABB
	Left, Right int32
	First       int32
	Count       int32
}

// IsLeaf reports whether the node holds triangles.
func (n BVHNode) IsLeaf() bool {
	return n.Count > 0
}

// Collider is the collidable form of a surface: its triangles in a bounding
// volume hierarchy.
type Collider struct {
	SurfaceID uuid.UUID
	Triangles []Triangle
	Nodes     []BVHNode
	Bounds    geom.AABB
}

// BuildCollider derives a collider from the surface's triangle list.
func BuildCollider(s *Surface) *Collider {
	n := len(s.Indices) / 3
	c := &Collider{SurfaceID: s.ID, Triangles: make([]Triangle, n), Bounds: geom.Empty()}
	for t := range c.Triangles {
		for k := 0; k < 3; k++ {
			c.Triangles[t][k] = s.Vertices[s.Indices[t*3+k]].Position
		}
	}
	if n == 0 {
		return c
	}

	type span struct{ node, start, end int }

	c.Nodes = append(c.Nodes, BVHNode{})
	var todo deque.Deque[span]
	todo.PushBack(span{0, 0, n})
	for todo.Len() > 0 {
		sp := todo.PopFront()
		tris := c.Triangles[sp.start:sp.end]

		box := geom.Empty()
		for _, t := range tris {
			box = box.Union(t.Bounds())
		}

		if len(tris) <= maxLeafTriangles {
			c.Nodes[sp.node] = BVHNode{Bounds: box, Left: -1, Right: -1, First: int32(sp.start), Count: int32(len(tris))}
			continue
		}

		axis := box.LongestAxis()
		slices.SortFunc(tris, func(a, b Triangle) int {
			return cmp.Compare(a.centroid()[axis], b.centroid()[axis])
		})

		mid := sp.start + len(tris)/2
		left := len(c.Nodes)
		c.Nodes = append(c.Nodes, BVHNode{}, BVHNode{})
		c.Nodes[sp.node] = BVHNode{Bounds: box, Left: int32(left), Right: int32(left + 1)}
		todo.PushBack(span{left, sp.start, mid})
		todo.PushBack(span{left + 1, mid, sp.end})
	}
	c.Bounds = c.Nodes[0].Bounds
	return c
}

// Overlapping returns the indices of triangles whose bounds overlap box.
func (c *Collider) Overlapping(box geom.AABB) []int {
	if len(c.Nodes) == 0 {
		return nil
	}

	var hits []int
	var todo deque.Deque[int32]
	todo.PushBack(0)
	for todo.Len() > 0 {
		node := c.Nodes[todo.PopBack()]
		if !node.Bounds.Overlaps(box) {
			continue
		}
		if node.IsLeaf() {
			for i := node.First; i < node.First+node.Count; i++ {
				if c.Triangles[i].Bounds().Overlaps(box) {
					hits = append(hits, int(i))
				}
			}
			continue
		}
		todo.PushBack(node.Left)
		todo.PushBack(node.Right)
	}
	slices.Sort(hits)
	return hits
}

// BakeItem is a surface waiting for its collider and the object it goes to.
type BakeItem struct {
	Surface *Surface
	Target  Object
}

// Baker turns a batch of new surfaces into colliders in one parallel job.
type Baker struct {
	pool  *Pool
	batch int
}

// Bake builds colliders for items and attaches each to its target.
// Items without vertices are skipped.
func (b *Baker) Bake(items []BakeItem) error {
	items = slices.DeleteFunc(slices.Clone(items), func(it BakeItem) bool {
		return it.Surface == nil || it.Surface.VertexCount() == 0
	})
	if len(items) == 0 {
		return nil
	}

	colliders := make([]*Collider, len(items))
	err := b.pool.ParallelFor(len(items), b.batch, func(i int) {
		colliders[i] = BuildCollider(items[i].Surface)
	})
	if err != nil {
		return err
	}

	for i, it := range items {
		it.Target.AttachCollider(colliders[i])
	}
	return nil
}
