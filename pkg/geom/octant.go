package geom

import "github.com/go-gl/mathgl/mgl32"

// OctantCount is the number of children of an octree node.
const OctantCount = 8

// Octant returns the unit offset of child i. Children are ordered with X
// outermost and Z innermost: i = x*4 + y*2 + z.
func Octant(i int) [3]int {
	return [3]int{(i >> 2) & 1, (i >> 1) & 1, i & 1}
}

// OctantBox returns the sub-box of b covering child i.
func (b AABB) OctantBox(i int) AABB {
	o := Octant(i)
	half := b.Size().Mul(0.5)
	min := b.Min.Add(mgl32.Vec3{
		float32(o[0]) * half.X(),
		float32(o[1]) * half.Y(),
		float32(o[2]) * half.Z(),
	})
	return AABB{Min: min, Max: min.Add(half)}
}
