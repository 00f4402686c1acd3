// Package geom provides axis-aligned boxes and octant helpers for chunked voxel space.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Cube returns the box spanning origin to origin+edge on every axis.
func Cube(origin mgl32.Vec3, edge float32) AABB {
	return AABB{Min: origin, Max: origin.Add(mgl32.Vec3{edge, edge, edge})}
}

// Empty returns an inverted box that any Extend call will replace.
func Empty() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume returns the box volume, zero for inverted boxes.
func (b AABB) Volume() float32 {
	s := b.Size()
	if s.X() <= 0 || s.Y() <= 0 || s.Z() <= 0 {
		return 0
	}
	return s.X() * s.Y() * s.Z()
}

// ContainsStrict reports whether p lies strictly inside the box.
// Points on a face are outside.
func (b AABB) ContainsStrict(p mgl32.Vec3) bool {
	return b.Min.X() < p.X() && p.X() < b.Max.X() &&
		b.Min.Y() < p.Y() && p.Y() < b.Max.Y() &&
		b.Min.Z() < p.Z() && p.Z() < b.Max.Z()
}

// ContainsAny reports whether any of the points lies strictly inside the box.
func (b AABB) ContainsAny(points []mgl32.Vec3) bool {
	for _, p := range points {
		if b.ContainsStrict(p) {
			return true
		}
	}
	return false
}

// Pad grows the box by d on every side.
func (b AABB) Pad(d float32) AABB {
	pad := mgl32.Vec3{d, d, d}
	return AABB{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// Extend grows the box to include p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Min(b.Min.X(), p.X()), math32.Min(b.Min.Y(), p.Y()), math32.Min(b.Min.Z(), p.Z())},
		Max: mgl32.Vec3{math32.Max(b.Max.X(), p.X()), math32.Max(b.Max.Y(), p.Y()), math32.Max(b.Max.Z(), p.Z())},
	}
}

// Union returns the smallest box enclosing both boxes.
func (b AABB) Union(o AABB) AABB {
	return b.Extend(o.Min).Extend(o.Max)
}

// Intersection returns the overlap of two boxes. The result is inverted
// (zero volume) when they do not overlap.
func (b AABB) Intersection(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Max(b.Min.X(), o.Min.X()), math32.Max(b.Min.Y(), o.Min.Y()), math32.Max(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{math32.Min(b.Max.X(), o.Max.X()), math32.Min(b.Max.Y(), o.Max.Y()), math32.Min(b.Max.Z(), o.Max.Z())},
	}
}

// Overlaps reports whether the boxes share any point, faces included.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && o.Min.X() <= b.Max.X() &&
		b.Min.Y() <= o.Max.Y() && o.Min.Y() <= b.Max.Y() &&
		b.Min.Z() <= o.Max.Z() && o.Min.Z() <= b.Max.Z()
}

// LongestAxis returns 0, 1 or 2 for X, Y or Z.
func (b AABB) LongestAxis() int {
	s := b.Size()
	switch {
	case s.Y() > s.X() && s.Y() >= s.Z():
		return 1
	case s.Z() > s.X() && s.Z() > s.Y():
		return 2
	default:
		return 0
	}
}
