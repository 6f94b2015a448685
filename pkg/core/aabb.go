package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// slabSlack widens each slab interval by a relative amount so that a primitive hit
// lying exactly on a box face is never pruned by rounding in the slab test.
const slabSlack = 1e-12

// AABB represents an axis-aligned bounding box.
// Unbounded axes use infinite extents; the empty box has Min=+Inf and Max=-Inf.
type AABB struct {
	Min r3.Vector // Minimum corner
	Max r3.Vector // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max r3.Vector) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the box that encloses nothing. It is the identity for Union.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...r3.Vector) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.Min = minVec(box.Min, p)
		box.Max = maxVec(box.Max, p)
	}
	return box
}

// IsEmpty reports whether the box encloses no point at all.
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// IsFinite reports whether the box is non-empty and bounded on every axis.
func (aabb AABB) IsFinite() bool {
	return !aabb.IsEmpty() && IsFiniteVec(aabb.Min) && IsFiniteVec(aabb.Max)
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, ok := aabb.Intersect(ray, tMin, tMax)
	return ok
}

// Intersect runs the slab test and returns the parameter at which the ray enters the box,
// clamped to tMin. The test is conservative: it only prunes, it never reports geometry.
func (aabb AABB) Intersect(ray Ray, tMin, tMax float64) (float64, bool) {
	if aabb.IsEmpty() {
		return 0, false
	}

	for axis := AxisX; axis <= AxisZ; axis++ {
		lo := Component(aabb.Min, axis)
		hi := Component(aabb.Max, axis)
		origin := Component(ray.Origin, axis)
		direction := Component(ray.Direction, axis)

		// Parallel to the slab: inside it for every t, or never.
		if direction == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		// Divide rather than multiply by the inverse so tiny directions cannot yield 0*Inf.
		t1 := (lo - origin) / direction
		t2 := (hi - origin) / direction
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		t1 -= math.Abs(t1) * slabSlack
		t2 += math.Abs(t2) * slabSlack

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	return tMin, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: minVec(aabb.Min, other.Min), Max: maxVec(aabb.Max, other.Max)}
}

// Contains reports whether other lies entirely inside this box.
func (aabb AABB) Contains(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() r3.Vector {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// Centroid returns the center of the box along one axis.
func (aabb AABB) Centroid(axis int) float64 {
	return 0.5 * (Component(aabb.Min, axis) + Component(aabb.Max, axis))
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() r3.Vector {
	return aabb.Max.Sub(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	if aabb.IsEmpty() {
		return 0
	}
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return AxisX
	}
	if size.Y > size.Z {
		return AxisY
	}
	return AxisZ
}
