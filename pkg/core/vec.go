package core

import (
	"math"

	"github.com/golang/geo/r3"
)

// Axis indices used by bounding boxes and the BVH.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// Component returns the coordinate of v along the given axis.
func Component(v r3.Vector, axis int) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// IsFiniteVec reports whether every component of v is a finite number.
func IsFiniteVec(v r3.Vector) bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CheckFiniteVec returns ErrInvalidArgument if v has a non-finite component.
func CheckFiniteVec(name string, v r3.Vector) error {
	if !IsFiniteVec(v) {
		return Invalidf("%s must be finite, got %v", name, v)
	}
	return nil
}

// CheckFinite returns ErrInvalidArgument if f is NaN or infinite.
func CheckFinite(name string, f float64) error {
	if !IsFinite(f) {
		return Invalidf("%s must be finite, got %v", name, f)
	}
	return nil
}

func minVec(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxVec(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
