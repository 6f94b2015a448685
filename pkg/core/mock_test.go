package core

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// mockPrimitive reports hits from hitFn and counts how often it is tested.
type mockPrimitive struct {
	box   AABB
	hitFn func(ray Ray, tMin, tMax float64) (float64, bool)
	calls *int
}

func (m mockPrimitive) HitTest(ray Ray, obj *Object, tMin, tMax float64) (*Hit, bool) {
	if m.calls != nil {
		*m.calls++
	}
	if m.hitFn == nil {
		return nil, false
	}
	t, ok := m.hitFn(ray, tMin, tMax)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}
	return NewHit(t, obj, func() Surface {
		return OffsetSurface(ray, t, ray.Direction.Mul(-1).Normalize(), r2.Point{})
	}), true
}

func (m mockPrimitive) BoundingBox() AABB {
	return m.box
}

type blackShader struct{}

func (blackShader) Shade(*Hit, Trace) colorful.Color {
	return colorful.Color{}
}

func mockObject(box AABB, hitFn func(ray Ray, tMin, tMax float64) (float64, bool)) *Object {
	return &Object{Primitive: mockPrimitive{box: box, hitFn: hitFn}, Shader: blackShader{}}
}

// fixedHit always reports a hit at t, ignoring the ray.
func fixedHit(t float64) func(Ray, float64, float64) (float64, bool) {
	return func(Ray, float64, float64) (float64, bool) {
		return t, true
	}
}

// ball is a sphere expressed through the mock, so core tests do real geometry.
func ball(center r3.Vector, radius float64) *Object {
	box := NewAABB(center.Sub(vec(radius, radius, radius)), center.Add(vec(radius, radius, radius)))
	return mockObject(box, func(ray Ray, tMin, tMax float64) (float64, bool) {
		oc := ray.Origin.Sub(center)
		a := ray.Direction.Norm2()
		halfB := oc.Dot(ray.Direction)
		c := oc.Norm2() - radius*radius
		disc := halfB*halfB - a*c
		if disc < 0 {
			return 0, false
		}
		sq := math.Sqrt(disc)
		for _, t := range []float64{(-halfB - sq) / a, (-halfB + sq) / a} {
			if t >= tMin && t <= tMax {
				return t, true
			}
		}
		return 0, false
	})
}

// ground is the plane y = height, bounded only in y.
func ground(height float64) *Object {
	inf := math.Inf(1)
	box := NewAABB(vec(-inf, height, -inf), vec(inf, height, inf))
	return mockObject(box, func(ray Ray, tMin, tMax float64) (float64, bool) {
		if ray.Direction.Y == 0 {
			return 0, false
		}
		t := (height - ray.Origin.Y) / ray.Direction.Y
		return t, t >= 0
	})
}
