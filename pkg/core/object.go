package core

import (
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
)

// Primitive is a geometric shape that knows how to intersect a ray with itself.
// Implementations are immutable after construction.
type Primitive interface {
	// HitTest returns the nearest intersection with t in [tMin, tMax], attributed to obj.
	HitTest(ray Ray, obj *Object, tMin, tMax float64) (*Hit, bool)
	BoundingBox() AABB
}

// Light is a point light source.
type Light struct {
	Position r3.Vector
	Color    colorful.Color
}

// Trace is the render loop's view of a single ray being shaded.
type Trace interface {
	Ray() Ray
	Depth() int
	Lights() []Light
	// Cast traces a secondary ray one level deeper and returns its color.
	Cast(ray Ray) colorful.Color
	// Occluded reports whether any surface lies between from and to.
	Occluded(from, to r3.Vector) bool
}

// Shader computes a color for a hit.
type Shader interface {
	Shade(hit *Hit, tr Trace) colorful.Color
}

// Object binds one primitive to one shader. It is the unit stored in an Accelerator.
type Object struct {
	Primitive Primitive
	Shader    Shader
}

// NewObject creates an object, rejecting a missing primitive or shader.
func NewObject(primitive Primitive, shader Shader) (*Object, error) {
	if primitive == nil {
		return nil, Invalidf("object primitive must not be nil")
	}
	if shader == nil {
		return nil, Invalidf("object shader must not be nil")
	}
	return &Object{Primitive: primitive, Shader: shader}, nil
}

// BoundingBox returns the primitive's bounding box.
func (o *Object) BoundingBox() AABB {
	return o.Primitive.BoundingBox()
}

// HitTest intersects the ray with the object's primitive.
func (o *Object) HitTest(ray Ray, tMin, tMax float64) (*Hit, bool) {
	return o.Primitive.HitTest(ray, o, tMin, tMax)
}
