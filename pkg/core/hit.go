package core

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// HitEpsilon is how far a hit point is pushed off the surface along the normal,
// so secondary rays cast from it do not re-intersect the same surface.
const HitEpsilon = 1e-4

// Surface holds the geometric quantities of an intersection.
type Surface struct {
	Point     r3.Vector // Intersection point, offset by HitEpsilon along Normal
	Normal    r3.Vector // Unit normal facing the side the ray came from
	UV        r2.Point  // Surface parameterization
	FrontFace bool      // Whether the outward normal already faced the ray
}

// SurfaceResolver computes the surface quantities of a hit on demand.
type SurfaceResolver func() Surface

// Hit is a lazily evaluated intersection record. The parameter and object are known
// when the hit is created; point, normal and UV are resolved on first access and cached.
// A Hit is owned by the caller that requested it and is not safe for concurrent use.
type Hit struct {
	t       float64
	object  *Object
	resolve SurfaceResolver
	surface Surface
}

// NewHit creates a hit at parameter t on object whose surface is computed by resolve.
func NewHit(t float64, object *Object, resolve SurfaceResolver) *Hit {
	return &Hit{t: t, object: object, resolve: resolve}
}

// Parameter returns the ray parameter of the intersection.
func (h *Hit) Parameter() float64 {
	return h.t
}

// Object returns the object that was hit.
func (h *Hit) Object() *Object {
	return h.object
}

// Point returns the intersection point.
func (h *Hit) Point() r3.Vector {
	return h.eval().Point
}

// Normal returns the unit surface normal at the intersection.
func (h *Hit) Normal() r3.Vector {
	return h.eval().Normal
}

// UV returns the surface parameterization at the intersection.
func (h *Hit) UV() r2.Point {
	return h.eval().UV
}

// FrontFace reports whether the ray struck the outward-facing side of the surface.
func (h *Hit) FrontFace() bool {
	return h.eval().FrontFace
}

func (h *Hit) eval() *Surface {
	if h.resolve != nil {
		h.surface = h.resolve()
		h.resolve = nil
	}
	return &h.surface
}

// FaceForward orients an outward normal toward the ray's origin side and reports
// whether it already faced that way. A ray grazing the surface counts as front facing.
func FaceForward(ray Ray, outward r3.Vector) (r3.Vector, bool) {
	if ray.Direction.Dot(outward) <= 0 {
		return outward, true
	}
	return outward.Mul(-1), false
}

// OffsetSurface builds a Surface for the point at parameter t of ray, with the normal
// made face-forward and the point pushed HitEpsilon along it.
func OffsetSurface(ray Ray, t float64, outward r3.Vector, uv r2.Point) Surface {
	normal, front := FaceForward(ray, outward)
	return Surface{
		Point:     ray.At(t).Add(normal.Mul(HitEpsilon)),
		Normal:    normal,
		UV:        uv,
		FrontFace: front,
	}
}
