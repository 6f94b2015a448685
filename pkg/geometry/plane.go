package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// parallelEpsilon is the smallest |direction·normal| still treated as crossing the plane.
const parallelEpsilon = 1e-9

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  r3.Vector // A point on the plane
	Normal r3.Vector // Unit normal
	u, v   r3.Vector // Orthonormal basis of the plane used for UV
}

// NewPlane creates a new plane. The normal is normalized and must be non-zero.
func NewPlane(point, normal r3.Vector) (*Plane, error) {
	if err := core.CheckFiniteVec("plane point", point); err != nil {
		return nil, err
	}
	if err := core.CheckFiniteVec("plane normal", normal); err != nil {
		return nil, err
	}
	if normal.Norm2() == 0 {
		return nil, core.Invalidf("plane normal must be non-zero")
	}

	n := normal.Normalize()
	u := planeTangent(n)
	return &Plane{
		Point:  point,
		Normal: n,
		u:      u,
		v:      n.Cross(u),
	}, nil
}

// NewPlaneFromPoints creates the plane through a, b and c, with the normal given by
// the right-hand rule on (b-a, c-a). Collinear points are rejected.
func NewPlaneFromPoints(a, b, c r3.Vector) (*Plane, error) {
	for _, p := range []r3.Vector{a, b, c} {
		if err := core.CheckFiniteVec("plane point", p); err != nil {
			return nil, err
		}
	}
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Norm() < 1e-12 {
		return nil, core.Invalidf("plane points %v, %v, %v are collinear", a, b, c)
	}
	return NewPlane(a, normal)
}

// planeTangent returns a unit vector perpendicular to n, built from the x axis
// unless n is nearly parallel to it.
func planeTangent(n r3.Vector) r3.Vector {
	axis := r3.Vector{X: 1}
	if math.Abs(n.X) > 0.9 {
		axis = r3.Vector{Y: 1}
	}
	return n.Cross(axis).Normalize()
}

// HitTest tests if a ray intersects with the plane
func (p *Plane) HitTest(ray core.Ray, obj *core.Object, tMin, tMax float64) (*core.Hit, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Ray is parallel to the plane
	if math.Abs(denominator) < parallelEpsilon {
		return nil, false
	}

	t := p.Point.Sub(ray.Origin).Dot(p.Normal) / denominator
	if t < 0 || t < tMin || t > tMax {
		return nil, false
	}

	return core.NewHit(t, obj, func() core.Surface {
		d := ray.At(t).Sub(p.Point)
		uv := r2.Point{X: d.Dot(p.u), Y: d.Dot(p.v)}
		return core.OffsetSurface(ray, t, p.Normal, uv)
	}), true
}

// BoundingBox returns an unbounded box. Planes perpendicular to an axis get a
// zero-width slab on that axis.
func (p *Plane) BoundingBox() core.AABB {
	inf := math.Inf(1)
	box := core.NewAABB(r3.Vector{X: -inf, Y: -inf, Z: -inf}, r3.Vector{X: inf, Y: inf, Z: inf})

	switch axisAlignment(p.Normal) {
	case core.AxisX:
		box.Min.X, box.Max.X = p.Point.X, p.Point.X
	case core.AxisY:
		box.Min.Y, box.Max.Y = p.Point.Y, p.Point.Y
	case core.AxisZ:
		box.Min.Z, box.Max.Z = p.Point.Z, p.Point.Z
	}
	return box
}

// axisAlignment returns the axis n points along, or -1 if n is not axis aligned.
func axisAlignment(n r3.Vector) int {
	switch {
	case n.Y == 0 && n.Z == 0:
		return core.AxisX
	case n.X == 0 && n.Z == 0:
		return core.AxisY
	case n.X == 0 && n.Y == 0:
		return core.AxisZ
	default:
		return -1
	}
}
