package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner r3.Vector // One corner of the quad
	U      r3.Vector // First edge vector
	V      r3.Vector // Second edge vector
	normal r3.Vector // Unit normal, U × V
	d      float64   // Plane equation constant: normal · p = d
	w      r3.Vector // Cached n / (n · n) for the planar coordinates of a hit
	bbox   core.AABB
}

// NewQuad creates a new quad from a corner point and two edge vectors. The edges must
// be finite and not parallel.
func NewQuad(corner, u, v r3.Vector) (*Quad, error) {
	for name, vec := range map[string]r3.Vector{"quad corner": corner, "quad edge u": u, "quad edge v": v} {
		if err := core.CheckFiniteVec(name, vec); err != nil {
			return nil, err
		}
	}
	n := u.Cross(v)
	if n.Norm2() == 0 {
		return nil, core.Invalidf("quad edges %v and %v are parallel", u, v)
	}

	normal := n.Normalize()
	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		normal: normal,
		d:      normal.Dot(corner),
		w:      n.Mul(1 / n.Dot(n)),
		bbox:   core.NewAABBFromPoints(corner, corner.Add(u), corner.Add(v), corner.Add(u).Add(v)),
	}, nil
}

// HitTest tests if a ray intersects with the quad
func (q *Quad) HitTest(ray core.Ray, obj *core.Object, tMin, tMax float64) (*core.Hit, bool) {
	denominator := ray.Direction.Dot(q.normal)

	// Ray parallel to the quad's plane
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.d - ray.Origin.Dot(q.normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	// Planar coordinates of the hit along U and V
	p := ray.At(t).Sub(q.Corner)
	alpha := q.w.Dot(p.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(p))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	return core.NewHit(t, obj, func() core.Surface {
		return core.OffsetSurface(ray, t, q.normal, r2.Point{X: alpha, Y: beta})
	}), true
}

// BoundingBox returns the axis-aligned bounding box for this quad
func (q *Quad) BoundingBox() core.AABB {
	return q.bbox
}

// Normal returns the unit normal U × V.
func (q *Quad) Normal() r3.Vector {
	return q.normal
}
