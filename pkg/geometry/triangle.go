package geometry

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// triangleEpsilon bounds the determinant below which a ray is taken to lie in the triangle's plane.
const triangleEpsilon = 1e-8

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2    r3.Vector // The three vertices
	UV0, UV1, UV2 r2.Point  // Per-vertex texture coordinates, used when hasUV is set
	hasUV         bool
	normal        r3.Vector // Cached unit normal; zero for degenerate triangles
	bbox          core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices. Its UV is the barycentric
// coordinate pair of the hit. Degenerate triangles are accepted and never hit.
func NewTriangle(v0, v1, v2 r3.Vector) (*Triangle, error) {
	for _, v := range []r3.Vector{v0, v1, v2} {
		if err := core.CheckFiniteVec("triangle vertex", v); err != nil {
			return nil, err
		}
	}

	t := &Triangle{V0: v0, V1: v1, V2: v2}
	t.computeNormal()
	t.computeBoundingBox()
	return t, nil
}

// NewTriangleWithUV creates a triangle whose UV is interpolated from per-vertex coordinates.
func NewTriangleWithUV(v0, v1, v2 r3.Vector, uv0, uv1, uv2 r2.Point) (*Triangle, error) {
	t, err := NewTriangle(v0, v1, v2)
	if err != nil {
		return nil, err
	}
	t.UV0, t.UV1, t.UV2 = uv0, uv1, uv2
	t.hasUV = true
	return t, nil
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
}

// computeBoundingBox calculates and caches the triangle's bounding box
func (t *Triangle) computeBoundingBox() {
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// HitTest tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) HitTest(ray core.Ray, obj *core.Object, tMin, tMax float64) (*core.Hit, bool) {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle, or the triangle is degenerate
	if a > -triangleEpsilon && a < triangleEpsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Sub(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return nil, false
	}

	return core.NewHit(tHit, obj, func() core.Surface {
		return core.OffsetSurface(ray, tHit, t.normal, t.uvAt(u, v))
	}), true
}

// uvAt returns the surface coordinate for barycentric weights u (on V1) and v (on V2).
func (t *Triangle) uvAt(u, v float64) r2.Point {
	if !t.hasUV {
		return r2.Point{X: u, Y: v}
	}
	w := 1 - u - v
	return t.UV0.Mul(w).Add(t.UV1.Mul(u)).Add(t.UV2.Mul(v))
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's unit normal, following the vertex winding.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Degenerate reports whether the vertices are collinear or coincident.
func (t *Triangle) Degenerate() bool {
	return t.normal.Norm2() == 0
}
