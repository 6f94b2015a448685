package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center r3.Vector
	Radius float64
}

// NewSphere creates a new sphere. The radius must be positive and finite.
func NewSphere(center r3.Vector, radius float64) (*Sphere, error) {
	if err := core.CheckFiniteVec("sphere center", center); err != nil {
		return nil, err
	}
	if err := core.CheckFinite("sphere radius", radius); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, core.Invalidf("sphere radius must be positive, got %v", radius)
	}
	return &Sphere{Center: center, Radius: radius}, nil
}

// HitTest tests if a ray intersects with the sphere
func (s *Sphere) HitTest(ray core.Ray, obj *core.Object, tMin, tMax float64) (*core.Hit, bool) {
	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.Norm2()
	halfB := oc.Dot(ray.Direction)
	c := oc.Norm2() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)
	near := (-halfB - sqrtD) / a
	far := (-halfB + sqrtD) / a

	// Sphere entirely behind the origin
	if far < 0 {
		return nil, false
	}

	// Try the closer intersection point first
	root := near
	if root < 0 || root < tMin || root > tMax {
		root = far
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	return core.NewHit(root, obj, func() core.Surface {
		outward := ray.At(root).Sub(s.Center).Mul(1 / s.Radius)
		return core.OffsetSurface(ray, root, outward, sphereUV(outward))
	}), true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := r3.Vector{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return core.NewAABB(s.Center.Sub(radius), s.Center.Add(radius))
}

// sphereUV maps a unit outward normal to longitude u and latitude v, both in [0, 1].
// v runs from the south pole (0) to the north pole (1).
func sphereUV(n r3.Vector) r2.Point {
	theta := math.Acos(math.Max(-1, math.Min(1, -n.Y)))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return r2.Point{X: phi / (2 * math.Pi), Y: theta / math.Pi}
}
