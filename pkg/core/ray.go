package core

import "github.com/golang/geo/r3"

// Ray represents a ray with an origin and direction.
// The direction does not need to be unit length.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay creates a new ray, rejecting non-finite input and a zero direction.
func NewRay(origin, direction r3.Vector) (Ray, error) {
	if err := CheckFiniteVec("ray origin", origin); err != nil {
		return Ray{}, err
	}
	if err := CheckFiniteVec("ray direction", direction); err != nil {
		return Ray{}, err
	}
	if direction.Norm2() == 0 {
		return Ray{}, Invalidf("ray direction must be non-zero")
	}
	return Ray{Origin: origin, Direction: direction}, nil
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Reflect returns the mirror reflection of r leaving point about the surface normal.
// The reflected direction is unit length.
func (r Ray) Reflect(point, normal r3.Vector) Ray {
	d := r.Direction.Normalize()
	n := normal.Normalize()
	return Ray{
		Origin:    point,
		Direction: d.Sub(n.Mul(2 * d.Dot(n))),
	}
}
