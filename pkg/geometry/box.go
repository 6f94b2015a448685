package geometry

import (
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Box represents a rectangular box made up of 6 quads with optional rotation
type Box struct {
	Center   r3.Vector // Center point of the box
	Size     r3.Vector // Half-extents along each axis
	Rotation r3.Vector // Rotation angles in radians (X, Y, Z)
	faces    [6]*Quad
	bbox     core.AABB
}

// NewBox creates a new box with the given center, half-extents and rotation.
// A size of (1,1,1) creates a 2x2x2 box. Rotation is in radians around X, Y, Z
// (applied in that order) about the center.
func NewBox(center, size, rotation r3.Vector) (*Box, error) {
	for name, vec := range map[string]r3.Vector{"box center": center, "box size": size, "box rotation": rotation} {
		if err := core.CheckFiniteVec(name, vec); err != nil {
			return nil, err
		}
	}
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, core.Invalidf("box size must be positive, got %v", size)
	}

	b := &Box{Center: center, Size: size, Rotation: rotation}
	if err := b.generateFaces(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewAxisAlignedBox creates a new box spanning min to max with no rotation.
func NewAxisAlignedBox(min, max r3.Vector) (*Box, error) {
	return NewBox(min.Add(max).Mul(0.5), max.Sub(min).Mul(0.5), r3.Vector{})
}

// generateFaces creates the 6 outward-facing quads of the box
func (b *Box) generateFaces() error {
	corners := [8]r3.Vector{
		{X: -1, Y: -1, Z: -1}, // 0: left-bottom-back
		{X: 1, Y: -1, Z: -1},  // 1: right-bottom-back
		{X: 1, Y: 1, Z: -1},   // 2: right-top-back
		{X: -1, Y: 1, Z: -1},  // 3: left-top-back
		{X: -1, Y: -1, Z: 1},  // 4: left-bottom-front
		{X: 1, Y: -1, Z: 1},   // 5: right-bottom-front
		{X: 1, Y: 1, Z: 1},    // 6: right-top-front
		{X: -1, Y: 1, Z: 1},   // 7: left-top-front
	}
	for i, c := range corners {
		c = r3.Vector{X: c.X * b.Size.X, Y: c.Y * b.Size.Y, Z: c.Z * b.Size.Z}
		corners[i] = rotateVertex(c, b.Rotation).Add(b.Center)
	}

	// Each face is a corner plus two edges wound so that U × V points outward
	faces := [6][3]int{
		{4, 5, 7}, // front (Z+)
		{1, 0, 2}, // back (Z-)
		{5, 1, 6}, // right (X+)
		{0, 4, 3}, // left (X-)
		{3, 7, 2}, // top (Y+)
		{4, 0, 5}, // bottom (Y-)
	}
	for i, f := range faces {
		origin := corners[f[0]]
		quad, err := NewQuad(origin, corners[f[1]].Sub(origin), corners[f[2]].Sub(origin))
		if err != nil {
			return err
		}
		b.faces[i] = quad
	}

	b.bbox = core.NewAABBFromPoints(corners[:]...)
	return nil
}

// HitTest tests if a ray intersects with any face of the box
func (b *Box) HitTest(ray core.Ray, obj *core.Object, tMin, tMax float64) (*core.Hit, bool) {
	var closest *core.Hit
	for _, face := range b.faces {
		if hit, ok := face.HitTest(ray, obj, tMin, tMax); ok {
			closest = hit
			tMax = hit.Parameter()
		}
	}
	return closest, closest != nil
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}
