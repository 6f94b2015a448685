package core

import (
	"strings"

	"github.com/pkg/errors"
)

// Accelerator answers nearest-intersection queries over a set of objects.
//
// Objects are added, Build is called once, and NearestHit is then safe to call from
// many goroutines as long as nothing is added after the first query.
type Accelerator interface {
	Add(obj *Object) error
	Build() error
	// NearestHit returns the hit with the smallest parameter in [tMin, tMax], or nil
	// when the ray hits nothing. Errors report misuse, never a miss.
	NearestHit(ray Ray, tMin, tMax float64) (*Hit, error)
	Objects() []*Object
	BoundingBox() AABB
}

// Accelerator kinds understood by NewAccelerator.
const (
	KindLinear = "linear"
	KindBVH    = "bvh"
	KindKDTree = "kdtree"
	KindGrid   = "grid"
)

// NewAccelerator creates an empty accelerator of the named kind. BVHs use the default config.
func NewAccelerator(kind string) (Accelerator, error) {
	switch strings.ToLower(kind) {
	case KindLinear, "none":
		return NewLinear(), nil
	case KindBVH, "":
		bvh, err := NewBVH(DefaultBVHConfig())
		if err != nil {
			return nil, err
		}
		return bvh, nil
	case KindKDTree, KindGrid:
		return nil, errors.Wrapf(ErrNotImplemented, "accelerator %q", kind)
	default:
		return nil, Invalidf("unknown accelerator %q", kind)
	}
}

// Linear is the unaccelerated structure: every query scans all objects in insertion order.
type Linear struct {
	objects []*Object
}

// NewLinear creates an empty linear accelerator.
func NewLinear() *Linear {
	return &Linear{}
}

// Add appends an object. Linear structures accept objects at any time.
func (l *Linear) Add(obj *Object) error {
	if obj == nil {
		return Invalidf("object must not be nil")
	}
	l.objects = append(l.objects, obj)
	return nil
}

// Build is a no-op for the linear structure.
func (l *Linear) Build() error {
	return nil
}

// NearestHit scans every object, narrowing tMax as closer hits are found.
func (l *Linear) NearestHit(ray Ray, tMin, tMax float64) (*Hit, error) {
	if len(l.objects) == 0 {
		return nil, ErrNoObjects
	}

	var closest *Hit
	closestSoFar := tMax
	for _, obj := range l.objects {
		if hit, ok := obj.HitTest(ray, tMin, closestSoFar); ok {
			closestSoFar = hit.Parameter()
			closest = hit
		}
	}
	return closest, nil
}

// Objects returns the objects in insertion order.
func (l *Linear) Objects() []*Object {
	out := make([]*Object, len(l.objects))
	copy(out, l.objects)
	return out
}

// BoundingBox returns the union of every object's box.
func (l *Linear) BoundingBox() AABB {
	box := EmptyAABB()
	for _, obj := range l.objects {
		box = box.Union(obj.BoundingBox())
	}
	return box
}
