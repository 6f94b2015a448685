package geometry

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

func TestNewPlane_Invalid(t *testing.T) {
	_, err := NewPlane(vec(0, 0, 0), vec(0, 0, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = NewPlane(vec(math.NaN(), 0, 0), vec(0, 1, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = NewPlaneFromPoints(vec(0, 0, 0), vec(1, 1, 1), vec(2, 2, 2))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestPlane_FromPoints(t *testing.T) {
	plane, err := NewPlaneFromPoints(vec(0, 2, 0), vec(0, 2, 1), vec(1, 2, 0))
	test.That(t, err, test.ShouldBeNil)
	shouldBeNear(t, plane.Normal, vec(0, 1, 0), 1e-12)
	test.That(t, plane.Point, test.ShouldResemble, vec(0, 2, 0))
}

func TestPlane_Hit(t *testing.T) {
	plane, err := NewPlane(vec(0, 0, 0), vec(0, 3, 0))
	test.That(t, err, test.ShouldBeNil)
	shouldBeNear(t, plane.Normal, vec(0, 1, 0), 0)
	obj := object(t, plane)

	t.Run("straight down", func(t *testing.T) {
		hit, ok := plane.HitTest(ray(vec(0, 5, 0), vec(0, -1, 0)), obj, 0, math.Inf(1))
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, hit.Parameter(), test.ShouldAlmostEqual, 5.0)
		shouldBeNear(t, hit.Point(), vec(0, 0, 0), pointTolerance)
		shouldBeNear(t, hit.Normal(), vec(0, 1, 0), 1e-12)
		test.That(t, hit.FrontFace(), test.ShouldBeTrue)
	})

	t.Run("from below", func(t *testing.T) {
		hit, ok := plane.HitTest(ray(vec(1, -2, 1), vec(0, 1, 0)), obj, 0, math.Inf(1))
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, hit.Parameter(), test.ShouldAlmostEqual, 2.0)
		shouldBeNear(t, hit.Normal(), vec(0, -1, 0), 1e-12)
		test.That(t, hit.FrontFace(), test.ShouldBeFalse)
		test.That(t, hit.Point().Y, test.ShouldBeLessThan, 0)
	})

	t.Run("parallel", func(t *testing.T) {
		_, ok := plane.HitTest(ray(vec(0, 5, 0), vec(1, 0, 0)), obj, 0, math.Inf(1))
		test.That(t, ok, test.ShouldBeFalse)
		_, ok = plane.HitTest(ray(vec(0, 0, 0), vec(1, 0, 0)), obj, 0, math.Inf(1))
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("behind origin", func(t *testing.T) {
		_, ok := plane.HitTest(ray(vec(0, 5, 0), vec(0, 1, 0)), obj, math.Inf(-1), math.Inf(1))
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("outside window", func(t *testing.T) {
		_, ok := plane.HitTest(ray(vec(0, 5, 0), vec(0, -1, 0)), obj, 0, 4.9)
		test.That(t, ok, test.ShouldBeFalse)
		_, ok = plane.HitTest(ray(vec(0, 5, 0), vec(0, -1, 0)), obj, 5.1, 10)
		test.That(t, ok, test.ShouldBeFalse)
	})
}

func TestPlane_UV(t *testing.T) {
	plane, err := NewPlane(vec(0, 0, 0), vec(0, 1, 0))
	test.That(t, err, test.ShouldBeNil)
	obj := object(t, plane)

	origin, ok := plane.HitTest(ray(vec(0, 1, 0), vec(0, -1, 0)), obj, 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, origin.UV().X, test.ShouldAlmostEqual, 0.0)
	test.That(t, origin.UV().Y, test.ShouldAlmostEqual, 0.0)

	// UV is a distance-preserving projection onto the plane.
	moved, ok := plane.HitTest(ray(vec(3, 1, 4), vec(0, -1, 0)), obj, 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, moved.UV().Norm(), test.ShouldAlmostEqual, 5.0)
}

func TestPlane_BoundingBox(t *testing.T) {
	t.Run("axis aligned", func(t *testing.T) {
		plane, err := NewPlane(vec(0, -2, 0), vec(0, 1, 0))
		test.That(t, err, test.ShouldBeNil)
		box := plane.BoundingBox()
		test.That(t, box.Min.Y, test.ShouldEqual, -2.0)
		test.That(t, box.Max.Y, test.ShouldEqual, -2.0)
		test.That(t, math.IsInf(box.Min.X, -1), test.ShouldBeTrue)
		test.That(t, math.IsInf(box.Max.Z, 1), test.ShouldBeTrue)
		test.That(t, box.IsFinite(), test.ShouldBeFalse)

		// A ray that crosses the slab is not pruned.
		test.That(t, box.Hit(ray(vec(0, 5, 0), vec(0.3, -1, 0.2)), 0, math.Inf(1)), test.ShouldBeTrue)
	})

	t.Run("oblique", func(t *testing.T) {
		plane, err := NewPlane(vec(0, 0, 0), vec(1, 1, 0))
		test.That(t, err, test.ShouldBeNil)
		box := plane.BoundingBox()
		test.That(t, math.IsInf(box.Min.Y, -1), test.ShouldBeTrue)
		test.That(t, math.IsInf(box.Max.Y, 1), test.ShouldBeTrue)
	})
}
