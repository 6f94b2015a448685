package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

func TestQuad_Hit(t *testing.T) {
	quad, err := NewQuad(vec(-1, -1, 0), vec(2, 0, 0), vec(0, 2, 0))
	test.That(t, err, test.ShouldBeNil)
	obj := object(t, quad)
	shouldBeNear(t, quad.Normal(), vec(0, 0, 1), 1e-12)

	hit, ok := quad.HitTest(ray(vec(0.5, 0, 5), vec(0, 0, -1)), obj, 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hit.Parameter(), test.ShouldAlmostEqual, 5, 1e-12)
	test.That(t, hit.FrontFace(), test.ShouldBeTrue)
	test.That(t, hit.UV().X, test.ShouldAlmostEqual, 0.75, 1e-12)
	test.That(t, hit.UV().Y, test.ShouldAlmostEqual, 0.5, 1e-12)

	// From behind the normal is flipped toward the ray
	hit, ok = quad.HitTest(ray(vec(0, 0, -5), vec(0, 0, 1)), obj, 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hit.FrontFace(), test.ShouldBeFalse)
	shouldBeNear(t, hit.Normal(), vec(0, 0, -1), 1e-12)
}

func TestQuad_Miss(t *testing.T) {
	quad, err := NewQuad(vec(-1, -1, 0), vec(2, 0, 0), vec(0, 2, 0))
	test.That(t, err, test.ShouldBeNil)
	obj := object(t, quad)

	for _, tc := range []struct {
		name       string
		r          core.Ray
		tMin, tMax float64
	}{
		{"outside edge", ray(vec(1.5, 0, 5), vec(0, 0, -1)), 0, math.Inf(1)},
		{"parallel", ray(vec(0, 0, 1), vec(1, 0, 0)), 0, math.Inf(1)},
		{"behind origin", ray(vec(0, 0, 5), vec(0, 0, 1)), 0, math.Inf(1)},
		{"beyond tMax", ray(vec(0, 0, 5), vec(0, 0, -1)), 0, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := quad.HitTest(tc.r, obj, tc.tMin, tc.tMax)
			test.That(t, ok, test.ShouldBeFalse)
		})
	}
}

func TestNewQuad_Invalid(t *testing.T) {
	_, err := NewQuad(vec(0, 0, 0), vec(1, 0, 0), vec(2, 0, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parallel")

	_, err = NewQuad(vec(math.NaN(), 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestBox_Hit(t *testing.T) {
	box, err := NewAxisAlignedBox(vec(-1, -2, -3), vec(1, 2, 3))
	test.That(t, err, test.ShouldBeNil)
	obj := object(t, box)

	bbox := box.BoundingBox()
	shouldBeNear(t, bbox.Min, vec(-1, -2, -3), 1e-12)
	shouldBeNear(t, bbox.Max, vec(1, 2, 3), 1e-12)

	for _, tc := range []struct {
		name      string
		r         core.Ray
		wantT     float64
		wantNorm  r3.Vector
		wantFront bool
	}{
		{"front", ray(vec(0, 0, 10), vec(0, 0, -1)), 7, vec(0, 0, 1), true},
		{"back", ray(vec(0, 0, -10), vec(0, 0, 1)), 7, vec(0, 0, -1), true},
		{"right", ray(vec(10, 0, 0), vec(-1, 0, 0)), 9, vec(1, 0, 0), true},
		{"left", ray(vec(-10, 0, 0), vec(1, 0, 0)), 9, vec(-1, 0, 0), true},
		{"top", ray(vec(0, 10, 0), vec(0, -1, 0)), 8, vec(0, 1, 0), true},
		{"bottom", ray(vec(0, -10, 0), vec(0, 1, 0)), 8, vec(0, -1, 0), true},
		{"inside", ray(vec(0, 0, 0), vec(0, 0, 1)), 3, vec(0, 0, -1), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := box.HitTest(tc.r, obj, 1e-9, math.Inf(1))
			test.That(t, ok, test.ShouldBeTrue)
			test.That(t, hit.Parameter(), test.ShouldAlmostEqual, tc.wantT, 1e-9)
			test.That(t, hit.FrontFace(), test.ShouldEqual, tc.wantFront)
			shouldBeNear(t, hit.Normal(), tc.wantNorm, 1e-9)
		})
	}

	_, ok := box.HitTest(ray(vec(5, 5, 10), vec(0, 0, -1)), obj, 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeFalse)
}

func TestBox_Rotated(t *testing.T) {
	box, err := NewBox(vec(0, 0, 0), vec(1, 1, 1), vec(0, math.Pi/4, 0))
	test.That(t, err, test.ShouldBeNil)

	// Rotating 45° about Y puts an edge toward +Z at distance sqrt(2)
	bbox := box.BoundingBox()
	test.That(t, bbox.Max.Z, test.ShouldAlmostEqual, math.Sqrt2, 1e-9)
	test.That(t, bbox.Max.Y, test.ShouldAlmostEqual, 1, 1e-9)

	// Faces either side of that edge slope away at 45°
	hit, ok := box.HitTest(ray(vec(0.2, 0, 10), vec(0, 0, -1)), object(t, box), 0, math.Inf(1))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, hit.Parameter(), test.ShouldAlmostEqual, 10-(math.Sqrt2-0.2), 1e-9)
}

func TestNewBox_Invalid(t *testing.T) {
	_, err := NewBox(vec(0, 0, 0), vec(1, 0, 1), vec(0, 0, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = NewAxisAlignedBox(vec(1, 1, 1), vec(0, 0, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = NewBox(vec(0, 0, 0), vec(1, 1, 1), vec(math.Inf(1), 0, 0))
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}
