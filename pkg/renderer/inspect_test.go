package renderer

import (
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

func TestInspect_Hit(t *testing.T) {
	rt, err := NewRaytracer(sphereScene(t, core.KindBVH), smallConfig(21), nil)
	test.That(t, err, test.ShouldBeNil)

	result, err := rt.Inspect(10, 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Hit, test.ShouldBeTrue)
	test.That(t, result.T, test.ShouldAlmostEqual, 2.0, 1e-9)
	test.That(t, result.Point[2], test.ShouldAlmostEqual, -2.0, 1e-3)
	test.That(t, result.Normal[0], test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, result.Normal[2], test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, result.FrontFace, test.ShouldBeTrue)
	test.That(t, result.Primitive, test.ShouldEqual, "sphere")
	test.That(t, result.Color, test.ShouldEqual, "#ff0000")
	test.That(t, result.Traversal.NodesVisited, test.ShouldBeGreaterThan, 0)
	test.That(t, result.Traversal.PrimitiveTests, test.ShouldEqual, 1)
}

func TestInspect_MissAndLinear(t *testing.T) {
	rt, err := NewRaytracer(sphereScene(t, core.KindLinear), smallConfig(21), nil)
	test.That(t, err, test.ShouldBeNil)

	result, err := rt.Inspect(0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Hit, test.ShouldBeFalse)
	test.That(t, result.Color, test.ShouldEqual, "#0000ff")
	test.That(t, result.Traversal, test.ShouldResemble, core.TraversalStats{})
}

func TestInspect_OutOfRange(t *testing.T) {
	rt, err := NewRaytracer(sphereScene(t, core.KindLinear), smallConfig(4), nil)
	test.That(t, err, test.ShouldBeNil)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		_, err := rt.Inspect(p[0], p[1])
		test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
	}
}
