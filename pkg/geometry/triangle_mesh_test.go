package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

func quadMesh() *Mesh {
	return &Mesh{
		Vertices: []r3.Vector{vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0)},
		UVs:      []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Faces: []Face{
			{V: [3]int{0, 1, 2}, UV: [3]int{0, 1, 2}},
			{V: [3]int{0, 2, 3}, UV: [3]int{-1, -1, -1}},
		},
	}
}

func TestMesh_Triangles(t *testing.T) {
	mesh := quadMesh()
	triangles, err := mesh.Triangles(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, triangles, test.ShouldHaveLength, 2)

	test.That(t, triangles[0].V2, test.ShouldResemble, vec(1, 1, 0))
	test.That(t, triangles[0].hasUV, test.ShouldBeTrue)
	test.That(t, triangles[1].hasUV, test.ShouldBeFalse)

	box := mesh.BoundingBox()
	test.That(t, box.Min, test.ShouldResemble, vec(0, 0, 0))
	test.That(t, box.Max, test.ShouldResemble, vec(1, 1, 0))
}

func TestMesh_Transform(t *testing.T) {
	transform := &MeshTransform{
		Scale:     2,
		Rotation:  vec(0, 0, math.Pi/2),
		Translate: vec(10, 0, 0),
	}

	triangles, err := quadMesh().Triangles(transform)
	test.That(t, err, test.ShouldBeNil)

	// (1,0,0) scales to (2,0,0), rotates to (0,2,0), then moves to (10,2,0).
	shouldBeNear(t, triangles[0].V1, vec(10, 2, 0), 1e-12)
	shouldBeNear(t, triangles[0].Normal(), vec(0, 0, 1), 1e-12)

	var nilTransform *MeshTransform
	test.That(t, nilTransform.Apply(vec(1, 2, 3)), test.ShouldResemble, vec(1, 2, 3))
}

func TestMesh_BadIndices(t *testing.T) {
	mesh := quadMesh()
	mesh.Faces = append(mesh.Faces, Face{V: [3]int{0, 1, 7}, UV: [3]int{-1, -1, -1}})
	_, err := mesh.Triangles(nil)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	mesh = quadMesh()
	mesh.Faces[0].UV = [3]int{0, 1, 9}
	_, err = mesh.Triangles(nil)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}
