package loaders

import (
	"github.com/pkg/errors"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
)

// AddMesh turns every face of mesh into a triangle object shaded by shader and adds it
// to accel. It returns the number of triangles added.
func AddMesh(accel core.Accelerator, shader core.Shader, mesh *geometry.Mesh, transform *geometry.MeshTransform) (int, error) {
	if accel == nil {
		return 0, core.Invalidf("accelerator must not be nil")
	}
	if shader == nil {
		return 0, core.Invalidf("shader must not be nil")
	}

	triangles, err := mesh.Triangles(transform)
	if err != nil {
		return 0, err
	}
	for i, tri := range triangles {
		obj, err := core.NewObject(tri, shader)
		if err != nil {
			return i, err
		}
		if err := accel.Add(obj); err != nil {
			return i, errors.Wrapf(err, "adding triangle %d", i)
		}
	}
	return len(triangles), nil
}
