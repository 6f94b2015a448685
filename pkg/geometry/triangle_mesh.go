package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Face is one triangle of a mesh, given as indices into the mesh's vertex and UV lists.
type Face struct {
	V  [3]int
	UV [3]int // -1 entries mean the face has no texture coordinates
}

// Mesh is an indexed triangle list, as read from a model file.
type Mesh struct {
	Vertices []r3.Vector
	UVs      []r2.Point
	Faces    []Face
}

// MeshTransform places a mesh in the scene. Vertices are scaled about the origin,
// rotated about Center, then translated.
type MeshTransform struct {
	Scale     float64   // Zero means no scaling
	Rotation  r3.Vector // Euler angles in radians, applied around X, Y, Z in that order
	Center    r3.Vector // Pivot for Rotation
	Translate r3.Vector
}

// Apply transforms a single vertex.
func (mt *MeshTransform) Apply(vertex r3.Vector) r3.Vector {
	if mt == nil {
		return vertex
	}
	if mt.Scale != 0 {
		vertex = vertex.Mul(mt.Scale)
	}
	if mt.Rotation != (r3.Vector{}) {
		vertex = rotateVertex(vertex.Sub(mt.Center), mt.Rotation).Add(mt.Center)
	}
	return vertex.Add(mt.Translate)
}

// Triangles builds one Triangle per face. transform may be nil.
func (m *Mesh) Triangles(transform *MeshTransform) ([]*Triangle, error) {
	vertices := make([]r3.Vector, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = transform.Apply(v)
	}

	triangles := make([]*Triangle, 0, len(m.Faces))
	for i, face := range m.Faces {
		for _, idx := range face.V {
			if idx < 0 || idx >= len(vertices) {
				return nil, core.Invalidf("face %d: vertex index %d out of range [0, %d)", i, idx, len(vertices))
			}
		}
		v0, v1, v2 := vertices[face.V[0]], vertices[face.V[1]], vertices[face.V[2]]

		var (
			triangle *Triangle
			err      error
		)
		if face.hasUV() {
			for _, idx := range face.UV {
				if idx >= len(m.UVs) {
					return nil, core.Invalidf("face %d: uv index %d out of range [0, %d)", i, idx, len(m.UVs))
				}
			}
			triangle, err = NewTriangleWithUV(v0, v1, v2, m.UVs[face.UV[0]], m.UVs[face.UV[1]], m.UVs[face.UV[2]])
		} else {
			triangle, err = NewTriangle(v0, v1, v2)
		}
		if err != nil {
			return nil, err
		}
		triangles = append(triangles, triangle)
	}
	return triangles, nil
}

// BoundingBox returns the box around the untransformed vertices.
func (m *Mesh) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(m.Vertices...)
}

func (f Face) hasUV() bool {
	return f.UV[0] >= 0 && f.UV[1] >= 0 && f.UV[2] >= 0
}

// rotateVertex applies rotation around X, Y, Z axes (in that order)
func rotateVertex(vertex, rotation r3.Vector) r3.Vector {
	if rotation.X != 0 {
		cos, sin := math.Cos(rotation.X), math.Sin(rotation.X)
		vertex = r3.Vector{X: vertex.X, Y: vertex.Y*cos - vertex.Z*sin, Z: vertex.Y*sin + vertex.Z*cos}
	}
	if rotation.Y != 0 {
		cos, sin := math.Cos(rotation.Y), math.Sin(rotation.Y)
		vertex = r3.Vector{X: vertex.X*cos + vertex.Z*sin, Y: vertex.Y, Z: -vertex.X*sin + vertex.Z*cos}
	}
	if rotation.Z != 0 {
		cos, sin := math.Cos(rotation.Z), math.Sin(rotation.Z)
		vertex = r3.Vector{X: vertex.X*cos - vertex.Y*sin, Y: vertex.X*sin + vertex.Y*cos, Z: vertex.Z}
	}
	return vertex
}
