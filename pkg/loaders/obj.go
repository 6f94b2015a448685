package loaders

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
)

// ParseOBJ reads the geometry of a Wavefront OBJ file: "v" and "vt" records and "f"
// records with 1-based or negative (relative) indices in v, v/vt, v//vn or v/vt/vn form.
// Polygons are triangulated as fans around their first vertex. Other records are ignored.
func ParseOBJ(r io.Reader) (*geometry.Mesh, error) {
	mesh := &geometry.Mesh{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			coords, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, core.Invalidf("obj line %d: vertex: %v", lineNum, err)
			}
			mesh.Vertices = append(mesh.Vertices, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
		case "vt":
			coords, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, core.Invalidf("obj line %d: texture coordinate: %v", lineNum, err)
			}
			mesh.UVs = append(mesh.UVs, r2.Point{X: coords[0], Y: coords[1]})
		case "f":
			if len(fields) < 4 {
				return nil, core.Invalidf("obj line %d: face needs at least 3 vertices, got %d", lineNum, len(fields)-1)
			}
			corners := make([][2]int, len(fields)-1)
			for i, token := range fields[1:] {
				v, vt, err := parseFaceToken(token, len(mesh.Vertices), len(mesh.UVs))
				if err != nil {
					return nil, core.Invalidf("obj line %d: %v", lineNum, err)
				}
				corners[i] = [2]int{v, vt}
			}
			for i := 1; i+1 < len(corners); i++ {
				a, b, c := corners[0], corners[i], corners[i+1]
				mesh.Faces = append(mesh.Faces, geometry.Face{
					V:  [3]int{a[0], b[0], c[0]},
					UV: [3]int{a[1], b[1], c[1]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading obj")
	}
	return mesh, nil
}

// parseFloats parses exactly the first n fields as finite numbers; extra fields (such as
// a vertex w component) are ignored.
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, errors.Errorf("expected %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		if !core.IsFinite(f) {
			return nil, errors.Errorf("%q is not finite", fields[i])
		}
		out[i] = f
	}
	return out, nil
}

// parseFaceToken resolves one "v/vt/vn" face corner to 0-based vertex and UV indices.
// The UV index is -1 when absent.
func parseFaceToken(token string, numVertices, numUVs int) (int, int, error) {
	parts := strings.Split(token, "/")
	v, err := resolveIndex(parts[0], numVertices)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "vertex in %q", token)
	}
	vt := -1
	if len(parts) > 1 && parts[1] != "" {
		if vt, err = resolveIndex(parts[1], numUVs); err != nil {
			return 0, 0, errors.Wrapf(err, "texture coordinate in %q", token)
		}
	}
	return v, vt, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case idx > 0 && idx <= count:
		return idx - 1, nil
	case idx < 0 && -idx <= count:
		return count + idx, nil
	default:
		return 0, errors.Errorf("index %d out of range for %d entries", idx, count)
	}
}

// ReadOBJ parses an OBJ model and adds one object per triangle to accel, all shaded by
// shader. Vertices are scaled about the origin and then translated. It returns the
// number of triangles added.
func ReadOBJ(r io.Reader, accel core.Accelerator, shader core.Shader, scale float64, translate r3.Vector) (int, error) {
	if err := core.CheckFinite("obj scale", scale); err != nil {
		return 0, err
	}
	if scale == 0 {
		return 0, core.Invalidf("obj scale must be non-zero")
	}
	if err := core.CheckFiniteVec("obj translation", translate); err != nil {
		return 0, err
	}

	mesh, err := ParseOBJ(r)
	if err != nil {
		return 0, err
	}
	return AddMesh(accel, shader, mesh, &geometry.MeshTransform{Scale: scale, Translate: translate})
}

// LoadOBJ opens filename and reads it with ReadOBJ.
func LoadOBJ(filename string, accel core.Accelerator, shader core.Shader, scale float64, translate r3.Vector) (int, error) {
	if filename == "" {
		return 0, core.Invalidf("obj filename must not be empty")
	}
	file, err := os.Open(filename)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open OBJ file")
	}
	defer file.Close()

	n, err := ReadOBJ(bufio.NewReader(file), accel, shader, scale, translate)
	if err != nil {
		return n, errors.Wrapf(err, "loading %s", filename)
	}
	return n, nil
}
