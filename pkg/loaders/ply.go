package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
)

// maxPLYListLength bounds the entry count of a single list property.
const maxPLYListLength = 1 << 16

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element block declared in the header, such as "vertex" or "face".
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// plyValues yields the numbers of the body one at a time.
type plyValues interface {
	next(dataType string) (float64, error)
}

// LoadPLY loads a PLY file into a mesh
func LoadPLY(filename string) (*geometry.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PLY file")
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	return mesh, nil
}

// ReadPLY reads an ASCII or binary PLY model. Vertex positions come from x, y, z, texture
// coordinates from u/v (or s/t), and faces from the vertex_indices list; polygons are
// triangulated as fans. Every other property is read and discarded.
func ReadPLY(r io.Reader) (*geometry.Mesh, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse PLY header")
	}

	var values plyValues
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(br)
		scanner.Split(bufio.ScanWords)
		values = &plyASCII{scanner: scanner}
	case "binary_little_endian":
		values = &plyBinary{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &plyBinary{r: br, order: binary.BigEndian}
	default:
		return nil, core.Invalidf("unsupported PLY format: %s", header.Format)
	}

	mesh := &geometry.Mesh{}
	for _, element := range header.Elements {
		for i := 0; i < element.Count; i++ {
			if err := readPLYRecord(values, element, mesh); err != nil {
				return nil, errors.Wrapf(err, "%s %d", element.Name, i)
			}
		}
	}
	for i, face := range mesh.Faces {
		for _, v := range face.V {
			if v >= len(mesh.Vertices) {
				return nil, core.Invalidf("triangle %d references vertex %d, but there are %d vertices", i, v, len(mesh.Vertices))
			}
		}
	}
	return mesh, nil
}

// parsePLYHeader parses the PLY header, leaving br positioned at the start of the body
func parsePLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	first := true

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "error reading header")
		}
		parts := strings.Fields(line)
		if first {
			if len(parts) != 1 || parts[0] != "ply" {
				return nil, core.Invalidf("missing ply magic number")
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, core.Invalidf("invalid format line %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "element":
			if len(parts) < 3 {
				return nil, core.Invalidf("invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, core.Invalidf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, core.Invalidf("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			element := &header.Elements[len(header.Elements)-1]
			element.Properties = append(element.Properties, prop)
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, core.Invalidf("invalid property definition")
	}
	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, core.Invalidf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// readPLYRecord reads one record of element and stores the parts the mesh needs.
func readPLYRecord(values plyValues, element PLYElement, mesh *geometry.Mesh) error {
	var pos r3.Vector
	var uv r2.Point
	var hasUV bool
	var corners []int

	for _, prop := range element.Properties {
		if prop.IsList {
			n, err := values.next(prop.ListType)
			if err != nil {
				return err
			}
			if !(n >= 0 && n <= maxPLYListLength) || n != math.Trunc(n) {
				return core.Invalidf("%s list length %v must be an integer in [0, %d]", prop.Name, n, maxPLYListLength)
			}
			indices := prop.Name == "vertex_indices" || prop.Name == "vertex_index"
			list := make([]int, int(n))
			for i := range list {
				v, err := values.next(prop.Type)
				if err != nil {
					return err
				}
				if indices && (!(v >= 0 && v <= math.MaxInt32) || v != math.Trunc(v)) {
					return core.Invalidf("invalid vertex index %v", v)
				}
				list[i] = int(v)
			}
			if indices {
				corners = list
			}
			continue
		}

		v, err := values.next(prop.Type)
		if err != nil {
			return err
		}
		switch prop.Name {
		case "x":
			pos.X = v
		case "y":
			pos.Y = v
		case "z":
			pos.Z = v
		case "u", "s", "texture_u":
			uv.X, hasUV = v, true
		case "v", "t", "texture_v":
			uv.Y, hasUV = v, true
		}
	}

	switch element.Name {
	case "vertex":
		mesh.Vertices = append(mesh.Vertices, pos)
		if hasUV {
			mesh.UVs = append(mesh.UVs, uv)
		}
	case "face":
		if len(corners) < 3 {
			return core.Invalidf("face needs at least 3 vertices, got %d", len(corners))
		}
		for i := 1; i+1 < len(corners); i++ {
			face := geometry.Face{
				V:  [3]int{corners[0], corners[i], corners[i+1]},
				UV: [3]int{-1, -1, -1},
			}
			// PLY texture coordinates are per vertex, so they share the vertex indices.
			if len(mesh.UVs) > 0 {
				face.UV = face.V
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	return nil
}

type plyASCII struct {
	scanner *bufio.Scanner
}

func (p *plyASCII) next(string) (float64, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(p.scanner.Text(), 64)
}

type plyBinary struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (p *plyBinary) next(dataType string) (float64, error) {
	size := plyTypeSize(dataType)
	if size == 0 {
		return 0, core.Invalidf("unsupported PLY data type: %s", dataType)
	}
	b := p.buf[:size]
	if _, err := io.ReadFull(p.r, b); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(p.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(p.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(p.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(p.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(p.order.Uint32(b))), nil
	default:
		return math.Float64frombits(p.order.Uint64(b)), nil
	}
}

// plyTypeSize returns the byte size of a PLY scalar type, or 0 if unknown.
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
