package scene

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
	"github.com/df07/go-bvh-raytracer/pkg/loaders"
	"github.com/df07/go-bvh-raytracer/pkg/material"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
)

// File is the YAML scene description.
type File struct {
	Name        string                 `yaml:"name"`
	Camera      *CameraSpec            `yaml:"camera"`
	Background  *Color                 `yaml:"background"`
	Accelerator AcceleratorSpec        `yaml:"accelerator"`
	Lights      []LightSpec            `yaml:"lights"`
	Shaders     map[string]*ShaderSpec `yaml:"shaders"`
	Objects     []ObjectSpec           `yaml:"objects"`
}

// CameraSpec describes the camera. Up defaults to +Y and FOV to 40 degrees.
type CameraSpec struct {
	From Vec     `yaml:"from"`
	At   Vec     `yaml:"at"`
	Up   *Vec    `yaml:"up"`
	FOV  float64 `yaml:"fov"`
}

// AcceleratorSpec selects the acceleration structure. Zero BVH fields keep their defaults.
type AcceleratorSpec struct {
	Kind     string `yaml:"kind"`
	LeafSize int    `yaml:"leafSize"`
	MaxDepth int    `yaml:"maxDepth"`
	Split    string `yaml:"split"`
}

// LightSpec is a point light. Color defaults to white.
type LightSpec struct {
	Position Vec    `yaml:"position"`
	Color    *Color `yaml:"color"`
}

// ShaderSpec describes one shader. Which fields apply depends on Type.
type ShaderSpec struct {
	Type string `yaml:"type"` // constant, phong, checkerboard, mirror, mix, texture

	Color *Color `yaml:"color"` // constant color, mirror tint

	Inner     *ShaderRef `yaml:"inner"`
	Ambient   *Color     `yaml:"ambient"`
	Diffuse   float64    `yaml:"diffuse"`
	Specular  float64    `yaml:"specular"`
	Shininess float64    `yaml:"shininess"`

	A     *ShaderRef `yaml:"a"`
	B     *ShaderRef `yaml:"b"`
	Scale float64    `yaml:"scale"`
	Ratio float64    `yaml:"ratio"`

	Reflectance float64 `yaml:"reflectance"`

	File string `yaml:"file"` // texture image, relative to the scene file
}

// ShaderRef is either the name of a shader in the shaders section or an inline shader.
type ShaderRef struct {
	Name string
	Spec *ShaderSpec
}

// UnmarshalYAML accepts a scalar name or a shader mapping.
func (r *ShaderRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Name = value.Value
		return nil
	}
	r.Spec = &ShaderSpec{}
	return value.Decode(r.Spec)
}

// ObjectSpec describes one scene object. Which fields apply depends on Type.
type ObjectSpec struct {
	Type   string     `yaml:"type"` // sphere, plane, triangle, quad, box, mesh
	Shader *ShaderRef `yaml:"shader"`

	Center Vec     `yaml:"center"`
	Radius float64 `yaml:"radius"`

	Point  Vec  `yaml:"point"` // Plane point or quad corner
	Normal *Vec `yaml:"normal"`

	// Quad edges from Point
	U Vec `yaml:"u"`
	V Vec `yaml:"v"`

	Size Vec `yaml:"size"` // Box half-extents

	// Triangle corners, or three points on a plane given without a normal.
	Vertices []Vec        `yaml:"vertices"`
	UVs      [][2]float64 `yaml:"uvs"`

	File      string  `yaml:"file"`   // .obj or .ply, relative to the scene file
	Scale     float64 `yaml:"scale"`  // Zero means 1
	Rotate    Vec     `yaml:"rotate"` // Degrees about X, Y, Z, around the mesh or box centre
	Translate Vec     `yaml:"translate"`
}

// Vec is a YAML [x, y, z] triple.
type Vec [3]float64

// Vector converts v to an r3.Vector.
func (v Vec) Vector() r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Color is a YAML color: either "#rrggbb" or a linear [r, g, b] triple.
type Color colorful.Color

// UnmarshalYAML accepts hex strings and RGB sequences.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := colorful.Hex(value.Value)
		if err != nil {
			return core.Invalidf("line %d: invalid color %q", value.Line, value.Value)
		}
		*c = Color(parsed)
		return nil
	case yaml.SequenceNode:
		var rgb [3]float64
		if err := value.Decode(&rgb); err != nil {
			return err
		}
		*c = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		return nil
	default:
		return core.Invalidf("line %d: color must be a hex string or [r, g, b]", value.Line)
	}
}

func (c *Color) or(fallback colorful.Color) colorful.Color {
	if c == nil {
		return fallback
	}
	return colorful.Color(*c)
}

var white = colorful.Color{R: 1, G: 1, B: 1}

// LoadFile reads a YAML scene. Relative mesh and texture paths are resolved against
// the scene file's directory. The returned scene is not built yet.
func LoadFile(path string) (*Scene, error) {
	file, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return file.load(path)
}

// ReadFile decodes a YAML scene file without creating any objects.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scene file")
	}
	file, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return file, nil
}

// Parse decodes a YAML scene and creates its objects. Every invalid light, shader and
// object is reported, combined into one error.
func Parse(data []byte, baseDir string) (*Scene, error) {
	file, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return file.Scene(baseDir)
}

// Decode decodes a YAML scene description. Unknown keys are rejected.
func Decode(data []byte) (*File, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.Invalidf("scene file is empty")
		}
		if core.IsInvalidArgument(err) {
			return nil, err
		}
		return nil, core.Invalidf("parsing scene: %v", err)
	}
	return &file, nil
}

func (f *File) load(path string) (*Scene, error) {
	s, err := f.Scene(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Scene creates the scene the file describes.
func (f *File) Scene(baseDir string) (*Scene, error) {
	accel, err := f.Accelerator.build()
	if err != nil {
		return nil, err
	}

	s := NewScene(f.Name, accel)
	s.Background = f.Background.or(colorful.Color{})

	var errs error
	if f.Camera != nil {
		s.CameraConfig = renderer.CameraConfig{
			Center: f.Camera.From.Vector(),
			LookAt: f.Camera.At.Vector(),
			Up:     r3.Vector{Y: 1},
			VFov:   f.Camera.FOV,
		}
		if f.Camera.Up != nil {
			s.CameraConfig.Up = f.Camera.Up.Vector()
		}
		if s.CameraConfig.VFov == 0 {
			s.CameraConfig.VFov = renderer.DefaultCameraConfig().VFov
		}
		errs = multierr.Append(errs, errors.Wrap(s.CameraConfig.Validate(), "camera"))
	}

	for i, light := range f.Lights {
		if err := core.CheckFiniteVec("light position", light.Position.Vector()); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "lights[%d]", i))
			continue
		}
		s.AddLight(light.Position.Vector(), light.Color.or(white))
	}

	b := &builder{
		file:     f,
		baseDir:  baseDir,
		shaders:  map[string]core.Shader{},
		failed:   map[string]error{},
		visiting: map[string]bool{},
	}
	names := lo.Keys(f.Shaders)
	sort.Strings(names)
	for _, name := range names {
		if _, err := b.named(name); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	for i, obj := range f.Objects {
		if obj.Shader != nil && obj.Shader.Spec == nil {
			if _, failed := b.failed[obj.Shader.Name]; failed {
				// Already reported with the shader.
				continue
			}
		}
		if err := b.object(s, obj); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "objects[%d] (%s)", i, obj.Type))
		}
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func (a AcceleratorSpec) build() (core.Accelerator, error) {
	kind := strings.ToLower(a.Kind)
	if kind != "" && kind != core.KindBVH {
		return core.NewAccelerator(kind)
	}

	config := core.DefaultBVHConfig()
	if a.LeafSize != 0 {
		config.LeafSize = a.LeafSize
	}
	if a.MaxDepth != 0 {
		config.MaxDepth = a.MaxDepth
	}
	split, err := core.ParseSplitStrategy(a.Split)
	if err != nil {
		return nil, err
	}
	config.Split = split
	bvh, err := core.NewBVH(config)
	if err != nil {
		return nil, errors.Wrap(err, "accelerator")
	}
	return bvh, nil
}

// builder resolves shader references and creates objects for one file.
type builder struct {
	file     *File
	baseDir  string
	shaders  map[string]core.Shader
	failed   map[string]error
	visiting map[string]bool
}

func (b *builder) shader(ref *ShaderRef) (core.Shader, error) {
	if ref == nil {
		return nil, core.Invalidf("shader is required")
	}
	if ref.Spec != nil {
		return b.build(ref.Spec)
	}
	return b.named(ref.Name)
}

func (b *builder) named(name string) (core.Shader, error) {
	if s, ok := b.shaders[name]; ok {
		return s, nil
	}
	if err, ok := b.failed[name]; ok {
		return nil, err
	}
	spec, ok := b.file.Shaders[name]
	if !ok || spec == nil {
		return nil, core.Invalidf("unknown shader %q", name)
	}
	if b.visiting[name] {
		return nil, core.Invalidf("shader %q refers to itself", name)
	}

	b.visiting[name] = true
	s, err := b.build(spec)
	delete(b.visiting, name)
	if err != nil {
		err = errors.Wrapf(err, "shader %q", name)
		b.failed[name] = err
		return nil, err
	}
	b.shaders[name] = s
	return s, nil
}

func (b *builder) build(spec *ShaderSpec) (core.Shader, error) {
	switch strings.ToLower(spec.Type) {
	case "constant":
		return material.NewConstant(spec.Color.or(white))
	case "phong":
		inner, err := b.shader(spec.Inner)
		if err != nil {
			return nil, errors.Wrap(err, "phong inner")
		}
		return material.NewPhong(inner, spec.Ambient.or(colorful.Color{}), spec.Diffuse, spec.Specular, spec.Shininess)
	case "checkerboard":
		a, bb, err := b.pair(spec)
		if err != nil {
			return nil, err
		}
		return material.NewCheckerBoard(a, bb, spec.Scale)
	case "mix":
		a, bb, err := b.pair(spec)
		if err != nil {
			return nil, err
		}
		return material.NewMix(a, bb, spec.Ratio)
	case "mirror":
		return material.NewMirror(spec.Color.or(white), spec.Reflectance)
	case "texture":
		if spec.File == "" {
			return nil, core.Invalidf("texture file is required")
		}
		return material.LoadTexture(b.path(spec.File))
	default:
		return nil, core.Invalidf("unknown shader type %q", spec.Type)
	}
}

func (b *builder) pair(spec *ShaderSpec) (core.Shader, core.Shader, error) {
	first, err := b.shader(spec.A)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s a", spec.Type)
	}
	second, err := b.shader(spec.B)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s b", spec.Type)
	}
	return first, second, nil
}

func (b *builder) path(name string) string {
	if filepath.IsAbs(name) || b.baseDir == "" {
		return name
	}
	return filepath.Join(b.baseDir, name)
}

func (b *builder) object(s *Scene, obj ObjectSpec) error {
	var primitive core.Primitive
	var err error

	switch strings.ToLower(obj.Type) {
	case "sphere":
		primitive, err = geometry.NewSphere(obj.Center.Vector(), obj.Radius)
	case "plane":
		switch {
		case obj.Normal != nil:
			primitive, err = geometry.NewPlane(obj.Point.Vector(), obj.Normal.Vector())
		case len(obj.Vertices) == 3:
			primitive, err = geometry.NewPlaneFromPoints(obj.Vertices[0].Vector(), obj.Vertices[1].Vector(), obj.Vertices[2].Vector())
		default:
			err = core.Invalidf("plane needs a normal or three vertices")
		}
	case "triangle":
		primitive, err = triangle(obj)
	case "quad":
		primitive, err = geometry.NewQuad(obj.Point.Vector(), obj.U.Vector(), obj.V.Vector())
	case "box":
		primitive, err = geometry.NewBox(obj.Center.Vector(), obj.Size.Vector(), obj.Rotate.Vector().Mul(math.Pi/180))
	case "mesh":
		return b.mesh(s, obj)
	case "cylinder", "cone":
		return errors.Wrapf(core.ErrNotImplemented, "object type %q", obj.Type)
	default:
		return core.Invalidf("unknown object type %q", obj.Type)
	}
	if err != nil {
		return err
	}

	shader, err := b.shader(obj.Shader)
	if err != nil {
		return err
	}
	return s.Add(primitive, shader)
}

func triangle(obj ObjectSpec) (*geometry.Triangle, error) {
	if len(obj.Vertices) != 3 {
		return nil, core.Invalidf("triangle needs 3 vertices, got %d", len(obj.Vertices))
	}
	v0, v1, v2 := obj.Vertices[0].Vector(), obj.Vertices[1].Vector(), obj.Vertices[2].Vector()
	switch len(obj.UVs) {
	case 0:
		return geometry.NewTriangle(v0, v1, v2)
	case 3:
		uv := lo.Map(obj.UVs, func(p [2]float64, _ int) r2.Point { return r2.Point{X: p[0], Y: p[1]} })
		return geometry.NewTriangleWithUV(v0, v1, v2, uv[0], uv[1], uv[2])
	default:
		return nil, core.Invalidf("triangle needs 0 or 3 uvs, got %d", len(obj.UVs))
	}
}

func (b *builder) mesh(s *Scene, obj ObjectSpec) error {
	if obj.File == "" {
		return core.Invalidf("mesh file is required")
	}
	shader, err := b.shader(obj.Shader)
	if err != nil {
		return err
	}

	path := b.path(obj.File)
	var mesh *geometry.Mesh
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mesh, err = loadOBJ(path)
	case ".ply":
		mesh, err = loaders.LoadPLY(path)
	default:
		return core.Invalidf("unsupported mesh format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	scale := obj.Scale
	if scale == 0 {
		scale = 1
	}
	transform := &geometry.MeshTransform{
		Scale:     scale,
		Rotation:  obj.Rotate.Vector().Mul(math.Pi / 180),
		Center:    mesh.BoundingBox().Center().Mul(scale),
		Translate: obj.Translate.Vector(),
	}
	if err := core.CheckFinite("mesh scale", scale); err != nil {
		return err
	}
	if err := core.CheckFiniteVec("mesh rotation", transform.Rotation); err != nil {
		return err
	}
	if err := core.CheckFiniteVec("mesh translation", transform.Translate); err != nil {
		return err
	}

	_, err = loaders.AddMesh(s.Accelerator, shader, mesh, transform)
	return err
}

func loadOBJ(path string) (*geometry.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open OBJ file")
	}
	defer file.Close()
	return loaders.ParseOBJ(file)
}
