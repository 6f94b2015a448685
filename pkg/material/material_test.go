package material

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	red   = colorful.Color{R: 1}
	blue  = colorful.Color{B: 1}
)

// fakeTrace is a Trace with fixed lights whose secondary rays all return castColor.
type fakeTrace struct {
	ray       core.Ray
	lights    []core.Light
	blocked   bool
	castColor colorful.Color
	cast      []core.Ray
}

func (f *fakeTrace) Ray() core.Ray { return f.ray }

func (f *fakeTrace) Depth() int { return 0 }

func (f *fakeTrace) Lights() []core.Light { return f.lights }

func (f *fakeTrace) Occluded(_, _ r3.Vector) bool { return f.blocked }

func (f *fakeTrace) Cast(ray core.Ray) colorful.Color {
	f.cast = append(f.cast, ray)
	return f.castColor
}

// hitAt fakes a hit of a ray travelling straight down onto the plane y = 0.
func hitAt(uv r2.Point) (*core.Hit, *fakeTrace) {
	ray := core.Ray{Origin: r3.Vector{Y: 1}, Direction: r3.Vector{Y: -1}}
	hit := core.NewHit(1, nil, func() core.Surface {
		return core.Surface{Point: r3.Vector{}, Normal: r3.Vector{Y: 1}, UV: uv, FrontFace: true}
	})
	return hit, &fakeTrace{ray: ray}
}

func shouldBeColor(t *testing.T, got, want colorful.Color) {
	t.Helper()
	test.That(t, got.R, test.ShouldAlmostEqual, want.R, 1e-9)
	test.That(t, got.G, test.ShouldAlmostEqual, want.G, 1e-9)
	test.That(t, got.B, test.ShouldAlmostEqual, want.B, 1e-9)
}

func mustConstant(t *testing.T, c colorful.Color) *Constant {
	t.Helper()
	shader, err := NewConstant(c)
	test.That(t, err, test.ShouldBeNil)
	return shader
}

func TestConstant(t *testing.T) {
	hit, tr := hitAt(r2.Point{})
	shouldBeColor(t, mustConstant(t, red).Shade(hit, tr), red)

	_, err := NewConstant(colorful.Color{R: math.NaN()})
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestPhong(t *testing.T) {
	ambient := colorful.Color{R: 0.1, G: 0.1, B: 0.1}
	phong, err := NewPhong(mustConstant(t, red), ambient, 0.5, 0.25, 10)
	test.That(t, err, test.ShouldBeNil)

	t.Run("no lights", func(t *testing.T) {
		hit, tr := hitAt(r2.Point{})
		shouldBeColor(t, phong.Shade(hit, tr), ambient)
	})

	t.Run("light straight above", func(t *testing.T) {
		hit, tr := hitAt(r2.Point{})
		tr.lights = []core.Light{{Position: r3.Vector{Y: 10}, Color: white}}
		// Full diffuse on the red base, full specular because the view ray reflects onto the light.
		shouldBeColor(t, phong.Shade(hit, tr), colorful.Color{R: 0.1 + 0.5 + 0.25, G: 0.1 + 0.25, B: 0.1 + 0.25})
	})

	t.Run("light below the surface", func(t *testing.T) {
		hit, tr := hitAt(r2.Point{})
		tr.lights = []core.Light{{Position: r3.Vector{Y: -10}, Color: white}}
		shouldBeColor(t, phong.Shade(hit, tr), ambient)
	})

	t.Run("occluded light", func(t *testing.T) {
		hit, tr := hitAt(r2.Point{})
		tr.lights = []core.Light{{Position: r3.Vector{Y: 10}, Color: white}}
		tr.blocked = true
		shouldBeColor(t, phong.Shade(hit, tr), ambient)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, tc := range []struct {
			name                         string
			inner                        core.Shader
			diffuse, specular, shininess float64
		}{
			{"nil inner", nil, 1, 1, 1},
			{"negative diffuse", mustConstant(t, red), -1, 1, 1},
			{"infinite specular", mustConstant(t, red), 1, math.Inf(1), 1},
			{"nan shininess", mustConstant(t, red), 1, 1, math.NaN()},
		} {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewPhong(tc.inner, ambient, tc.diffuse, tc.specular, tc.shininess)
				test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
			})
		}
	})
}

func TestCheckerBoard(t *testing.T) {
	board, err := NewCheckerBoard(mustConstant(t, red), mustConstant(t, blue), 0.5)
	test.That(t, err, test.ShouldBeNil)

	tests := []struct {
		uv   r2.Point
		want colorful.Color
	}{
		{r2.Point{X: 0.1, Y: 0.1}, red},
		{r2.Point{X: 0.6, Y: 0.1}, blue},
		{r2.Point{X: 0.6, Y: 0.6}, red},
		{r2.Point{X: -0.1, Y: 0.1}, blue},
		{r2.Point{X: -0.1, Y: -0.1}, red},
		{r2.Point{X: -0.6, Y: 0.1}, red},
		{r2.Point{X: math.Ldexp(1, 40) + 0.25, Y: 0.6}, blue},
		{r2.Point{X: 1e20, Y: 0.1}, red},
		{r2.Point{X: -1e20, Y: 0.1}, red},
		{r2.Point{X: 1e300, Y: -1e300}, red},
	}
	for _, tc := range tests {
		hit, tr := hitAt(tc.uv)
		shouldBeColor(t, board.Shade(hit, tr), tc.want)
	}

	for _, scale := range []float64{-1, math.Inf(1), math.NaN()} {
		_, err := NewCheckerBoard(mustConstant(t, red), mustConstant(t, blue), scale)
		test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
	}
	_, err = NewCheckerBoard(mustConstant(t, red), mustConstant(t, blue), 0)
	test.That(t, err, test.ShouldWrap, core.ErrNotImplemented)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeFalse)
	_, err = NewCheckerBoard(nil, mustConstant(t, blue), 1)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestMirror(t *testing.T) {
	mirror, err := NewMirror(colorful.Color{R: 1, G: 0.5, B: 1}, 0.8)
	test.That(t, err, test.ShouldBeNil)

	hit, tr := hitAt(r2.Point{})
	tr.castColor = white
	shouldBeColor(t, mirror.Shade(hit, tr), colorful.Color{R: 0.8, G: 0.4, B: 0.8})

	test.That(t, tr.cast, test.ShouldHaveLength, 1)
	test.That(t, tr.cast[0].Direction.Y, test.ShouldAlmostEqual, 1.0)

	_, err = NewMirror(white, 1.5)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestMix(t *testing.T) {
	hit, tr := hitAt(r2.Point{})

	mix, err := NewMix(mustConstant(t, red), mustConstant(t, blue), 0.5)
	test.That(t, err, test.ShouldBeNil)
	shouldBeColor(t, mix.Shade(hit, tr), colorful.Color{R: 0.5, B: 0.5})

	clamped, err := NewMix(mustConstant(t, red), mustConstant(t, blue), 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clamped.Ratio, test.ShouldEqual, 1.0)
	shouldBeColor(t, clamped.Shade(hit, tr), blue)

	_, err = NewMix(mustConstant(t, red), mustConstant(t, blue), math.NaN())
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestTexture(t *testing.T) {
	// Layout:
	//   white black
	//   black white
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)
	img.Set(0, 1, color.Black)
	img.Set(1, 1, color.White)

	path := filepath.Join(t.TempDir(), "checker.png")
	test.That(t, imaging.Save(img, path), test.ShouldBeNil)

	texture, err := LoadTexture(path)
	test.That(t, err, test.ShouldBeNil)

	tests := []struct {
		name string
		uv   r2.Point
		want colorful.Color
	}{
		{"bottom left", r2.Point{X: 0.1, Y: 0.1}, Black},
		{"bottom right", r2.Point{X: 0.9, Y: 0.1}, white},
		{"top left", r2.Point{X: 0.1, Y: 0.9}, white},
		{"wrapped", r2.Point{X: 1.9, Y: -0.1}, Black},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit, tr := hitAt(tc.uv)
			shouldBeColor(t, texture.Shade(hit, tr), tc.want)
		})
	}

	_, err = LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewTexture(nil)
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}
