package material

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Texture colors a hit from an image, sampled at the hit's UV with nearest-neighbor filtering.
// UV wraps outside [0, 1); v = 0 is the bottom row of the image.
type Texture struct {
	img    image.Image
	bounds image.Rectangle
}

// NewTexture creates a texture shader over img
func NewTexture(img image.Image) (*Texture, error) {
	if img == nil {
		return nil, core.Invalidf("texture image must not be nil")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, core.Invalidf("texture image is empty")
	}
	return &Texture{img: img, bounds: bounds}, nil
}

// LoadTexture reads an image file and wraps it as a texture shader
func LoadTexture(path string) (*Texture, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading texture %s", path)
	}
	return NewTexture(img)
}

// Shade samples the texel under the hit's UV
func (t *Texture) Shade(hit *core.Hit, _ core.Trace) colorful.Color {
	uv := hit.UV()
	u := uv.X - math.Floor(uv.X)
	v := uv.Y - math.Floor(uv.Y)

	width, height := t.bounds.Dx(), t.bounds.Dy()
	x := min(int(u*float64(width)), width-1)
	y := min(int((1.0-v)*float64(height)), height-1)

	c, _ := colorful.MakeColor(t.img.At(t.bounds.Min.X+x, t.bounds.Min.Y+y))
	return c
}
