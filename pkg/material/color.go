package material

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Black is the color returned when nothing contributes light.
var Black = colorful.Color{}

// Add sums two colors channel by channel. The result is not clamped.
func Add(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
}

// Mul multiplies two colors channel by channel.
func Mul(a, b colorful.Color) colorful.Color {
	return colorful.Color{R: a.R * b.R, G: a.G * b.G, B: a.B * b.B}
}

// Scale multiplies every channel by f.
func Scale(c colorful.Color, f float64) colorful.Color {
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

func checkColor(name string, c colorful.Color) error {
	for _, v := range []float64{c.R, c.G, c.B} {
		if err := core.CheckFinite(name, v); err != nil {
			return err
		}
	}
	return nil
}

// checkCoefficient rejects negative and non-finite weights.
func checkCoefficient(name string, v float64) error {
	if err := core.CheckFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return core.Invalidf("%s must not be negative, got %v", name, v)
	}
	return nil
}

// Constant shades every hit with one color.
type Constant struct {
	Color colorful.Color
}

// NewConstant creates a new constant shader
func NewConstant(c colorful.Color) (*Constant, error) {
	if err := checkColor("constant color", c); err != nil {
		return nil, err
	}
	return &Constant{Color: c}, nil
}

// Shade returns the constant color regardless of the hit
func (c *Constant) Shade(*core.Hit, core.Trace) colorful.Color {
	return c.Color
}
