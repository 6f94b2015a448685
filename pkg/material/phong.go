package material

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Phong adds ambient, diffuse and specular lighting on top of an inner shader's color.
// Lights hidden from the hit point by other geometry contribute nothing.
type Phong struct {
	Inner     core.Shader
	Ambient   colorful.Color
	Diffuse   float64
	Specular  float64
	Shininess float64
}

// NewPhong creates a new Phong shader. Coefficients must be finite and non-negative.
func NewPhong(inner core.Shader, ambient colorful.Color, diffuse, specular, shininess float64) (*Phong, error) {
	if inner == nil {
		return nil, core.Invalidf("phong inner shader must not be nil")
	}
	if err := checkColor("phong ambient", ambient); err != nil {
		return nil, err
	}
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"phong diffuse", diffuse},
		{"phong specular", specular},
		{"phong shininess", shininess},
	} {
		if err := checkCoefficient(c.name, c.value); err != nil {
			return nil, err
		}
	}
	return &Phong{Inner: inner, Ambient: ambient, Diffuse: diffuse, Specular: specular, Shininess: shininess}, nil
}

// Shade sums the ambient term with the diffuse and specular terms of every visible light
func (p *Phong) Shade(hit *core.Hit, tr core.Trace) colorful.Color {
	base := p.Inner.Shade(hit, tr)
	point := hit.Point()
	normal := hit.Normal()
	reflected := tr.Ray().Reflect(point, normal).Direction

	color := p.Ambient
	for _, light := range tr.Lights() {
		if tr.Occluded(point, light.Position) {
			continue
		}
		toLight := light.Position.Sub(point).Normalize()

		diffuse := math.Max(toLight.Dot(normal), 0)
		color = Add(color, Scale(Mul(base, light.Color), p.Diffuse*diffuse))

		specular := math.Pow(math.Max(toLight.Dot(reflected), 0), p.Shininess)
		color = Add(color, Scale(light.Color, p.Specular*specular))
	}
	return color
}
