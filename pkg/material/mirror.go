package material

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Mirror reflects the scene, tinted by Tint and attenuated by Reflectance.
type Mirror struct {
	Tint        colorful.Color
	Reflectance float64
}

// NewMirror creates a new mirror shader. Reflectance must lie in [0, 1].
func NewMirror(tint colorful.Color, reflectance float64) (*Mirror, error) {
	if err := checkColor("mirror tint", tint); err != nil {
		return nil, err
	}
	if err := checkCoefficient("mirror reflectance", reflectance); err != nil {
		return nil, err
	}
	if reflectance > 1 {
		return nil, core.Invalidf("mirror reflectance must be at most 1, got %v", reflectance)
	}
	return &Mirror{Tint: tint, Reflectance: reflectance}, nil
}

// Shade casts the reflected ray one level deeper
func (m *Mirror) Shade(hit *core.Hit, tr core.Trace) colorful.Color {
	reflected := tr.Ray().Reflect(hit.Point(), hit.Normal())
	return Scale(Mul(m.Tint, tr.Cast(reflected)), m.Reflectance)
}
