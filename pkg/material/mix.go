package material

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Mix blends the colors of two shaders in RGB
type Mix struct {
	A, B  core.Shader
	Ratio float64 // 0.0 = all A, 1.0 = all B
}

// NewMix creates a new mix shader. The ratio is clamped to [0, 1].
func NewMix(a, b core.Shader, ratio float64) (*Mix, error) {
	if a == nil || b == nil {
		return nil, core.Invalidf("mix shaders must not be nil")
	}
	if math.IsNaN(ratio) {
		return nil, core.Invalidf("mix ratio must be a number")
	}
	ratio = math.Max(0.0, math.Min(ratio, 1.0))
	return &Mix{A: a, B: b, Ratio: ratio}, nil
}

// Shade evaluates both shaders and interpolates between them
func (m *Mix) Shade(hit *core.Hit, tr core.Trace) colorful.Color {
	switch m.Ratio {
	case 0:
		return m.A.Shade(hit, tr)
	case 1:
		return m.B.Shade(hit, tr)
	}
	return m.A.Shade(hit, tr).BlendRgb(m.B.Shade(hit, tr), m.Ratio)
}
