package material

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// CheckerBoard alternates two shaders over the hit's UV in square tiles of side Scale.
// Tiles where floor(u/Scale)+floor(v/Scale) is even use A, the others use B.
type CheckerBoard struct {
	A, B  core.Shader
	Scale float64
}

// NewCheckerBoard creates a new checkerboard shader. Scale must be positive and finite;
// a zero scale is a degenerate board and reports core.ErrNotImplemented.
func NewCheckerBoard(a, b core.Shader, scale float64) (*CheckerBoard, error) {
	if a == nil || b == nil {
		return nil, core.Invalidf("checkerboard shaders must not be nil")
	}
	if err := checkCoefficient("checkerboard scale", scale); err != nil {
		return nil, err
	}
	if scale == 0 {
		return nil, errors.Wrap(core.ErrNotImplemented, "checkerboard with zero scale")
	}
	return &CheckerBoard{A: a, B: b, Scale: scale}, nil
}

// Shade picks the tile's shader and delegates to it
func (c *CheckerBoard) Shade(hit *core.Hit, tr core.Trace) colorful.Color {
	uv := hit.UV()
	// Parity stays in float64; huge UVs would overflow an int.
	parity := math.Mod(math.Floor(uv.X/c.Scale)+math.Floor(uv.Y/c.Scale), 2)
	if parity == 0 {
		return c.A.Shade(hit, tr)
	}
	return c.B.Shade(hit, tr)
}
