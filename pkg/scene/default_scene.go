package scene

import (
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/multierr"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
	"github.com/df07/go-bvh-raytracer/pkg/material"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
)

// NewDefaultScene creates a default scene: three spheres and a triangle on a checkered
// ground plane, lit by two point lights.
func NewDefaultScene(accel core.Accelerator) (*Scene, error) {
	s := NewScene("default", accel)
	s.CameraConfig = renderer.CameraConfig{
		Center: r3.Vector{X: 0, Y: 1.25, Z: 4},
		LookAt: r3.Vector{X: 0, Y: 0.5, Z: -1},
		Up:     r3.Vector{X: 0, Y: 1, Z: 0},
		VFov:   40,
	}
	s.Background = colorful.Color{R: 0.5, G: 0.7, B: 1.0}
	s.AddLight(r3.Vector{X: 5, Y: 8, Z: 6}, colorful.Color{R: 0.8, G: 0.8, B: 0.8})
	s.AddLight(r3.Vector{X: -6, Y: 4, Z: 2}, colorful.Color{R: 0.3, G: 0.3, B: 0.35})

	var errs error
	shader := func(sh core.Shader, err error) core.Shader {
		errs = multierr.Append(errs, err)
		return sh
	}
	add := func(p core.Primitive, err error) func(core.Shader) {
		return func(sh core.Shader) {
			if err != nil {
				errs = multierr.Append(errs, err)
				return
			}
			errs = multierr.Append(errs, s.Add(p, sh))
		}
	}

	white := shader(material.NewConstant(colorful.Color{R: 0.9, G: 0.9, B: 0.9}))
	grey := shader(material.NewConstant(colorful.Color{R: 0.2, G: 0.2, B: 0.2}))
	checker := shader(material.NewCheckerBoard(white, grey, 0.5))
	ground := shader(material.NewPhong(checker, colorful.Color{R: 0.1, G: 0.1, B: 0.1}, 0.9, 0, 1))

	red := shader(material.NewConstant(colorful.Color{R: 0.8, G: 0.2, B: 0.15}))
	blue := shader(material.NewConstant(colorful.Color{R: 0.15, G: 0.3, B: 0.8}))
	ambient := colorful.Color{R: 0.05, G: 0.05, B: 0.05}
	shinyRed := shader(material.NewPhong(red, ambient, 0.8, 0.6, 48))
	matteBlue := shader(material.NewPhong(blue, ambient, 0.9, 0.1, 8))
	mirror := shader(material.NewMirror(colorful.Color{R: 0.9, G: 0.9, B: 0.9}, 0.85))
	if errs != nil {
		return nil, errs
	}

	add(geometry.NewPlane(r3.Vector{}, r3.Vector{Y: 1}))(ground)
	add(geometry.NewSphere(r3.Vector{X: 0, Y: 0.5, Z: -1}, 0.5))(shinyRed)
	add(geometry.NewSphere(r3.Vector{X: -1.1, Y: 0.5, Z: -1.2}, 0.5))(mirror)
	add(geometry.NewSphere(r3.Vector{X: 1.1, Y: 0.4, Z: -0.8}, 0.4))(matteBlue)
	add(geometry.NewTriangle(
		r3.Vector{X: -0.6, Y: 0.01, Z: 0.4},
		r3.Vector{X: 0.6, Y: 0.01, Z: 0.4},
		r3.Vector{X: 0, Y: 0.8, Z: 0.1},
	))(matteBlue)

	if errs != nil {
		return nil, errs
	}
	return s, nil
}
