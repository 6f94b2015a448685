package scene

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/multierr"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
	"github.com/df07/go-bvh-raytracer/pkg/material"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
)

// NewSphereGridScene creates a scene with a 10x10 grid of spheres on a ground plane.
// Hue varies along X and chroma along Z.
func NewSphereGridScene(accel core.Accelerator) (*Scene, error) {
	s := NewScene("spheregrid", accel)
	s.CameraConfig = renderer.CameraConfig{
		Center: r3.Vector{X: 4.5, Y: 6, Z: 18},    // Farther back and slightly raised
		LookAt: r3.Vector{X: 4.5, Y: 0.8, Z: 4.5}, // Centre of the grid
		Up:     r3.Vector{X: 0, Y: 1, Z: 0},
		VFov:   40,
	}
	s.Background = colorful.Color{R: 0.5, G: 0.7, B: 1.0}
	s.AddLight(r3.Vector{X: 20, Y: 25, Z: 20}, colorful.Color{R: 1, G: 0.96, B: 0.9})

	var errs error
	groundColor, err := material.NewConstant(colorful.Color{R: 0.5, G: 0.5, B: 0.5})
	errs = multierr.Append(errs, err)
	ground, err := material.NewPhong(groundColor, colorful.Color{R: 0.1, G: 0.1, B: 0.1}, 0.8, 0, 1)
	errs = multierr.Append(errs, err)
	plane, err := geometry.NewPlane(r3.Vector{}, r3.Vector{Y: 1})
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}
	errs = multierr.Append(errs, s.Add(plane, ground))

	const (
		gridSize  = 10
		spacing   = 1.0
		radius    = 0.35
		lightness = 0.65
		minChroma = 0.1
		maxChroma = 0.6
	)
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			hue := float64(i) / gridSize * 360
			chroma := minChroma + float64(j)/float64(gridSize-1)*(maxChroma-minChroma)
			// Slight lightness variation for more interest
			l := lightness + 0.1*math.Sin(float64(i+j)*0.5)

			base, err := material.NewConstant(colorful.Hcl(hue, chroma, l).Clamped())
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			shininess := 16 + 16*float64((i+j)%3)
			phong, err := material.NewPhong(base, colorful.Color{R: 0.05, G: 0.05, B: 0.05}, 0.8, 0.5, shininess)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}

			center := r3.Vector{X: float64(i) * spacing, Y: radius, Z: float64(j) * spacing}
			sphere, err := geometry.NewSphere(center, radius)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			errs = multierr.Append(errs, s.Add(sphere, phong))
		}
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}

// NewGrid1000Scene creates a 10x10x10 lattice of small spheres seen from outside. It has
// no ground plane, so every object lives in the BVH.
func NewGrid1000Scene(accel core.Accelerator) (*Scene, error) {
	s := NewScene("grid1000", accel)
	s.CameraConfig = renderer.CameraConfig{
		Center: r3.Vector{X: 22, Y: 18, Z: 26},
		LookAt: r3.Vector{X: 4.5, Y: 4.5, Z: 4.5},
		Up:     r3.Vector{X: 0, Y: 1, Z: 0},
		VFov:   35,
	}
	s.Background = colorful.Color{R: 0.05, G: 0.05, B: 0.08}
	s.AddLight(r3.Vector{X: 30, Y: 40, Z: 30}, colorful.Color{R: 1, G: 1, B: 1})

	var errs error
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			for z := 0; z < 10; z++ {
				c := colorful.Hsv(float64(x*36+y*3), 0.3+0.07*float64(z), 0.9)
				base, err := material.NewConstant(c)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				phong, err := material.NewPhong(base, colorful.Color{R: 0.08, G: 0.08, B: 0.08}, 0.9, 0.3, 24)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				sphere, err := geometry.NewSphere(r3.Vector{X: float64(x), Y: float64(y), Z: float64(z)}, 0.3)
				if err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				errs = multierr.Append(errs, s.Add(sphere, phong))
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}
