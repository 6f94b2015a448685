package renderer

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/geometry"
	"github.com/df07/go-bvh-raytracer/pkg/material"
)

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

// mockScene implements Scene for testing
type mockScene struct {
	camera     CameraConfig
	background colorful.Color
	lights     []core.Light
	accel      core.Accelerator
}

func (m *mockScene) GetCameraConfig() CameraConfig    { return m.camera }
func (m *mockScene) GetBackground() colorful.Color    { return m.background }
func (m *mockScene) GetLights() []core.Light          { return m.lights }
func (m *mockScene) GetAccelerator() core.Accelerator { return m.accel }

func vec(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// sphereScene returns a red unit sphere 3 units in front of a camera at the origin,
// on a blue background.
func sphereScene(t *testing.T, kind string) *mockScene {
	t.Helper()
	accel, err := core.NewAccelerator(kind)
	test.That(t, err, test.ShouldBeNil)
	addSphere(t, accel, vec(0, 0, -3), 1, constant(t, red))
	test.That(t, accel.Build(), test.ShouldBeNil)
	return &mockScene{camera: DefaultCameraConfig(), background: blue, accel: accel}
}

func addSphere(t *testing.T, accel core.Accelerator, center r3.Vector, radius float64, shader core.Shader) {
	t.Helper()
	sphere, err := geometry.NewSphere(center, radius)
	test.That(t, err, test.ShouldBeNil)
	obj, err := core.NewObject(sphere, shader)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, accel.Add(obj), test.ShouldBeNil)
}

func constant(t *testing.T, c colorful.Color) core.Shader {
	t.Helper()
	shader, err := material.NewConstant(c)
	test.That(t, err, test.ShouldBeNil)
	return shader
}

func smallConfig(size int) Config {
	config := DefaultConfig()
	config.Width = size
	config.Height = size
	config.Workers = 4
	return config
}
