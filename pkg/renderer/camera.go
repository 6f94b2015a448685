package renderer

import (
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// CameraConfig places a pinhole camera in the scene.
type CameraConfig struct {
	Center r3.Vector // Eye position
	LookAt r3.Vector // Point the camera faces
	Up     r3.Vector // Approximate up direction
	VFov   float64   // Vertical field of view in degrees
}

// DefaultCameraConfig looks down -Z from the origin with a 40 degree field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center: r3.Vector{X: 0, Y: 0, Z: 0},
		LookAt: r3.Vector{X: 0, Y: 0, Z: -1},
		Up:     r3.Vector{X: 0, Y: 1, Z: 0},
		VFov:   40,
	}
}

// Validate reports every problem with the configuration.
func (c CameraConfig) Validate() error {
	var err error
	err = multierr.Append(err, core.CheckFiniteVec("camera center", c.Center))
	err = multierr.Append(err, core.CheckFiniteVec("camera look-at", c.LookAt))
	err = multierr.Append(err, core.CheckFiniteVec("camera up", c.Up))
	if !(c.VFov > 0 && c.VFov < 180) {
		err = multierr.Append(err, core.Invalidf("camera vfov must be in (0, 180), got %v", c.VFov))
	}
	if err != nil {
		return err
	}

	forward := c.LookAt.Sub(c.Center)
	if forward.Norm2() == 0 {
		return core.Invalidf("camera center and look-at must differ")
	}
	if forward.Cross(c.Up).Norm2() == 0 {
		return core.Invalidf("camera up must not be parallel to the view direction")
	}
	return nil
}

// Camera generates primary rays for rendering
type Camera struct {
	origin          r3.Vector
	lowerLeftCorner r3.Vector
	horizontal      r3.Vector
	vertical        r3.Vector
}

// NewCamera creates a camera for an image with the given width/height ratio.
func NewCamera(config CameraConfig, aspectRatio float64) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !(aspectRatio > 0) || math.IsInf(aspectRatio, 0) {
		return nil, core.Invalidf("camera aspect ratio must be positive, got %v", aspectRatio)
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	viewportWidth := aspectRatio * viewportHeight

	// Orthonormal camera basis; w points backwards from the view direction.
	w := config.Center.Sub(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Mul(viewportWidth)
	vertical := v.Mul(viewportHeight)
	lowerLeftCorner := config.Center.
		Sub(horizontal.Mul(0.5)).
		Sub(vertical.Mul(0.5)).
		Sub(w)

	return &Camera{
		origin:          config.Center,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1 and
// (0, 0) is the bottom-left corner. The direction is normalized.
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Mul(s)).
		Add(c.vertical.Mul(t)).
		Sub(c.origin)

	return core.Ray{Origin: c.origin, Direction: direction.Normalize()}
}
