package renderer

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Scene interface to avoid circular imports
type Scene interface {
	GetCameraConfig() CameraConfig
	GetBackground() colorful.Color
	GetLights() []core.Light
	// GetAccelerator returns the scene geometry. It must already be built.
	GetAccelerator() core.Accelerator
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene  Scene
	config Config
	camera *Camera
	logger *zap.SugaredLogger

	rays atomic.Int64
	hits atomic.Int64

	// failure holds the first accelerator error seen during a render.
	failure atomic.Pointer[error]
}

// NewRaytracer creates a new raytracer. A nil logger disables logging.
func NewRaytracer(scene Scene, config Config, logger *zap.SugaredLogger) (*Raytracer, error) {
	if scene == nil {
		return nil, core.Invalidf("scene must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid render config")
	}
	accel := scene.GetAccelerator()
	if accel == nil {
		return nil, core.Invalidf("scene has no accelerator")
	}
	// A zero-width query reports ErrNotBuilt or ErrNoObjects without touching geometry.
	if _, err := accel.NearestHit(core.Ray{Direction: r3.Vector{Z: -1}}, 0, 0); err != nil {
		return nil, errors.Wrap(err, "scene is not ready to render")
	}
	camera, err := NewCamera(scene.GetCameraConfig(), float64(config.Width)/float64(config.Height))
	if err != nil {
		return nil, errors.Wrap(err, "invalid camera")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Raytracer{scene: scene, config: config, camera: camera, logger: logger}, nil
}

// Config returns the render configuration.
func (rt *Raytracer) Config() Config {
	return rt.config
}

// Render traces one ray through the centre of every pixel. Rows are rendered in
// parallel; cancelling ctx stops the render between rows.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	width, height := rt.config.Width, rt.config.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rt.rays.Store(0)
	rt.hits.Store(0)
	rt.failure.Store(nil)

	rt.logger.Debugw("render starting", "width", width, "height", height, "workers", rt.config.workers())
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.config.workers())
	for y := 0; y < height; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Each row writes a disjoint slice of img.Pix.
			for x := 0; x < width; x++ {
				img.SetRGBA(x, y, toRGBA(rt.Pixel(x, y)))
			}
			return rt.err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, RenderStats{}, errors.Wrap(err, "render aborted")
	}
	if err := rt.err(); err != nil {
		return nil, RenderStats{}, errors.Wrap(err, "render aborted")
	}

	stats := RenderStats{
		Pixels:   width * height,
		Rays:     rt.rays.Load(),
		Hits:     rt.hits.Load(),
		Duration: time.Since(start),
	}
	rt.logger.Infow("render finished",
		"pixels", stats.Pixels, "rays", stats.Rays, "hits", stats.Hits, "duration", stats.Duration)
	return img, stats, nil
}

// Pixel returns the color of image pixel (x, y), where y = 0 is the top row.
func (rt *Raytracer) Pixel(x, y int) colorful.Color {
	return rt.shade(rt.primaryRay(x, y), 0)
}

func (rt *Raytracer) primaryRay(x, y int) core.Ray {
	s := (float64(x) + 0.5) / float64(rt.config.Width)
	t := (float64(rt.config.Height-1-y) + 0.5) / float64(rt.config.Height)
	return rt.camera.GetRay(s, t)
}

// shade returns the color seen along ray at the given recursion depth.
func (rt *Raytracer) shade(ray core.Ray, depth int) colorful.Color {
	rt.rays.Add(1)
	hit, err := rt.scene.GetAccelerator().NearestHit(ray, rt.config.TMin, math.Inf(1))
	if err != nil {
		rt.fail(err)
		return colorful.Color{}
	}
	if hit == nil {
		return rt.scene.GetBackground()
	}
	rt.hits.Add(1)
	return hit.Object().Shader.Shade(hit, &trace{rt: rt, ray: ray, depth: depth})
}

// trace is the core.Trace handed to shaders for a single ray.
type trace struct {
	rt    *Raytracer
	ray   core.Ray
	depth int
}

func (t *trace) Ray() core.Ray {
	return t.ray
}

func (t *trace) Depth() int {
	return t.depth
}

func (t *trace) Lights() []core.Light {
	return t.rt.scene.GetLights()
}

// Cast traces a secondary ray. Past the depth limit it contributes black.
func (t *trace) Cast(ray core.Ray) colorful.Color {
	if t.depth+1 >= t.rt.config.MaxDepth {
		return colorful.Color{}
	}
	return t.rt.shade(ray, t.depth+1)
}

// Occluded tests the segment from -> to. The direction is left unnormalized so the
// segment is exactly t in [TMin, 1).
func (t *trace) Occluded(from, to r3.Vector) bool {
	segment := core.Ray{Origin: from, Direction: to.Sub(from)}
	if segment.Direction.Norm2() == 0 {
		return false
	}
	t.rt.rays.Add(1)
	hit, err := t.rt.scene.GetAccelerator().NearestHit(segment, t.rt.config.TMin, 1-1e-9)
	if err != nil {
		t.rt.fail(err)
		return false
	}
	return hit != nil
}

// fail records err if it is the first query error of the current render.
func (rt *Raytracer) fail(err error) {
	if rt.failure.CompareAndSwap(nil, &err) {
		rt.logger.Errorw("nearest hit failed", "error", err)
	}
}

// err returns the first query error recorded by the current render.
func (rt *Raytracer) err() error {
	if p := rt.failure.Load(); p != nil {
		return *p
	}
	return nil
}

// toRGBA clamps c to [0, 1] and converts it to 8-bit RGBA.
func toRGBA(c colorful.Color) color.RGBA {
	c = c.Clamped()
	return color.RGBA{
		R: uint8(math.Round(255 * c.R)),
		G: uint8(math.Round(255 * c.G)),
		B: uint8(math.Round(255 * c.B)),
		A: 255,
	}
}
