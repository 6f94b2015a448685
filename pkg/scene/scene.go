package scene

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	CameraConfig renderer.CameraConfig
	Background   colorful.Color   // Color of rays that hit nothing
	Lights       []core.Light     // Point lights used by the shaders
	Accelerator  core.Accelerator // Holds every object in the scene
}

// NewScene creates an empty scene backed by accel, with the default camera.
func NewScene(name string, accel core.Accelerator) *Scene {
	return &Scene{
		Name:         name,
		CameraConfig: renderer.DefaultCameraConfig(),
		Accelerator:  accel,
	}
}

// Add wraps primitive and shader in an object and adds it to the accelerator.
func (s *Scene) Add(primitive core.Primitive, shader core.Shader) error {
	obj, err := core.NewObject(primitive, shader)
	if err != nil {
		return err
	}
	return s.Accelerator.Add(obj)
}

// AddLight adds a point light to the scene
func (s *Scene) AddLight(position r3.Vector, c colorful.Color) {
	s.Lights = append(s.Lights, core.Light{Position: position, Color: c})
}

// Build prepares the accelerator for queries. It must be called once all objects have
// been added and before rendering. A nil logger disables logging.
func (s *Scene) Build(logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	start := time.Now()
	if err := s.Accelerator.Build(); err != nil {
		return errors.Wrapf(err, "building scene %q", s.Name)
	}

	if bvh, ok := s.Accelerator.(*core.BVH); ok {
		stats := bvh.Stats()
		logger.Infow("bvh built",
			"scene", s.Name,
			"objects", stats.Objects,
			"unbounded", stats.Unbounded,
			"nodes", stats.Nodes,
			"leaves", stats.Leaves,
			"maxDepth", stats.MaxDepth,
			"meanLeafDepth", stats.MeanLeafDepth,
			"meanLeafSize", stats.MeanLeafSize,
			"split", bvh.Config().Split.String(),
			"duration", time.Since(start))
	} else {
		logger.Infow("scene built", "scene", s.Name, "objects", s.GetPrimitiveCount(), "duration", time.Since(start))
	}
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Accelerator.Objects())
}

// GetCameraConfig implements renderer.Scene
func (s *Scene) GetCameraConfig() renderer.CameraConfig {
	return s.CameraConfig
}

// GetBackground implements renderer.Scene
func (s *Scene) GetBackground() colorful.Color {
	return s.Background
}

// GetLights implements renderer.Scene
func (s *Scene) GetLights() []core.Light {
	return s.Lights
}

// GetAccelerator implements renderer.Scene
func (s *Scene) GetAccelerator() core.Accelerator {
	return s.Accelerator
}
