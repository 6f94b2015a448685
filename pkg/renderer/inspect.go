package renderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// InspectResult describes what the primary ray through one pixel hits.
type InspectResult struct {
	X         int                 `json:"x"`
	Y         int                 `json:"y"`
	Origin    [3]float64          `json:"origin"`
	Direction [3]float64          `json:"direction"`
	Hit       bool                `json:"hit"`
	T         float64             `json:"t,omitempty"`
	Point     [3]float64          `json:"point,omitempty"`
	Normal    [3]float64          `json:"normal,omitempty"`
	UV        [2]float64          `json:"uv,omitempty"`
	FrontFace bool                `json:"frontFace,omitempty"`
	Primitive string              `json:"primitive,omitempty"`
	Color     string              `json:"color"`
	Traversal core.TraversalStats `json:"traversal"`
}

// statsAccelerator is implemented by accelerators that can report traversal work.
type statsAccelerator interface {
	NearestHitStats(ray core.Ray, tMin, tMax float64) (*core.Hit, core.TraversalStats, error)
}

// Inspect traces the primary ray through pixel (x, y) and reports the hit.
func (rt *Raytracer) Inspect(x, y int) (InspectResult, error) {
	if x < 0 || x >= rt.config.Width || y < 0 || y >= rt.config.Height {
		return InspectResult{}, core.Invalidf("pixel (%d, %d) outside %dx%d image", x, y, rt.config.Width, rt.config.Height)
	}

	ray := rt.primaryRay(x, y)
	result := InspectResult{
		X:         x,
		Y:         y,
		Origin:    [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z},
		Direction: [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z},
	}

	var (
		hit *core.Hit
		err error
	)
	accel := rt.scene.GetAccelerator()
	if sa, ok := accel.(statsAccelerator); ok {
		hit, result.Traversal, err = sa.NearestHitStats(ray, rt.config.TMin, math.Inf(1))
	} else {
		hit, err = accel.NearestHit(ray, rt.config.TMin, math.Inf(1))
	}
	if err != nil {
		return InspectResult{}, err
	}

	result.Color = rt.Pixel(x, y).Clamped().Hex()
	if hit == nil {
		return result, nil
	}
	point, normal, uv := hit.Point(), hit.Normal(), hit.UV()
	result.Hit = true
	result.T = hit.Parameter()
	result.Point = [3]float64{point.X, point.Y, point.Z}
	result.Normal = [3]float64{normal.X, normal.Y, normal.Z}
	result.UV = [2]float64{uv.X, uv.Y}
	result.FrontFace = hit.FrontFace()
	result.Primitive = primitiveName(hit.Object().Primitive)
	return result, nil
}

// primitiveName returns the primitive's lower-case type name, e.g. "sphere".
func primitiveName(p core.Primitive) string {
	name := fmt.Sprintf("%T", p)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
