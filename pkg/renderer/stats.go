package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Pixels   int           // Total number of pixels rendered
	Rays     int64         // Primary, secondary and shadow rays cast
	Hits     int64         // Rays that hit a surface and were shaded
	Duration time.Duration // Wall time of the render
}

// RaysPerSecond returns the ray throughput, or 0 for an instantaneous render.
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Rays) / s.Duration.Seconds()
}
