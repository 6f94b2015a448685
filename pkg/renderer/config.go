package renderer

import (
	"runtime"

	"go.uber.org/multierr"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

// Config contains rendering configuration
type Config struct {
	Width    int     // Image width in pixels
	Height   int     // Image height in pixels
	MaxDepth int     // Maximum ray recursion depth; primary rays have depth 0
	Workers  int     // Rows rendered concurrently; 0 means runtime.NumCPU()
	TMin     float64 // Smallest accepted hit parameter
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:    400,
		Height:   225,
		MaxDepth: 5,
		Workers:  runtime.NumCPU(),
		TMin:     1e-6,
	}
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var err error
	if c.Width <= 0 {
		err = multierr.Append(err, core.Invalidf("width must be positive, got %d", c.Width))
	}
	if c.Height <= 0 {
		err = multierr.Append(err, core.Invalidf("height must be positive, got %d", c.Height))
	}
	if c.MaxDepth < 1 {
		err = multierr.Append(err, core.Invalidf("max depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, core.Invalidf("workers must not be negative, got %d", c.Workers))
	}
	if !core.IsFinite(c.TMin) || c.TMin < 0 {
		err = multierr.Append(err, core.Invalidf("tmin must be finite and non-negative, got %v", c.TMin))
	}
	return err
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
