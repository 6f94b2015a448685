package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/df07/go-bvh-raytracer/pkg/core"
	"github.com/df07/go-bvh-raytracer/pkg/loaders"
	"github.com/df07/go-bvh-raytracer/pkg/material"
	"github.com/df07/go-bvh-raytracer/pkg/renderer"
	"github.com/df07/go-bvh-raytracer/pkg/scene"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.TimeKey = ""
	}
	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger.Sugar(), nil
}

func sceneFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "scene",
			Aliases: []string{"s"},
			Value:   "default",
			Usage:   "built-in scene name or path to a .yaml scene file",
			EnvVars: []string{"RAYTRACER_SCENE"},
		},
		&cli.StringFlag{
			Name:    "accel",
			Usage:   "accelerator: bvh or linear (default: the scene's own)",
			EnvVars: []string{"RAYTRACER_ACCEL"},
		},
	}
}

func newApp() *cli.App {
	var logger *zap.SugaredLogger

	return &cli.App{
		Name:  "raytracer",
		Usage: "render scenes with a BVH-accelerated ray tracer",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"RAYTRACER_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool("debug"))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "render a scene to an image file",
				Flags: append(sceneFlags(),
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output file; .ppm or any format imaging supports (default output/<scene>.png)",
						EnvVars: []string{"RAYTRACER_OUT"},
					},
					&cli.IntFlag{Name: "width", Value: renderer.DefaultConfig().Width, EnvVars: []string{"RAYTRACER_WIDTH"}},
					&cli.IntFlag{Name: "height", Value: renderer.DefaultConfig().Height, EnvVars: []string{"RAYTRACER_HEIGHT"}},
					&cli.IntFlag{Name: "depth", Value: renderer.DefaultConfig().MaxDepth, Usage: "maximum ray depth", EnvVars: []string{"RAYTRACER_DEPTH"}},
					&cli.IntFlag{Name: "workers", Usage: "rows rendered concurrently (0 = all CPUs)", EnvVars: []string{"RAYTRACER_WORKERS"}},
					&cli.StringFlag{Name: "obj", Usage: "add an OBJ model to the scene"},
					&cli.Float64Flag{Name: "obj-scale", Value: 1, Usage: "scale applied to the OBJ model"},
					&cli.Float64SliceFlag{Name: "obj-translate", Usage: "translation applied to the OBJ model after scaling (x,y,z)"},
				),
				Action: func(c *cli.Context) error {
					return renderCommand(c, logger)
				},
			},
			{
				Name:  "stats",
				Usage: "build a scene's accelerator and print its statistics",
				Flags: sceneFlags(),
				Action: func(c *cli.Context) error {
					return statsCommand(c, logger)
				},
			},
			{
				Name:  "scenes",
				Usage: "list built-in scenes and the YAML scenes in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "scenes", Usage: "directory to scan for .yaml scenes", EnvVars: []string{"RAYTRACER_SCENES_DIR"}},
				},
				Action: func(c *cli.Context) error {
					return scenesCommand(c, logger)
				},
			},
		},
	}
}

func renderCommand(c *cli.Context, logger *zap.SugaredLogger) error {
	s, err := scene.Open(c.String("scene"), c.String("accel"))
	if err != nil {
		return err
	}
	if path := c.String("obj"); path != "" {
		if err := addModel(c, s, path, logger); err != nil {
			return err
		}
	}
	if err := s.Build(logger); err != nil {
		return err
	}

	config := renderer.DefaultConfig()
	config.Width = c.Int("width")
	config.Height = c.Int("height")
	config.MaxDepth = c.Int("depth")
	config.Workers = c.Int("workers")

	rt, err := renderer.NewRaytracer(s, config, logger)
	if err != nil {
		return err
	}
	img, stats, err := rt.Render(c.Context)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = filepath.Join("output", s.Name+".png")
	}
	if err := renderer.SaveImage(img, out); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Rendered %s (%dx%d) in %v: %d rays, %d hits, %.0f rays/s\n",
		s.Name, config.Width, config.Height, stats.Duration, stats.Rays, stats.Hits, stats.RaysPerSecond())
	fmt.Fprintf(c.App.Writer, "Saved %s\n", out)
	return nil
}

// addModel loads an OBJ model into s with a neutral grey Phong shader.
func addModel(c *cli.Context, s *scene.Scene, path string, logger *zap.SugaredLogger) error {
	var translate r3.Vector
	if t := c.Float64Slice("obj-translate"); len(t) > 0 {
		if len(t) != 3 {
			return core.Invalidf("obj-translate needs 3 values, got %d", len(t))
		}
		translate = r3.Vector{X: t[0], Y: t[1], Z: t[2]}
	}

	grey, err := material.NewConstant(colorful.Color{R: 0.7, G: 0.7, B: 0.7})
	if err != nil {
		return err
	}
	shader, err := material.NewPhong(grey, colorful.Color{R: 0.05, G: 0.05, B: 0.05}, 0.9, 0.3, 32)
	if err != nil {
		return err
	}

	n, err := loaders.LoadOBJ(path, s.Accelerator, shader, c.Float64("obj-scale"), translate)
	if err != nil {
		return err
	}
	logger.Infow("model loaded", "path", path, "triangles", n)
	return nil
}

func statsCommand(c *cli.Context, logger *zap.SugaredLogger) error {
	s, err := scene.Open(c.String("scene"), c.String("accel"))
	if err != nil {
		return err
	}
	if err := s.Build(logger); err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "scene\t%s\n", s.Name)
	fmt.Fprintf(w, "objects\t%d\n", s.GetPrimitiveCount())
	bvh, ok := s.Accelerator.(*core.BVH)
	if !ok {
		fmt.Fprintf(w, "accelerator\tlinear\n")
		return w.Flush()
	}

	stats := bvh.Stats()
	fmt.Fprintf(w, "accelerator\tbvh (%s split, leaf size %d)\n", bvh.Config().Split, bvh.Config().LeafSize)
	fmt.Fprintf(w, "unbounded\t%d\n", stats.Unbounded)
	fmt.Fprintf(w, "nodes\t%d\n", stats.Nodes)
	fmt.Fprintf(w, "leaves\t%d\n", stats.Leaves)
	fmt.Fprintf(w, "max depth\t%d\n", stats.MaxDepth)
	fmt.Fprintf(w, "mean leaf depth\t%.2f\n", stats.MeanLeafDepth)
	fmt.Fprintf(w, "mean leaf size\t%.2f\n", stats.MeanLeafSize)
	return w.Flush()
}

func scenesCommand(c *cli.Context, logger *zap.SugaredLogger) error {
	scenes, err := scene.ListScenes(c.String("dir"), logger)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	for _, info := range scenes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.ID, info.Name, info.Description)
	}
	return w.Flush()
}
