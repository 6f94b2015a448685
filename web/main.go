package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/df07/go-bvh-raytracer/web/server"
)

func main() {
	app := &cli.App{
		Name:  "raytracer-web",
		Usage: "serve the ray tracer over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "port to serve on",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:  "dir",
				Value: "scenes",
				Usage: "directory of YAML scene files",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			config := zap.NewProductionConfig()
			if c.Bool("debug") {
				config = zap.NewDevelopmentConfig()
			}
			logger, err := config.Build()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			port := c.Int("port")
			logger.Sugar().Infof("visit http://localhost:%d to start rendering", port)
			return server.NewServer(port, c.String("dir"), logger.Sugar()).Start(ctx)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
