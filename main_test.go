package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/df07/go-bvh-raytracer/pkg/core"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"raytracer"}, args...))
	return out.String(), err
}

func TestScenesCommand(t *testing.T) {
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte("# Scene: My Scene\nobjects: []\n"), 0o644), test.ShouldBeNil)

	out, err := run(t, "scenes", "--dir", dir)
	test.That(t, err, test.ShouldBeNil)
	for _, name := range []string{"default", "spheregrid", "grid1000", "My Scene"} {
		test.That(t, out, test.ShouldContainSubstring, name)
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats", "--scene", "grid1000")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "objects")
	test.That(t, out, test.ShouldContainSubstring, "1000")
	test.That(t, out, test.ShouldContainSubstring, "bvh (midpoint split, leaf size 4)")

	out, err = run(t, "stats", "--scene", "default", "--accel", "linear")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "linear")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "tri.obj")
	test.That(t, os.WriteFile(model, []byte("v -1 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644), test.ShouldBeNil)
	out := filepath.Join(dir, "render.ppm")

	stdout, err := run(t, "render",
		"--scene", "default", "--out", out,
		"--width", "32", "--height", "18", "--workers", "2",
		"--obj", model, "--obj-scale", "0.5", "--obj-translate", "0,0.5,-2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, stdout, test.ShouldContainSubstring, "Saved "+out)

	file, err := os.Open(out)
	test.That(t, err, test.ShouldBeNil)
	defer file.Close()
	img, err := ppm.Decode(file)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 32)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 18)
}

func TestRenderCommand_Errors(t *testing.T) {
	_, err := run(t, "render", "--scene", "nonexistent")
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = run(t, "render", "--scene", "default", "--accel", "kdtree")
	test.That(t, errors.Is(err, core.ErrNotImplemented), test.ShouldBeTrue)

	_, err = run(t, "render", "--scene", "default", "--width", "0")
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)

	_, err = run(t, "render", "--scene", "default", "--obj", "model.obj", "--obj-translate", "1,2")
	test.That(t, core.IsInvalidArgument(err), test.ShouldBeTrue)
}

func TestRenderCommand_EnvOverrides(t *testing.T) {
	t.Setenv("RAYTRACER_SCENE", "nonexistent")
	_, err := run(t, "render")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown scene "nonexistent"`)
}
