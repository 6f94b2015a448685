package renderer

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
)

// SaveImage writes img to path. ".ppm" files are written as binary PPM; any other
// extension imaging understands (png, jpg, gif, tif, bmp) selects that format.
func SaveImage(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		file, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "failed to create output file")
		}
		if err := ppm.Encode(file, img); err != nil {
			file.Close()
			return errors.Wrap(err, "failed to encode ppm")
		}
		return errors.Wrap(file.Close(), "failed to close output file")
	}

	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}
