package text2img_gan

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ToImage Converts grid to grayscale RGBA image. Values are clamped to [0, 1] and scaled to [0, 255].
// Image width is taken from the first row; missing cells of shorter rows stay black.
func ToImage(grid Grid) *image.NRGBA {
	height, width := grid.Shape()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 0.0
			if x < len(grid[y]) {
				v = grid[y][x]
			}
			c := grayLevel(v)
			img.SetNRGBA(x, y, color.NRGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

func grayLevel(v float64) uint8 {
	// NaN compares false with everything
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// DisplaySink Receiver of generated images
type DisplaySink interface {
	Display(img image.Image) error
}

// DisplayFunc Adapter for plain functions
type DisplayFunc func(img image.Image) error

// Display Implements DisplaySink
func (f DisplayFunc) Display(img image.Image) error { return f(img) }

// PNGDisplay Writes image to file (format is picked by extension) scaled up by Scale
type PNGDisplay struct {
	Path  string
	Scale int
}

// Display Implements DisplaySink
func (d PNGDisplay) Display(img image.Image) error {
	out := img
	if d.Scale > 1 {
		b := img.Bounds()
		out = imaging.Resize(img, b.Dx()*d.Scale, b.Dy()*d.Scale, imaging.NearestNeighbor)
	}
	if err := imaging.Save(out, d.Path); err != nil {
		return errors.Wrapf(err, "Can't save image to '%s'", d.Path)
	}
	return nil
}
