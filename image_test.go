package text2img_gan

import (
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToImageClamp(t *testing.T) {
	img := ToImage(Grid{{-0.5, 0, 0.5, 1, 1.5, math.NaN()}})
	expected := []uint8{0, 0, 127, 255, 255, 0}
	for x, level := range expected {
		c := img.NRGBAAt(x, 0)
		assert.Equal(t, level, c.R, "pixel %d", x)
		assert.Equal(t, level, c.G, "pixel %d", x)
		assert.Equal(t, level, c.B, "pixel %d", x)
		assert.Equal(t, uint8(255), c.A, "pixel %d", x)
	}
}

func TestToImageDeterministic(t *testing.T) {
	grid := Grid{{0.1, 0.2}, {0.3, 0.4}}
	assert.Equal(t, ToImage(grid).Pix, ToImage(grid).Pix)
}

func TestToImageRagged(t *testing.T) {
	img := ToImage(Grid{{1, 1, 1}, {1}})
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 1).R)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 1).R)
	assert.Equal(t, uint8(255), img.NRGBAAt(2, 1).A)

	empty := ToImage(nil)
	assert.True(t, empty.Bounds().Empty())
}

func TestPNGDisplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := ToImage(Grid{{0, 1}, {1, 0}, {0.5, 0.5}})
	require.NoError(t, PNGDisplay{Path: path, Scale: 4}.Display(img))

	saved, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 8, saved.Bounds().Dx())
	assert.Equal(t, 12, saved.Bounds().Dy())

	var shown image.Image
	sink := DisplayFunc(func(img image.Image) error {
		shown = img
		return nil
	})
	require.NoError(t, sink.Display(img))
	assert.Same(t, img, shown)

	assert.Error(t, PNGDisplay{Path: filepath.Join(t.TempDir(), "missing", "out.png")}.Display(img))
}
