package text2img_gan

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Grid Image as rows of normalized intensities in [0, 1]
type Grid [][]float64

// Shape Returns number of rows and length of first row
func (g Grid) Shape() (int, int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}

// Flatten Returns row-major copy of grid values
func (g Grid) Flatten() []float64 {
	h, w := g.Shape()
	data := make([]float64, 0, h*w)
	for _, row := range g {
		data = append(data, row...)
	}
	return data
}

// Sample Training pair
type Sample struct {
	Text  string `yaml:"text"`
	Image Grid   `yaml:"image"`
}

// Dataset Ordered collection of text/image pairs. Immutable after construction.
type Dataset struct {
	Texts  []string
	Images []Grid
	height int
	width  int
}

// NewDataset Validates pairs and builds Dataset.
// All images must be non-empty rectangular grids of same shape with finite values in [0, 1].
func NewDataset(texts []string, images []Grid) (*Dataset, error) {
	if len(texts) != len(images) {
		return nil, errors.Wrapf(ErrDataLoad, "%d texts but %d images", len(texts), len(images))
	}
	if len(texts) == 0 {
		return nil, errors.Wrap(ErrDataLoad, "dataset is empty")
	}
	height, width := images[0].Shape()
	if height == 0 || width == 0 {
		return nil, errors.Wrap(ErrDataLoad, "image #0 is empty")
	}
	for i, img := range images {
		if len(img) != height {
			return nil, errors.Wrapf(ErrDataLoad, "image #%d has %d rows, expected %d", i, len(img), height)
		}
		for y, row := range img {
			if len(row) != width {
				return nil, errors.Wrapf(ErrDataLoad, "image #%d row %d has %d values, expected %d", i, y, len(row), width)
			}
			for x, v := range row {
				if math.IsNaN(v) || v < 0 || v > 1 {
					return nil, errors.Wrapf(ErrDataLoad, "image #%d pixel (%d, %d) = %v is outside of [0, 1]", i, y, x, v)
				}
			}
		}
	}
	return &Dataset{
		Texts:  texts,
		Images: images,
		height: height,
		width:  width,
	}, nil
}

// Len Returns number of samples
func (ds *Dataset) Len() int {
	return len(ds.Texts)
}

// ImageShape Returns height and width shared by all images
func (ds *Dataset) ImageShape() (int, int) {
	return ds.height, ds.width
}

// Sample Returns i-th pair
func (ds *Dataset) Sample(i int) Sample {
	return Sample{Text: ds.Texts[i], Image: ds.Images[i]}
}

// Loader Source of dataset
type Loader interface {
	Load() (*Dataset, error)
}

// SampleLoader Dataset given as literal samples
type SampleLoader []Sample

// Load Implements Loader
func (sl SampleLoader) Load() (*Dataset, error) {
	texts := make([]string, len(sl))
	images := make([]Grid, len(sl))
	for i := range sl {
		texts[i] = sl[i].Text
		images[i] = sl[i].Image
	}
	return NewDataset(texts, images)
}

// FileLoader Reads samples from YAML file:
//
//	samples:
//	  - text: "a square"
//	    image: [[1, 1], [1, 1]]
//
type FileLoader struct {
	Path string
}

type datasetFile struct {
	Samples []Sample `yaml:"samples"`
}

// Load Implements Loader
func (fl FileLoader) Load() (*Dataset, error) {
	raw, err := os.ReadFile(fl.Path)
	if err != nil {
		return nil, withKind(ErrDataLoad, err, "Can't read dataset file '%s'", fl.Path)
	}
	var doc datasetFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, withKind(ErrDataLoad, err, "Can't parse dataset file '%s'", fl.Path)
	}
	ds, err := SampleLoader(doc.Samples).Load()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset file '%s'", fl.Path)
	}
	return ds, nil
}

// DemoSamples Returns few simple drawings with descriptions. Useful as placeholder training data.
func DemoSamples(height, width int) []Sample {
	draw := func(fn func(y, x int) bool) Grid {
		g := make(Grid, height)
		for y := range g {
			g[y] = make([]float64, width)
			for x := range g[y] {
				if fn(y, x) {
					g[y][x] = 1
				}
			}
		}
		return g
	}
	cy, cx := float64(height-1)/2, float64(width-1)/2
	radius := math.Min(float64(height), float64(width)) / 2
	return []Sample{
		{Text: "filled square", Image: draw(func(y, x int) bool {
			return y >= height/4 && y < height-height/4 && x >= width/4 && x < width-width/4
		})},
		{Text: "empty frame", Image: draw(func(y, x int) bool {
			return y == 0 || x == 0 || y == height-1 || x == width-1
		})},
		{Text: "big cross", Image: draw(func(y, x int) bool {
			return y == height/2 || x == width/2
		})},
		{Text: "diagonal line", Image: draw(func(y, x int) bool {
			return y*width/height == x
		})},
		{Text: "round ring", Image: draw(func(y, x int) bool {
			d := math.Hypot(float64(y)-cy, float64(x)-cx)
			return d <= radius && d >= radius-1.5
		})},
		{Text: "horizontal stripes", Image: draw(func(y, x int) bool {
			return y%2 == 0
		})},
		{Text: "vertical stripes", Image: draw(func(y, x int) bool {
			return x%2 == 0
		})},
		{Text: "dark night", Image: draw(func(y, x int) bool {
			return false
		})},
	}
}
