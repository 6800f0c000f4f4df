package text2img_gan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

type constPredictor struct {
	shape []int
	value float64
	texts []string
}

func (cp *constPredictor) Predict(texts []string) (tensor.Tensor, error) {
	cp.texts = texts
	size := 1
	for _, d := range cp.shape {
		size *= d
	}
	data := make([]float64, size)
	for i := range data {
		data[i] = cp.value
	}
	return tensor.New(tensor.WithShape(cp.shape...), tensor.WithBacking(data)), nil
}

func TestInferenceNotLoaded(t *testing.T) {
	var inference Inference
	assert.False(t, inference.Loaded())
	_, err := inference.Generate("anything")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
	_, err = NewInference(nil).Generate("anything")
	assert.ErrorIs(t, err, ErrModelNotLoaded)
}

func TestInferenceConstantGray(t *testing.T) {
	p := &constPredictor{shape: []int{1, 4, 5}, value: 0.5}
	inference := NewInference(p)
	grid, err := inference.Generate("gray")
	require.NoError(t, err)
	assert.Equal(t, []string{"gray"}, p.texts)
	h, w := grid.Shape()
	assert.Equal(t, 4, h)
	assert.Equal(t, 5, w)

	img := ToImage(grid)
	assert.Equal(t, 5, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			c := img.NRGBAAt(x, y)
			assert.Equal(t, uint8(127), c.R)
			assert.Equal(t, c.R, c.G)
			assert.Equal(t, c.R, c.B)
			assert.Equal(t, uint8(255), c.A)
		}
	}
}

func TestInferenceOutputShapes(t *testing.T) {
	inference := NewInference(&constPredictor{shape: []int{3, 2}, value: 1})
	grid, err := inference.Generate("plain matrix")
	require.NoError(t, err)
	assert.Equal(t, Grid{{1, 1}, {1, 1}, {1, 1}}, grid)

	for _, shape := range [][]int{{2, 3, 3}, {9}, {1, 1, 3, 3}} {
		inference.Use(&constPredictor{shape: shape, value: 0.5})
		_, err = inference.Generate("bad")
		assert.ErrorIs(t, err, ErrInvalidOutputShape, "shape %v", shape)
	}
}

func TestInferenceLoad(t *testing.T) {
	store := NewMemStore()
	inference := NewInference(nil)
	assert.ErrorIs(t, inference.Load(store, GeneratorArtifact), ErrPersistence)
	assert.False(t, inference.Loaded())

	gen, _ := testModels(t, 4, []int{4}, nil)
	require.NoError(t, SaveGenerator(store, gen))
	require.NoError(t, inference.Load(store, GeneratorArtifact))
	grid, err := inference.Generate("top line")
	require.NoError(t, err)
	h, w := grid.Shape()
	assert.Equal(t, testHeight, h)
	assert.Equal(t, testWidth, w)
}

func TestInferenceConcurrentGenerate(t *testing.T) {
	gen, _ := testModels(t, 4, []int{4}, nil)
	inference := NewInference(gen)
	var wg sync.WaitGroup
	errs := make(chan error, 4*20)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if _, err := inference.Generate("top line"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
