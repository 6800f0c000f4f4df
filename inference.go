package text2img_gan

import (
	"sync"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Predictor Anything producing (n, Height, Width) images from n texts. GeneratorNet is one.
type Predictor interface {
	Predict(texts []string) (tensor.Tensor, error)
}

// Inference Single-text facade over generator. Zero value has no model loaded.
type Inference struct {
	mu        sync.RWMutex
	predictor Predictor
}

// NewInference Constructor for Inference. Predictor could be nil and set later via Use() or Load()
func NewInference(p Predictor) *Inference {
	return &Inference{predictor: p}
}

// Use Replaces current predictor
func (inf *Inference) Use(p Predictor) {
	inf.mu.Lock()
	defer inf.mu.Unlock()
	inf.predictor = p
}

// Load Reads generator saved under name and starts using it. Current predictor is kept on failure.
func (inf *Inference) Load(store Store, name string) error {
	gen, err := LoadGenerator(store, name)
	if err != nil {
		return errors.Wrap(err, "[Inference]")
	}
	inf.Use(gen)
	return nil
}

// Loaded Tells whether predictor is available
func (inf *Inference) Loaded() bool {
	inf.mu.RLock()
	defer inf.mu.RUnlock()
	return inf.predictor != nil
}

// Generate Produces one image for text.
// Output of predictor must be (1, H, W) or (H, W) shaped with exactly H*W values.
func (inf *Inference) Generate(text string) (Grid, error) {
	inf.mu.RLock()
	p := inf.predictor
	inf.mu.RUnlock()
	if p == nil {
		return nil, errors.Wrap(ErrModelNotLoaded, "[Inference]")
	}
	out, err := p.Predict([]string{text})
	if err != nil {
		return nil, errors.Wrap(err, "[Inference] Can't predict")
	}
	return outputGrid(out)
}

func outputGrid(out tensor.Tensor) (Grid, error) {
	if out == nil {
		return nil, errors.Wrap(ErrInvalidOutputShape, "[Inference] predictor returned nothing")
	}
	shape := out.Shape()
	var height, width int
	switch {
	case len(shape) == 3 && shape[0] == 1:
		height, width = shape[1], shape[2]
	case len(shape) == 2:
		height, width = shape[0], shape[1]
	default:
		return nil, errors.Wrapf(ErrInvalidOutputShape, "[Inference] expected (1, H, W) output, got %v", shape)
	}
	if height <= 0 || width <= 0 {
		return nil, errors.Wrapf(ErrInvalidOutputShape, "[Inference] empty output %v", shape)
	}
	data, ok := out.Data().([]float64)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOutputShape, "[Inference] output holds %T, expected []float64", out.Data())
	}
	if len(data) != height*width {
		return nil, errors.Wrapf(ErrInvalidOutputShape, "[Inference] output %v holds %d values", shape, len(data))
	}
	grid := make(Grid, height)
	for y := range grid {
		grid[y] = append([]float64(nil), data[y*width:(y+1)*width]...)
	}
	return grid, nil
}
