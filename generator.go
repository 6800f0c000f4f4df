package text2img_gan

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GeneratorConfig Describes generator part of GAN
//
// Encoder - text features. Input row starts with Encoder.Vocabulary features
// LatentSize - number of normally distributed noise values appended to text features
// Height, Width - shape of generated image. Output row has Height*Width values in (0, 1)
// Hidden - sizes of hidden layers (relu activated)
//
type GeneratorConfig struct {
	Encoder    TextEncoder
	LatentSize int
	Height     int
	Width      int
	Hidden     []int
}

// GeneratorNet Abstraction for generator part of GAN: maps text (plus noise) to image
type GeneratorNet struct {
	private    *Network
	encoder    TextEncoder
	latentSize int
	height     int
	width      int
	noiseMu    sync.Mutex
	noise      *rand.Rand
}

// NewGenerator Constructor for GeneratorNet. Weights are initialized from rng.
func NewGenerator(cfg GeneratorConfig, rng *rand.Rand) (*GeneratorNet, error) {
	if err := cfg.Encoder.validate(); err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	if cfg.LatentSize < 0 || cfg.Height <= 0 || cfg.Width <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "[Generator] latent size %d and image %dx%d", cfg.LatentSize, cfg.Height, cfg.Width)
	}
	specs := denseStack(cfg.Encoder.Vocabulary+cfg.LatentSize, cfg.Hidden, cfg.Height*cfg.Width, ActivationSigmoid)
	net, err := newNetwork("generator", specs, rng)
	if err != nil {
		return nil, err
	}
	return &GeneratorNet{
		private:    net,
		encoder:    cfg.Encoder,
		latentSize: cfg.LatentSize,
		height:     cfg.Height,
		width:      cfg.Width,
		noise:      rand.New(rand.NewSource(rng.Int63())),
	}, nil
}

// denseStack Hidden layers are relu activated, last one uses provided activation
func denseStack(inputs int, hidden []int, outputs int, lastActivation string) []LayerSpec {
	specs := make([]LayerSpec, 0, len(hidden)+1)
	prev := inputs
	for _, h := range hidden {
		specs = append(specs, LayerSpec{Inputs: prev, Outputs: h, Activation: ActivationRelu, Bias: true})
		prev = h
	}
	return append(specs, LayerSpec{Inputs: prev, Outputs: outputs, Activation: lastActivation, Bias: true})
}

// Name Implements Model
func (net *GeneratorNet) Name() string {
	return net.private.Name
}

// Params Implements Model
func (net *GeneratorNet) Params() []*Param {
	return net.private.Params()
}

// Bind Implements Model
func (net *GeneratorNet) Bind(g *gorgonia.ExprGraph) (*BoundNetwork, error) {
	bound, err := net.private.Bind(g)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	return bound, nil
}

// Encoder Returns text encoder used for input features
func (net *GeneratorNet) Encoder() TextEncoder {
	return net.encoder
}

// LatentSize Returns number of noise values in input row
func (net *GeneratorNet) LatentSize() int {
	return net.latentSize
}

// ImageShape Returns height and width of generated images
func (net *GeneratorNet) ImageShape() (int, int) {
	return net.height, net.width
}

// InputSize Returns width of input row
func (net *GeneratorNet) InputSize() int {
	return net.private.InputSize()
}

// SetNoiseSeed Reseeds noise source used by Predict()
func (net *GeneratorNet) SetNoiseSeed(seed int64) {
	net.noiseMu.Lock()
	defer net.noiseMu.Unlock()
	net.noise = rand.New(rand.NewSource(seed))
}

// predictInputs Composes inputs with noise source of Predict(). Safe for concurrent use.
func (net *GeneratorNet) predictInputs(encoded *tensor.Dense) (*tensor.Dense, error) {
	net.noiseMu.Lock()
	defer net.noiseMu.Unlock()
	if net.noise == nil {
		net.noise = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return net.composeInputs(encoded, net.noise)
}

// composeInputs Appends LatentSize noise values to every row of encoded texts
//
// texts - (batch, Vocabulary) tensor
//
func (net *GeneratorNet) composeInputs(texts *tensor.Dense, rng *rand.Rand) (*tensor.Dense, error) {
	if texts.Dims() != 2 || texts.Shape()[1] != net.encoder.Vocabulary {
		return nil, errors.Wrapf(ErrShapeMismatch, "[Generator] text features shape %v, expected (n, %d)", texts.Shape(), net.encoder.Vocabulary)
	}
	batchSize := texts.Shape()[0]
	if net.latentSize == 0 {
		return texts, nil
	}
	textData := texts.Data().([]float64)
	noise := NormRandDense(rng, batchSize, net.latentSize).Data().([]float64)
	width := net.InputSize()
	data := make([]float64, 0, batchSize*width)
	for i := 0; i < batchSize; i++ {
		data = append(data, textData[i*net.encoder.Vocabulary:(i+1)*net.encoder.Vocabulary]...)
		data = append(data, noise[i*net.latentSize:(i+1)*net.latentSize]...)
	}
	return tensor.New(tensor.WithShape(batchSize, width), tensor.WithBacking(data)), nil
}

// Predict Generates one image per text. Result has (len(texts), Height, Width) shape. Safe for concurrent use.
func (net *GeneratorNet) Predict(texts []string) (tensor.Tensor, error) {
	if len(texts) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "[Generator] empty batch")
	}
	encoded, err := net.encoder.EncodeBatch(texts)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	inputs, err := net.predictInputs(encoded)
	if err != nil {
		return nil, err
	}
	out, err := net.private.run(inputs)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	return tensor.New(tensor.WithShape(len(texts), net.height, net.width), tensor.WithBacking(out)), nil
}
