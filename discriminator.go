package text2img_gan

import (
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// DiscriminatorConfig Describes discriminator part of GAN
//
// Height, Width - shape of images to be scored
// Hidden - sizes of hidden layers (relu activated)
//
type DiscriminatorConfig struct {
	Height int
	Width  int
	Hidden []int
}

// DiscriminatorNet Abstraction for discriminator part of GAN. It's simple neural network actually:
// image row goes in, realness score in (0, 1) goes out.
type DiscriminatorNet struct {
	private *Network
}

// NewDiscriminator Constructor for DiscriminatorNet. Weights are initialized from rng.
func NewDiscriminator(cfg DiscriminatorConfig, rng *rand.Rand) (*DiscriminatorNet, error) {
	if cfg.Height <= 0 || cfg.Width <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "[Discriminator] image %dx%d", cfg.Height, cfg.Width)
	}
	net, err := newNetwork("discriminator", denseStack(cfg.Height*cfg.Width, cfg.Hidden, 1, ActivationSigmoid), rng)
	if err != nil {
		return nil, err
	}
	return &DiscriminatorNet{private: net}, nil
}

// Name Implements Model
func (net *DiscriminatorNet) Name() string {
	return net.private.Name
}

// Params Implements Model
func (net *DiscriminatorNet) Params() []*Param {
	return net.private.Params()
}

// Bind Implements Model
func (net *DiscriminatorNet) Bind(g *gorgonia.ExprGraph) (*BoundNetwork, error) {
	bound, err := net.private.Bind(g)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	return bound, nil
}

// InputSize Returns number of pixels expected per image
func (net *DiscriminatorNet) InputSize() int {
	return net.private.InputSize()
}

// Score Returns realness score for every row of images
//
// images - (batch, InputSize()) tensor
//
func (net *DiscriminatorNet) Score(images *tensor.Dense) ([]float64, error) {
	scores, err := net.private.run(images)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	return scores, nil
}
