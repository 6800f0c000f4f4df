package text2img_gan

import (
	"math/rand"

	"github.com/pkg/errors"
)

// GAN Model pair: generator drawing images from text and discriminator judging them.
// Both parts are independent models with their own params.
type GAN struct {
	Generator     *GeneratorNet
	Discriminator *DiscriminatorNet
}

// NewGAN Creates both parts described by mc. Weights are drawn from rng (generator first).
func NewGAN(mc ModelConfig, rng *rand.Rand) (*GAN, error) {
	genCfg, err := mc.GeneratorConfig()
	if err != nil {
		return nil, errors.Wrap(err, "[GAN]")
	}
	gen, err := NewGenerator(genCfg, rng)
	if err != nil {
		return nil, errors.Wrap(err, "[GAN]")
	}
	disc, err := NewDiscriminator(mc.DiscriminatorConfig(), rng)
	if err != nil {
		return nil, errors.Wrap(err, "[GAN]")
	}
	return &GAN{Generator: gen, Discriminator: disc}, nil
}

// LoadGAN Restores both parts saved by SaveModels()
func LoadGAN(store Store) (*GAN, error) {
	gen, err := LoadGenerator(store, GeneratorArtifact)
	if err != nil {
		return nil, errors.Wrap(err, "[GAN]")
	}
	disc, err := LoadDiscriminator(store, DiscriminatorArtifact)
	if err != nil {
		return nil, errors.Wrap(err, "[GAN]")
	}
	h, w := gen.ImageShape()
	if disc.InputSize() != h*w {
		return nil, errors.Wrapf(ErrPersistence, "[GAN] saved discriminator takes %d pixels, generator makes %dx%d", disc.InputSize(), h, w)
	}
	return &GAN{Generator: gen, Discriminator: disc}, nil
}

// Save Saves both parts. Returns run identifier shared by both artifacts.
func (gan *GAN) Save(store Store) (string, error) {
	return SaveModels(store, gan.Generator, gan.Discriminator)
}

// NewTrainer Shortcut for NewTrainer(cfg, ds, gan.Generator, gan.Discriminator, opts...)
func (gan *GAN) NewTrainer(cfg TrainConfig, ds *Dataset, opts ...TrainerOption) (*Trainer, error) {
	return NewTrainer(cfg, ds, gan.Generator, gan.Discriminator, opts...)
}
