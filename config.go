package text2img_gan

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config Runtime settings for training and inference
type Config struct {
	Train TrainConfig `yaml:"train"`
	Model ModelConfig `yaml:"model"`
	Store StoreConfig `yaml:"store"`
}

// ModelConfig Sizes of both networks and text features
type ModelConfig struct {
	Vocabulary          int    `yaml:"vocabulary"`
	Hash                string `yaml:"hash"`
	LatentSize          int    `yaml:"latent_size"`
	ImageHeight         int    `yaml:"image_height"`
	ImageWidth          int    `yaml:"image_width"`
	GeneratorHidden     []int  `yaml:"generator_hidden"`
	DiscriminatorHidden []int  `yaml:"discriminator_hidden"`
}

// Store kinds
const (
	StoreDir    = "dir"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// StoreConfig Where model artifacts live
//
// Kind - one of "dir", "badger", "memory"
// Path - directory for "dir" and "badger". Empty path with "badger" means in-memory database
//
type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// DefaultConfig Returns configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		Train: TrainConfig{
			NumEpochs:    100,
			BatchSize:    64,
			NumBatches:   100,
			LearningRate: 0.001,
			Beta1:        0.5,
			Seed:         42,
		},
		Model: ModelConfig{
			Vocabulary:          64,
			Hash:                HASH_FNV32A.String(),
			LatentSize:          16,
			ImageHeight:         28,
			ImageWidth:          28,
			GeneratorHidden:     []int{128},
			DiscriminatorHidden: []int{128},
		},
		Store: StoreConfig{
			Kind: StoreDir,
			Path: "models",
		},
	}
}

// LoadConfig Reads YAML file on top of DefaultConfig() and validates result
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, withKind(ErrInvalidConfig, err, "Can't read config file '%s'", path)
	}
	if err = yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, withKind(ErrInvalidConfig, err, "Can't parse config file '%s'", path)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config file '%s'", path)
	}
	return cfg, nil
}

// Validate Checks every section
func (cfg Config) Validate() error {
	if err := cfg.Train.Validate(); err != nil {
		return err
	}
	if _, err := cfg.Model.encoder(); err != nil {
		return err
	}
	if cfg.Model.LatentSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "latent_size must not be negative, got %d", cfg.Model.LatentSize)
	}
	if cfg.Model.ImageHeight <= 0 || cfg.Model.ImageWidth <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "image size must be positive, got %dx%d", cfg.Model.ImageHeight, cfg.Model.ImageWidth)
	}
	for _, h := range append(append([]int(nil), cfg.Model.GeneratorHidden...), cfg.Model.DiscriminatorHidden...) {
		if h <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "hidden layer size must be positive, got %d", h)
		}
	}
	switch cfg.Store.Kind {
	case StoreDir:
		if cfg.Store.Path == "" {
			return errors.Wrap(ErrInvalidConfig, "store path is required for 'dir' store")
		}
	case StoreBadger, StoreMemory:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown store kind '%s'", cfg.Store.Kind)
	}
	return nil
}

func (mc ModelConfig) encoder() (TextEncoder, error) {
	ht, err := ParseHashType(mc.Hash)
	if err != nil {
		return TextEncoder{}, err
	}
	enc := TextEncoder{Vocabulary: mc.Vocabulary, Hash: ht}
	return enc, enc.validate()
}

// GeneratorConfig Builds generator settings
func (mc ModelConfig) GeneratorConfig() (GeneratorConfig, error) {
	enc, err := mc.encoder()
	if err != nil {
		return GeneratorConfig{}, err
	}
	return GeneratorConfig{
		Encoder:    enc,
		LatentSize: mc.LatentSize,
		Height:     mc.ImageHeight,
		Width:      mc.ImageWidth,
		Hidden:     mc.GeneratorHidden,
	}, nil
}

// DiscriminatorConfig Builds discriminator settings
func (mc ModelConfig) DiscriminatorConfig() DiscriminatorConfig {
	return DiscriminatorConfig{
		Height: mc.ImageHeight,
		Width:  mc.ImageWidth,
		Hidden: mc.DiscriminatorHidden,
	}
}

// OpenStore Opens store described by sc
func OpenStore(sc StoreConfig) (Store, error) {
	switch sc.Kind {
	case StoreDir:
		return NewDirStore(sc.Path)
	case StoreBadger:
		return NewBadgerStore(sc.Path)
	case StoreMemory:
		return NewMemStore(), nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown store kind '%s'", sc.Kind)
	}
}
