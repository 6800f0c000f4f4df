package text2img_gan

import (
	"bytes"
	"encoding/gob"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Artifact names used by training runs
const (
	GeneratorArtifact     = "generator_model"
	DiscriminatorArtifact = "discriminator_model"
)

const artifactFormat = 1

const (
	kindGenerator     = "generator"
	kindDiscriminator = "discriminator"
)

// paramBlob Serialized Param
type paramBlob struct {
	Name  string
	Shape []int
	Data  []float64
}

// artifact Everything needed to restore a model without the code that trained it
type artifact struct {
	Format   int
	Kind     string
	RunID    string
	SavedAt  time.Time
	Specs    []LayerSpec
	Params   []paramBlob
	Height   int
	Width    int
	Latent   int
	Vocab    int
	HashType int
}

func newArtifact(kind, runID string, specs []LayerSpec, params []*Param) *artifact {
	art := &artifact{
		Format:  artifactFormat,
		Kind:    kind,
		RunID:   runID,
		SavedAt: time.Now().UTC(),
		Specs:   append([]LayerSpec(nil), specs...),
		Params:  make([]paramBlob, len(params)),
	}
	for i, p := range params {
		art.Params[i] = paramBlob{
			Name:  p.Name,
			Shape: append([]int(nil), p.Shape()...),
			Data:  append([]float64(nil), p.Data()...),
		}
	}
	return art
}

func (art *artifact) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(art); err != nil {
		return nil, withKind(ErrPersistence, err, "Can't encode %s", art.Kind)
	}
	return buf.Bytes(), nil
}

func decodeArtifact(data []byte, kind string) (*artifact, error) {
	art := &artifact{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(art); err != nil {
		return nil, withKind(ErrPersistence, err, "Can't decode %s", kind)
	}
	if art.Format != artifactFormat {
		return nil, errors.Wrapf(ErrPersistence, "unsupported artifact format %d", art.Format)
	}
	if art.Kind != kind {
		return nil, errors.Wrapf(ErrPersistence, "artifact holds %s, expected %s", art.Kind, kind)
	}
	return art, nil
}

func (art *artifact) params() ([]*Param, error) {
	params := make([]*Param, len(art.Params))
	for i, blob := range art.Params {
		size := 1
		for _, d := range blob.Shape {
			size *= d
		}
		if len(blob.Shape) == 0 || size != len(blob.Data) {
			return nil, errors.Wrapf(ErrPersistence, "param '%s' has shape %v but %d values", blob.Name, blob.Shape, len(blob.Data))
		}
		params[i] = &Param{
			Name:  blob.Name,
			Value: tensor.New(tensor.WithShape(blob.Shape...), tensor.WithBacking(blob.Data)),
		}
	}
	return params, nil
}

// SaveModels Saves both models of one training run. Returns identifier of the run.
func SaveModels(store Store, gen *GeneratorNet, disc *DiscriminatorNet) (string, error) {
	runID := uuid.NewString()
	if err := saveGenerator(store, gen, runID); err != nil {
		return "", err
	}
	if err := saveDiscriminator(store, disc, runID); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveGenerator Saves generator under GeneratorArtifact name
func SaveGenerator(store Store, gen *GeneratorNet) error {
	return saveGenerator(store, gen, uuid.NewString())
}

func saveGenerator(store Store, gen *GeneratorNet, runID string) error {
	art := newArtifact(kindGenerator, runID, gen.private.Specs, gen.Params())
	art.Height, art.Width = gen.ImageShape()
	art.Latent = gen.LatentSize()
	art.Vocab = gen.encoder.Vocabulary
	art.HashType = int(gen.encoder.Hash)
	data, err := art.encode()
	if err != nil {
		return err
	}
	if err = store.Save(GeneratorArtifact, data); err != nil {
		return errors.Wrap(err, "[Generator] Can't save")
	}
	return nil
}

// SaveDiscriminator Saves discriminator under DiscriminatorArtifact name
func SaveDiscriminator(store Store, disc *DiscriminatorNet) error {
	return saveDiscriminator(store, disc, uuid.NewString())
}

func saveDiscriminator(store Store, disc *DiscriminatorNet, runID string) error {
	art := newArtifact(kindDiscriminator, runID, disc.private.Specs, disc.Params())
	data, err := art.encode()
	if err != nil {
		return err
	}
	if err = store.Save(DiscriminatorArtifact, data); err != nil {
		return errors.Wrap(err, "[Discriminator] Can't save")
	}
	return nil
}

// LoadGenerator Restores generator saved with given name. Noise source is seeded from current time.
func LoadGenerator(store Store, name string) (*GeneratorNet, error) {
	data, err := store.Load(name)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator] Can't load")
	}
	art, err := decodeArtifact(data, kindGenerator)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	enc := TextEncoder{Vocabulary: art.Vocab, Hash: HashType(art.HashType)}
	if err = enc.validate(); err != nil {
		return nil, withKind(ErrPersistence, err, "[Generator] bad text encoder in artifact")
	}
	params, err := art.params()
	if err != nil {
		return nil, errors.Wrap(err, "[Generator]")
	}
	net, err := restoreNetwork(kindGenerator, art.Specs, params)
	if err != nil {
		return nil, withKind(ErrPersistence, err, "[Generator] artifact doesn't match its layers")
	}
	if art.Height <= 0 || art.Width <= 0 || net.OutputSize() != art.Height*art.Width || net.InputSize() != art.Vocab+art.Latent {
		return nil, errors.Wrapf(ErrPersistence, "[Generator] artifact shapes are inconsistent: %d -> %dx%d", net.InputSize(), art.Height, art.Width)
	}
	return &GeneratorNet{
		private:    net,
		encoder:    enc,
		latentSize: art.Latent,
		height:     art.Height,
		width:      art.Width,
		noise:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// LoadDiscriminator Restores discriminator saved with given name
func LoadDiscriminator(store Store, name string) (*DiscriminatorNet, error) {
	data, err := store.Load(name)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator] Can't load")
	}
	art, err := decodeArtifact(data, kindDiscriminator)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	params, err := art.params()
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator]")
	}
	net, err := restoreNetwork(kindDiscriminator, art.Specs, params)
	if err != nil {
		return nil, withKind(ErrPersistence, err, "[Discriminator] artifact doesn't match its layers")
	}
	if net.OutputSize() != 1 {
		return nil, errors.Wrapf(ErrPersistence, "[Discriminator] artifact outputs %d values per image", net.OutputSize())
	}
	return &DiscriminatorNet{private: net}, nil
}
