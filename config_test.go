package text2img_gan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Train.NumEpochs)
	assert.Equal(t, 64, cfg.Train.BatchSize)
	assert.Equal(t, 100, cfg.Train.NumBatches)
	assert.Equal(t, 0.001, cfg.Train.LearningRate)
	assert.Equal(t, StoreDir, cfg.Store.Kind)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `train:
  num_epochs: 5
  batch_size: 2
  num_batches: 0
model:
  hash: sha512
  image_height: 4
  image_width: 6
  generator_hidden: [7, 9]
store:
  kind: memory
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Train.NumEpochs)
	assert.Equal(t, 0, cfg.Train.NumBatches)
	// untouched values keep defaults
	assert.Equal(t, 0.001, cfg.Train.LearningRate)
	assert.Equal(t, 64, cfg.Model.Vocabulary)
	assert.Equal(t, []int{7, 9}, cfg.Model.GeneratorHidden)

	genCfg, err := cfg.Model.GeneratorConfig()
	require.NoError(t, err)
	assert.Equal(t, HASH_SHA512, genCfg.Encoder.Hash)
	assert.Equal(t, 4, genCfg.Height)
	assert.Equal(t, 6, cfg.Model.DiscriminatorConfig().Width)

	store, err := OpenStore(cfg.Store)
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, store)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cases := map[string]string{
		"syntax":     "train: [",
		"epochs":     "train:\n  num_epochs: 0\n",
		"hash":       "model:\n  hash: crc\n",
		"vocabulary": "model:\n  vocabulary: 0\n",
		"image":      "model:\n  image_width: -2\n",
		"hidden":     "model:\n  discriminator_hidden: [4, 0]\n",
		"store":      "store:\n  kind: s3\n",
		"dir path":   "store:\n  kind: dir\n  path: \"\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
			_, err := LoadConfig(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOpenStore(t *testing.T) {
	dirStore, err := OpenStore(StoreConfig{Kind: StoreDir, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &DirStore{}, dirStore)

	badgerStore, err := OpenStore(StoreConfig{Kind: StoreBadger})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, badgerStore)
	require.NoError(t, badgerStore.Close())

	_, err = OpenStore(StoreConfig{Kind: "ftp"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
