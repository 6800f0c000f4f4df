package text2img_gan

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testHeight = 3
	testWidth  = 3
)

var testEncoder = TextEncoder{Vocabulary: 8, Hash: HASH_FNV32A}

func testSamples() SampleLoader {
	return SampleLoader{
		{Text: "top line", Image: Grid{{1, 1, 1}, {0, 0, 0}, {0, 0, 0}}},
		{Text: "bottom line", Image: Grid{{0, 0, 0}, {0, 0, 0}, {1, 1, 1}}},
		{Text: "left line", Image: Grid{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}},
		{Text: "right line", Image: Grid{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}},
	}
}

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := testSamples().Load()
	require.NoError(t, err)
	return ds
}

// testModels Tiny pair. Empty hidden slices give single-layer networks
func testModels(t *testing.T, seed int64, genHidden, discHidden []int) (*GeneratorNet, *DiscriminatorNet) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	gen, err := NewGenerator(GeneratorConfig{
		Encoder:    testEncoder,
		LatentSize: 2,
		Height:     testHeight,
		Width:      testWidth,
		Hidden:     genHidden,
	}, rng)
	require.NoError(t, err)
	disc, err := NewDiscriminator(DiscriminatorConfig{Height: testHeight, Width: testWidth, Hidden: discHidden}, rng)
	require.NoError(t, err)
	return gen, disc
}

func testTrainConfig() TrainConfig {
	return TrainConfig{
		NumEpochs:    1,
		BatchSize:    2,
		NumBatches:   2,
		LearningRate: 0.01,
		Beta1:        0.5,
		Seed:         1,
	}
}

func snapshot(params []*Param) [][]float64 {
	out := make([][]float64, len(params))
	for i, p := range params {
		out[i] = append([]float64(nil), p.Data()...)
	}
	return out
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}
