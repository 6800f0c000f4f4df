package text2img_gan

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrainer(t *testing.T, cfg TrainConfig, opts ...TrainerOption) *Trainer {
	t.Helper()
	gen, disc := testModels(t, 1, []int{4}, []int{4})
	trainer, err := NewTrainer(cfg, testDataset(t), gen, disc, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { trainer.Close() })
	return trainer
}

func TestShuffledIndicesIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for n := 1; n < 20; n++ {
		idx := shuffledIndices(rng, n)
		require.Len(t, idx, n)
		sorted := append([]int(nil), idx...)
		sort.Ints(sorted)
		for i := range sorted {
			assert.Equal(t, i, sorted[i])
		}
	}
}

func TestTrainConfigBatches(t *testing.T) {
	cfg := testTrainConfig()
	n, err := cfg.batchesPerEpoch(4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cfg.NumBatches = 0
	n, err = cfg.batchesPerEpoch(5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cfg.NumBatches = 3
	_, err = cfg.batchesPerEpoch(4)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.NumBatches = 0
	cfg.BatchSize = 5
	_, err = cfg.batchesPerEpoch(4)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTrainConfigValidate(t *testing.T) {
	assert.NoError(t, testTrainConfig().Validate())
	broken := []func(*TrainConfig){
		func(c *TrainConfig) { c.NumEpochs = 0 },
		func(c *TrainConfig) { c.BatchSize = -1 },
		func(c *TrainConfig) { c.NumBatches = -1 },
		func(c *TrainConfig) { c.LearningRate = 0 },
		func(c *TrainConfig) { c.Beta1 = 1 },
	}
	for i, fn := range broken {
		cfg := testTrainConfig()
		fn(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "case #%d", i)
	}
}

func TestNewTrainerRejects(t *testing.T) {
	gen, disc := testModels(t, 1, nil, nil)
	ds := testDataset(t)

	cfg := testTrainConfig()
	cfg.NumBatches = 3
	_, err := NewTrainer(cfg, ds, gen, disc)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	other, err := NewDiscriminator(DiscriminatorConfig{Height: 2, Width: 2}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = NewTrainer(testTrainConfig(), ds, gen, other)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	small, err := SampleLoader{{Text: "dot", Image: Grid{{1}}}, {Text: "none", Image: Grid{{0}}}}.Load()
	require.NoError(t, err)
	cfg = testTrainConfig()
	cfg.NumBatches = 1
	_, err = NewTrainer(cfg, small, gen, disc)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestDiscriminatorStepLeavesGeneratorUntouched(t *testing.T) {
	gen, disc := testModels(t, 2, nil, nil)
	trainer, err := NewTrainer(testTrainConfig(), testDataset(t), gen, disc)
	require.NoError(t, err)
	defer trainer.Close()

	genBefore := snapshot(gen.Params())
	discBefore := snapshot(disc.Params())
	texts, images, err := trainer.set.Batch([]int{0, 1})
	require.NoError(t, err)
	loss, err := trainer.discriminatorStep(texts, images)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(loss))
	assert.Greater(t, loss, 0.0)

	assert.Equal(t, genBefore, snapshot(gen.Params()))
	assert.NotEqual(t, discBefore, snapshot(disc.Params()))
}

func TestGeneratorStepLeavesDiscriminatorUntouched(t *testing.T) {
	gen, disc := testModels(t, 2, nil, nil)
	trainer, err := NewTrainer(testTrainConfig(), testDataset(t), gen, disc)
	require.NoError(t, err)
	defer trainer.Close()

	genBefore := snapshot(gen.Params())
	discBefore := snapshot(disc.Params())
	texts, _, err := trainer.set.Batch([]int{2, 3})
	require.NoError(t, err)
	loss, err := trainer.generatorStep(texts)
	require.NoError(t, err)
	assert.Greater(t, loss, 0.0)

	assert.Equal(t, discBefore, snapshot(disc.Params()))
	assert.NotEqual(t, genBefore, snapshot(gen.Params()))
}

func TestStepsAreRepeatable(t *testing.T) {
	gen, disc := testModels(t, 2, []int{4}, []int{4})
	trainer, err := NewTrainer(testTrainConfig(), testDataset(t), gen, disc)
	require.NoError(t, err)
	defer trainer.Close()
	texts, images, err := trainer.set.Batch([]int{0, 3})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = trainer.discriminatorStep(texts, images)
		require.NoError(t, err, "step #%d", i)
		_, err = trainer.generatorStep(texts)
		require.NoError(t, err, "step #%d", i)
	}
}

func TestTrainStepOrder(t *testing.T) {
	var events []StepEvent
	cfg := testTrainConfig()
	cfg.NumEpochs = 2
	var reports []EpochReport
	trainer := newTestTrainer(t, cfg,
		WithStepHook(func(ev StepEvent) { events = append(events, ev) }),
		WithProgress(ProgressFunc(func(r EpochReport) { reports = append(reports, r) })),
	)
	history, err := trainer.Train(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 2*2*2)
	for i, ev := range events {
		assert.Equal(t, i/4, ev.Epoch)
		assert.Equal(t, (i/2)%2, ev.Batch)
		if i%2 == 0 {
			assert.Equal(t, StepDiscriminator, ev.Kind)
		} else {
			assert.Equal(t, StepGenerator, ev.Kind)
		}
		assert.False(t, math.IsNaN(ev.Loss))
	}
	require.Len(t, reports, 2)
	assert.Equal(t, reports, history.Reports)
	assert.Equal(t, 1, reports[1].Epoch)
	assert.Equal(t, 2, reports[1].Total)
	assert.InDelta(t, (events[4].Loss+events[6].Loss)/2, reports[1].DiscriminatorLoss, 1e-12)
	assert.InDelta(t, (events[5].Loss+events[7].Loss)/2, reports[1].GeneratorLoss, 1e-12)
}

func TestTrainCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var events []StepEvent
	trainer := newTestTrainer(t, testTrainConfig(), WithStepHook(func(ev StepEvent) {
		events = append(events, ev)
		if ev.Kind == StepGenerator {
			cancel()
		}
	}))
	history, err := trainer.Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, events, 2)
	assert.Empty(t, history.Reports)
}

func TestRunSavesBothModels(t *testing.T) {
	store := NewMemStore()
	trainer := newTestTrainer(t, testTrainConfig(), WithStore(store))
	history, err := trainer.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, history.Reports, 1)

	names := store.Names()
	sort.Strings(names)
	assert.Equal(t, []string{DiscriminatorArtifact, GeneratorArtifact}, names)

	gen, err := LoadGenerator(store, GeneratorArtifact)
	require.NoError(t, err)
	assert.Equal(t, snapshot(trainer.generator.Params()), snapshot(gen.Params()))
}

func TestRunWithoutStore(t *testing.T) {
	trainer := newTestTrainer(t, testTrainConfig())
	_, err := trainer.Run(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}

type failingStore struct{ MemStore }

func (fs *failingStore) Save(name string, data []byte) error {
	return ErrPersistence
}

func TestRunSaveFailure(t *testing.T) {
	trainer := newTestTrainer(t, testTrainConfig(), WithStore(&failingStore{}))
	history, err := trainer.Run(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Len(t, history.Reports, 1)
}

func TestRunAsync(t *testing.T) {
	cfg := testTrainConfig()
	cfg.NumEpochs = 3
	store := NewMemStore()
	trainer := newTestTrainer(t, cfg, WithStore(store))
	run := trainer.RunAsync(context.Background())
	var epochs []int
	for report := range run.Progress {
		epochs = append(epochs, report.Epoch)
	}
	<-run.Done()
	history, err := run.Wait()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, epochs)
	assert.Len(t, history.Reports, 3)
	assert.Len(t, store.Names(), 2)
}

func gradSquares(t *testing.T, b *BoundNetwork) float64 {
	t.Helper()
	sum := 0.0
	for _, n := range b.Learnables() {
		grad, err := n.Grad()
		require.NoError(t, err)
		for _, v := range grad.Data().([]float64) {
			sum += v * v
		}
	}
	return sum
}

func TestFrozenGradsAreCleared(t *testing.T) {
	gen, disc := testModels(t, 2, nil, nil)
	trainer, err := NewTrainer(testTrainConfig(), testDataset(t), gen, disc)
	require.NoError(t, err)
	defer trainer.Close()
	texts, images, err := trainer.set.Batch([]int{0, 1})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = trainer.generatorStep(texts)
		require.NoError(t, err)
		assert.Equal(t, 0.0, gradSquares(t, trainer.genStep.disc), "generator step #%d", i)

		_, err = trainer.discriminatorStep(texts, images)
		require.NoError(t, err)
		assert.Equal(t, 0.0, gradSquares(t, trainer.discStep.gen), "discriminator step #%d", i)
	}
}
