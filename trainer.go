package text2img_gan

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"
)

// TrainConfig Training loop settings
//
// NumEpochs - number of full passes over shuffled dataset
// BatchSize - samples per step
// NumBatches - steps per epoch. Zero means DataLength/BatchSize
// LearningRate - Adam learning rate for both optimizers
// Beta1 - Adam first moment decay. Zero means solver default
// Seed - seed for shuffling and latent noise
//
type TrainConfig struct {
	NumEpochs    int     `yaml:"num_epochs"`
	BatchSize    int     `yaml:"batch_size"`
	NumBatches   int     `yaml:"num_batches"`
	LearningRate float64 `yaml:"learning_rate"`
	Beta1        float64 `yaml:"beta1"`
	Seed         int64   `yaml:"seed"`
}

// Validate Checks values which don't depend on dataset
func (cfg TrainConfig) Validate() error {
	if cfg.NumEpochs <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_epochs must be positive, got %d", cfg.NumEpochs)
	}
	if cfg.BatchSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "batch_size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.NumBatches < 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_batches must not be negative, got %d", cfg.NumBatches)
	}
	if cfg.LearningRate <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "learning_rate must be positive, got %v", cfg.LearningRate)
	}
	if cfg.Beta1 < 0 || cfg.Beta1 >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "beta1 must be in [0, 1), got %v", cfg.Beta1)
	}
	return nil
}

// batchesPerEpoch Resolves number of batches for dataset of given size.
// Configurations needing more samples than dataset has are rejected.
func (cfg TrainConfig) batchesPerEpoch(dataLength int) (int, error) {
	numBatches := cfg.NumBatches
	if numBatches == 0 {
		numBatches = dataLength / cfg.BatchSize
	}
	if numBatches == 0 {
		return 0, errors.Wrapf(ErrInvalidConfig, "batch_size %d is bigger than dataset (%d samples)", cfg.BatchSize, dataLength)
	}
	if numBatches*cfg.BatchSize > dataLength {
		return 0, errors.Wrapf(ErrInvalidConfig, "num_batches*batch_size = %d*%d needs more samples than dataset has (%d)", numBatches, cfg.BatchSize, dataLength)
	}
	return numBatches, nil
}

// Trainer Training loop controller for GAN
type Trainer struct {
	cfg           TrainConfig
	numBatches    int
	set           *TrainSet
	generator     *GeneratorNet
	discriminator *DiscriminatorNet
	discOpt       *Optimizer
	genOpt        *Optimizer
	discStep      *stepGraph
	genStep       *stepGraph
	sink          ProgressSink
	hooks         []StepHook
	store         Store
	rng           *rand.Rand
}

// TrainerOption Optional Trainer setting
type TrainerOption func(*Trainer)

// WithProgress Sets receiver of epoch reports
func WithProgress(sink ProgressSink) TrainerOption {
	return func(t *Trainer) { t.sink = sink }
}

// WithStepHook Adds observer of every training step
func WithStepHook(hook StepHook) TrainerOption {
	return func(t *Trainer) { t.hooks = append(t.hooks, hook) }
}

// WithStore Sets store for trained models. Required by Run()
func WithStore(store Store) TrainerOption {
	return func(t *Trainer) { t.store = store }
}

// NewTrainer Constructor for Trainer. Builds both step graphs up front.
func NewTrainer(cfg TrainConfig, ds *Dataset, gen *GeneratorNet, disc *DiscriminatorNet, opts ...TrainerOption) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Trainer]")
	}
	if ds == nil || gen == nil || disc == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "[Trainer] dataset, generator and discriminator are required")
	}
	numBatches, err := cfg.batchesPerEpoch(ds.Len())
	if err != nil {
		return nil, errors.Wrap(err, "[Trainer]")
	}
	genHeight, genWidth := gen.ImageShape()
	dsHeight, dsWidth := ds.ImageShape()
	if genHeight != dsHeight || genWidth != dsWidth {
		return nil, errors.Wrapf(ErrShapeMismatch, "[Trainer] generator makes %dx%d images, dataset has %dx%d", genHeight, genWidth, dsHeight, dsWidth)
	}
	if disc.InputSize() != genHeight*genWidth {
		return nil, errors.Wrapf(ErrShapeMismatch, "[Trainer] discriminator takes %d pixels, generator makes %d", disc.InputSize(), genHeight*genWidth)
	}
	set, err := NewTrainSet(ds, gen.Encoder())
	if err != nil {
		return nil, errors.Wrap(err, "[Trainer]")
	}
	t := &Trainer{
		cfg:           cfg,
		numBatches:    numBatches,
		set:           set,
		generator:     gen,
		discriminator: disc,
		discOpt:       NewOptimizer(disc.Name(), cfg.LearningRate, cfg.Beta1, cfg.BatchSize),
		genOpt:        NewOptimizer(gen.Name(), cfg.LearningRate, cfg.Beta1, cfg.BatchSize),
		rng:           rand.New(rand.NewSource(cfg.Seed)),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.discStep, err = newDiscriminatorStep(gen, disc, cfg.BatchSize); err != nil {
		return nil, err
	}
	if t.genStep, err = newGeneratorStep(gen, disc, cfg.BatchSize); err != nil {
		_ = t.discStep.Close()
		return nil, err
	}
	return t, nil
}

// NumBatches Returns resolved number of batches per epoch
func (t *Trainer) NumBatches() int {
	return t.numBatches
}

// Close Releases tape machines of both steps
func (t *Trainer) Close() error {
	errDisc := t.discStep.Close()
	errGen := t.genStep.Close()
	if errDisc != nil {
		return errDisc
	}
	return errGen
}

// shuffledIndices Uniformly random permutation of [0, n)
func shuffledIndices(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}

// Train Runs NumEpochs epochs. Context is checked between batches.
func (t *Trainer) Train(ctx context.Context) (*History, error) {
	return t.train(ctx, t.sink)
}

func (t *Trainer) train(ctx context.Context, sink ProgressSink) (*History, error) {
	history := &History{}
	klog.Infof("Start training: %d epochs, %d batches of %d samples (dataset has %d samples)", t.cfg.NumEpochs, t.numBatches, t.cfg.BatchSize, t.set.DataLength)
	for epoch := 0; epoch < t.cfg.NumEpochs; epoch++ {
		st := time.Now()
		indices := shuffledIndices(t.rng, t.set.DataLength)
		var discSum, genSum float64
		for b := 0; b < t.numBatches; b++ {
			if err := ctx.Err(); err != nil {
				return history, errors.Wrapf(err, "[Trainer] Stopped at epoch %d, batch %d", epoch, b)
			}
			window := indices[b*t.cfg.BatchSize : (b+1)*t.cfg.BatchSize]
			discLoss, genLoss, err := t.trainBatch(epoch, b, window)
			if err != nil {
				return history, errors.Wrapf(err, "[Trainer] epoch %d, batch %d", epoch, b)
			}
			discSum += discLoss
			genSum += genLoss
		}
		report := EpochReport{
			Epoch:             epoch,
			Total:             t.cfg.NumEpochs,
			DiscriminatorLoss: discSum / float64(t.numBatches),
			GeneratorLoss:     genSum / float64(t.numBatches),
			Elapsed:           time.Since(st),
		}
		history.Progress(report)
		if sink != nil {
			sink.Progress(report)
		}
	}
	return history, nil
}

// trainBatch Discriminator step, then generator step
func (t *Trainer) trainBatch(epoch, batch int, window []int) (float64, float64, error) {
	texts, images, err := t.set.Batch(window)
	if err != nil {
		return 0, 0, err
	}
	discLoss, err := t.discriminatorStep(texts, images)
	if err != nil {
		return 0, 0, err
	}
	t.emit(StepEvent{Epoch: epoch, Batch: batch, Kind: StepDiscriminator, Loss: discLoss})
	genLoss, err := t.generatorStep(texts)
	if err != nil {
		return 0, 0, err
	}
	t.emit(StepEvent{Epoch: epoch, Batch: batch, Kind: StepGenerator, Loss: genLoss})
	klog.V(2).Infof("epoch %d batch %d: discriminator loss %.5f, generator loss %.5f", epoch, batch, discLoss, genLoss)
	return discLoss, genLoss, nil
}

func (t *Trainer) discriminatorStep(texts, images *tensor.Dense) (float64, error) {
	genInput, err := t.generator.composeInputs(texts, t.rng)
	if err != nil {
		return 0, err
	}
	return t.discStep.record(genInput, images, t.discOpt)
}

func (t *Trainer) generatorStep(texts *tensor.Dense) (float64, error) {
	genInput, err := t.generator.composeInputs(texts, t.rng)
	if err != nil {
		return 0, err
	}
	return t.genStep.record(genInput, nil, t.genOpt)
}

func (t *Trainer) emit(ev StepEvent) {
	for _, hook := range t.hooks {
		hook(ev)
	}
}

// Run Trains and then persists both models to store. Failure to persist fails the run.
func (t *Trainer) Run(ctx context.Context) (*History, error) {
	return t.run(ctx, t.sink)
}

func (t *Trainer) run(ctx context.Context, sink ProgressSink) (*History, error) {
	if t.store == nil {
		return nil, errors.Wrap(ErrPersistence, "[Trainer] no store to save models to")
	}
	history, err := t.train(ctx, sink)
	if err != nil {
		return history, err
	}
	runID, err := SaveModels(t.store, t.generator, t.discriminator)
	if err != nil {
		return history, errors.Wrap(err, "[Trainer] Can't save trained models")
	}
	klog.Infof("Training finished, models saved as '%s' and '%s' (run %s)", GeneratorArtifact, DiscriminatorArtifact, runID)
	return history, nil
}

// AsyncRun Handle of Run() executed on its own goroutine
type AsyncRun struct {
	// Progress Receives one report per epoch; closed when run is over
	Progress <-chan EpochReport
	done     chan struct{}
	history  *History
	err      error
}

// RunAsync Starts Run() on separate goroutine. Trainer must not be used until Wait() returns.
func (t *Trainer) RunAsync(ctx context.Context) *AsyncRun {
	ch := make(chan EpochReport, t.cfg.NumEpochs)
	run := &AsyncRun{Progress: ch, done: make(chan struct{})}
	sink := MultiSink{t.sink, ChanSink(ch)}
	go func() {
		defer close(run.done)
		defer close(ch)
		run.history, run.err = t.run(ctx, sink)
	}()
	return run
}

// Done Closed when run is over
func (r *AsyncRun) Done() <-chan struct{} {
	return r.done
}

// Wait Blocks until run is over
func (r *AsyncRun) Wait() (*History, error) {
	<-r.done
	return r.history, r.err
}
