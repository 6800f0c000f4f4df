package text2img_gan

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// stepGraph Recording scope for one kind of training step.
//
// The whole GAN (generator and discriminator) lives on the graph, gradients are recorded for both,
// but only the trained model's gradients are handed to its optimizer.
//
type stepGraph struct {
	kind      StepKind
	g         *gorgonia.ExprGraph
	genInput  *gorgonia.Node
	realInput *gorgonia.Node
	gen       *BoundNetwork
	disc      *BoundNetwork
	trained   *BoundNetwork
	cost      *gorgonia.Node
	costVal   gorgonia.Value
	vm        gorgonia.VM
}

// newDiscriminatorStep Graph for discriminator_loss(D(real), D(G(input)))
func newDiscriminatorStep(gen *GeneratorNet, disc *DiscriminatorNet, batchSize int) (*stepGraph, error) {
	s, err := newStepGraph(StepDiscriminator, gen, disc, batchSize)
	if err != nil {
		return nil, err
	}
	fake, err := s.gen.Fwd(s.genInput, batchSize, "generator")
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator step]")
	}
	s.realInput = gorgonia.NewMatrix(s.g, gorgonia.Float64, gorgonia.WithShape(batchSize, disc.InputSize()), gorgonia.WithName("discriminator_real_input"))
	realScores, err := s.disc.Fwd(s.realInput, batchSize, "discriminator_real")
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator step] real images")
	}
	fakeScores, err := s.disc.Fwd(fake, batchSize, "discriminator_fake")
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator step] generated images")
	}
	s.cost, err = DiscriminatorLoss(realScores, fakeScores)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator step]")
	}
	s.trained = s.disc
	return s, s.compile()
}

// newGeneratorStep Graph for generator_loss(D(G(input))). Discriminator params are read-only here.
func newGeneratorStep(gen *GeneratorNet, disc *DiscriminatorNet, batchSize int) (*stepGraph, error) {
	s, err := newStepGraph(StepGenerator, gen, disc, batchSize)
	if err != nil {
		return nil, err
	}
	fake, err := s.gen.Fwd(s.genInput, batchSize, "generator")
	if err != nil {
		return nil, errors.Wrap(err, "[Generator step]")
	}
	fakeScores, err := s.disc.Fwd(fake, batchSize, "gan_discriminator")
	if err != nil {
		return nil, errors.Wrap(err, "[Generator step] generated images")
	}
	s.cost, err = GeneratorLoss(fakeScores)
	if err != nil {
		return nil, errors.Wrap(err, "[Generator step]")
	}
	s.trained = s.gen
	return s, s.compile()
}

func newStepGraph(kind StepKind, gen *GeneratorNet, disc *DiscriminatorNet, batchSize int) (*stepGraph, error) {
	s := &stepGraph{kind: kind, g: gorgonia.NewGraph()}
	var err error
	if s.gen, err = gen.Bind(s.g); err != nil {
		return nil, errors.Wrapf(err, "[%s step]", kind)
	}
	if s.disc, err = disc.Bind(s.g); err != nil {
		return nil, errors.Wrapf(err, "[%s step]", kind)
	}
	s.genInput = gorgonia.NewMatrix(s.g, gorgonia.Float64, gorgonia.WithShape(batchSize, gen.InputSize()), gorgonia.WithName("generator_input"))
	return s, nil
}

func (s *stepGraph) learnables() gorgonia.Nodes {
	all := make(gorgonia.Nodes, 0, len(s.gen.Learnables())+len(s.disc.Learnables()))
	all = append(all, s.gen.Learnables()...)
	return append(all, s.disc.Learnables()...)
}

func (s *stepGraph) compile() error {
	gorgonia.Read(s.cost, &s.costVal)
	if _, err := gorgonia.Grad(s.cost, s.learnables()...); err != nil {
		return errors.Wrapf(err, "[%s step] Can't define gradients", s.kind)
	}
	s.vm = gorgonia.NewTapeMachine(s.g, gorgonia.BindDualValues(s.learnables()...))
	return nil
}

// record Opens tape: loads current master params and batch into graph, runs forward and backward passes,
// applies gradients of trained model via opt, zeroes the frozen model's gradients and resets the tape before returning.
//
// genInput - (batch, generator input size) tensor
// realImages - (batch, pixels) tensor. Ignored by generator step
//
func (s *stepGraph) record(genInput, realImages *tensor.Dense, opt *Optimizer) (float64, error) {
	defer s.vm.Reset()
	defer s.clearFrozenGrads()
	if err := s.gen.pull(); err != nil {
		return 0, errors.Wrapf(err, "[%s step]", s.kind)
	}
	if err := s.disc.pull(); err != nil {
		return 0, errors.Wrapf(err, "[%s step]", s.kind)
	}
	if err := gorgonia.Let(s.genInput, genInput); err != nil {
		return 0, errors.Wrapf(err, "[%s step] Can't init generator input", s.kind)
	}
	if s.realInput != nil {
		if realImages == nil {
			return 0, errors.Wrapf(ErrShapeMismatch, "[%s step] real images are required", s.kind)
		}
		if err := gorgonia.Let(s.realInput, realImages); err != nil {
			return 0, errors.Wrapf(err, "[%s step] Can't init real images", s.kind)
		}
	}
	if err := s.vm.RunAll(); err != nil {
		return 0, errors.Wrapf(err, "[%s step] Can't run tape", s.kind)
	}
	loss, err := scalarValue(s.costVal)
	if err != nil {
		return 0, errors.Wrapf(err, "[%s step] Can't read loss", s.kind)
	}
	if err := opt.Apply(s.trained.Learnables(), s.trained.Params()); err != nil {
		return 0, errors.Wrapf(err, "[%s step]", s.kind)
	}
	return loss, nil
}

// frozen Returns bound network whose gradients are recorded but never applied
func (s *stepGraph) frozen() *BoundNetwork {
	if s.trained == s.gen {
		return s.disc
	}
	return s.gen
}

// clearFrozenGrads Zeroes gradients of the model that is not trained by this step
func (s *stepGraph) clearFrozenGrads() {
	for _, n := range s.frozen().Learnables() {
		if grad, err := n.Grad(); err == nil && grad != nil {
			gorgonia.ZeroValue(grad)
		}
	}
}

// Close Releases tape machine
func (s *stepGraph) Close() error {
	if s.vm == nil {
		return nil
	}
	return s.vm.Close()
}
