package text2img_gan

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

type LossReduction uint16

const (
	LossReductionSum = LossReduction(iota)
	LossReductionMean
)

// lossEpsilon keeps log() finite when sigmoid saturates
const lossEpsilon = 1e-7

// BinaryCrossEntropyLoss See ref. https://en.wikipedia.org/wiki/Cross_entropy#Cross-entropy_loss_function_and_logistic_regression
// a - predicted probabilities, b - target probabilities (same shape).
// loss{i} = -b{i}*log(a{i}+eps) - (1-b{i})*log(1-a{i}+eps)
// Helper scalars are named after b, so b must have unique name on its graph.
// Default reduction is 'mean'
func BinaryCrossEntropyLoss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	eps := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(lossEpsilon), gorgonia.WithName(b.Name()+"_eps"))
	one := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(1.0), gorgonia.WithName(b.Name()+"_one"))

	// Main part the same as cross entropy
	shifted, err := gorgonia.Add(a, eps)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A+eps)")
	}
	logMain, err := gorgonia.Log(shifted)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(A)")
	}
	negMain, err := gorgonia.Neg(logMain)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	hprodMain, err := gorgonia.HadamardProd(negMain, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*B)")
	}

	// Here comes another part
	complement, err := gorgonia.Sub(one, a)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-A)")
	}
	complementShifted, err := gorgonia.Add(complement, eps)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-A+eps)")
	}
	logBin, err := gorgonia.Log(complementShifted)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(1-A)")
	}
	negBin, err := gorgonia.Neg(logBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	targetComplement, err := gorgonia.Sub(one, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-B)")
	}
	hprodBin, err := gorgonia.HadamardProd(negBin, targetComplement)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*(1-B))")
	}
	hprod, err := gorgonia.Add(hprodMain, hprodBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x+y)")
	}

	reductionDefault := LossReductionMean
	if len(reduction) != 0 {
		reductionDefault = reduction[0]
	}
	switch reductionDefault {
	case LossReductionSum:
		return gorgonia.Sum(hprod)
	case LossReductionMean:
		return gorgonia.Mean(hprod)
	default:
		return nil, fmt.Errorf("Reduction type %d is not supported", reductionDefault)
	}
}

// constTarget Creates tensor of same shape as a, filled with ones (or zeros)
func constTarget(a *gorgonia.Node, name string, ones bool) *gorgonia.Node {
	initFn := gorgonia.Zeroes()
	if ones {
		initFn = gorgonia.Ones()
	}
	return gorgonia.NewTensor(a.Graph(), a.Dtype(), a.Dims(), gorgonia.WithShape(a.Shape()...), gorgonia.WithName(name), gorgonia.WithInit(initFn))
}

// DiscriminatorLoss crossEntropy(1, real) + crossEntropy(0, fake)
//
// realScores - discriminator output for real images
// fakeScores - discriminator output for generated images
//
func DiscriminatorLoss(realScores, fakeScores *gorgonia.Node) (*gorgonia.Node, error) {
	realLoss, err := BinaryCrossEntropyLoss(realScores, constTarget(realScores, "discriminator_real_target", true))
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator loss] real part")
	}
	fakeLoss, err := BinaryCrossEntropyLoss(fakeScores, constTarget(fakeScores, "discriminator_fake_target", false))
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator loss] fake part")
	}
	cost, err := gorgonia.Add(realLoss, fakeLoss)
	if err != nil {
		return nil, errors.Wrap(err, "[Discriminator loss] Can't do (real+fake)")
	}
	gorgonia.WithName("discriminator_loss")(cost)
	return cost, nil
}

// GeneratorLoss crossEntropy(1, fake): generator is rewarded when discriminator takes its images for real ones
func GeneratorLoss(fakeScores *gorgonia.Node) (*gorgonia.Node, error) {
	cost, err := BinaryCrossEntropyLoss(fakeScores, constTarget(fakeScores, "generator_fake_target", true))
	if err != nil {
		return nil, errors.Wrap(err, "[Generator loss]")
	}
	gorgonia.WithName("generator_loss")(cost)
	return cost, nil
}
