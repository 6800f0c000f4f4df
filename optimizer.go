package text2img_gan

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// Optimizer Adaptive (Adam) optimizer owning parameter set of exactly one model.
// Moment estimates live inside the solver and are never shared with other optimizers.
type Optimizer struct {
	owner  string
	solver gorgonia.Solver
}

// NewOptimizer Constructor for Optimizer
//
// owner - name of model whose params will be updated (used in error messages)
// learnRate - Adam learning rate
// beta1 - Adam first moment decay. Zero means solver default
// batchSize - gradients are scaled by 1/batchSize
//
func NewOptimizer(owner string, learnRate, beta1 float64, batchSize int) *Optimizer {
	opts := []gorgonia.SolverOpt{
		gorgonia.WithLearnRate(learnRate),
		gorgonia.WithBatchSize(float64(batchSize)),
	}
	if beta1 > 0 {
		opts = append(opts, gorgonia.WithBeta1(beta1))
	}
	return &Optimizer{
		owner:  owner,
		solver: gorgonia.NewAdamSolver(opts...),
	}
}

// Apply Does one solver step on nodes (their values and gradients) and writes updated values back to params.
// Nodes and params must correspond positionally and have same shapes.
func (o *Optimizer) Apply(nodes gorgonia.Nodes, params []*Param) error {
	if len(nodes) != len(params) {
		return errors.Wrapf(ErrShapeMismatch, "[%s optimizer] %d nodes for %d params", o.owner, len(nodes), len(params))
	}
	for i, n := range nodes {
		if !n.Shape().Eq(params[i].Shape()) {
			return errors.Wrapf(ErrShapeMismatch, "[%s optimizer] node '%s' has shape %v, param '%s' has shape %v", o.owner, n.Name(), n.Shape(), params[i].Name, params[i].Shape())
		}
		grad, err := n.Grad()
		if err != nil {
			return errors.Wrapf(err, "[%s optimizer] Can't get gradient of '%s'", o.owner, n.Name())
		}
		if !grad.Shape().Eq(params[i].Shape()) {
			return errors.Wrapf(ErrShapeMismatch, "[%s optimizer] gradient of '%s' has shape %v, param '%s' has shape %v", o.owner, n.Name(), grad.Shape(), params[i].Name, params[i].Shape())
		}
	}
	if err := o.solver.Step(gorgonia.NodesToValueGrads(nodes)); err != nil {
		return errors.Wrapf(err, "[%s optimizer] Can't do solver step", o.owner)
	}
	for i, n := range nodes {
		updated, ok := n.Value().Data().([]float64)
		if !ok || len(updated) != len(params[i].Data()) {
			return errors.Wrapf(ErrShapeMismatch, "[%s optimizer] updated value of '%s' doesn't fit param '%s'", o.owner, n.Name(), params[i].Name)
		}
		copy(params[i].Data(), updated)
	}
	return nil
}
