package text2img_gan

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Param Named trainable tensor. Model keeps the master copy, graphs get their own nodes initialised from it.
type Param struct {
	Name  string
	Value *tensor.Dense
}

// Data Returns backing slice of master copy
func (p *Param) Data() []float64 {
	return p.Value.Data().([]float64)
}

// Shape Returns shape of master copy
func (p *Param) Shape() tensor.Shape {
	return p.Value.Shape()
}

// LayerSpec Description of fully connected layer: activation(x * W^T + b)
//
// Inputs - size of input row
// Outputs - size of output row (number of rows in W)
// Activation - name of activation function, see LookupActivation()
// Bias - whether layer has bias row b with shape (1, Outputs)
//
type LayerSpec struct {
	Inputs     int    `yaml:"inputs"`
	Outputs    int    `yaml:"outputs"`
	Activation string `yaml:"activation"`
	Bias       bool   `yaml:"bias"`
}

// Layer Just an alias to Weight+Bias+ActivationFunction combo living on certain graph
type Layer struct {
	WeightNode *gorgonia.Node
	BiasNode   *gorgonia.Node
	Activation ActivationFunc
}

// Fwd Returns non-activated output of layer for provided input
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (l *Layer) Fwd(input *gorgonia.Node, batchSize int) (*gorgonia.Node, error) {
	if l.WeightNode == nil {
		return nil, fmt.Errorf("Layer's WeightNode is nil")
	}
	tOp, err := gorgonia.Transpose(l.WeightNode)
	if err != nil {
		return nil, errors.Wrap(err, "Can't transpose weights")
	}
	nonActivated, err := gorgonia.Mul(input, tOp)
	if err != nil {
		return nil, errors.Wrap(err, "Can't multiply input and weights")
	}
	if l.BiasNode == nil {
		return nonActivated, nil
	}
	if batchSize < 2 {
		nonActivated, err = gorgonia.Add(nonActivated, l.BiasNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add bias to non-activated output")
		}
		return nonActivated, nil
	}
	nonActivated, err = gorgonia.BroadcastAdd(nonActivated, l.BiasNode, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Can't add [in broadcast term with batch_size = %d] bias to non-activated output", batchSize))
	}
	return nonActivated, nil
}

func validateSpecs(specs []LayerSpec) error {
	if len(specs) == 0 {
		return errors.Wrap(ErrShapeMismatch, "network must have one layer atleast")
	}
	for i, s := range specs {
		if s.Inputs <= 0 || s.Outputs <= 0 {
			return errors.Wrapf(ErrShapeMismatch, "layer #%d has non-positive size %dx%d", i, s.Inputs, s.Outputs)
		}
		if i > 0 && specs[i-1].Outputs != s.Inputs {
			return errors.Wrapf(ErrShapeMismatch, "layer #%d expects %d inputs, but layer #%d gives %d outputs", i, s.Inputs, i-1, specs[i-1].Outputs)
		}
		if _, err := LookupActivation(s.Activation); err != nil {
			return withKind(ErrInvalidConfig, err, "layer #%d", i)
		}
	}
	return nil
}
