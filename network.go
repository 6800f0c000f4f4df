package text2img_gan

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Model Trainable function: ordered set of parameters plus the ability to put its feedforward on a graph.
// GeneratorNet and DiscriminatorNet are two independent implementations.
type Model interface {
	Name() string
	Params() []*Param
	Bind(g *gorgonia.ExprGraph) (*BoundNetwork, error)
}

// Network Abstraction for neural network.
//
// Specs - simple sequence of fully connected layers
// params - master copies of weights (and biases) in layer order
//
type Network struct {
	Name   string
	Specs  []LayerSpec
	params []*Param
}

func newNetwork(name string, specs []LayerSpec, rng *rand.Rand) (*Network, error) {
	if err := validateSpecs(specs); err != nil {
		return nil, errors.Wrapf(err, "[%s]", name)
	}
	net := &Network{Name: name, Specs: specs}
	for i, s := range specs {
		net.params = append(net.params, &Param{
			Name:  fmt.Sprintf("%s_w%d", name, i),
			Value: GlorotDense(rng, s.Outputs, s.Inputs),
		})
		if s.Bias {
			net.params = append(net.params, &Param{
				Name:  fmt.Sprintf("%s_b%d", name, i),
				Value: tensor.New(tensor.WithShape(1, s.Outputs), tensor.WithBacking(make([]float64, s.Outputs))),
			})
		}
	}
	return net, nil
}

// restoreNetwork Builds network from specs and already trained params (e.g. read from artifact)
func restoreNetwork(name string, specs []LayerSpec, params []*Param) (*Network, error) {
	if err := validateSpecs(specs); err != nil {
		return nil, errors.Wrapf(err, "[%s]", name)
	}
	expected := make([]tensor.Shape, 0, 2*len(specs))
	for _, s := range specs {
		expected = append(expected, tensor.Shape{s.Outputs, s.Inputs})
		if s.Bias {
			expected = append(expected, tensor.Shape{1, s.Outputs})
		}
	}
	if len(expected) != len(params) {
		return nil, errors.Wrapf(ErrShapeMismatch, "[%s] layers need %d params, got %d", name, len(expected), len(params))
	}
	for i := range params {
		if !params[i].Shape().Eq(expected[i]) {
			return nil, errors.Wrapf(ErrShapeMismatch, "[%s] param '%s' has shape %v, expected %v", name, params[i].Name, params[i].Shape(), expected[i])
		}
	}
	return &Network{Name: name, Specs: specs, params: params}, nil
}

// Params Returns master params in layer order
func (net *Network) Params() []*Param {
	return net.params
}

// InputSize Returns width of input row
func (net *Network) InputSize() int {
	return net.Specs[0].Inputs
}

// OutputSize Returns width of output row
func (net *Network) OutputSize() int {
	return net.Specs[len(net.Specs)-1].Outputs
}

// Bind Creates nodes for every param on provided graph. Nodes are initialised with copies of master params.
func (net *Network) Bind(g *gorgonia.ExprGraph) (*BoundNetwork, error) {
	bound := &BoundNetwork{
		net:    net,
		Layers: make([]*Layer, len(net.Specs)),
		nodes:  make(gorgonia.Nodes, 0, len(net.params)),
	}
	idx := 0
	for i, s := range net.Specs {
		act, err := LookupActivation(s.Activation)
		if err != nil {
			return nil, withKind(ErrInvalidConfig, err, "[%s] layer #%d", net.Name, i)
		}
		l := &Layer{Activation: act}
		l.WeightNode = paramNode(g, net.params[idx])
		bound.nodes = append(bound.nodes, l.WeightNode)
		idx++
		if s.Bias {
			l.BiasNode = paramNode(g, net.params[idx])
			bound.nodes = append(bound.nodes, l.BiasNode)
			idx++
		}
		bound.Layers[i] = l
	}
	return bound, nil
}

func paramNode(g *gorgonia.ExprGraph, p *Param) *gorgonia.Node {
	return gorgonia.NewMatrix(
		g,
		gorgonia.Float64,
		gorgonia.WithShape(p.Shape()...),
		gorgonia.WithName(p.Name),
		gorgonia.WithValue(p.Value.Clone().(*tensor.Dense)),
	)
}

// run Evaluates network on host data without gradients. Returns flat output data with (batch, OutputSize()) layout.
func (net *Network) run(input *tensor.Dense) ([]float64, error) {
	if input.Dims() != 2 || input.Shape()[1] != net.InputSize() {
		return nil, errors.Wrapf(ErrShapeMismatch, "[%s] input shape %v, expected (n, %d)", net.Name, input.Shape(), net.InputSize())
	}
	batchSize := input.Shape()[0]
	g := gorgonia.NewGraph()
	bound, err := net.Bind(g)
	if err != nil {
		return nil, err
	}
	inputNode := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(batchSize, net.InputSize()), gorgonia.WithName(net.Name+"_input"))
	out, err := bound.Fwd(inputNode, batchSize, net.Name)
	if err != nil {
		return nil, err
	}
	var outVal gorgonia.Value
	gorgonia.Read(out, &outVal)
	tm := gorgonia.NewTapeMachine(g)
	defer tm.Close()
	if err = gorgonia.Let(inputNode, input); err != nil {
		return nil, errors.Wrapf(err, "[%s] Can't init input value", net.Name)
	}
	if err = tm.RunAll(); err != nil {
		return nil, errors.Wrapf(err, "[%s] Can't run VM", net.Name)
	}
	data, ok := outVal.Data().([]float64)
	if !ok {
		return nil, errors.Wrapf(ErrShapeMismatch, "[%s] output is %T, expected []float64", net.Name, outVal.Data())
	}
	return append([]float64(nil), data...), nil
}

// BoundNetwork Network whose params are represented by nodes on certain graph
type BoundNetwork struct {
	net    *Network
	Layers []*Layer
	nodes  gorgonia.Nodes
}

// Learnables Returns learnables nodes (same order as Params())
func (b *BoundNetwork) Learnables() gorgonia.Nodes {
	return b.nodes
}

// Params Returns master params of bound network
func (b *BoundNetwork) Params() []*Param {
	return b.net.params
}

// pull Overwrites node values with current master params
func (b *BoundNetwork) pull() error {
	for i, n := range b.nodes {
		v := n.Value()
		if v == nil {
			return fmt.Errorf("[%s] node '%s' has no value", b.net.Name, n.Name())
		}
		dst, ok := v.Data().([]float64)
		if !ok || len(dst) != len(b.net.params[i].Data()) {
			return errors.Wrapf(ErrShapeMismatch, "[%s] node '%s' can't hold param values", b.net.Name, n.Name())
		}
		copy(dst, b.net.params[i].Data())
	}
	return nil
}

// Fwd Initializates feedforward for provided input
//
// input - Input node
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// prefix - prefix for names of intermediate nodes
//
func (b *BoundNetwork) Fwd(input *gorgonia.Node, batchSize int, prefix string) (*gorgonia.Node, error) {
	last := input
	for i, l := range b.Layers {
		if l == nil {
			return nil, fmt.Errorf("[%s] layer #%d is nil", b.net.Name, i)
		}
		nonActivated, err := l.Fwd(last, batchSize)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("[%s, Layer #%d] Can't feedforward input before activation", b.net.Name, i))
		}
		gorgonia.WithName(fmt.Sprintf("%s_%d", prefix, i))(nonActivated)
		activated, err := l.Activation(nonActivated)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("[%s] Can't apply activation function to non-activated output of layer #%d", b.net.Name, i))
		}
		if activated != nonActivated {
			gorgonia.WithName(fmt.Sprintf("%s_activated_%d", prefix, i))(activated)
		}
		last = activated
	}
	return last, nil
}
