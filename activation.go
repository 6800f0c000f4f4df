package text2img_gan

import (
	"fmt"
	"sort"

	"gorgonia.org/gorgonia"
)

// ActivationFunc Just an alias to Gorgonia'a api_gen.go - https://github.com/gorgonia/gorgonia/blob/master/api_gen.go#L1
type ActivationFunc func(a *gorgonia.Node) (*gorgonia.Node, error)

func NoActivation(a *gorgonia.Node) (*gorgonia.Node, error) { return a, nil }
func Tanh(a *gorgonia.Node) (*gorgonia.Node, error)         { return gorgonia.Tanh(a) }
func Sigmoid(a *gorgonia.Node) (*gorgonia.Node, error)      { return gorgonia.Sigmoid(a) }
func Softplus(a *gorgonia.Node) (*gorgonia.Node, error)     { return gorgonia.Softplus(a) }
func Rectify(a *gorgonia.Node) (*gorgonia.Node, error)      { return gorgonia.Rectify(a) }
func Square(a *gorgonia.Node) (*gorgonia.Node, error)       { return gorgonia.Square(a) }
func Sin(a *gorgonia.Node) (*gorgonia.Node, error)          { return gorgonia.Sin(a) }

// Activation names as they are written to config files and model artifacts.
const (
	ActivationNone     = "none"
	ActivationTanh     = "tanh"
	ActivationSigmoid  = "sigmoid"
	ActivationSoftplus = "softplus"
	ActivationRelu     = "relu"
	ActivationSquare   = "square"
	ActivationSin      = "sin"
)

var activations = map[string]ActivationFunc{
	ActivationNone:     NoActivation,
	ActivationTanh:     Tanh,
	ActivationSigmoid:  Sigmoid,
	ActivationSoftplus: Softplus,
	ActivationRelu:     Rectify,
	ActivationSquare:   Square,
	ActivationSin:      Sin,
	"":                 NoActivation,
}

// LookupActivation Returns activation function registered under the given name
func LookupActivation(name string) (ActivationFunc, error) {
	fn, ok := activations[name]
	if !ok {
		known := make([]string, 0, len(activations))
		for k := range activations {
			if k != "" {
				known = append(known, k)
			}
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown activation '%s' (known: %v)", name, known)
	}
	return fn, nil
}
