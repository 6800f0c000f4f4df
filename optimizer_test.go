package text2img_gan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestOptimizerApplyMismatch(t *testing.T) {
	g := gorgonia.NewGraph()
	node := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(2, 2), gorgonia.WithName("w"), gorgonia.WithInit(gorgonia.Zeroes()))
	opt := NewOptimizer("test", 0.01, 0.5, 1)

	err := opt.Apply(gorgonia.Nodes{node}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = opt.Apply(gorgonia.Nodes{node}, []*Param{
		{Name: "w", Value: tensor.New(tensor.WithShape(2, 3), tensor.WithBacking(make([]float64, 6)))},
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
