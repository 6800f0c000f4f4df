package text2img_gan

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// TrainSet Dataset encoded into dense tensors
//
// TrainData - (DataLength, Vocabulary) encoded texts
// TrainLabel - (DataLength, height*width) flattened images
//
type TrainSet struct {
	TrainData  *tensor.Dense
	TrainLabel *tensor.Dense
	DataLength int
}

// NewTrainSet Encodes every sample of dataset
func NewTrainSet(ds *Dataset, enc TextEncoder) (*TrainSet, error) {
	texts, err := enc.EncodeBatch(ds.Texts)
	if err != nil {
		return nil, errors.Wrap(err, "[TrainSet] Can't encode texts")
	}
	height, width := ds.ImageShape()
	pixels := make([]float64, 0, ds.Len()*height*width)
	for _, img := range ds.Images {
		pixels = append(pixels, img.Flatten()...)
	}
	return &TrainSet{
		TrainData:  texts,
		TrainLabel: tensor.New(tensor.WithShape(ds.Len(), height*width), tensor.WithBacking(pixels)),
		DataLength: ds.Len(),
	}, nil
}

// Batch Gathers rows with provided indices. Returns texts and images batches.
func (ts *TrainSet) Batch(indices []int) (*tensor.Dense, *tensor.Dense, error) {
	if len(indices) == 0 {
		return nil, nil, errors.Wrap(ErrDataLoad, "[TrainSet] empty batch")
	}
	texts, err := gatherRows(ts.TrainData, indices)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[TrainSet] texts")
	}
	images, err := gatherRows(ts.TrainLabel, indices)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[TrainSet] images")
	}
	return texts, images, nil
}

func gatherRows(t *tensor.Dense, indices []int) (*tensor.Dense, error) {
	rows, cols := t.Shape()[0], t.Shape()[1]
	src := t.Data().([]float64)
	data := make([]float64, 0, len(indices)*cols)
	for _, idx := range indices {
		if idx < 0 || idx >= rows {
			return nil, errors.Wrapf(ErrDataLoad, "index %d is out of range [0, %d)", idx, rows)
		}
		data = append(data, src[idx*cols:(idx+1)*cols]...)
	}
	return tensor.New(tensor.WithShape(len(indices), cols), tensor.WithBacking(data)), nil
}
