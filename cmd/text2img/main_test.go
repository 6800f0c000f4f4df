package main

import (
	"testing"

	text2img "github.com/LdDl/text2img-gan-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	cases := []struct {
		err      error
		expected string
	}{
		{errors.Wrap(text2img.ErrModelNotLoaded, "[Inference]"), "no model available"},
		{errors.Wrap(text2img.ErrPersistence, "[Generator] Can't load"), "no model available"},
		{&saveError{err: errors.Wrap(text2img.ErrPersistence, "[Trainer] Can't save trained models")}, "can't save model"},
		{errors.Wrap(text2img.ErrDataLoad, "dataset"), "training data problem"},
		{errors.Wrap(text2img.ErrInvalidConfig, "config"), "bad input"},
		{errors.Wrap(text2img.ErrInvalidOutputShape, "[Inference]"), "bad input"},
		{errors.New("boom"), "failed"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, describe(tc.err), tc.err.Error())
	}
}

func TestSaveErrorKeepsKind(t *testing.T) {
	err := &saveError{err: errors.Wrap(text2img.ErrPersistence, "disk full")}
	assert.ErrorIs(t, err, text2img.ErrPersistence)
	assert.Equal(t, "disk full: persistence error", err.Error())
}
