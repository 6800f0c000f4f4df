package main

import (
	"errors"
	"flag"
	"os"

	text2img "github.com/LdDl/text2img-gan-go"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("%s: %v", describe(err), err)
		klog.Flush()
		os.Exit(1)
	}
}

// saveError Persistence failure of train command
type saveError struct {
	err error
}

func (e *saveError) Error() string { return e.err.Error() }
func (e *saveError) Unwrap() error { return e.err }

// describe Short user-facing name of error kind
func describe(err error) string {
	var se *saveError
	switch {
	case errors.As(err, &se):
		return "can't save model"
	case errors.Is(err, text2img.ErrModelNotLoaded), errors.Is(err, text2img.ErrPersistence):
		return "no model available"
	case errors.Is(err, text2img.ErrDataLoad):
		return "training data problem"
	case errors.Is(err, text2img.ErrShapeMismatch), errors.Is(err, text2img.ErrInvalidOutputShape), errors.Is(err, text2img.ErrInvalidConfig):
		return "bad input"
	default:
		return "failed"
	}
}
