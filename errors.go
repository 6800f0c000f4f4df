package text2img_gan

import (
	"github.com/pkg/errors"
)

// Error kinds. Every error returned by this package wraps one of these,
// so callers can tell them apart with errors.Is. Causes coming from lower layers
// (file system, badger, gob) stay reachable as well.
var (
	// ErrDataLoad Dataset is missing, unreadable or malformed
	ErrDataLoad = errors.New("training data problem")
	// ErrShapeMismatch Tensor, gradient or parameter shapes do not line up
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModelNotLoaded Inference was requested before any generator was available
	ErrModelNotLoaded = errors.New("no model available")
	// ErrInvalidOutputShape Generator output can't be turned into an image
	ErrInvalidOutputShape = errors.New("invalid generator output shape")
	// ErrPersistence Model artifact couldn't be saved or loaded
	ErrPersistence = errors.New("persistence error")
	// ErrInvalidConfig Configuration values are out of range
	ErrInvalidConfig = errors.New("invalid configuration")
)

// kindError Error of certain kind caused by another error
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string {
	return e.cause.Error() + ": " + e.kind.Error()
}

// Unwrap Both kind and cause are matched by errors.Is and errors.As
func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// withKind Annotates cause with message and marks result with kind
func withKind(kind, cause error, format string, args ...interface{}) error {
	return &kindError{kind: kind, cause: errors.Wrapf(cause, format, args...)}
}
