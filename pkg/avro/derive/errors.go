package derive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedShape is returned for descriptions with no Avro mapping.
	ErrUnsupportedShape = errors.New("unsupported shape")
	// ErrConflictingVariant is returned when a name is bound to two
	// different descriptions.
	ErrConflictingVariant = errors.New("conflicting variant")
	// ErrUnknownVariant is returned by SumBinding for tags outside the sum.
	ErrUnknownVariant = errors.New("unknown variant")
)

// DerivationError locates a description that could not be derived.
type DerivationError struct {
	// Path is the chain of type and field names leading to the failure.
	Path string
	Msg  string
	// Err is ErrUnsupportedShape, ErrConflictingVariant or a schema error.
	Err error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("avro derive: %s: %s", e.Path, e.Msg)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

func newDerivationError(kind error, path, format string, args ...any) *DerivationError {
	return &DerivationError{Path: path, Msg: fmt.Sprintf(format, args...), Err: kind}
}
