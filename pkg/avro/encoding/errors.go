package encoding

import (
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// Sentinels for errors.Is. Every *CodecError unwraps to one of them.
var (
	ErrTruncatedInput    = errors.New("truncated input")
	ErrInvalidUnionIndex = errors.New("invalid union index")
	ErrMalformedVarint   = errors.New("malformed varint")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrTrailingBytes     = errors.New("trailing bytes")
	ErrNegativeLength    = errors.New("negative length")
	ErrInvalidFraming    = errors.New("invalid framing")
)

// CodecError reports malformed wire data or a value that does not fit its
// schema.
type CodecError struct {
	// Kind is one of the package sentinels.
	Kind error
	// Path locates the failing node, e.g. "$.items[3].name".
	Path string
	Msg  string
}

func (e *CodecError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("avro codec: %v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("avro codec: %s: %v: %s", e.Path, e.Kind, e.Msg)
}

func (e *CodecError) Unwrap() error {
	return e.Kind
}

func newError(kind error, path, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...)}
}

func mismatch(path string, s schema.Schema, v value.Value) *CodecError {
	return newError(ErrSchemaMismatch, path, "expected %s, got %s", schema.BranchName(s), kindName(v))
}

func kindName(v value.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Kind().String()
}

func resolveAt(s schema.Schema, path string) (schema.Schema, error) {
	r, err := schema.Resolve(s)
	if err != nil {
		return nil, newError(ErrSchemaMismatch, path, "%v", err)
	}
	return r, nil
}

func asCodecError(err error, target **CodecError) bool {
	return errors.As(err, target)
}
