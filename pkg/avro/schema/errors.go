package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is returned (wrapped in a *SchemaError) for malformed or
// self-inconsistent schema definitions.
var ErrInvalidDefinition = errors.New("invalid schema definition")

// SchemaError describes why a schema definition was rejected.
type SchemaError struct {
	// Path locates the offending node, e.g. "example.User.fields[2]".
	Path string
	// Msg is a human-readable description.
	Msg string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "avro schema: " + e.Msg
	}
	return fmt.Sprintf("avro schema: %s: %s", e.Path, e.Msg)
}

// Unwrap makes errors.Is(err, ErrInvalidDefinition) hold for every SchemaError.
func (e *SchemaError) Unwrap() error {
	return ErrInvalidDefinition
}

func newSchemaError(path string, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
