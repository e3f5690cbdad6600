package compatibility

import (
	"errors"
	"fmt"
)

var (
	// ErrRecursionDetected is returned when the comparison of recursive
	// named types cannot reach a base case within the depth budget.
	ErrRecursionDetected = errors.New("recursion detected")
	// ErrUnknownLevel is returned by ParseLevel.
	ErrUnknownLevel = errors.New("unknown compatibility level")
)

// RecursionError reports where a recursive comparison was abandoned.
type RecursionError struct {
	Location string
	Reader   string
	Writer   string
	Msg      string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("avro compatibility: %s: %s (reader %s, writer %s)", e.Location, e.Msg, e.Reader, e.Writer)
}

func (e *RecursionError) Unwrap() error {
	return ErrRecursionDetected
}
