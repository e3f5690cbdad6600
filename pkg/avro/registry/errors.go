package registry

import (
	"errors"
	"fmt"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/compatibility"
)

var (
	// ErrNotFound is returned for unknown fingerprints, subjects, versions and IDs.
	ErrNotFound = errors.New("schema not found")
	// ErrIncompatible is returned when a subject rejects a new version.
	ErrIncompatible = errors.New("schema is incompatible")
	// ErrFingerprintCollision is returned when two different canonical forms
	// share a 64-bit fingerprint.
	ErrFingerprintCollision = errors.New("fingerprint collision")
)

// IncompatibleError carries the compatibility result that rejected a
// subject version.
type IncompatibleError struct {
	Subject string
	Level   compatibility.Level
	Result  compatibility.Result
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("schema for subject %s is incompatible under %s: %s", e.Subject, e.Level, e.Result)
}

func (e *IncompatibleError) Unwrap() error {
	return ErrIncompatible
}
