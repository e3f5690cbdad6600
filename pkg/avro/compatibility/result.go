// Package compatibility decides whether data written with one Avro schema
// can be read with another.
//
// The check is a structural co-traversal of the reader and writer schemas.
// Its outcome is a Result, never an error: an incompatible pair carries the
// list of reasons. Only a degenerate recursive comparison fails with
// ErrRecursionDetected.
package compatibility

import (
	"fmt"
	"strings"
)

// Compatibility is the verdict of a check.
type Compatibility int

const (
	Compatible Compatibility = iota
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "COMPATIBLE"
	case Incompatible:
		return "INCOMPATIBLE"
	}
	return fmt.Sprintf("Compatibility(%d)", int(c))
}

// IncompatibilityType classifies an incompatibility.
type IncompatibilityType string

const (
	NameMismatch                   IncompatibilityType = "NAME_MISMATCH"
	FixedSizeMismatch              IncompatibilityType = "FIXED_SIZE_MISMATCH"
	MissingEnumSymbols             IncompatibilityType = "MISSING_ENUM_SYMBOLS"
	ReaderFieldMissingDefaultValue IncompatibilityType = "READER_FIELD_MISSING_DEFAULT_VALUE"
	TypeMismatch                   IncompatibilityType = "TYPE_MISMATCH"
	MissingUnionBranch             IncompatibilityType = "MISSING_UNION_BRANCH"
)

// Incompatibility is one reason a reader cannot read a writer.
type Incompatibility struct {
	Type IncompatibilityType
	// Location is a JSON pointer into the reader schema, such as
	// "/fields/1/type".
	Location string
	Message  string
	// ReaderFragment and WriterFragment are the canonical forms of the
	// offending schema nodes.
	ReaderFragment string
	WriterFragment string
}

func (i Incompatibility) String() string {
	return fmt.Sprintf("%s at %s: %s", i.Type, i.Location, i.Message)
}

// Result is the outcome of a compatibility check.
type Result struct {
	Compatibility     Compatibility
	Incompatibilities []Incompatibility
}

// IsCompatible reports whether the result is Compatible.
func (r Result) IsCompatible() bool {
	return r.Compatibility == Compatible
}

// Reasons returns a human-readable line per incompatibility.
func (r Result) Reasons() []string {
	out := make([]string, 0, len(r.Incompatibilities))
	for _, i := range r.Incompatibilities {
		out = append(out, i.String())
	}
	return out
}

func (r Result) String() string {
	if r.IsCompatible() {
		return r.Compatibility.String()
	}
	return r.Compatibility.String() + ": " + strings.Join(r.Reasons(), "; ")
}

func newResult(issues []Incompatibility) Result {
	if len(issues) == 0 {
		return Result{Compatibility: Compatible}
	}
	return Result{Compatibility: Incompatible, Incompatibilities: issues}
}

func merge(a, b Result) Result {
	return newResult(append(append([]Incompatibility(nil), a.Incompatibilities...), b.Incompatibilities...))
}
