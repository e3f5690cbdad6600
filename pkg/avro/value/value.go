// Package value holds the dynamically typed runtime values that the codecs
// read and write. A Value mirrors the shape of a schema: records are ordered
// field lists, unions carry the selected branch index and enums the selected
// symbol.
//
// Values are plain data. They are created per call and are not retained by
// any codec.
package value

import (
	"bytes"
	"fmt"
	"math"
)

// Kind identifies the concrete type of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindFixed
	KindEnum
	KindArray
	KindMap
	KindUnion
	KindRecord
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBoolean: "boolean",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindBytes:   "bytes",
	KindString:  "string",
	KindFixed:   "fixed",
	KindEnum:    "enum",
	KindArray:   "array",
	KindMap:     "map",
	KindUnion:   "union",
	KindRecord:  "record",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is implemented only by the types in this package.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	// Null is the null value.
	Null struct{}
	// Boolean is a boolean value.
	Boolean bool
	// Int is a 32-bit signed integer.
	Int int32
	// Long is a 64-bit signed integer.
	Long int64
	// Float is a single precision float.
	Float float32
	// Double is a double precision float.
	Double float64
	// Bytes is a byte sequence.
	Bytes []byte
	// String is a UTF-8 string.
	String string
	// Fixed is a byte sequence whose length is set by its schema.
	Fixed []byte
	// Array is an ordered sequence of items.
	Array []Value
	// Map maps string keys to values.
	Map map[string]Value
)

// Enum is the selected symbol of an enum.
type Enum struct {
	Symbol string
}

// Union is a value of one union branch.
type Union struct {
	// Index is the position of the branch in the union schema.
	Index int
	Value Value
}

// Field is a named record member.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered list of fields.
type Record struct {
	Fields []Field
}

// NewRecord builds a record from fields in the given order.
func NewRecord(fields ...Field) Record {
	return Record{Fields: fields}
}

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// NewUnion selects branch index of a union.
func NewUnion(index int, v Value) Union {
	return Union{Index: index, Value: v}
}

func (Null) Kind() Kind    { return KindNull }
func (Boolean) Kind() Kind { return KindBoolean }
func (Int) Kind() Kind     { return KindInt }
func (Long) Kind() Kind    { return KindLong }
func (Float) Kind() Kind   { return KindFloat }
func (Double) Kind() Kind  { return KindDouble }
func (Bytes) Kind() Kind   { return KindBytes }
func (String) Kind() Kind  { return KindString }
func (Fixed) Kind() Kind   { return KindFixed }
func (Enum) Kind() Kind    { return KindEnum }
func (Array) Kind() Kind   { return KindArray }
func (Map) Kind() Kind     { return KindMap }
func (Union) Kind() Kind   { return KindUnion }
func (Record) Kind() Kind  { return KindRecord }

func (Null) isValue()    {}
func (Boolean) isValue() {}
func (Int) isValue()     {}
func (Long) isValue()    {}
func (Float) isValue()   {}
func (Double) isValue()  {}
func (Bytes) isValue()   {}
func (String) isValue()  {}
func (Fixed) isValue()   {}
func (Enum) isValue()    {}
func (Array) isValue()   {}
func (Map) isValue()     {}
func (Union) isValue()   {}
func (Record) isValue()  {}

// Equal reports whether a and b are deeply equal. NaN equals NaN, and record
// fields are compared by name regardless of their order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Null:
		return true
	case Boolean:
		return x == b.(Boolean)
	case Int:
		return x == b.(Int)
	case Long:
		return x == b.(Long)
	case Float:
		y := b.(Float)
		return x == y || (isNaN(float64(x)) && isNaN(float64(y)))
	case Double:
		y := b.(Double)
		return x == y || (isNaN(float64(x)) && isNaN(float64(y)))
	case Bytes:
		return bytes.Equal(x, b.(Bytes))
	case String:
		return x == b.(String)
	case Fixed:
		return bytes.Equal(x, b.(Fixed))
	case Enum:
		return x.Symbol == b.(Enum).Symbol
	case Array:
		y := b.(Array)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		y := b.(Map)
		if len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case Union:
		y := b.(Union)
		return x.Index == y.Index && Equal(x.Value, y.Value)
	case Record:
		y := b.(Record)
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			w, ok := y.Get(f.Name)
			if !ok || !Equal(f.Value, w) {
				return false
			}
		}
		return true
	}
	return false
}

func isNaN(f float64) bool { return math.IsNaN(f) }
