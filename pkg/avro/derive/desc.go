// Package derive builds Avro schemas from explicit type descriptions.
//
// A description mirrors a Go type without reflecting over it: callers spell
// out records, enums, lists, maps, optional values and sum types with the
// constructors in this package and hand the result to a Deriver.
//
//	opened := derive.Struct("Opened", derive.Field("initialDeposit", derive.Uint64()))
//	credited := derive.Struct("Credited", derive.Field("amount", derive.Uint64()))
//	s, err := derive.NewDeriver().Derive(derive.Sum("AccountEvent", opened, credited))
//
// Unsigned integers widen to the next signed Avro type. Uint64 has no wider
// Avro type and is written as long; values above math.MaxInt64 wrap to
// negative longs and the caller owns that range (see Uint64ToLong).
package derive

import "github.com/Sokol111/ecommerce-avro/pkg/avro/schema"

// Desc describes the shape of a value.
type Desc interface {
	describe() string
}

type primitiveDesc struct {
	typ  schema.Type
	name string
}

func (p primitiveDesc) describe() string { return p.name }

var (
	stringDesc  = primitiveDesc{schema.String, "string"}
	boolDesc    = primitiveDesc{schema.Boolean, "bool"}
	int32Desc   = primitiveDesc{schema.Int, "int32"}
	int64Desc   = primitiveDesc{schema.Long, "int64"}
	uint8Desc   = primitiveDesc{schema.Int, "uint8"}
	uint16Desc  = primitiveDesc{schema.Int, "uint16"}
	uint32Desc  = primitiveDesc{schema.Long, "uint32"}
	uint64Desc  = primitiveDesc{schema.Long, "uint64"}
	float32Desc = primitiveDesc{schema.Float, "float32"}
	float64Desc = primitiveDesc{schema.Double, "float64"}
	bytesDesc   = primitiveDesc{schema.Bytes, "[]byte"}
	nullDesc    = primitiveDesc{schema.Null, "null"}
)

// String describes a string.
func String() Desc { return stringDesc }

// Bool describes a boolean.
func Bool() Desc { return boolDesc }

// Int32 describes an int32, derived as int.
func Int32() Desc { return int32Desc }

// Int64 describes an int64, derived as long.
func Int64() Desc { return int64Desc }

// Uint8 describes a uint8, widened to int.
func Uint8() Desc { return uint8Desc }

// Uint16 describes a uint16, widened to int.
func Uint16() Desc { return uint16Desc }

// Uint32 describes a uint32, widened to long.
func Uint32() Desc { return uint32Desc }

// Uint64 describes a uint64. It is derived as long, which cannot hold
// values above math.MaxInt64; the conversion is lossy by range.
func Uint64() Desc { return uint64Desc }

// Float32 describes a float32, derived as float.
func Float32() Desc { return float32Desc }

// Float64 describes a float64, derived as double.
func Float64() Desc { return float64Desc }

// Bytes describes a byte slice.
func Bytes() Desc { return bytesDesc }

// Null describes a value that is always null.
func Null() Desc { return nullDesc }

type listDesc struct{ elem Desc }

func (l listDesc) describe() string { return "list" }

// List describes an ordered sequence of elem.
func List(elem Desc) Desc { return listDesc{elem: elem} }

type mapDesc struct{ elem Desc }

func (m mapDesc) describe() string { return "map" }

// MapOf describes a string-keyed map of elem.
func MapOf(elem Desc) Desc { return mapDesc{elem: elem} }

type optionalDesc struct{ elem Desc }

func (o optionalDesc) describe() string { return "optional" }

// Optional describes a value that may be absent. It is derived as a union of
// null and elem, defaulting to null unless the field sets another default.
func Optional(elem Desc) Desc { return optionalDesc{elem: elem} }

type namedDesc struct{ fullName string }

func (n namedDesc) describe() string { return n.fullName }

// Named refers to a struct, enum or fixed type by name. It expresses
// recursion: a struct field may name its own struct. Unqualified names are
// resolved in the deriver namespace.
func Named(fullName string) Desc { return namedDesc{fullName: fullName} }

type dynamicDesc struct{}

func (dynamicDesc) describe() string { return "dynamic" }

// Dynamic describes an unconstrained value such as any. It has no Avro
// mapping and always fails derivation with ErrUnsupportedShape.
func Dynamic() Desc { return dynamicDesc{} }

// FieldDesc is a struct member.
type FieldDesc struct {
	name       string
	desc       Desc
	def        any
	hasDefault bool
	doc        string
	aliases    []string
}

// FieldOption configures a FieldDesc.
type FieldOption func(*FieldDesc)

// Default sets the field default as a Go value; it is converted to its JSON
// form, so a uint64 default of 5 becomes the long 5 and a nested struct
// default is a map[string]any.
func Default(v any) FieldOption {
	return func(f *FieldDesc) {
		f.def = v
		f.hasDefault = true
	}
}

// Doc sets the field documentation.
func Doc(doc string) FieldOption {
	return func(f *FieldDesc) {
		f.doc = doc
	}
}

// Aliases sets the former names of the field.
func Aliases(aliases ...string) FieldOption {
	return func(f *FieldDesc) {
		f.aliases = append(f.aliases, aliases...)
	}
}

// Field describes a struct member. The name is the Go-side name; the
// deriver naming strategy maps it to the Avro field name.
func Field(name string, desc Desc, opts ...FieldOption) FieldDesc {
	f := FieldDesc{name: name, desc: desc}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// StructDesc describes a record.
type StructDesc struct {
	name      string
	namespace string
	doc       string
	aliases   []string
	fields    []FieldDesc
}

func (s *StructDesc) describe() string { return s.name }

// Struct describes a record with the given fields in declared order.
func Struct(name string, fields ...FieldDesc) *StructDesc {
	return &StructDesc{name: name, fields: fields}
}

// Name returns the struct name as given.
func (s *StructDesc) Name() string { return s.name }

// InNamespace overrides the deriver namespace for this struct.
func (s *StructDesc) InNamespace(ns string) *StructDesc {
	s.namespace = ns
	return s
}

// WithDoc sets the record documentation.
func (s *StructDesc) WithDoc(doc string) *StructDesc {
	s.doc = doc
	return s
}

// WithAliases sets the former names of the record.
func (s *StructDesc) WithAliases(aliases ...string) *StructDesc {
	s.aliases = append(s.aliases, aliases...)
	return s
}

// EnumDesc describes an enum.
type EnumDesc struct {
	name      string
	namespace string
	symbols   []string
	def       string
}

func (e *EnumDesc) describe() string { return e.name }

// Enum describes an enum with symbols in declared order.
func Enum(name string, symbols ...string) *EnumDesc {
	return &EnumDesc{name: name, symbols: symbols}
}

// WithDefault sets the symbol readers use for unknown symbols.
func (e *EnumDesc) WithDefault(symbol string) *EnumDesc {
	e.def = symbol
	return e
}

// InNamespace overrides the deriver namespace for this enum.
func (e *EnumDesc) InNamespace(ns string) *EnumDesc {
	e.namespace = ns
	return e
}

type fixedDesc struct {
	name string
	size int
}

func (f fixedDesc) describe() string { return f.name }

// Fixed describes a fixed-size byte array such as [16]byte.
func Fixed(name string, size int) Desc { return fixedDesc{name: name, size: size} }

// SumDesc describes a closed set of struct variants, a tagged union.
type SumDesc struct {
	name     string
	variants []*StructDesc
}

func (s *SumDesc) describe() string { return s.name }

// Sum describes a sum type whose variants are structs. It is derived as a
// union of records, one per variant in the given order, each named after the
// variant.
func Sum(name string, variants ...*StructDesc) *SumDesc {
	return &SumDesc{name: name, variants: variants}
}

// Name returns the sum type name.
func (s *SumDesc) Name() string { return s.name }

// Variants returns the variant structs in branch order.
func (s *SumDesc) Variants() []*StructDesc { return s.variants }
