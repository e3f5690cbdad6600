// Package schema models Avro schemas.
//
// Schemas are built programmatically with the New* constructors or parsed from
// JSON schema documents with Parse. Once built they are immutable and safe to
// share between goroutines. Named types (records, enums, fixed) are registered
// in a Names registry; recursive and repeated references are expressed as
// RefSchema values that resolve by full name instead of forming a cyclic graph.
//
// Basic usage:
//
//	s, err := schema.Parse(`{"type":"record","name":"User","fields":[{"name":"name","type":"string"}]}`)
//	if err != nil {
//		return err
//	}
//	canonical, err := schema.Canonical(s)
package schema

// Type is the Avro type of a schema node.
type Type string

// Avro schema types.
const (
	Null    Type = "null"
	Boolean Type = "boolean"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Bytes   Type = "bytes"
	String  Type = "string"
	Record  Type = "record"
	Enum    Type = "enum"
	Array   Type = "array"
	Map     Type = "map"
	Union   Type = "union"
	Fixed   Type = "fixed"
	// Ref marks a by-name reference to a named type defined elsewhere.
	Ref Type = "ref"
)

var primitiveTypes = map[Type]bool{
	Null:    true,
	Boolean: true,
	Int:     true,
	Long:    true,
	Float:   true,
	Double:  true,
	Bytes:   true,
	String:  true,
}

// IsPrimitive reports whether t is one of the eight primitive types.
func IsPrimitive(t Type) bool {
	return primitiveTypes[t]
}

// Schema is an immutable Avro schema node.
type Schema interface {
	// Type returns the Avro type of the node.
	Type() Type
	// String returns the Parsing Canonical Form of the schema.
	String() string
}

// NamedSchema is implemented by records, enums and fixed types.
type NamedSchema interface {
	Schema
	// Name returns the unqualified name.
	Name() string
	// Namespace returns the namespace, empty for the null namespace.
	Namespace() string
	// FullName returns namespace.name.
	FullName() string
	// Aliases returns the full names this type is also known as.
	Aliases() []string
	// Doc returns the documentation string.
	Doc() string
}

// PrimitiveSchema is one of null, boolean, int, long, float, double, bytes or string.
type PrimitiveSchema struct {
	properties
	typ Type
}

// NewPrimitiveSchema returns a primitive schema of the given type.
func NewPrimitiveSchema(t Type, opts ...SchemaOption) (*PrimitiveSchema, error) {
	if !IsPrimitive(t) {
		return nil, newSchemaError(string(t), "not a primitive type")
	}
	cfg := newSchemaConfig(opts)
	return &PrimitiveSchema{properties: properties{props: cfg.props}, typ: t}, nil
}

// MustPrimitive is like NewPrimitiveSchema but panics on an unknown type.
// It is intended for package-level declarations and tests.
func MustPrimitive(t Type) *PrimitiveSchema {
	s, err := NewPrimitiveSchema(t)
	if err != nil {
		panic(err)
	}
	return s
}

// Type returns the primitive type.
func (s *PrimitiveSchema) Type() Type { return s.typ }

// String returns the canonical form.
func (s *PrimitiveSchema) String() string { return canonicalString(s) }

// properties holds non-reserved attributes such as logicalType.
type properties struct {
	props map[string]any
}

// Prop returns the value of a non-reserved attribute.
func (p properties) Prop(key string) any {
	return p.props[key]
}

// Props returns a copy of all non-reserved attributes.
func (p properties) Props() map[string]any {
	out := make(map[string]any, len(p.props))
	for k, v := range p.props {
		out[k] = v
	}
	return out
}
