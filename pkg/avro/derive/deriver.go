package derive

import (
	"reflect"
	"strings"

	"github.com/ettle/strcase"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// NamingStrategy maps a Go-side field name to an Avro field name.
type NamingStrategy func(string) string

// Field naming strategies.
var (
	IdentityNaming  NamingStrategy = func(s string) string { return s }
	SnakeCaseNaming NamingStrategy = strcase.ToSnake
	CamelCaseNaming NamingStrategy = strcase.ToCamel
)

// Deriver turns descriptions into schemas.
type Deriver struct {
	namespace string
	naming    NamingStrategy
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithNamespace sets the namespace of derived named types.
func WithNamespace(ns string) Option {
	return func(d *Deriver) {
		d.namespace = ns
	}
}

// WithFieldNaming sets how field names are spelled in the schema.
func WithFieldNaming(n NamingStrategy) Option {
	return func(d *Deriver) {
		if n != nil {
			d.naming = n
		}
	}
}

// NewDeriver creates a Deriver. Without options named types land in the null
// namespace and field names are kept as given.
func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{naming: IdentityNaming}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive builds the schema of desc. The result is validated: every Named
// reference must point at a type defined in the same description and every
// default must match its field.
func (d *Deriver) Derive(desc Desc) (schema.Schema, error) {
	g := &generator{
		Deriver: d,
		names:   schema.NewNames(),
		defined: make(map[string]Desc),
	}
	s, err := g.derive(desc, rootName(desc))
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return nil, &DerivationError{Path: rootName(desc), Msg: err.Error(), Err: err}
	}
	return s, nil
}

// Derive builds the schema of desc with a default Deriver.
func Derive(desc Desc) (schema.Schema, error) {
	return NewDeriver().Derive(desc)
}

func rootName(desc Desc) string {
	if desc == nil {
		return "$"
	}
	return desc.describe()
}

type generator struct {
	*Deriver
	names   *schema.Names
	defined map[string]Desc
}

func (g *generator) fullName(name, ns string) string {
	if strings.Contains(name, ".") {
		return name
	}
	if ns == "" {
		ns = g.namespace
	}
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// claim records that fullName is defined by desc. It reports whether the
// name was already defined by an identical description, in which case the
// caller should emit a reference instead of a second definition.
func (g *generator) claim(fullName string, desc Desc, path string) (bool, error) {
	existing, ok := g.defined[fullName]
	if !ok {
		g.defined[fullName] = desc
		return false, nil
	}
	if existing == desc || reflect.DeepEqual(existing, desc) {
		return true, nil
	}
	return false, newDerivationError(ErrConflictingVariant, path, "%q is defined by two different descriptions", fullName)
}

func (g *generator) derive(desc Desc, path string) (schema.Schema, error) {
	switch t := desc.(type) {
	case nil:
		return nil, newDerivationError(ErrUnsupportedShape, path, "missing description")

	case primitiveDesc:
		return schema.MustPrimitive(t.typ), nil

	case listDesc:
		items, err := g.derive(t.elem, path+"[]")
		if err != nil {
			return nil, err
		}
		return wrapSchema(schema.NewArraySchema(items))(path)

	case mapDesc:
		values, err := g.derive(t.elem, path+"{}")
		if err != nil {
			return nil, err
		}
		return wrapSchema(schema.NewMapSchema(values))(path)

	case optionalDesc:
		return g.optional(t, false, path)

	case *StructDesc:
		return g.record(t, path)

	case *EnumDesc:
		full := g.fullName(t.name, t.namespace)
		seen, err := g.claim(full, t, path)
		if err != nil {
			return nil, err
		}
		if seen {
			return g.names.Ref(full), nil
		}
		var opts []schema.SchemaOption
		if ns := namespaceOf(full); ns != "" {
			opts = append(opts, schema.WithNamespace(ns))
		}
		if t.def != "" {
			opts = append(opts, schema.WithEnumDefault(t.def))
		}
		e, err := schema.NewEnumSchema(localName(full), t.symbols, opts...)
		if err != nil {
			return nil, g.schemaError(path, err)
		}
		if err := g.names.Register(e); err != nil {
			return nil, g.schemaError(path, err)
		}
		return e, nil

	case fixedDesc:
		full := g.fullName(t.name, "")
		seen, err := g.claim(full, t, path)
		if err != nil {
			return nil, err
		}
		if seen {
			return g.names.Ref(full), nil
		}
		f, err := schema.NewFixedSchema(localName(full), t.size, schema.WithNamespace(namespaceOf(full)))
		if err != nil {
			return nil, g.schemaError(path, err)
		}
		if err := g.names.Register(f); err != nil {
			return nil, g.schemaError(path, err)
		}
		return f, nil

	case *SumDesc:
		branches, err := g.variants(t, path)
		if err != nil {
			return nil, err
		}
		return wrapSchema(schema.NewUnionSchema(branches))(path)

	case namedDesc:
		return g.names.Ref(g.fullName(t.fullName, "")), nil

	case dynamicDesc:
		return nil, newDerivationError(ErrUnsupportedShape, path, "dynamic values have no Avro mapping")
	}
	return nil, newDerivationError(ErrUnsupportedShape, path, "no mapping for %T", desc)
}

func (g *generator) variants(sum *SumDesc, path string) ([]schema.Schema, error) {
	if len(sum.variants) == 0 {
		return nil, newDerivationError(ErrUnsupportedShape, path, "sum type %q has no variants", sum.name)
	}
	branches := make([]schema.Schema, 0, len(sum.variants))
	for _, v := range sum.variants {
		if v == nil {
			return nil, newDerivationError(ErrUnsupportedShape, path, "sum type %q has a nil variant", sum.name)
		}
		r, err := g.record(v, path+"."+v.name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, r)
	}
	return branches, nil
}

// optional derives [null, T], or [T, null] when the field default is not
// null so that the default matches the first branch. Optional sums flatten
// into a single union.
func (g *generator) optional(o optionalDesc, nullLast bool, path string) (schema.Schema, error) {
	if inner, ok := o.elem.(optionalDesc); ok {
		return g.optional(inner, nullLast, path)
	}
	elem, err := g.derive(o.elem, path)
	if err != nil {
		return nil, err
	}
	var branches []schema.Schema
	if u, ok := elem.(*schema.UnionSchema); ok {
		if u.Nullable() {
			return u, nil
		}
		branches = u.Types()
	} else {
		branches = []schema.Schema{elem}
	}

	null := schema.MustPrimitive(schema.Null)
	var all []schema.Schema
	if nullLast {
		all = append(append(all, branches...), null)
	} else {
		all = append([]schema.Schema{null}, branches...)
	}
	return wrapSchema(schema.NewUnionSchema(all))(path)
}

func (g *generator) record(s *StructDesc, path string) (schema.Schema, error) {
	full := g.fullName(s.name, s.namespace)
	seen, err := g.claim(full, s, path)
	if err != nil {
		return nil, err
	}
	if seen {
		return g.names.Ref(full), nil
	}

	fields := make([]*schema.Field, 0, len(s.fields))
	for _, fd := range s.fields {
		f, err := g.field(fd, path+"."+fd.name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	opts := []schema.SchemaOption{schema.WithNamespace(namespaceOf(full))}
	if s.doc != "" {
		opts = append(opts, schema.WithDoc(s.doc))
	}
	if len(s.aliases) > 0 {
		opts = append(opts, schema.WithAliases(s.aliases...))
	}
	rec, err := schema.NewRecordSchema(localName(full), fields, opts...)
	if err != nil {
		return nil, g.schemaError(path, err)
	}
	if err := g.names.Register(rec); err != nil {
		return nil, g.schemaError(path, err)
	}
	return rec, nil
}

func (g *generator) field(fd FieldDesc, path string) (*schema.Field, error) {
	var (
		typ schema.Schema
		err error
	)
	opts := make([]schema.FieldOption, 0, 3)

	if o, ok := fd.desc.(optionalDesc); ok {
		nonNullDefault := fd.hasDefault && fd.def != nil
		typ, err = g.optional(o, nonNullDefault, path)
		if err == nil && !fd.hasDefault {
			opts = append(opts, schema.WithDefault(nil))
		}
	} else {
		typ, err = g.derive(fd.desc, path)
	}
	if err != nil {
		return nil, err
	}

	if fd.hasDefault {
		opts = append(opts, schema.WithDefault(fd.def))
	}
	if fd.doc != "" {
		opts = append(opts, schema.WithFieldDoc(fd.doc))
	}
	if len(fd.aliases) > 0 {
		opts = append(opts, schema.WithFieldAliases(fd.aliases...))
	}

	f, err := schema.NewField(g.naming(fd.name), typ, opts...)
	if err != nil {
		return nil, g.schemaError(path, err)
	}
	return f, nil
}

func (g *generator) schemaError(path string, err error) error {
	return &DerivationError{Path: path, Msg: err.Error(), Err: err}
}

func wrapSchema[S schema.Schema](s S, err error) func(path string) (schema.Schema, error) {
	return func(path string) (schema.Schema, error) {
		if err != nil {
			return nil, &DerivationError{Path: path, Msg: err.Error(), Err: err}
		}
		return s, nil
	}
}

func namespaceOf(full string) string {
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[:i]
	}
	return ""
}

func localName(full string) string {
	return full[strings.LastIndex(full, ".")+1:]
}
