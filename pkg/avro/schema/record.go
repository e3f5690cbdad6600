package schema

// Field is a record field. Its position in the record is fixed at record
// construction and reported by Index.
type Field struct {
	properties
	name       string
	index      int
	typ        Schema
	doc        string
	aliases    []string
	def        any
	hasDefault bool
	order      Order
}

// NewField creates a record field of the given type.
func NewField(fieldName string, typ Schema, opts ...FieldOption) (*Field, error) {
	if !identRe.MatchString(fieldName) {
		return nil, newSchemaError(fieldName, "invalid field name %q", fieldName)
	}
	if typ == nil {
		return nil, newSchemaError(fieldName, "field type is required")
	}

	cfg := &fieldConfig{order: Ascending}
	for _, opt := range opts {
		opt(cfg)
	}

	switch cfg.order {
	case Ascending, Descending, Ignore:
	default:
		return nil, newSchemaError(fieldName, "invalid order %q", cfg.order)
	}

	for _, a := range cfg.aliases {
		if !identRe.MatchString(a) {
			return nil, newSchemaError(fieldName, "invalid field alias %q", a)
		}
	}

	f := &Field{
		properties: properties{props: cfg.props},
		name:       fieldName,
		typ:        typ,
		doc:        cfg.doc,
		aliases:    cfg.aliases,
		hasDefault: cfg.hasDefault,
		order:      cfg.order,
	}
	if cfg.hasDefault {
		def, err := normalizeJSON(cfg.def)
		if err != nil {
			return nil, newSchemaError(fieldName, "%v", err)
		}
		f.def = def
	}
	return f, nil
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Index returns the declared position of the field in its record.
func (f *Field) Index() int { return f.index }

// Type returns the field schema.
func (f *Field) Type() Schema { return f.typ }

// Doc returns the field documentation.
func (f *Field) Doc() string { return f.doc }

// Aliases returns the alternative field names.
func (f *Field) Aliases() []string { return f.aliases }

// HasDefault reports whether the field declares a default value.
func (f *Field) HasDefault() bool { return f.hasDefault }

// Default returns the default in its JSON form. It is only meaningful when
// HasDefault is true; a nil result then means a null default.
func (f *Field) Default() any { return f.def }

// Order returns the sort order.
func (f *Field) Order() Order { return f.order }

// RecordSchema is an Avro record.
type RecordSchema struct {
	properties
	name
	doc     string
	aliases []string
	isError bool
	fields  []*Field
	byName  map[string]*Field
}

// NewRecordSchema creates a record. Field positions follow the slice order.
// Duplicate field names are rejected.
func NewRecordSchema(recordName string, fields []*Field, opts ...SchemaOption) (*RecordSchema, error) {
	return newRecord(recordName, fields, false, opts...)
}

// NewErrorSchema creates an Avro error type, which is encoded like a record.
func NewErrorSchema(recordName string, fields []*Field, opts ...SchemaOption) (*RecordSchema, error) {
	return newRecord(recordName, fields, true, opts...)
}

func newRecord(recordName string, fields []*Field, isError bool, opts ...SchemaOption) (*RecordSchema, error) {
	cfg := newSchemaConfig(opts)
	n, err := newName(recordName, cfg.namespace)
	if err != nil {
		return nil, err
	}
	aliases, err := qualifyAliases(cfg.aliases, n.namespace)
	if err != nil {
		return nil, err
	}

	r := &RecordSchema{
		properties: properties{props: cfg.props},
		name:       n,
		doc:        cfg.doc,
		aliases:    aliases,
		isError:    isError,
		fields:     make([]*Field, 0, len(fields)),
		byName:     make(map[string]*Field, len(fields)),
	}
	for i, f := range fields {
		if f == nil {
			return nil, newSchemaError(n.FullName(), "field %d is nil", i)
		}
		if _, dup := r.byName[f.name]; dup {
			return nil, newSchemaError(n.FullName(), "duplicate field name %q", f.name)
		}
		// Copy so a field value can be shared between records without
		// sharing its position.
		fc := *f
		fc.index = i
		r.fields = append(r.fields, &fc)
		r.byName[fc.name] = &fc
	}
	return r, nil
}

// Type returns Record.
func (r *RecordSchema) Type() Type { return Record }

// IsError reports whether the record was declared as an error type.
func (r *RecordSchema) IsError() bool { return r.isError }

// Doc returns the documentation.
func (r *RecordSchema) Doc() string { return r.doc }

// Aliases returns the full-name aliases.
func (r *RecordSchema) Aliases() []string { return r.aliases }

// Fields returns the fields in declared order.
func (r *RecordSchema) Fields() []*Field { return r.fields }

// Field looks up a field by name.
func (r *RecordSchema) Field(fieldName string) (*Field, bool) {
	f, ok := r.byName[fieldName]
	return f, ok
}

// String returns the canonical form.
func (r *RecordSchema) String() string { return canonicalString(r) }
