package schema

import "sync"

// EnumSchema is an Avro enum.
type EnumSchema struct {
	properties
	name
	doc        string
	aliases    []string
	symbols    []string
	index      map[string]int
	def        string
	hasDefault bool
}

// NewEnumSchema creates an enum. Symbols must be unique valid names.
func NewEnumSchema(enumName string, symbols []string, opts ...SchemaOption) (*EnumSchema, error) {
	cfg := newSchemaConfig(opts)
	n, err := newName(enumName, cfg.namespace)
	if err != nil {
		return nil, err
	}
	aliases, err := qualifyAliases(cfg.aliases, n.namespace)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, newSchemaError(n.FullName(), "enum requires at least one symbol")
	}

	e := &EnumSchema{
		properties: properties{props: cfg.props},
		name:       n,
		doc:        cfg.doc,
		aliases:    aliases,
		symbols:    append([]string(nil), symbols...),
		index:      make(map[string]int, len(symbols)),
	}
	for i, sym := range symbols {
		if !identRe.MatchString(sym) {
			return nil, newSchemaError(n.FullName(), "invalid enum symbol %q", sym)
		}
		if _, dup := e.index[sym]; dup {
			return nil, newSchemaError(n.FullName(), "duplicate enum symbol %q", sym)
		}
		e.index[sym] = i
	}
	if cfg.enumDefault != nil {
		if _, ok := e.index[*cfg.enumDefault]; !ok {
			return nil, newSchemaError(n.FullName(), "enum default %q is not a symbol", *cfg.enumDefault)
		}
		e.def = *cfg.enumDefault
		e.hasDefault = true
	}
	return e, nil
}

// Type returns Enum.
func (e *EnumSchema) Type() Type { return Enum }

// Doc returns the documentation.
func (e *EnumSchema) Doc() string { return e.doc }

// Aliases returns the full-name aliases.
func (e *EnumSchema) Aliases() []string { return e.aliases }

// Symbols returns the symbols in declared order.
func (e *EnumSchema) Symbols() []string { return e.symbols }

// Symbol returns the symbol at position i.
func (e *EnumSchema) Symbol(i int) (string, bool) {
	if i < 0 || i >= len(e.symbols) {
		return "", false
	}
	return e.symbols[i], true
}

// IndexOf returns the position of a symbol.
func (e *EnumSchema) IndexOf(symbol string) (int, bool) {
	i, ok := e.index[symbol]
	return i, ok
}

// Default returns the reader default symbol, if any.
func (e *EnumSchema) Default() (string, bool) { return e.def, e.hasDefault }

// String returns the canonical form.
func (e *EnumSchema) String() string { return canonicalString(e) }

// ArraySchema is an Avro array.
type ArraySchema struct {
	properties
	items Schema
}

// NewArraySchema creates an array of items.
func NewArraySchema(items Schema, opts ...SchemaOption) (*ArraySchema, error) {
	if items == nil {
		return nil, newSchemaError("array", "items schema is required")
	}
	cfg := newSchemaConfig(opts)
	return &ArraySchema{properties: properties{props: cfg.props}, items: items}, nil
}

// Type returns Array.
func (a *ArraySchema) Type() Type { return Array }

// Items returns the item schema.
func (a *ArraySchema) Items() Schema { return a.items }

// String returns the canonical form.
func (a *ArraySchema) String() string { return canonicalString(a) }

// MapSchema is an Avro map. Keys are always strings.
type MapSchema struct {
	properties
	values Schema
}

// NewMapSchema creates a map with the given value schema.
func NewMapSchema(values Schema, opts ...SchemaOption) (*MapSchema, error) {
	if values == nil {
		return nil, newSchemaError("map", "values schema is required")
	}
	cfg := newSchemaConfig(opts)
	return &MapSchema{properties: properties{props: cfg.props}, values: values}, nil
}

// Type returns Map.
func (m *MapSchema) Type() Type { return Map }

// Values returns the value schema.
func (m *MapSchema) Values() Schema { return m.values }

// String returns the canonical form.
func (m *MapSchema) String() string { return canonicalString(m) }

// UnionSchema is an ordered set of alternative schemas.
type UnionSchema struct {
	types []Schema

	// The branch index is built on first use so that references made
	// before their target was defined key the union by the target's name.
	indexOnce sync.Once
	index     map[string]int
}

// NewUnionSchema creates a union. Branch full names must be unique and a
// union may not directly contain another union. Branches that are still
// unresolved references are checked again by Validate.
func NewUnionSchema(types []Schema) (*UnionSchema, error) {
	seen := make(map[string]int, len(types))
	for i, t := range types {
		if t == nil {
			return nil, newSchemaError("union", "branch %d is nil", i)
		}
		if t.Type() == Union {
			return nil, newSchemaError("union", "branch %d: unions may not immediately contain other unions", i)
		}
		key := BranchName(t)
		if _, dup := seen[key]; dup {
			return nil, newSchemaError("union", "duplicate branch %q", key)
		}
		seen[key] = i
	}
	return &UnionSchema{types: append([]Schema(nil), types...)}, nil
}

// Type returns Union.
func (u *UnionSchema) Type() Type { return Union }

// Types returns the branches in declared order.
func (u *UnionSchema) Types() []Schema { return u.types }

// IndexOf returns the position of the branch with the given full name.
func (u *UnionSchema) IndexOf(branchName string) (int, bool) {
	i, ok := u.branchIndex()[branchName]
	return i, ok
}

// Nullable reports whether the union has a null branch.
func (u *UnionSchema) Nullable() bool {
	_, ok := u.branchIndex()[string(Null)]
	return ok
}

func (u *UnionSchema) branchIndex() map[string]int {
	u.indexOnce.Do(func() {
		u.index = make(map[string]int, len(u.types))
		for i, t := range u.types {
			key := BranchName(t)
			if _, dup := u.index[key]; !dup {
				u.index[key] = i
			}
		}
	})
	return u.index
}

// String returns the canonical form.
func (u *UnionSchema) String() string { return canonicalString(u) }

// FixedSchema is a fixed-size byte sequence.
type FixedSchema struct {
	properties
	name
	doc     string
	aliases []string
	size    int
}

// NewFixedSchema creates a fixed type of size bytes.
func NewFixedSchema(fixedName string, size int, opts ...SchemaOption) (*FixedSchema, error) {
	cfg := newSchemaConfig(opts)
	n, err := newName(fixedName, cfg.namespace)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, newSchemaError(n.FullName(), "invalid fixed size %d", size)
	}
	aliases, err := qualifyAliases(cfg.aliases, n.namespace)
	if err != nil {
		return nil, err
	}
	return &FixedSchema{
		properties: properties{props: cfg.props},
		name:       n,
		doc:        cfg.doc,
		aliases:    aliases,
		size:       size,
	}, nil
}

// Type returns Fixed.
func (f *FixedSchema) Type() Type { return Fixed }

// Doc returns the documentation.
func (f *FixedSchema) Doc() string { return f.doc }

// Aliases returns the full-name aliases.
func (f *FixedSchema) Aliases() []string { return f.aliases }

// Size returns the number of bytes.
func (f *FixedSchema) Size() int { return f.size }

// String returns the canonical form.
func (f *FixedSchema) String() string { return canonicalString(f) }

// BranchName returns the name that identifies s as a union member: the type
// name for primitives, arrays and maps, the full name for named types.
// References report the full name of the type they resolve to, or their own
// spelling while dangling.
func BranchName(s Schema) string {
	switch t := s.(type) {
	case NamedSchema:
		return t.FullName()
	case *RefSchema:
		if target, err := t.Resolve(); err == nil {
			return target.FullName()
		}
		return t.FullName()
	default:
		return string(s.Type())
	}
}
