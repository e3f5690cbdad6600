package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type schemaConfig struct {
	namespace   string
	doc         string
	aliases     []string
	props       map[string]any
	enumDefault *string
}

// SchemaOption configures a schema constructor.
type SchemaOption func(*schemaConfig)

func newSchemaConfig(opts []SchemaOption) *schemaConfig {
	cfg := &schemaConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithNamespace sets the namespace of a named type.
func WithNamespace(ns string) SchemaOption {
	return func(c *schemaConfig) {
		c.namespace = ns
	}
}

// WithDoc sets the documentation of a named type.
func WithDoc(doc string) SchemaOption {
	return func(c *schemaConfig) {
		c.doc = doc
	}
}

// WithAliases sets alternative names of a named type.
func WithAliases(aliases ...string) SchemaOption {
	return func(c *schemaConfig) {
		c.aliases = append(c.aliases, aliases...)
	}
}

// WithProp sets a non-reserved attribute, for example logicalType.
func WithProp(key string, v any) SchemaOption {
	return func(c *schemaConfig) {
		if c.props == nil {
			c.props = make(map[string]any)
		}
		c.props[key] = v
	}
}

// WithEnumDefault sets the symbol used by readers for unknown writer symbols.
func WithEnumDefault(symbol string) SchemaOption {
	return func(c *schemaConfig) {
		c.enumDefault = &symbol
	}
}

// Order is the sort order of a record field.
type Order string

// Field sort orders.
const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
	Ignore     Order = "ignore"
)

type fieldConfig struct {
	doc        string
	aliases    []string
	def        any
	hasDefault bool
	order      Order
	props      map[string]any
}

// FieldOption configures NewField.
type FieldOption func(*fieldConfig)

// WithFieldDoc sets the field documentation.
func WithFieldDoc(doc string) FieldOption {
	return func(c *fieldConfig) {
		c.doc = doc
	}
}

// WithFieldAliases sets alternative names of a field.
func WithFieldAliases(aliases ...string) FieldOption {
	return func(c *fieldConfig) {
		c.aliases = append(c.aliases, aliases...)
	}
}

// WithDefault sets the field default. The value is given in its JSON form:
// nil for null, a map for records, a string for bytes/fixed/enum and so on.
// For unions it must match the first branch.
func WithDefault(v any) FieldOption {
	return func(c *fieldConfig) {
		c.def = v
		c.hasDefault = true
	}
}

// WithOrder sets the field sort order.
func WithOrder(o Order) FieldOption {
	return func(c *fieldConfig) {
		c.order = o
	}
}

// WithFieldProp sets a non-reserved field attribute.
func WithFieldProp(key string, v any) FieldOption {
	return func(c *fieldConfig) {
		if c.props == nil {
			c.props = make(map[string]any)
		}
		c.props[key] = v
	}
}

// normalizeJSON converts an arbitrary Go value into the shape produced by
// decoding JSON with UseNumber, so defaults compare and validate uniformly.
func normalizeJSON(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("default is not JSON serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to normalize default: %w", err)
	}
	return out, nil
}
