package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	recordReserved = set("type", "name", "namespace", "fields", "doc", "aliases")
	fieldReserved  = set("name", "type", "doc", "default", "order", "aliases")
	enumReserved   = set("type", "name", "namespace", "symbols", "doc", "aliases", "default")
	fixedReserved  = set("type", "name", "namespace", "size", "doc", "aliases")
	arrayReserved  = set("type", "items")
	mapReserved    = set("type", "values")
	primReserved   = set("type")
)

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

// Parse parses a JSON schema document.
func Parse(text string) (Schema, error) {
	return ParseBytes([]byte(text))
}

// ParseBytes parses a JSON schema document.
func ParseBytes(data []byte) (Schema, error) {
	return ParseWithNames(data, NewNames())
}

// ParseWithNames parses a JSON schema document, resolving and registering
// named types through names. Passing the same registry to several calls lets
// later documents refer to types defined by earlier ones.
//
// References may point forward to types defined later in the same document.
// Every reference must resolve and every default must match its type by the
// time the document is fully read.
func ParseWithNames(data []byte, names *Names) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, newSchemaError("", "malformed schema document: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newSchemaError("", "unexpected data after schema document")
	}

	p := &parser{names: names, defined: make(map[string]bool)}
	s, err := p.parse(node, "", "$")
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParse is like Parse but panics on error. It is intended for schemas
// that are compiled into the program.
func MustParse(text string) Schema {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

type parser struct {
	names   *Names
	defined map[string]bool
}

func (p *parser) parse(node any, ns, path string) (Schema, error) {
	switch n := node.(type) {
	case string:
		return p.parseName(n, ns, path)
	case []any:
		return p.parseUnion(n, ns, path)
	case map[string]any:
		return p.parseObject(n, ns, path)
	default:
		return nil, newSchemaError(path, "expected a type name, object or array, got %T", node)
	}
}

func (p *parser) parseName(n, ns, path string) (Schema, error) {
	if IsPrimitive(Type(n)) {
		return MustPrimitive(Type(n)), nil
	}
	nm, err := newName(n, ns)
	if err != nil {
		return nil, newSchemaError(path, "invalid type reference %q", n)
	}
	ref := p.names.Ref(nm.FullName())
	if !strings.Contains(n, ".") && ns != "" {
		ref.fallback = n
	}
	return ref, nil
}

func (p *parser) parseUnion(branches []any, ns, path string) (Schema, error) {
	types := make([]Schema, 0, len(branches))
	for i, b := range branches {
		t, err := p.parse(b, ns, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	u, err := NewUnionSchema(types)
	if err != nil {
		return nil, withPath(err, path)
	}
	return u, nil
}

func (p *parser) parseObject(m map[string]any, ns, path string) (Schema, error) {
	raw, ok := m["type"]
	if !ok {
		return nil, newSchemaError(path, "missing \"type\" attribute")
	}
	typ, ok := raw.(string)
	if !ok {
		// {"type": {...}} and {"type": [...]} wrap a nested schema.
		return p.parse(raw, ns, path)
	}

	switch t := Type(typ); {
	case IsPrimitive(t):
		s, err := NewPrimitiveSchema(t, propOptions(m, primReserved)...)
		if err != nil {
			return nil, withPath(err, path)
		}
		return s, nil
	case t == Record || typ == "error":
		return p.parseRecord(m, ns, path, typ == "error")
	case t == Enum:
		return p.parseEnum(m, ns, path)
	case t == Fixed:
		return p.parseFixed(m, ns, path)
	case t == Array:
		items, ok := m["items"]
		if !ok {
			return nil, newSchemaError(path, "array requires \"items\"")
		}
		itemSchema, err := p.parse(items, ns, path+".items")
		if err != nil {
			return nil, err
		}
		return NewArraySchema(itemSchema, propOptions(m, arrayReserved)...)
	case t == Map:
		values, ok := m["values"]
		if !ok {
			return nil, newSchemaError(path, "map requires \"values\"")
		}
		valueSchema, err := p.parse(values, ns, path+".values")
		if err != nil {
			return nil, err
		}
		return NewMapSchema(valueSchema, propOptions(m, mapReserved)...)
	default:
		return p.parseName(typ, ns, path)
	}
}

// namedHeader reads the attributes shared by records, enums and fixed types.
func (p *parser) namedHeader(m map[string]any, ns, path string) (name, []SchemaOption, error) {
	n, err := stringAttr(m, "name", path, true)
	if err != nil {
		return name{}, nil, err
	}
	if raw, present := m["namespace"]; present {
		switch v := raw.(type) {
		case string:
			ns = v
		case nil:
			ns = ""
		default:
			return name{}, nil, newSchemaError(path, "\"namespace\" must be a string")
		}
	}
	nm, err := newName(n, ns)
	if err != nil {
		return name{}, nil, withPath(err, path)
	}
	full := nm.FullName()
	if p.defined[full] {
		return name{}, nil, newSchemaError(path, "named type %q is defined more than once", full)
	}
	p.defined[full] = true

	opts := []SchemaOption{WithNamespace(nm.namespace)}
	doc, err := stringAttr(m, "doc", path, false)
	if err != nil {
		return name{}, nil, err
	}
	if doc != "" {
		opts = append(opts, WithDoc(doc))
	}
	aliases, err := stringsAttr(m, "aliases", path)
	if err != nil {
		return name{}, nil, err
	}
	if len(aliases) > 0 {
		opts = append(opts, WithAliases(aliases...))
	}
	return nm, opts, nil
}

func (p *parser) parseRecord(m map[string]any, ns, path string, isError bool) (Schema, error) {
	nm, opts, err := p.namedHeader(m, ns, path)
	if err != nil {
		return nil, err
	}
	path = nm.FullName()

	rawFields, ok := m["fields"].([]any)
	if !ok {
		return nil, newSchemaError(path, "record requires a \"fields\" array")
	}
	fields := make([]*Field, 0, len(rawFields))
	for i, rf := range rawFields {
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, newSchemaError(fmt.Sprintf("%s.fields[%d]", path, i), "field must be an object")
		}
		f, err := p.parseField(fm, nm.namespace, fmt.Sprintf("%s.fields[%d]", path, i))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	opts = append(opts, propOptions(m, recordReserved)...)
	rec, err := newRecord(nm.name, fields, isError, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.names.Register(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *parser) parseField(m map[string]any, ns, path string) (*Field, error) {
	fieldName, err := stringAttr(m, "name", path, true)
	if err != nil {
		return nil, err
	}
	path = path + "(" + fieldName + ")"
	rawType, ok := m["type"]
	if !ok {
		return nil, newSchemaError(path, "field requires \"type\"")
	}
	typ, err := p.parse(rawType, ns, path)
	if err != nil {
		return nil, err
	}

	var opts []FieldOption
	doc, err := stringAttr(m, "doc", path, false)
	if err != nil {
		return nil, err
	}
	if doc != "" {
		opts = append(opts, WithFieldDoc(doc))
	}
	if def, present := m["default"]; present {
		opts = append(opts, WithDefault(def))
	}
	order, err := stringAttr(m, "order", path, false)
	if err != nil {
		return nil, err
	}
	if order != "" {
		opts = append(opts, WithOrder(Order(order)))
	}
	aliases, err := stringsAttr(m, "aliases", path)
	if err != nil {
		return nil, err
	}
	if len(aliases) > 0 {
		opts = append(opts, WithFieldAliases(aliases...))
	}
	for _, k := range extraKeys(m, fieldReserved) {
		opts = append(opts, WithFieldProp(k, m[k]))
	}

	f, err := NewField(fieldName, typ, opts...)
	if err != nil {
		return nil, withPath(err, path)
	}
	return f, nil
}

func (p *parser) parseEnum(m map[string]any, ns, path string) (Schema, error) {
	nm, opts, err := p.namedHeader(m, ns, path)
	if err != nil {
		return nil, err
	}
	path = nm.FullName()
	if _, ok := m["symbols"].([]any); !ok {
		return nil, newSchemaError(path, "enum requires a \"symbols\" array")
	}
	symbols, err := stringsAttr(m, "symbols", path)
	if err != nil {
		return nil, err
	}
	def, err := stringAttr(m, "default", path, false)
	if err != nil {
		return nil, err
	}
	if _, present := m["default"]; present {
		opts = append(opts, WithEnumDefault(def))
	}
	opts = append(opts, propOptions(m, enumReserved)...)

	e, err := NewEnumSchema(nm.name, symbols, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.names.Register(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parseFixed(m map[string]any, ns, path string) (Schema, error) {
	nm, opts, err := p.namedHeader(m, ns, path)
	if err != nil {
		return nil, err
	}
	path = nm.FullName()
	num, ok := m["size"].(json.Number)
	if !ok {
		return nil, newSchemaError(path, "fixed requires a numeric \"size\"")
	}
	size, err := num.Int64()
	if err != nil || size < 0 || size > 1<<31-1 {
		return nil, newSchemaError(path, "invalid fixed size %s", num)
	}
	opts = append(opts, propOptions(m, fixedReserved)...)

	f, err := NewFixedSchema(nm.name, int(size), opts...)
	if err != nil {
		return nil, err
	}
	if err := p.names.Register(f); err != nil {
		return nil, err
	}
	return f, nil
}

func stringAttr(m map[string]any, key, path string, required bool) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		if required {
			return "", newSchemaError(path, "missing %q attribute", key)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", newSchemaError(path, "%q must be a string", key)
	}
	return s, nil
}

func stringsAttr(m map[string]any, key, path string) ([]string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, newSchemaError(path, "%q must be an array of strings", key)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, newSchemaError(path, "%q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func extraKeys(m map[string]any, reserved map[string]bool) []string {
	var keys []string
	for k := range m {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func propOptions(m map[string]any, reserved map[string]bool) []SchemaOption {
	var opts []SchemaOption
	for _, k := range extraKeys(m, reserved) {
		opts = append(opts, WithProp(k, m[k]))
	}
	return opts
}

// withPath re-anchors a constructor error at the parser location.
func withPath(err error, path string) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return &SchemaError{Path: path, Msg: se.Msg}
	}
	return err
}
