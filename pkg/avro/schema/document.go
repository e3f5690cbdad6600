package schema

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Document renders s as a complete JSON schema document. Unlike Canonical it
// keeps documentation, defaults, aliases, orders and custom properties, so
// Parse(Document(s)) reproduces s.
func Document(s Schema) ([]byte, error) {
	d := &documenter{seen: make(map[string]bool)}
	node, err := d.node(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// DocumentIndent is like Document but indents the output.
func DocumentIndent(s Schema, prefix, indent string) ([]byte, error) {
	data, err := Document(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (s *PrimitiveSchema) MarshalJSON() ([]byte, error) { return Document(s) }

// MarshalJSON implements json.Marshaler.
func (r *RecordSchema) MarshalJSON() ([]byte, error) { return Document(r) }

// MarshalJSON implements json.Marshaler.
func (e *EnumSchema) MarshalJSON() ([]byte, error) { return Document(e) }

// MarshalJSON implements json.Marshaler.
func (a *ArraySchema) MarshalJSON() ([]byte, error) { return Document(a) }

// MarshalJSON implements json.Marshaler.
func (m *MapSchema) MarshalJSON() ([]byte, error) { return Document(m) }

// MarshalJSON implements json.Marshaler.
func (u *UnionSchema) MarshalJSON() ([]byte, error) { return Document(u) }

// MarshalJSON implements json.Marshaler.
func (f *FixedSchema) MarshalJSON() ([]byte, error) { return Document(f) }

// MarshalJSON implements json.Marshaler.
func (r *RefSchema) MarshalJSON() ([]byte, error) { return Document(r) }

// object is a JSON object that keeps its member order.
type object []member

type member struct {
	key string
	val any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.val)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type documenter struct {
	seen map[string]bool
}

func withProps(o object, props map[string]any) object {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o = append(o, member{k, props[k]})
	}
	return o
}

func namedMembers(o object, n NamedSchema) object {
	o = append(o, member{"name", n.Name()})
	if n.Namespace() != "" {
		o = append(o, member{"namespace", n.Namespace()})
	}
	if n.Doc() != "" {
		o = append(o, member{"doc", n.Doc()})
	}
	if len(n.Aliases()) > 0 {
		o = append(o, member{"aliases", n.Aliases()})
	}
	return o
}

func (d *documenter) node(s Schema) (any, error) {
	switch t := s.(type) {
	case *PrimitiveSchema:
		if len(t.props) == 0 {
			return string(t.typ), nil
		}
		return withProps(object{{"type", string(t.typ)}}, t.props), nil

	case *RefSchema:
		target, err := t.Resolve()
		if err != nil {
			return nil, err
		}
		return d.node(target)

	case *RecordSchema:
		if d.seen[t.FullName()] {
			return t.FullName(), nil
		}
		d.seen[t.FullName()] = true
		typ := string(Record)
		if t.isError {
			typ = "error"
		}
		o := namedMembers(object{{"type", typ}}, t)
		fields := make([]object, 0, len(t.fields))
		for _, f := range t.fields {
			ft, err := d.node(f.typ)
			if err != nil {
				return nil, err
			}
			fo := object{{"name", f.name}, {"type", ft}}
			if f.doc != "" {
				fo = append(fo, member{"doc", f.doc})
			}
			if f.hasDefault {
				fo = append(fo, member{"default", f.def})
			}
			if f.order != Ascending && f.order != "" {
				fo = append(fo, member{"order", string(f.order)})
			}
			if len(f.aliases) > 0 {
				fo = append(fo, member{"aliases", f.aliases})
			}
			fields = append(fields, withProps(fo, f.props))
		}
		o = append(o, member{"fields", fields})
		return withProps(o, t.props), nil

	case *EnumSchema:
		if d.seen[t.FullName()] {
			return t.FullName(), nil
		}
		d.seen[t.FullName()] = true
		o := namedMembers(object{{"type", string(Enum)}}, t)
		o = append(o, member{"symbols", t.symbols})
		if t.hasDefault {
			o = append(o, member{"default", t.def})
		}
		return withProps(o, t.props), nil

	case *FixedSchema:
		if d.seen[t.FullName()] {
			return t.FullName(), nil
		}
		d.seen[t.FullName()] = true
		o := namedMembers(object{{"type", string(Fixed)}}, t)
		o = append(o, member{"size", t.size})
		return withProps(o, t.props), nil

	case *ArraySchema:
		items, err := d.node(t.items)
		if err != nil {
			return nil, err
		}
		return withProps(object{{"type", string(Array)}, {"items", items}}, t.props), nil

	case *MapSchema:
		values, err := d.node(t.values)
		if err != nil {
			return nil, err
		}
		return withProps(object{{"type", string(Map)}, {"values", values}}, t.props), nil

	case *UnionSchema:
		branches := make([]any, 0, len(t.types))
		for _, b := range t.types {
			n, err := d.node(b)
			if err != nil {
				return nil, err
			}
			branches = append(branches, n)
		}
		return branches, nil
	}
	return nil, newSchemaError("", "unsupported schema node %T", s)
}
