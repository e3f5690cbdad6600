package schema

import (
	"bytes"
	"fmt"
	"strconv"
)

// Canonical returns the Parsing Canonical Form of s: primitives in simple
// form, full names, only the attributes that affect parsing (name, type,
// fields, symbols, items, values, size) in that order, no whitespace, and
// named types replaced by their full name after their first occurrence.
// Record field order is semantic and is preserved.
//
// The result is the input to fingerprinting; semantically equal schemas
// produce byte-identical output.
func Canonical(s Schema) ([]byte, error) {
	w := newCanonicalWriter(true)
	if err := w.write(s); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// Equal reports whether a and b have the same canonical form. Documentation,
// aliases, defaults, field order attributes and custom properties are ignored.
func Equal(a, b Schema) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

// canonicalString backs the String methods. Dangling references are rendered
// as their name instead of failing.
func canonicalString(s Schema) string {
	w := newCanonicalWriter(false)
	_ = w.write(s)
	return w.buf.String()
}

type canonicalWriter struct {
	buf    bytes.Buffer
	seen   map[string]bool
	strict bool
}

func newCanonicalWriter(strict bool) *canonicalWriter {
	return &canonicalWriter{seen: make(map[string]bool), strict: strict}
}

func (w *canonicalWriter) quote(s string) {
	w.buf.WriteByte('"')
	w.buf.WriteString(s)
	w.buf.WriteByte('"')
}

// named writes the back-reference and reports true when fullName was already
// written.
func (w *canonicalWriter) named(fullName string) bool {
	if w.seen[fullName] {
		w.quote(fullName)
		return true
	}
	w.seen[fullName] = true
	return false
}

func (w *canonicalWriter) write(s Schema) error {
	switch t := s.(type) {
	case *PrimitiveSchema:
		w.quote(string(t.typ))

	case *RefSchema:
		target, err := t.Resolve()
		if err != nil {
			if w.strict {
				return err
			}
			w.quote(t.fullName)
			return nil
		}
		return w.write(target)

	case *RecordSchema:
		if w.named(t.FullName()) {
			return nil
		}
		w.buf.WriteString(`{"name":`)
		w.quote(t.FullName())
		w.buf.WriteString(`,"type":"record","fields":[`)
		for i, f := range t.fields {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.buf.WriteString(`{"name":`)
			w.quote(f.name)
			w.buf.WriteString(`,"type":`)
			if err := w.write(f.typ); err != nil {
				return err
			}
			w.buf.WriteByte('}')
		}
		w.buf.WriteString(`]}`)

	case *EnumSchema:
		if w.named(t.FullName()) {
			return nil
		}
		w.buf.WriteString(`{"name":`)
		w.quote(t.FullName())
		w.buf.WriteString(`,"type":"enum","symbols":[`)
		for i, sym := range t.symbols {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.quote(sym)
		}
		w.buf.WriteString(`]}`)

	case *ArraySchema:
		w.buf.WriteString(`{"type":"array","items":`)
		if err := w.write(t.items); err != nil {
			return err
		}
		w.buf.WriteByte('}')

	case *MapSchema:
		w.buf.WriteString(`{"type":"map","values":`)
		if err := w.write(t.values); err != nil {
			return err
		}
		w.buf.WriteByte('}')

	case *UnionSchema:
		w.buf.WriteByte('[')
		for i, branch := range t.types {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			if err := w.write(branch); err != nil {
				return err
			}
		}
		w.buf.WriteByte(']')

	case *FixedSchema:
		if w.named(t.FullName()) {
			return nil
		}
		w.buf.WriteString(`{"name":`)
		w.quote(t.FullName())
		w.buf.WriteString(`,"type":"fixed","size":`)
		w.buf.WriteString(strconv.Itoa(t.size))
		w.buf.WriteByte('}')

	default:
		return newSchemaError("", "unsupported schema node %T", s)
	}
	return nil
}

// FullNameOf returns the full name of a named schema or reference, and the
// type name otherwise. It is a convenience for diagnostics.
func FullNameOf(s Schema) string {
	if s == nil {
		return "<nil>"
	}
	return BranchName(s)
}

func describe(s Schema) string {
	return fmt.Sprintf("%s(%s)", s.Type(), FullNameOf(s))
}
