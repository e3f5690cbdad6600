package encoding

import (
	"encoding/binary"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// MarshalBinary encodes v with the Avro binary encoding of s.
func MarshalBinary(s schema.Schema, v value.Value) ([]byte, error) {
	return AppendBinary(nil, s, v)
}

// AppendBinary appends the binary encoding of v to dst.
func AppendBinary(dst []byte, s schema.Schema, v value.Value) ([]byte, error) {
	e := &binaryEncoder{buf: dst}
	if err := e.encode(s, v, "$"); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type binaryEncoder struct {
	buf []byte
}

func (e *binaryEncoder) long(x int64) {
	e.buf = binary.AppendVarint(e.buf, x)
}

func (e *binaryEncoder) bytes(b []byte) {
	e.long(int64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *binaryEncoder) encode(s schema.Schema, v value.Value, path string) error {
	s, err := resolveAt(s, path)
	if err != nil {
		return err
	}

	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		return e.primitive(t, v, path)

	case *schema.RecordSchema:
		rec, ok := v.(value.Record)
		if !ok {
			return mismatch(path, s, v)
		}
		for _, f := range t.Fields() {
			fv, ok := rec.Get(f.Name())
			if !ok {
				return newError(ErrSchemaMismatch, path, "missing field %q", f.Name())
			}
			if err := e.encode(f.Type(), fv, path+"."+f.Name()); err != nil {
				return err
			}
		}
		for _, f := range rec.Fields {
			if _, ok := t.Field(f.Name); !ok {
				return newError(ErrSchemaMismatch, path, "unknown field %q", f.Name)
			}
		}

	case *schema.EnumSchema:
		en, ok := v.(value.Enum)
		if !ok {
			return mismatch(path, s, v)
		}
		idx, ok := t.IndexOf(en.Symbol)
		if !ok {
			return newError(ErrSchemaMismatch, path, "unknown symbol %q for enum %s", en.Symbol, t.FullName())
		}
		e.long(int64(idx))

	case *schema.ArraySchema:
		arr, ok := v.(value.Array)
		if !ok {
			return mismatch(path, s, v)
		}
		if len(arr) > 0 {
			e.long(int64(len(arr)))
			for i, item := range arr {
				if err := e.encode(t.Items(), item, indexPath(path, i)); err != nil {
					return err
				}
			}
		}
		e.long(0)

	case *schema.MapSchema:
		m, ok := v.(value.Map)
		if !ok {
			return mismatch(path, s, v)
		}
		if len(m) > 0 {
			e.long(int64(len(m)))
			for _, k := range sortedKeys(m) {
				if !utf8.ValidString(k) {
					return newError(ErrSchemaMismatch, path, "map key is not valid UTF-8")
				}
				e.bytes([]byte(k))
				if err := e.encode(t.Values(), m[k], path+"["+k+"]"); err != nil {
					return err
				}
			}
		}
		e.long(0)

	case *schema.UnionSchema:
		u, ok := v.(value.Union)
		if !ok {
			return mismatch(path, s, v)
		}
		branches := t.Types()
		if u.Index < 0 || u.Index >= len(branches) {
			return newError(ErrInvalidUnionIndex, path, "branch %d of %d", u.Index, len(branches))
		}
		e.long(int64(u.Index))
		return e.encode(branches[u.Index], u.Value, path)

	case *schema.FixedSchema:
		f, ok := v.(value.Fixed)
		if !ok {
			return mismatch(path, s, v)
		}
		if len(f) != t.Size() {
			return newError(ErrSchemaMismatch, path, "fixed %s needs %d bytes, got %d", t.FullName(), t.Size(), len(f))
		}
		e.buf = append(e.buf, f...)

	default:
		return mismatch(path, s, v)
	}
	return nil
}

func (e *binaryEncoder) primitive(s *schema.PrimitiveSchema, v value.Value, path string) error {
	switch s.Type() {
	case schema.Null:
		if _, ok := v.(value.Null); !ok {
			return mismatch(path, s, v)
		}
	case schema.Boolean:
		b, ok := v.(value.Boolean)
		if !ok {
			return mismatch(path, s, v)
		}
		if b {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
	case schema.Int:
		x, ok := v.(value.Int)
		if !ok {
			return mismatch(path, s, v)
		}
		e.long(int64(x))
	case schema.Long:
		x, ok := v.(value.Long)
		if !ok {
			return mismatch(path, s, v)
		}
		e.long(int64(x))
	case schema.Float:
		x, ok := v.(value.Float)
		if !ok {
			return mismatch(path, s, v)
		}
		e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(float32(x)))
	case schema.Double:
		x, ok := v.(value.Double)
		if !ok {
			return mismatch(path, s, v)
		}
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(float64(x)))
	case schema.Bytes:
		b, ok := v.(value.Bytes)
		if !ok {
			return mismatch(path, s, v)
		}
		e.bytes(b)
	case schema.String:
		str, ok := v.(value.String)
		if !ok {
			return mismatch(path, s, v)
		}
		if !utf8.ValidString(string(str)) {
			return newError(ErrSchemaMismatch, path, "string is not valid UTF-8")
		}
		e.bytes([]byte(str))
	}
	return nil
}

func sortedKeys(m value.Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
