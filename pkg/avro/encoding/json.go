package encoding

import (
	"errors"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/go-faster/jx"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// JSON spellings of non-finite floats.
const (
	jsonNaN         = "NaN"
	jsonPosInfinity = "Infinity"
	jsonNegInfinity = "-Infinity"
)

// MarshalJSON encodes v with the Avro JSON encoding of s. Non-null union
// values become single-key objects keyed by the branch full name, bytes and
// fixed values become strings of code points 0-255, and map keys are written
// in sorted order.
func MarshalJSON(s schema.Schema, v value.Value) ([]byte, error) {
	var e jx.Encoder
	if err := encodeJSON(&e, s, v, "$"); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func encodeJSON(e *jx.Encoder, s schema.Schema, v value.Value, path string) error {
	s, err := resolveAt(s, path)
	if err != nil {
		return err
	}

	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		return encodeJSONPrimitive(e, t, v, path)

	case *schema.RecordSchema:
		rec, ok := v.(value.Record)
		if !ok {
			return mismatch(path, s, v)
		}
		e.ObjStart()
		for _, f := range t.Fields() {
			fv, ok := rec.Get(f.Name())
			if !ok {
				return newError(ErrSchemaMismatch, path, "missing field %q", f.Name())
			}
			e.FieldStart(f.Name())
			if err := encodeJSON(e, f.Type(), fv, path+"."+f.Name()); err != nil {
				return err
			}
		}
		e.ObjEnd()

	case *schema.EnumSchema:
		en, ok := v.(value.Enum)
		if !ok {
			return mismatch(path, s, v)
		}
		if _, ok := t.IndexOf(en.Symbol); !ok {
			return newError(ErrSchemaMismatch, path, "unknown symbol %q for enum %s", en.Symbol, t.FullName())
		}
		e.Str(en.Symbol)

	case *schema.ArraySchema:
		arr, ok := v.(value.Array)
		if !ok {
			return mismatch(path, s, v)
		}
		e.ArrStart()
		for i, item := range arr {
			if err := encodeJSON(e, t.Items(), item, indexPath(path, i)); err != nil {
				return err
			}
		}
		e.ArrEnd()

	case *schema.MapSchema:
		m, ok := v.(value.Map)
		if !ok {
			return mismatch(path, s, v)
		}
		e.ObjStart()
		for _, k := range sortedKeys(m) {
			e.FieldStart(k)
			if err := encodeJSON(e, t.Values(), m[k], path+"["+k+"]"); err != nil {
				return err
			}
		}
		e.ObjEnd()

	case *schema.UnionSchema:
		u, ok := v.(value.Union)
		if !ok {
			return mismatch(path, s, v)
		}
		branches := t.Types()
		if u.Index < 0 || u.Index >= len(branches) {
			return newError(ErrInvalidUnionIndex, path, "branch %d of %d", u.Index, len(branches))
		}
		branch := branches[u.Index]
		if branch.Type() == schema.Null {
			return encodeJSON(e, branch, u.Value, path)
		}
		e.ObjStart()
		e.FieldStart(schema.BranchName(branch))
		if err := encodeJSON(e, branch, u.Value, path); err != nil {
			return err
		}
		e.ObjEnd()

	case *schema.FixedSchema:
		f, ok := v.(value.Fixed)
		if !ok {
			return mismatch(path, s, v)
		}
		if len(f) != t.Size() {
			return newError(ErrSchemaMismatch, path, "fixed %s needs %d bytes, got %d", t.FullName(), t.Size(), len(f))
		}
		e.Str(latin1String(f))

	default:
		return mismatch(path, s, v)
	}
	return nil
}

func encodeJSONPrimitive(e *jx.Encoder, s *schema.PrimitiveSchema, v value.Value, path string) error {
	switch s.Type() {
	case schema.Null:
		if _, ok := v.(value.Null); !ok {
			return mismatch(path, s, v)
		}
		e.Null()
	case schema.Boolean:
		b, ok := v.(value.Boolean)
		if !ok {
			return mismatch(path, s, v)
		}
		e.Bool(bool(b))
	case schema.Int:
		x, ok := v.(value.Int)
		if !ok {
			return mismatch(path, s, v)
		}
		e.Int32(int32(x))
	case schema.Long:
		x, ok := v.(value.Long)
		if !ok {
			return mismatch(path, s, v)
		}
		e.Int64(int64(x))
	case schema.Float:
		x, ok := v.(value.Float)
		if !ok {
			return mismatch(path, s, v)
		}
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			e.Str(nonFinite(f))
		} else {
			e.Float32(float32(x))
		}
	case schema.Double:
		x, ok := v.(value.Double)
		if !ok {
			return mismatch(path, s, v)
		}
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			e.Str(nonFinite(f))
		} else {
			e.Float64(f)
		}
	case schema.Bytes:
		b, ok := v.(value.Bytes)
		if !ok {
			return mismatch(path, s, v)
		}
		e.Str(latin1String(b))
	case schema.String:
		str, ok := v.(value.String)
		if !ok {
			return mismatch(path, s, v)
		}
		if !utf8.ValidString(string(str)) {
			return newError(ErrSchemaMismatch, path, "string is not valid UTF-8")
		}
		e.Str(string(str))
	}
	return nil
}

func nonFinite(f float64) string {
	switch {
	case math.IsNaN(f):
		return jsonNaN
	case f > 0:
		return jsonPosInfinity
	default:
		return jsonNegInfinity
	}
}

// UnmarshalJSON decodes an Avro JSON document of schema s. Record fields
// missing from the document take their schema defaults.
func UnmarshalJSON(s schema.Schema, data []byte) (value.Value, error) {
	d := jx.DecodeBytes(data)
	v, err := decodeJSON(d, s, "$", 0)
	if err != nil {
		return nil, err
	}
	// Only whitespace may follow the value.
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return nil, newError(ErrTrailingBytes, "", "unexpected data after JSON value")
	}
	return v, nil
}

func jsonError(path string, err error) *CodecError {
	return newError(ErrSchemaMismatch, path, "%v", err)
}

func expect(d *jx.Decoder, want jx.Type, s schema.Schema, path string) error {
	if got := d.Next(); got != want {
		return newError(ErrSchemaMismatch, path, "expected JSON %s for %s, got %s", want, schema.BranchName(s), got)
	}
	return nil
}

func decodeJSON(d *jx.Decoder, s schema.Schema, path string, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, newError(ErrSchemaMismatch, path, "nesting deeper than %d", maxDepth)
	}
	s, err := resolveAt(s, path)
	if err != nil {
		return nil, err
	}

	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		return decodeJSONPrimitive(d, t, path)

	case *schema.RecordSchema:
		if err := expect(d, jx.Object, s, path); err != nil {
			return nil, err
		}
		got := make(map[string]value.Value, len(t.Fields()))
		err := d.Obj(func(d *jx.Decoder, key string) error {
			f, ok := t.Field(key)
			if !ok {
				return newError(ErrSchemaMismatch, path, "unknown field %q", key)
			}
			fv, err := decodeJSON(d, f.Type(), path+"."+key, depth+1)
			if err != nil {
				return err
			}
			got[key] = fv
			return nil
		})
		if err != nil {
			return nil, wrapJSON(path, err)
		}
		fields := make([]value.Field, 0, len(t.Fields()))
		for _, f := range t.Fields() {
			fv, ok := got[f.Name()]
			if !ok {
				if !f.HasDefault() {
					return nil, newError(ErrSchemaMismatch, path, "missing field %q", f.Name())
				}
				fv, err = defaultValue(f.Type(), f.Default(), path+"."+f.Name())
				if err != nil {
					return nil, err
				}
			}
			fields = append(fields, value.Field{Name: f.Name(), Value: fv})
		}
		return value.Record{Fields: fields}, nil

	case *schema.EnumSchema:
		if err := expect(d, jx.String, s, path); err != nil {
			return nil, err
		}
		sym, err := d.Str()
		if err != nil {
			return nil, jsonError(path, err)
		}
		if _, ok := t.IndexOf(sym); !ok {
			return nil, newError(ErrSchemaMismatch, path, "unknown symbol %q for enum %s", sym, t.FullName())
		}
		return value.Enum{Symbol: sym}, nil

	case *schema.ArraySchema:
		if err := expect(d, jx.Array, s, path); err != nil {
			return nil, err
		}
		arr := value.Array{}
		err := d.Arr(func(d *jx.Decoder) error {
			item, err := decodeJSON(d, t.Items(), indexPath(path, len(arr)), depth+1)
			if err != nil {
				return err
			}
			arr = append(arr, item)
			return nil
		})
		if err != nil {
			return nil, wrapJSON(path, err)
		}
		return arr, nil

	case *schema.MapSchema:
		if err := expect(d, jx.Object, s, path); err != nil {
			return nil, err
		}
		m := value.Map{}
		err := d.Obj(func(d *jx.Decoder, key string) error {
			item, err := decodeJSON(d, t.Values(), path+"["+key+"]", depth+1)
			if err != nil {
				return err
			}
			// A repeated key replaces the earlier entry.
			m[key] = item
			return nil
		})
		if err != nil {
			return nil, wrapJSON(path, err)
		}
		return m, nil

	case *schema.UnionSchema:
		return decodeJSONUnion(d, t, path, depth)

	case *schema.FixedSchema:
		if err := expect(d, jx.String, s, path); err != nil {
			return nil, err
		}
		str, err := d.Str()
		if err != nil {
			return nil, jsonError(path, err)
		}
		b, ok := latin1Bytes(str)
		if !ok || len(b) != t.Size() {
			return nil, newError(ErrSchemaMismatch, path, "expected %d bytes for fixed %s", t.Size(), t.FullName())
		}
		return value.Fixed(b), nil
	}
	return nil, newError(ErrSchemaMismatch, path, "unsupported schema %s", s.Type())
}

func decodeJSONUnion(d *jx.Decoder, u *schema.UnionSchema, path string, depth int) (value.Value, error) {
	if d.Next() == jx.Null {
		idx, ok := u.IndexOf(string(schema.Null))
		if !ok {
			return nil, newError(ErrSchemaMismatch, path, "null for a union without a null branch")
		}
		if err := d.Null(); err != nil {
			return nil, jsonError(path, err)
		}
		return value.Union{Index: idx, Value: value.Null{}}, nil
	}
	if err := expect(d, jx.Object, u, path); err != nil {
		return nil, err
	}

	var (
		out   value.Union
		found bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if found {
			return newError(ErrSchemaMismatch, path, "union object has more than one key")
		}
		idx, ok := u.IndexOf(key)
		if !ok {
			return newError(ErrSchemaMismatch, path, "%q matches no union branch", key)
		}
		inner, err := decodeJSON(d, u.Types()[idx], path, depth+1)
		if err != nil {
			return err
		}
		out = value.Union{Index: idx, Value: inner}
		found = true
		return nil
	})
	if err != nil {
		return nil, wrapJSON(path, err)
	}
	if !found {
		return nil, newError(ErrSchemaMismatch, path, "empty union object")
	}
	return out, nil
}

func decodeJSONPrimitive(d *jx.Decoder, s *schema.PrimitiveSchema, path string) (value.Value, error) {
	switch s.Type() {
	case schema.Null:
		if err := expect(d, jx.Null, s, path); err != nil {
			return nil, err
		}
		if err := d.Null(); err != nil {
			return nil, jsonError(path, err)
		}
		return value.Null{}, nil
	case schema.Boolean:
		if err := expect(d, jx.Bool, s, path); err != nil {
			return nil, err
		}
		b, err := d.Bool()
		if err != nil {
			return nil, jsonError(path, err)
		}
		return value.Boolean(b), nil
	case schema.Int:
		if err := expect(d, jx.Number, s, path); err != nil {
			return nil, err
		}
		x, err := d.Int32()
		if err != nil {
			return nil, jsonError(path, err)
		}
		return value.Int(x), nil
	case schema.Long:
		if err := expect(d, jx.Number, s, path); err != nil {
			return nil, err
		}
		x, err := d.Int64()
		if err != nil {
			return nil, jsonError(path, err)
		}
		return value.Long(x), nil
	case schema.Float, schema.Double:
		f, err := decodeJSONFloat(d, s, path)
		if err != nil {
			return nil, err
		}
		if s.Type() == schema.Float {
			return value.Float(float32(f)), nil
		}
		return value.Double(f), nil
	case schema.Bytes:
		if err := expect(d, jx.String, s, path); err != nil {
			return nil, err
		}
		str, err := d.Str()
		if err != nil {
			return nil, jsonError(path, err)
		}
		b, ok := latin1Bytes(str)
		if !ok {
			return nil, newError(ErrSchemaMismatch, path, "bytes string has code points above 255")
		}
		return value.Bytes(b), nil
	case schema.String:
		if err := expect(d, jx.String, s, path); err != nil {
			return nil, err
		}
		str, err := d.Str()
		if err != nil {
			return nil, jsonError(path, err)
		}
		return value.String(str), nil
	}
	return nil, newError(ErrSchemaMismatch, path, "unsupported primitive %s", s.Type())
}

func decodeJSONFloat(d *jx.Decoder, s schema.Schema, path string) (float64, error) {
	if d.Next() == jx.String {
		str, err := d.Str()
		if err != nil {
			return 0, jsonError(path, err)
		}
		switch str {
		case jsonNaN:
			return math.NaN(), nil
		case jsonPosInfinity:
			return math.Inf(1), nil
		case jsonNegInfinity:
			return math.Inf(-1), nil
		}
		return 0, newError(ErrSchemaMismatch, path, "invalid float %s", strconv.Quote(str))
	}
	if err := expect(d, jx.Number, s, path); err != nil {
		return 0, err
	}
	f, err := d.Float64()
	if err != nil {
		return 0, jsonError(path, err)
	}
	return f, nil
}

// wrapJSON keeps codec errors raised inside jx callbacks and wraps the rest.
func wrapJSON(path string, err error) error {
	var ce *CodecError
	if asCodecError(err, &ce) {
		return ce
	}
	return jsonError(path, err)
}
