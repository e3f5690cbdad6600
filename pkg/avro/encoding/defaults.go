package encoding

import (
	"encoding/json"
	"math"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// DefaultValue converts a field default, in the JSON form returned by
// schema.Field.Default, into a Value of schema s.
func DefaultValue(s schema.Schema, def any) (value.Value, error) {
	return defaultValue(s, def, "$")
}

func defaultValue(s schema.Schema, def any, path string) (value.Value, error) {
	s, err := resolveAt(s, path)
	if err != nil {
		return nil, err
	}
	bad := func() error {
		return newError(ErrSchemaMismatch, path, "default %v does not match %s", def, schema.BranchName(s))
	}

	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		switch t.Type() {
		case schema.Null:
			if def != nil {
				return nil, bad()
			}
			return value.Null{}, nil
		case schema.Boolean:
			b, ok := def.(bool)
			if !ok {
				return nil, bad()
			}
			return value.Boolean(b), nil
		case schema.Int, schema.Long:
			n, ok := def.(json.Number)
			if !ok {
				return nil, bad()
			}
			i, err := n.Int64()
			if err != nil {
				return nil, bad()
			}
			if t.Type() == schema.Long {
				return value.Long(i), nil
			}
			if i < math.MinInt32 || i > math.MaxInt32 {
				return nil, bad()
			}
			return value.Int(int32(i)), nil
		case schema.Float, schema.Double:
			n, ok := def.(json.Number)
			if !ok {
				return nil, bad()
			}
			f, err := n.Float64()
			if err != nil {
				return nil, bad()
			}
			if t.Type() == schema.Float {
				return value.Float(float32(f)), nil
			}
			return value.Double(f), nil
		case schema.Bytes:
			str, ok := def.(string)
			if !ok {
				return nil, bad()
			}
			b, ok := latin1Bytes(str)
			if !ok {
				return nil, bad()
			}
			return value.Bytes(b), nil
		case schema.String:
			str, ok := def.(string)
			if !ok {
				return nil, bad()
			}
			return value.String(str), nil
		}

	case *schema.EnumSchema:
		sym, ok := def.(string)
		if !ok {
			return nil, bad()
		}
		if _, ok := t.IndexOf(sym); !ok {
			return nil, bad()
		}
		return value.Enum{Symbol: sym}, nil

	case *schema.FixedSchema:
		str, ok := def.(string)
		if !ok {
			return nil, bad()
		}
		b, ok := latin1Bytes(str)
		if !ok || len(b) != t.Size() {
			return nil, bad()
		}
		return value.Fixed(b), nil

	case *schema.ArraySchema:
		items, ok := def.([]any)
		if !ok {
			return nil, bad()
		}
		arr := make(value.Array, 0, len(items))
		for i, item := range items {
			v, err := defaultValue(t.Items(), item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case *schema.MapSchema:
		entries, ok := def.(map[string]any)
		if !ok {
			return nil, bad()
		}
		m := make(value.Map, len(entries))
		for k, item := range entries {
			v, err := defaultValue(t.Values(), item, path+"["+k+"]")
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil

	case *schema.UnionSchema:
		if len(t.Types()) == 0 {
			return nil, bad()
		}
		v, err := defaultValue(t.Types()[0], def, path)
		if err != nil {
			return nil, err
		}
		return value.Union{Index: 0, Value: v}, nil

	case *schema.RecordSchema:
		obj, ok := def.(map[string]any)
		if !ok {
			return nil, bad()
		}
		fields := make([]value.Field, 0, len(t.Fields()))
		for _, f := range t.Fields() {
			raw, present := obj[f.Name()]
			if !present {
				if !f.HasDefault() {
					return nil, newError(ErrSchemaMismatch, path, "default has no value for field %q", f.Name())
				}
				raw = f.Default()
			}
			v, err := defaultValue(f.Type(), raw, path+"."+f.Name())
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.Field{Name: f.Name(), Value: v})
		}
		return value.Record{Fields: fields}, nil
	}
	return nil, bad()
}

// latin1Bytes maps each code point of s to one byte.
func latin1Bytes(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			return nil, false
		}
		out = append(out, byte(r))
	}
	return out, true
}

// latin1String is the inverse of latin1Bytes.
func latin1String(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
