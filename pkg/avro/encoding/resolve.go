package encoding

import (
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// ResolveBinary decodes data written with writer and returns it in the shape
// of reader, following Avro schema resolution: writer-only fields are
// dropped, reader-only fields take their defaults, numbers are promoted,
// union branches are matched by type and unknown enum symbols fall back to
// the reader default.
//
// Callers are expected to have checked the pair with the compatibility
// package; data that cannot be resolved fails with ErrSchemaMismatch.
func ResolveBinary(reader, writer schema.Schema, data []byte) (value.Value, error) {
	v, err := UnmarshalBinary(writer, data)
	if err != nil {
		return nil, err
	}
	return Resolve(reader, writer, v)
}

// Resolve converts a value of writer into the shape of reader.
func Resolve(reader, writer schema.Schema, v value.Value) (value.Value, error) {
	return resolve(reader, writer, v, "$")
}

func resolve(reader, writer schema.Schema, v value.Value, path string) (value.Value, error) {
	r, err := resolveAt(reader, path)
	if err != nil {
		return nil, err
	}
	w, err := resolveAt(writer, path)
	if err != nil {
		return nil, err
	}

	if wu, ok := w.(*schema.UnionSchema); ok {
		u, ok := v.(value.Union)
		if !ok || u.Index < 0 || u.Index >= len(wu.Types()) {
			return nil, mismatch(path, w, v)
		}
		return resolve(r, wu.Types()[u.Index], u.Value, path)
	}

	if ru, ok := r.(*schema.UnionSchema); ok {
		idx, ok := matchBranch(ru, w)
		if !ok {
			return nil, newError(ErrSchemaMismatch, path, "no branch of reader union matches %s", schema.BranchName(w))
		}
		inner, err := resolve(ru.Types()[idx], w, v, path)
		if err != nil {
			return nil, err
		}
		return value.Union{Index: idx, Value: inner}, nil
	}

	switch rt := r.(type) {
	case *schema.PrimitiveSchema:
		wt, ok := w.(*schema.PrimitiveSchema)
		if !ok {
			return nil, mismatch(path, r, v)
		}
		return promote(rt.Type(), wt.Type(), v, path)

	case *schema.RecordSchema:
		wt, ok := w.(*schema.RecordSchema)
		if !ok {
			return nil, mismatch(path, r, v)
		}
		rec, ok := v.(value.Record)
		if !ok {
			return nil, mismatch(path, w, v)
		}
		fields := make([]value.Field, 0, len(rt.Fields()))
		for _, rf := range rt.Fields() {
			fieldPath := path + "." + rf.Name()
			wf := writerField(wt, rf)
			if wf == nil {
				if !rf.HasDefault() {
					return nil, newError(ErrSchemaMismatch, fieldPath, "writer has no field %q and reader declares no default", rf.Name())
				}
				dv, err := defaultValue(rf.Type(), rf.Default(), fieldPath)
				if err != nil {
					return nil, err
				}
				fields = append(fields, value.Field{Name: rf.Name(), Value: dv})
				continue
			}
			wv, ok := rec.Get(wf.Name())
			if !ok {
				return nil, newError(ErrSchemaMismatch, fieldPath, "value has no field %q", wf.Name())
			}
			fv, err := resolve(rf.Type(), wf.Type(), wv, fieldPath)
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.Field{Name: rf.Name(), Value: fv})
		}
		return value.Record{Fields: fields}, nil

	case *schema.EnumSchema:
		if _, ok := w.(*schema.EnumSchema); !ok {
			return nil, mismatch(path, r, v)
		}
		en, ok := v.(value.Enum)
		if !ok {
			return nil, mismatch(path, w, v)
		}
		if _, ok := rt.IndexOf(en.Symbol); ok {
			return en, nil
		}
		if def, ok := rt.Default(); ok {
			return value.Enum{Symbol: def}, nil
		}
		return nil, newError(ErrSchemaMismatch, path, "symbol %q is unknown to reader enum %s", en.Symbol, rt.FullName())

	case *schema.ArraySchema:
		wt, ok := w.(*schema.ArraySchema)
		if !ok {
			return nil, mismatch(path, r, v)
		}
		arr, ok := v.(value.Array)
		if !ok {
			return nil, mismatch(path, w, v)
		}
		out := make(value.Array, 0, len(arr))
		for i, item := range arr {
			rv, err := resolve(rt.Items(), wt.Items(), item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, rv)
		}
		return out, nil

	case *schema.MapSchema:
		wt, ok := w.(*schema.MapSchema)
		if !ok {
			return nil, mismatch(path, r, v)
		}
		m, ok := v.(value.Map)
		if !ok {
			return nil, mismatch(path, w, v)
		}
		out := make(value.Map, len(m))
		for k, item := range m {
			rv, err := resolve(rt.Values(), wt.Values(), item, path+"["+k+"]")
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil

	case *schema.FixedSchema:
		wt, ok := w.(*schema.FixedSchema)
		if !ok || wt.Size() != rt.Size() {
			return nil, mismatch(path, r, v)
		}
		return v, nil
	}
	return nil, mismatch(path, r, v)
}

// writerField finds the writer field read into rf, by name or by one of the
// reader field aliases.
func writerField(w *schema.RecordSchema, rf *schema.Field) *schema.Field {
	if f, ok := w.Field(rf.Name()); ok {
		return f
	}
	for _, alias := range rf.Aliases() {
		if f, ok := w.Field(alias); ok {
			return f
		}
	}
	return nil
}

// matchBranch picks the reader branch for a writer schema: an exact type
// match first, then the first branch the writer type promotes to.
func matchBranch(u *schema.UnionSchema, w schema.Schema) (int, bool) {
	branches := u.Types()
	for i, b := range branches {
		rb, err := schema.Resolve(b)
		if err != nil {
			continue
		}
		if sameShape(rb, w) {
			return i, true
		}
	}
	if wp, ok := w.(*schema.PrimitiveSchema); ok {
		for i, b := range branches {
			if rp, ok := b.(*schema.PrimitiveSchema); ok && promotable(rp.Type(), wp.Type()) {
				return i, true
			}
		}
	}
	return 0, false
}

func sameShape(r, w schema.Schema) bool {
	if r.Type() != w.Type() {
		return false
	}
	rn, rok := r.(schema.NamedSchema)
	wn, wok := w.(schema.NamedSchema)
	if rok && wok {
		if rn.FullName() == wn.FullName() || rn.Name() == wn.Name() {
			return true
		}
		for _, alias := range rn.Aliases() {
			if alias == wn.FullName() {
				return true
			}
		}
		return false
	}
	return true
}

func promotable(reader, writer schema.Type) bool {
	switch writer {
	case schema.Int:
		return reader == schema.Long || reader == schema.Float || reader == schema.Double
	case schema.Long:
		return reader == schema.Float || reader == schema.Double
	case schema.Float:
		return reader == schema.Double
	}
	return false
}

func promote(reader, writer schema.Type, v value.Value, path string) (value.Value, error) {
	if reader == writer {
		return v, nil
	}
	if !promotable(reader, writer) {
		return nil, newError(ErrSchemaMismatch, path, "cannot read %s as %s", writer, reader)
	}
	var f float64
	switch x := v.(type) {
	case value.Int:
		if reader == schema.Long {
			return value.Long(x), nil
		}
		f = float64(x)
	case value.Long:
		f = float64(x)
	case value.Float:
		f = float64(x)
	default:
		return nil, newError(ErrSchemaMismatch, path, "cannot promote %s", kindName(v))
	}
	if reader == schema.Float {
		return value.Float(float32(f)), nil
	}
	return value.Double(f), nil
}
