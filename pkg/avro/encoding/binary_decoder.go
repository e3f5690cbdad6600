package encoding

import (
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

const (
	// maxIntLen is the widest zig-zag varint that can hold an int32.
	maxIntLen = 5
	// maxZeroWidthItems caps block counts of items that take no bytes, such
	// as nulls, so a forged count cannot make the decoder spin.
	maxZeroWidthItems = 1 << 20
	// maxDepth bounds nesting for recursive schemas whose values consume no
	// input per level.
	maxDepth = 1024
)

// UnmarshalBinary decodes data written with the Avro binary encoding of s.
// The whole input must be consumed.
func UnmarshalBinary(s schema.Schema, data []byte) (value.Value, error) {
	d := newBinaryDecoder(data)
	v, err := d.decode(s, "$", 0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, newError(ErrTrailingBytes, "", "%d bytes left after value", len(d.data)-d.pos)
	}
	return v, nil
}

type binaryDecoder struct {
	data    []byte
	pos     int
	minSize map[schema.Schema]int
}

func newBinaryDecoder(data []byte) *binaryDecoder {
	return &binaryDecoder{data: data, minSize: make(map[schema.Schema]int)}
}

func (d *binaryDecoder) remaining() int {
	return len(d.data) - d.pos
}

func (d *binaryDecoder) readLong(path string) (int64, error) {
	x, n := binary.Varint(d.data[d.pos:])
	switch {
	case n == 0:
		return 0, newError(ErrTruncatedInput, path, "varint runs past end of input")
	case n < 0:
		return 0, newError(ErrMalformedVarint, path, "varint exceeds 64 bits")
	}
	d.pos += n
	return x, nil
}

func (d *binaryDecoder) readInt(path string) (int32, error) {
	start := d.pos
	x, err := d.readLong(path)
	if err != nil {
		return 0, err
	}
	if d.pos-start > maxIntLen || x < math.MinInt32 || x > math.MaxInt32 {
		return 0, newError(ErrMalformedVarint, path, "varint exceeds 32 bits")
	}
	return int32(x), nil
}

func (d *binaryDecoder) readFixed(n int, path string) ([]byte, error) {
	if n > d.remaining() {
		return nil, newError(ErrTruncatedInput, path, "need %d bytes, have %d", n, d.remaining())
	}
	out := make([]byte, n)
	copy(out, d.data[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *binaryDecoder) readBytes(path string) ([]byte, error) {
	n, err := d.readLong(path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, newError(ErrNegativeLength, path, "length %d", n)
	}
	if n > int64(d.remaining()) {
		return nil, newError(ErrTruncatedInput, path, "need %d bytes, have %d", n, d.remaining())
	}
	return d.readFixed(int(n), path)
}

func (d *binaryDecoder) readString(path string) (string, error) {
	b, err := d.readBytes(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newError(ErrSchemaMismatch, path, "string is not valid UTF-8")
	}
	return string(b), nil
}

// readBlockCount reads the item count of the next array or map block. A
// negative count is followed by the block size in bytes, which is skipped.
func (d *binaryDecoder) readBlockCount(items schema.Schema, total int64, path string) (int64, error) {
	count, err := d.readLong(path)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		if count == math.MinInt64 {
			return 0, newError(ErrMalformedVarint, path, "block count out of range")
		}
		count = -count
		size, err := d.readLong(path)
		if err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, newError(ErrNegativeLength, path, "block size %d", size)
		}
	}
	if count == 0 {
		return 0, nil
	}
	if width := d.widthOf(items, nil); width > 0 {
		if count > int64(d.remaining()/width) {
			return 0, newError(ErrTruncatedInput, path, "block of %d items cannot fit in %d bytes", count, d.remaining())
		}
	} else if total+count > maxZeroWidthItems {
		return 0, newError(ErrTruncatedInput, path, "block of %d zero-width items is too large", count)
	}
	return count, nil
}

// widthOf returns the minimum number of bytes any value of s occupies.
func (d *binaryDecoder) widthOf(s schema.Schema, visiting map[schema.Schema]bool) int {
	s, err := schema.Resolve(s)
	if err != nil {
		return 0
	}
	if w, ok := d.minSize[s]; ok {
		return w
	}
	var w int
	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		switch t.Type() {
		case schema.Null:
			w = 0
		case schema.Float:
			w = 4
		case schema.Double:
			w = 8
		default:
			w = 1
		}
	case *schema.FixedSchema:
		w = t.Size()
	case *schema.RecordSchema:
		if visiting[s] {
			return 0
		}
		if visiting == nil {
			visiting = make(map[schema.Schema]bool)
		}
		visiting[s] = true
		for _, f := range t.Fields() {
			w += d.widthOf(f.Type(), visiting)
		}
		delete(visiting, s)
	default:
		// enum index, union index, array or map terminator
		w = 1
	}
	d.minSize[s] = w
	return w
}

func (d *binaryDecoder) decode(s schema.Schema, path string, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, newError(ErrSchemaMismatch, path, "nesting deeper than %d", maxDepth)
	}
	s, err := resolveAt(s, path)
	if err != nil {
		return nil, err
	}

	switch t := s.(type) {
	case *schema.PrimitiveSchema:
		return d.primitive(t, path)

	case *schema.RecordSchema:
		fields := make([]value.Field, 0, len(t.Fields()))
		for _, f := range t.Fields() {
			fv, err := d.decode(f.Type(), path+"."+f.Name(), depth+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.Field{Name: f.Name(), Value: fv})
		}
		return value.Record{Fields: fields}, nil

	case *schema.EnumSchema:
		idx, err := d.readInt(path)
		if err != nil {
			return nil, err
		}
		sym, ok := t.Symbol(int(idx))
		if !ok {
			return nil, newError(ErrSchemaMismatch, path, "enum index %d out of range for %s", idx, t.FullName())
		}
		return value.Enum{Symbol: sym}, nil

	case *schema.ArraySchema:
		arr := value.Array{}
		for {
			count, err := d.readBlockCount(t.Items(), int64(len(arr)), path)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return arr, nil
			}
			for i := int64(0); i < count; i++ {
				item, err := d.decode(t.Items(), indexPath(path, len(arr)), depth+1)
				if err != nil {
					return nil, err
				}
				arr = append(arr, item)
			}
		}

	case *schema.MapSchema:
		m := value.Map{}
		var total int64
		for {
			count, err := d.readBlockCount(t.Values(), total, path)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return m, nil
			}
			total += count
			for i := int64(0); i < count; i++ {
				key, err := d.readString(path)
				if err != nil {
					return nil, err
				}
				v, err := d.decode(t.Values(), path+"["+key+"]", depth+1)
				if err != nil {
					return nil, err
				}
				// A repeated key replaces the earlier entry.
				m[key] = v
			}
		}

	case *schema.UnionSchema:
		idx, err := d.readLong(path)
		if err != nil {
			return nil, err
		}
		branches := t.Types()
		if idx < 0 || idx >= int64(len(branches)) {
			return nil, newError(ErrInvalidUnionIndex, path, "branch %d of %d", idx, len(branches))
		}
		v, err := d.decode(branches[idx], path, depth+1)
		if err != nil {
			return nil, err
		}
		return value.Union{Index: int(idx), Value: v}, nil

	case *schema.FixedSchema:
		b, err := d.readFixed(t.Size(), path)
		if err != nil {
			return nil, err
		}
		return value.Fixed(b), nil
	}
	return nil, newError(ErrSchemaMismatch, path, "unsupported schema %s", s.Type())
}

func (d *binaryDecoder) primitive(s *schema.PrimitiveSchema, path string) (value.Value, error) {
	switch s.Type() {
	case schema.Null:
		return value.Null{}, nil
	case schema.Boolean:
		b, err := d.readFixed(1, path)
		if err != nil {
			return nil, err
		}
		switch b[0] {
		case 0:
			return value.Boolean(false), nil
		case 1:
			return value.Boolean(true), nil
		}
		return nil, newError(ErrSchemaMismatch, path, "invalid boolean byte 0x%02x", b[0])
	case schema.Int:
		x, err := d.readInt(path)
		if err != nil {
			return nil, err
		}
		return value.Int(x), nil
	case schema.Long:
		x, err := d.readLong(path)
		if err != nil {
			return nil, err
		}
		return value.Long(x), nil
	case schema.Float:
		b, err := d.readFixed(4, path)
		if err != nil {
			return nil, err
		}
		return value.Float(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case schema.Double:
		b, err := d.readFixed(8, path)
		if err != nil {
			return nil, err
		}
		return value.Double(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case schema.Bytes:
		b, err := d.readBytes(path)
		if err != nil {
			return nil, err
		}
		return value.Bytes(b), nil
	case schema.String:
		str, err := d.readString(path)
		if err != nil {
			return nil, err
		}
		return value.String(str), nil
	}
	return nil, newError(ErrSchemaMismatch, path, "unsupported primitive %s", s.Type())
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
