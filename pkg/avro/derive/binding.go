package derive

import (
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// SumBinding maps variant tags to union branch indexes of a derived sum type.
// Tags are record full names; unqualified names are accepted too when they
// are unambiguous.
type SumBinding struct {
	union *schema.UnionSchema
	tags  []string
	index map[string]int
}

// Bind builds the tag table of a union whose branches are all records.
func Bind(s schema.Schema) (*SumBinding, error) {
	resolved, err := schema.Resolve(s)
	if err != nil {
		return nil, &DerivationError{Path: "$", Msg: err.Error(), Err: err}
	}
	u, ok := resolved.(*schema.UnionSchema)
	if !ok {
		return nil, newDerivationError(ErrUnsupportedShape, "$", "expected a union, got %s", resolved.Type())
	}

	b := &SumBinding{union: u, index: make(map[string]int)}
	short := make(map[string][]int)
	for i, branch := range u.Types() {
		rb, err := schema.Resolve(branch)
		if err != nil {
			return nil, &DerivationError{Path: "$", Msg: err.Error(), Err: err}
		}
		rec, ok := rb.(*schema.RecordSchema)
		if !ok {
			return nil, newDerivationError(ErrUnsupportedShape, "$", "branch %d is %s, not a record", i, rb.Type())
		}
		b.tags = append(b.tags, rec.FullName())
		b.index[rec.FullName()] = i
		short[rec.Name()] = append(short[rec.Name()], i)
	}
	for name, idx := range short {
		if _, taken := b.index[name]; !taken && len(idx) == 1 {
			b.index[name] = idx[0]
		}
	}
	return b, nil
}

// Schema returns the bound union.
func (b *SumBinding) Schema() *schema.UnionSchema { return b.union }

// Tags returns the variant full names in branch order.
func (b *SumBinding) Tags() []string { return b.tags }

// Index returns the branch index of tag.
func (b *SumBinding) Index(tag string) (int, bool) {
	i, ok := b.index[tag]
	return i, ok
}

// Wrap selects the branch of tag for rec.
func (b *SumBinding) Wrap(tag string, rec value.Record) (value.Union, error) {
	i, ok := b.index[tag]
	if !ok {
		return value.Union{}, newDerivationError(ErrUnknownVariant, tag, "not a variant of this sum")
	}
	return value.Union{Index: i, Value: rec}, nil
}

// Unwrap returns the tag and record held by a union value of the sum.
func (b *SumBinding) Unwrap(v value.Value) (string, value.Record, error) {
	u, ok := v.(value.Union)
	if !ok {
		return "", value.Record{}, newDerivationError(ErrUnsupportedShape, "$", "expected a union value, got %v", v)
	}
	if u.Index < 0 || u.Index >= len(b.tags) {
		return "", value.Record{}, newDerivationError(ErrUnknownVariant, "$", "branch %d is out of range", u.Index)
	}
	rec, ok := u.Value.(value.Record)
	if !ok {
		return "", value.Record{}, newDerivationError(ErrUnsupportedShape, b.tags[u.Index], "branch value is not a record")
	}
	return b.tags[u.Index], rec, nil
}
