package compatibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

const defaultMaxDepth = 256

// Checker compares reader and writer schemas. It is stateless between calls
// and safe for concurrent use.
type Checker struct {
	maxDepth int
}

// Option configures a Checker.
type Option func(*Checker)

// WithMaxDepth bounds how deep the co-traversal may descend before it gives
// up with ErrRecursionDetected.
func WithMaxDepth(depth int) Option {
	return func(c *Checker) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports whether data written with writer can be read with reader.
func Check(reader, writer schema.Schema, opts ...Option) (Result, error) {
	return NewChecker(opts...).Check(reader, writer)
}

// Check reports whether data written with writer can be read with reader.
func (c *Checker) Check(reader, writer schema.Schema) (Result, error) {
	if reader == nil || writer == nil {
		return Result{}, fmt.Errorf("failed to check compatibility: %w", schema.ErrInvalidDefinition)
	}
	run := &traversal{
		maxDepth: c.maxDepth,
		active:   make(map[pair]int),
		verified: make(map[pair]bool),
	}
	issues, err := run.check(reader, writer, "")
	if err != nil {
		return Result{}, err
	}
	return newResult(issues), nil
}

// pair identifies a (reader, writer) comparison of two named records.
type pair struct {
	reader string
	writer string
}

// frame is one step of the traversal path. Unions with several branches,
// arrays and maps are escape frames: a value may stop recursing there.
type frame struct {
	escape bool
}

type traversal struct {
	maxDepth int
	depth    int
	frames   []frame
	// active maps in-progress pairs to the index of their frame.
	active   map[pair]int
	verified map[pair]bool
	// assumed counts revisits of in-progress pairs that were assumed
	// compatible; results depending on an assumption are not memoized.
	assumed int
}

func (t *traversal) check(reader, writer schema.Schema, loc string) ([]Incompatibility, error) {
	t.depth++
	defer func() { t.depth-- }()

	if t.depth > t.maxDepth {
		return nil, &RecursionError{
			Location: pointer(loc),
			Reader:   schema.FullNameOf(reader),
			Writer:   schema.FullNameOf(writer),
			Msg:      fmt.Sprintf("exceeded max depth %d", t.maxDepth),
		}
	}

	r, err := schema.Resolve(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reader schema at %s: %w", pointer(loc), err)
	}
	w, err := schema.Resolve(writer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve writer schema at %s: %w", pointer(loc), err)
	}

	if wu, ok := w.(*schema.UnionSchema); ok {
		return t.writerUnion(r, wu, loc)
	}
	if ru, ok := r.(*schema.UnionSchema); ok {
		return t.readerUnion(ru, w, loc)
	}

	if r.Type() != w.Type() {
		if promotable(r.Type(), w.Type()) {
			return nil, nil
		}
		return []Incompatibility{issue(TypeMismatch, loc, r, w,
			"reader type %s is not compatible with writer type %s", r.Type(), w.Type())}, nil
	}

	switch rt := r.(type) {
	case *schema.PrimitiveSchema:
		return nil, nil

	case *schema.ArraySchema:
		wt := w.(*schema.ArraySchema)
		return t.within(true, func() ([]Incompatibility, error) {
			return t.check(rt.Items(), wt.Items(), loc+"/items")
		})

	case *schema.MapSchema:
		wt := w.(*schema.MapSchema)
		return t.within(true, func() ([]Incompatibility, error) {
			return t.check(rt.Values(), wt.Values(), loc+"/values")
		})

	case *schema.EnumSchema:
		wt := w.(*schema.EnumSchema)
		if !namesMatch(rt, wt) {
			return []Incompatibility{nameMismatch(loc, rt, wt)}, nil
		}
		missing := lo.Without(wt.Symbols(), rt.Symbols()...)
		if _, hasDefault := rt.Default(); len(missing) > 0 && !hasDefault {
			return []Incompatibility{issue(MissingEnumSymbols, loc+"/symbols", rt, wt,
				"[%s]", strings.Join(missing, ", "))}, nil
		}
		return nil, nil

	case *schema.FixedSchema:
		wt := w.(*schema.FixedSchema)
		if !namesMatch(rt, wt) {
			return []Incompatibility{nameMismatch(loc, rt, wt)}, nil
		}
		if rt.Size() != wt.Size() {
			return []Incompatibility{issue(FixedSizeMismatch, loc+"/size", rt, wt,
				"expected: %d, found: %d", wt.Size(), rt.Size())}, nil
		}
		return nil, nil

	case *schema.RecordSchema:
		return t.record(rt, w.(*schema.RecordSchema), loc)
	}
	return nil, fmt.Errorf("failed to check compatibility at %s: unsupported schema node %T", pointer(loc), r)
}

func (t *traversal) within(escape bool, fn func() ([]Incompatibility, error)) ([]Incompatibility, error) {
	t.frames = append(t.frames, frame{escape: escape})
	defer func() { t.frames = t.frames[:len(t.frames)-1] }()
	return fn()
}

// writerUnion requires every writer branch to be readable.
func (t *traversal) writerUnion(r schema.Schema, w *schema.UnionSchema, loc string) ([]Incompatibility, error) {
	return t.within(len(w.Types()) > 1, func() ([]Incompatibility, error) {
		ru, readerIsUnion := r.(*schema.UnionSchema)
		var issues []Incompatibility
		for i, wb := range w.Types() {
			if !readerIsUnion {
				sub, err := t.check(r, wb, loc)
				if err != nil {
					return nil, err
				}
				issues = append(issues, sub...)
				continue
			}
			ok, err := t.anyBranch(ru, wb, loc)
			if err != nil {
				return nil, err
			}
			if !ok {
				issues = append(issues, issue(MissingUnionBranch, loc+"/"+strconv.Itoa(i), r, wb,
					"reader union lacking writer type: %s", schema.FullNameOf(wb)))
			}
		}
		return issues, nil
	})
}

// readerUnion accepts a non-union writer if any reader branch can read it.
func (t *traversal) readerUnion(r *schema.UnionSchema, w schema.Schema, loc string) ([]Incompatibility, error) {
	return t.within(len(r.Types()) > 1, func() ([]Incompatibility, error) {
		ok, err := t.anyBranch(r, w, loc)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, nil
		}
		return []Incompatibility{issue(MissingUnionBranch, loc, r, w,
			"reader union lacking writer type: %s", schema.FullNameOf(w))}, nil
	})
}

func (t *traversal) anyBranch(r *schema.UnionSchema, w schema.Schema, loc string) (bool, error) {
	for _, rb := range r.Types() {
		sub, err := t.check(rb, w, loc)
		if err != nil {
			return false, err
		}
		if len(sub) == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (t *traversal) record(r, w *schema.RecordSchema, loc string) ([]Incompatibility, error) {
	if !namesMatch(r, w) {
		return []Incompatibility{nameMismatch(loc, r, w)}, nil
	}

	key := pair{reader: r.FullName(), writer: w.FullName()}
	if t.verified[key] {
		return nil, nil
	}
	if at, ok := t.active[key]; ok {
		if lo.ContainsBy(t.frames[at:], func(f frame) bool { return f.escape }) {
			t.assumed++
			return nil, nil
		}
		return nil, &RecursionError{
			Location: pointer(loc),
			Reader:   key.reader,
			Writer:   key.writer,
			Msg:      "record recurses through mandatory fields only",
		}
	}

	t.active[key] = len(t.frames)
	defer delete(t.active, key)
	assumedBefore := t.assumed

	issues, err := t.within(false, func() ([]Incompatibility, error) {
		var issues []Incompatibility
		for i, rf := range r.Fields() {
			floc := loc + "/fields/" + strconv.Itoa(i)
			wf := writerField(w, rf)
			if wf == nil {
				if !rf.HasDefault() {
					issues = append(issues, issue(ReaderFieldMissingDefaultValue, floc, rf.Type(), w,
						"%s", rf.Name()))
				}
				continue
			}
			sub, err := t.check(rf.Type(), wf.Type(), floc+"/type")
			if err != nil {
				return nil, err
			}
			issues = append(issues, sub...)
		}
		return issues, nil
	})
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 && t.assumed == assumedBefore {
		t.verified[key] = true
	}
	return issues, nil
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

// namesMatch compares named types by unqualified name, or by one of the
// reader aliases.
func namesMatch(r, w schema.NamedSchema) bool {
	if r.Name() == w.Name() {
		return true
	}
	return lo.ContainsBy(r.Aliases(), func(alias string) bool {
		return alias == w.FullName() || alias[strings.LastIndex(alias, ".")+1:] == w.Name()
	})
}

func nameMismatch(loc string, r, w schema.NamedSchema) Incompatibility {
	return issue(NameMismatch, loc+"/name", r, w, "expected: %s", w.FullName())
}

// promotable reports whether a writer primitive can be read as the reader
// primitive: int to long, float or double; long to float or double; float to
// double.
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

func issue(kind IncompatibilityType, loc string, r, w schema.Schema, format string, args ...any) Incompatibility {
	return Incompatibility{
		Type:           kind,
		Location:       pointer(loc),
		Message:        fmt.Sprintf(format, args...),
		ReaderFragment: r.String(),
		WriterFragment: w.String(),
	}
}

func pointer(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
