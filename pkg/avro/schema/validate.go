package schema

import (
	"encoding/json"
	"errors"
	"math"
	"unicode/utf8"
)

// Validate checks that every reference in s resolves and that every field
// default matches its field type.
func Validate(s Schema) error {
	v := &validator{visited: make(map[NamedSchema]bool)}
	return v.walk(s, rootPath(s))
}

func rootPath(s Schema) string {
	if n, ok := s.(NamedSchema); ok {
		return n.FullName()
	}
	return "$"
}

type validator struct {
	visited map[NamedSchema]bool
}

func (v *validator) walk(s Schema, path string) error {
	switch t := s.(type) {
	case *RefSchema:
		target, err := t.Resolve()
		if err != nil {
			var se *SchemaError
			if errors.As(err, &se) {
				return newSchemaError(path, "%s", se.Msg)
			}
			return err
		}
		return v.walk(target, path)

	case *RecordSchema:
		if v.visited[t] {
			return nil
		}
		v.visited[t] = true
		for _, f := range t.fields {
			fieldPath := path + "." + f.name
			if err := v.walk(f.typ, fieldPath); err != nil {
				return err
			}
			if f.hasDefault {
				if err := ValidateDefault(f.typ, f.def); err != nil {
					return newSchemaError(fieldPath, "invalid default: %v", err)
				}
			}
		}

	case *EnumSchema:
		v.visited[t] = true

	case *FixedSchema:
		v.visited[t] = true

	case *ArraySchema:
		return v.walk(t.items, path+".items")

	case *MapSchema:
		return v.walk(t.values, path+".values")

	case *UnionSchema:
		seen := make(map[string]bool, len(t.types))
		for _, branch := range t.types {
			key := BranchName(branch)
			if seen[key] {
				return newSchemaError(path, "duplicate union branch %q", key)
			}
			seen[key] = true
			if err := v.walk(branch, path+"["+key+"]"); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateDefault checks a JSON-form default value against s. Union defaults
// must match the first branch.
func ValidateDefault(s Schema, def any) error {
	s, err := Resolve(s)
	if err != nil {
		return err
	}

	mismatch := func() error {
		return newSchemaError(describe(s), "default %v does not match type", def)
	}

	switch t := s.(type) {
	case *PrimitiveSchema:
		switch t.typ {
		case Null:
			if def != nil {
				return mismatch()
			}
		case Boolean:
			if _, ok := def.(bool); !ok {
				return mismatch()
			}
		case Int:
			n, ok := def.(json.Number)
			if !ok {
				return mismatch()
			}
			i, err := n.Int64()
			if err != nil || i < math.MinInt32 || i > math.MaxInt32 {
				return mismatch()
			}
		case Long:
			n, ok := def.(json.Number)
			if !ok {
				return mismatch()
			}
			if _, err := n.Int64(); err != nil {
				return mismatch()
			}
		case Float, Double:
			n, ok := def.(json.Number)
			if !ok {
				return mismatch()
			}
			if _, err := n.Float64(); err != nil {
				return mismatch()
			}
		case String:
			if _, ok := def.(string); !ok {
				return mismatch()
			}
		case Bytes:
			str, ok := def.(string)
			if !ok || !isLatin1(str) {
				return mismatch()
			}
		}

	case *EnumSchema:
		str, ok := def.(string)
		if !ok {
			return mismatch()
		}
		if _, ok := t.IndexOf(str); !ok {
			return mismatch()
		}

	case *FixedSchema:
		str, ok := def.(string)
		if !ok || !isLatin1(str) || utf8.RuneCountInString(str) != t.size {
			return mismatch()
		}

	case *ArraySchema:
		items, ok := def.([]any)
		if !ok {
			return mismatch()
		}
		for _, item := range items {
			if err := ValidateDefault(t.items, item); err != nil {
				return err
			}
		}

	case *MapSchema:
		entries, ok := def.(map[string]any)
		if !ok {
			return mismatch()
		}
		for _, val := range entries {
			if err := ValidateDefault(t.values, val); err != nil {
				return err
			}
		}

	case *UnionSchema:
		if len(t.types) == 0 {
			return mismatch()
		}
		return ValidateDefault(t.types[0], def)

	case *RecordSchema:
		obj, ok := def.(map[string]any)
		if !ok {
			return mismatch()
		}
		for _, f := range t.fields {
			val, present := obj[f.name]
			if !present {
				if !f.hasDefault {
					return newSchemaError(describe(s), "default is missing field %q", f.name)
				}
				continue
			}
			if err := ValidateDefault(f.typ, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// isLatin1 reports whether every code point fits in a byte, which is how
// bytes and fixed values are spelled in JSON.
func isLatin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}
