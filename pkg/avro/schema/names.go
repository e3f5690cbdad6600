package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Names maps full names to named schemas. A registry is filled while a schema
// is parsed or derived and is then only read, so references resolved through
// it stay stable for the lifetime of the schema.
type Names struct {
	mu    sync.RWMutex
	types map[string]NamedSchema
}

// NewNames creates an empty registry.
func NewNames() *Names {
	return &Names{types: make(map[string]NamedSchema)}
}

// Register adds a named schema under its full name and aliases. Registering
// the same definition twice is a no-op; registering a different definition
// under a taken name fails.
func (n *Names) Register(s NamedSchema) error {
	keys := append([]string{s.FullName()}, s.Aliases()...)

	n.mu.RLock()
	taken := make(map[string]NamedSchema)
	for _, key := range keys {
		if existing, ok := n.types[key]; ok && existing != s {
			taken[key] = existing
		}
	}
	n.mu.RUnlock()

	// Canonical forms resolve references through the registry, so they are
	// computed without holding the lock.
	for key, existing := range taken {
		if canonicalString(existing) != canonicalString(s) {
			return newSchemaError(key, "name already defined by a different schema")
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, key := range keys {
		if _, ok := n.types[key]; !ok {
			n.types[key] = s
		}
	}
	return nil
}

// Lookup returns the schema registered under fullName.
func (n *Names) Lookup(fullName string) (NamedSchema, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.types[fullName]
	return s, ok
}

// FullNames returns the registered names in sorted order.
func (n *Names) FullNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, 0, len(n.types))
	for k := range n.types {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ref returns a reference to fullName resolved through this registry.
func (n *Names) Ref(fullName string) *RefSchema {
	return &RefSchema{fullName: fullName, names: n}
}

// RefSchema refers to a named type by full name.
type RefSchema struct {
	fullName string
	// fallback is tried when fullName is missing; the parser sets it to the
	// unqualified spelling of a reference made inside a namespace.
	fallback string
	names    *Names
}

// Type returns Ref.
func (r *RefSchema) Type() Type { return Ref }

// FullName returns the referenced full name.
func (r *RefSchema) FullName() string { return r.fullName }

// Resolve looks the referenced schema up.
func (r *RefSchema) Resolve() (NamedSchema, error) {
	if r.names != nil {
		if s, ok := r.names.Lookup(r.fullName); ok {
			return s, nil
		}
		if r.fallback != "" {
			if s, ok := r.names.Lookup(r.fallback); ok {
				return s, nil
			}
		}
	}
	return nil, newSchemaError(r.fullName, "unresolved reference to named type %q", r.fullName)
}

// String returns the canonical form of the referenced schema.
func (r *RefSchema) String() string { return canonicalString(r) }

// Resolve follows s when it is a reference and returns it unchanged otherwise.
func Resolve(s Schema) (Schema, error) {
	ref, ok := s.(*RefSchema)
	if !ok {
		return s, nil
	}
	target, err := ref.Resolve()
	if err != nil {
		return nil, err
	}
	return target, nil
}

// MustResolve is like Resolve but panics when a reference is dangling.
func MustResolve(s Schema) Schema {
	out, err := Resolve(s)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return out
}
