package derive

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Module collects the variants of polymorphic base types, so that several
// packages can contribute variants of the same sum type.
//
// Registering a variant whose tag is already taken is a no-op when the
// description is identical and fails with ErrConflictingVariant otherwise.
type Module struct {
	mu    sync.RWMutex
	bases map[string]*variantSet
}

type variantSet struct {
	order []string
	byTag map[string]*StructDesc
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{bases: make(map[string]*variantSet)}
}

// Register adds variant to base. The variant name is its tag.
func (m *Module) Register(base string, variant *StructDesc) error {
	if variant == nil {
		return newDerivationError(ErrUnsupportedShape, base, "nil variant")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.bases[base]
	if !ok {
		set = &variantSet{byTag: make(map[string]*StructDesc)}
		m.bases[base] = set
	}
	tag := variant.name
	if existing, ok := set.byTag[tag]; ok {
		if existing == variant || reflect.DeepEqual(existing, variant) {
			return nil
		}
		return newDerivationError(ErrConflictingVariant, base+"."+tag, "variant is already registered with a different shape")
	}
	set.order = append(set.order, tag)
	set.byTag[tag] = variant
	return nil
}

// Merge registers every variant of other into m, keeping other's order for
// new variants.
func (m *Module) Merge(other *Module) error {
	if other == m {
		return nil
	}
	other.mu.RLock()
	type pending struct {
		base    string
		variant *StructDesc
	}
	var todo []pending
	for _, base := range sortedBases(other.bases) {
		set := other.bases[base]
		for _, tag := range set.order {
			todo = append(todo, pending{base, set.byTag[tag]})
		}
	}
	other.mu.RUnlock()

	for _, p := range todo {
		if err := m.Register(p.base, p.variant); err != nil {
			return fmt.Errorf("failed to merge module: %w", err)
		}
	}
	return nil
}

// Sum returns the sum type of base with variants in registration order.
func (m *Module) Sum(base string) (*SumDesc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.bases[base]
	if !ok || len(set.order) == 0 {
		return nil, newDerivationError(ErrUnknownVariant, base, "no variants registered")
	}
	variants := make([]*StructDesc, 0, len(set.order))
	for _, tag := range set.order {
		variants = append(variants, set.byTag[tag])
	}
	return Sum(base, variants...), nil
}

// Bases returns the registered base names in sorted order.
func (m *Module) Bases() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedBases(m.bases)
}

func sortedBases(bases map[string]*variantSet) []string {
	out := make([]string, 0, len(bases))
	for b := range bases {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
