package fingerprint

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// Cache memoizes fingerprint pairs keyed by canonical form. Concurrent misses
// for the same canonical form are collapsed into one computation.
type Cache interface {
	// Get returns the fingerprint pair of s. The returned canonical bytes
	// belong to the caller.
	Get(s schema.Schema) (Pair, error)
	// Len returns the number of cached entries.
	Len() int
}

type cache struct {
	mu      sync.RWMutex
	entries map[string]Pair
	group   singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() Cache {
	return &cache{entries: make(map[string]Pair)}
}

func (c *cache) Get(s schema.Schema) (Pair, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	key := string(canonical)

	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		v, _, _ := c.group.Do(key, func() (any, error) {
			p := pairOf([]byte(key))
			c.mu.Lock()
			c.entries[key] = p
			c.mu.Unlock()
			return p, nil
		})
		p = v.(Pair)
	}
	// The cached bytes stay private; each caller gets its own canonical form.
	p.Canonical = canonical
	return p, nil
}

func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
