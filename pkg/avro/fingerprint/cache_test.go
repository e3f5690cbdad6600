package fingerprint

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

func TestCache_Get(t *testing.T) {
	// Arrange
	c := NewCache()
	a := schema.MustParse(`{"type": "record", "name": "R", "doc": "one", "fields": [{"name": "x", "type": "int"}]}`)
	b := schema.MustParse(`{"type": "record", "name": "R", "fields": [{"name": "x", "type": "int"}]}`)

	// Act
	pa, err := c.Get(a)
	require.NoError(t, err)
	pb, err := c.Get(b)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, pa, pb)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ConcurrentGet(t *testing.T) {
	// Arrange
	c := NewCache()
	s := schema.MustPrimitive(schema.Double)
	expected, err := Fingerprint64(s)
	require.NoError(t, err)

	// Act
	var wg sync.WaitGroup
	results := make([]uint64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.Get(s)
			if err == nil {
				results[i] = p.Fingerprint64
			}
		}(i)
	}
	wg.Wait()

	// Assert
	for _, fp := range results {
		assert.Equal(t, expected, fp)
	}
	assert.Equal(t, 1, c.Len())
}

func TestCache_Get_CallerOwnsCanonical(t *testing.T) {
	// Arrange
	c := NewCache()
	s := schema.MustPrimitive(schema.Int)
	first, err := c.Get(s)
	require.NoError(t, err)

	// Act
	first.Canonical[1] = 'X'
	second, err := c.Get(s)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `"int"`, string(second.Canonical))
	assert.Equal(t, first.Fingerprint64, second.Fingerprint64)
}

func TestCache_Error(t *testing.T) {
	c := NewCache()
	_, err := c.Get(schema.NewNames().Ref("Missing"))
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}
