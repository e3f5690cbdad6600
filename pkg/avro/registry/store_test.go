package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/compatibility"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/fingerprint"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

const (
	userV1 = `{"type":"record","name":"User","namespace":"example.avro","fields":[{"name":"name","type":"string"}]}`
	userV2 = `{"type":"record","name":"User","namespace":"example.avro","fields":[
		{"name":"name","type":"string"},
		{"name":"favorite_state","type":["null","string"],"default":null}
	]}`
	userRequiredState = `{"type":"record","name":"User","namespace":"example.avro","fields":[
		{"name":"name","type":"string"},
		{"name":"favorite_state","type":"string"}
	]}`
)

func TestStore_Register(t *testing.T) {
	// Arrange
	store := NewStore()
	s := schema.MustParse(userV1)

	// Act
	entry, err := store.Register(s)

	// Assert
	require.NoError(t, err)
	fp, err := fingerprint.Fingerprint64(s)
	require.NoError(t, err)
	assert.Equal(t, fp, entry.Fingerprint)
	assert.Equal(t, `{"name":"example.avro.User","type":"record","fields":[{"name":"name","type":"string"}]}`, string(entry.Canonical))

	byFP, ok := store.Lookup(fp)
	require.True(t, ok)
	assert.Equal(t, entry.Canonical, byFP.Canonical)
	bySHA, ok := store.LookupSHA256(entry.SHA256)
	require.True(t, ok)
	assert.Equal(t, entry.Fingerprint, bySHA.Fingerprint)
}

func TestStore_Register_IdempotentByFingerprint(t *testing.T) {
	// Arrange
	store := NewStore()
	first := schema.MustParse(userV1)
	// Same canonical form, different doc and whitespace.
	second := schema.MustParse(`{"type": "record", "name": "User", "namespace": "example.avro", "doc": "a user",
		"fields": [{"name": "name", "type": "string", "doc": "full name"}]}`)

	// Act
	e1, err1 := store.Register(first)
	e2, err2 := store.Register(second)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, e1.Fingerprint, e2.Fingerprint)
	assert.Same(t, e1.Schema, e2.Schema)
}

func TestStore_EntriesCarryOwnCanonical(t *testing.T) {
	// Arrange
	store := NewStore()
	s := schema.MustParse(userV1)
	entry, err := store.Register(s)
	require.NoError(t, err)
	want := string(entry.Canonical)

	// Act
	entry.Canonical[0] = 'X'
	looked, ok := store.Lookup(entry.Fingerprint)
	looked.Canonical[1] = 'Y'
	again, err := store.Register(s)

	// Assert
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, want, string(again.Canonical))
}

func TestStore_Lookup_Unknown(t *testing.T) {
	store := NewStore()

	_, ok := store.Lookup(42)
	assert.False(t, ok)
	_, ok = store.LookupSHA256([32]byte{1})
	assert.False(t, ok)
}

func TestStore_Register_InvalidSchema(t *testing.T) {
	store := NewStore()
	names := schema.NewNames()

	_, err := store.Register(names.Ref("Missing"))

	assert.ErrorIs(t, err, schema.ErrInvalidDefinition)
}

func TestStore_RegisterSubject_Versions(t *testing.T) {
	// Arrange
	store := NewStore()

	// Act
	v1, err := store.RegisterSubject("users-value", schema.MustParse(userV1))
	require.NoError(t, err)
	v2, err := store.RegisterSubject("users-value", schema.MustParse(userV2))
	require.NoError(t, err)
	again, err := store.RegisterSubject("users-value", schema.MustParse(userV1))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, 1, again.Version)

	latest, err := store.Latest("users-value")
	require.NoError(t, err)
	assert.Equal(t, v2.Entry.Fingerprint, latest.Entry.Fingerprint)

	first, err := store.Version("users-value", 1)
	require.NoError(t, err)
	assert.Equal(t, v1.Entry.Fingerprint, first.Entry.Fingerprint)

	versions, err := store.Versions("users-value")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, versions)
	assert.Equal(t, []string{"users-value"}, store.Subjects())
}

func TestStore_RegisterSubject_RejectsIncompatible(t *testing.T) {
	// Arrange
	store := NewStore()
	_, err := store.RegisterSubject("users-value", schema.MustParse(userV1))
	require.NoError(t, err)

	// Act
	_, err = store.RegisterSubject("users-value", schema.MustParse(userRequiredState))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompatible)
	var incompatible *IncompatibleError
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, compatibility.Backward, incompatible.Level)
	require.Len(t, incompatible.Result.Incompatibilities, 1)
	assert.Equal(t, compatibility.ReaderFieldMissingDefaultValue, incompatible.Result.Incompatibilities[0].Type)

	versions, err := store.Versions("users-value")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
}

func TestStore_RegisterSubject_LevelOverride(t *testing.T) {
	// Arrange
	store := NewStore(WithDefaultLevel(compatibility.Full))
	store.SetLevel("users-value", compatibility.None)
	_, err := store.RegisterSubject("users-value", schema.MustParse(userV1))
	require.NoError(t, err)

	// Act
	v, err := store.RegisterSubject("users-value", schema.MustParse(userRequiredState))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, v.Version)
	assert.Equal(t, compatibility.None, store.Level("users-value"))
	assert.Equal(t, compatibility.Full, store.Level("other-value"))
}

func TestStore_RegisterSubject_EmptySubject(t *testing.T) {
	_, err := NewStore().RegisterSubject("", schema.MustParse(userV1))
	assert.Error(t, err)
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Latest("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Version("missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Versions("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ConcurrentRegister(t *testing.T) {
	// Arrange
	cache := fingerprint.NewCache()
	store := NewStore(WithFingerprintCache(cache))
	var wg sync.WaitGroup
	entries := make([]Entry, 16)

	// Act
	for i := range entries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := store.Register(schema.MustParse(userV2))
			assert.NoError(t, err)
			entries[i] = e
		}(i)
	}
	wg.Wait()

	// Assert
	for _, e := range entries {
		assert.Equal(t, entries[0].Fingerprint, e.Fingerprint)
	}
	assert.Equal(t, 1, cache.Len())
}
