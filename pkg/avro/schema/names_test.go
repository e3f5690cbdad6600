package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Register(t *testing.T) {
	t.Run("registers full name and aliases", func(t *testing.T) {
		// Arrange
		names := NewNames()
		fixed, err := NewFixedSchema("Id", 4, WithNamespace("acme"), WithAliases("LegacyId"))
		require.NoError(t, err)

		// Act
		err = names.Register(fixed)

		// Assert
		require.NoError(t, err)
		byName, ok := names.Lookup("acme.Id")
		require.True(t, ok)
		assert.Same(t, fixed, byName)
		byAlias, ok := names.Lookup("acme.LegacyId")
		require.True(t, ok)
		assert.Same(t, fixed, byAlias)
	})

	t.Run("identical redefinition is accepted", func(t *testing.T) {
		// Arrange
		names := NewNames()
		a, _ := NewFixedSchema("Id", 4)
		b, _ := NewFixedSchema("Id", 4)
		require.NoError(t, names.Register(a))

		// Act
		err := names.Register(b)

		// Assert
		assert.NoError(t, err)
	})

	t.Run("conflicting redefinition is rejected", func(t *testing.T) {
		// Arrange
		names := NewNames()
		a, _ := NewFixedSchema("Id", 4)
		b, _ := NewFixedSchema("Id", 8)
		require.NoError(t, names.Register(a))

		// Act
		err := names.Register(b)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})
}

func TestRefSchema_Resolve(t *testing.T) {
	// Arrange
	names := NewNames()
	ref := names.Ref("acme.Color")
	_, err := ref.Resolve()
	require.Error(t, err)

	enum, err := NewEnumSchema("Color", []string{"RED"}, WithNamespace("acme"))
	require.NoError(t, err)
	require.NoError(t, names.Register(enum))

	// Act
	resolved, err := ref.Resolve()

	// Assert
	require.NoError(t, err)
	assert.Same(t, enum, resolved)
	assert.Equal(t, Ref, ref.Type())
	assert.Equal(t, enum.String(), ref.String())
}

func TestNewRecordSchema_Programmatic(t *testing.T) {
	// Arrange
	names := NewNames()
	next, err := NewUnionSchema([]Schema{MustPrimitive(Null), names.Ref("List")})
	require.NoError(t, err)
	value, err := NewField("value", MustPrimitive(Int))
	require.NoError(t, err)
	link, err := NewField("next", next, WithDefault(nil))
	require.NoError(t, err)

	// Act
	list, err := NewRecordSchema("List", []*Field{value, link})
	require.NoError(t, err)
	require.NoError(t, names.Register(list))

	// Assert
	require.NoError(t, Validate(list))
	assert.Equal(t, 1, list.Fields()[1].Index())
	assert.Equal(t, `{"name":"List","type":"record","fields":[{"name":"value","type":"int"},{"name":"next","type":["null","List"]}]}`, list.String())
}

func TestValidate_InvalidDefault(t *testing.T) {
	// Arrange
	f, err := NewField("count", MustPrimitive(Int), WithDefault("ten"))
	require.NoError(t, err)
	rec, err := NewRecordSchema("Counter", []*Field{f})
	require.NoError(t, err)

	// Act
	err = Validate(rec)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	assert.Contains(t, err.Error(), "Counter.count")
}

func TestValidate_DanglingReference(t *testing.T) {
	// Arrange
	f, err := NewField("other", NewNames().Ref("Missing"))
	require.NoError(t, err)
	rec, err := NewRecordSchema("Holder", []*Field{f})
	require.NoError(t, err)

	// Act
	err = Validate(rec)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestBranchName(t *testing.T) {
	fixed, _ := NewFixedSchema("Hash", 16, WithNamespace("x"))
	arr, _ := NewArraySchema(MustPrimitive(String))

	assert.Equal(t, "int", BranchName(MustPrimitive(Int)))
	assert.Equal(t, "x.Hash", BranchName(fixed))
	assert.Equal(t, "array", BranchName(arr))
	assert.Equal(t, "a.B", BranchName(NewNames().Ref("a.B")))
}
