package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

func TestModule_RegisterAndSum(t *testing.T) {
	// Arrange
	m := NewModule()
	require.NoError(t, m.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64()))))
	require.NoError(t, m.Register("AccountEvent", Struct("Credited", Field("amount", Uint64()))))

	// Act
	sum, err := m.Sum("AccountEvent")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "AccountEvent", sum.Name())
	require.Len(t, sum.Variants(), 2)
	assert.Equal(t, "Opened", sum.Variants()[0].Name())
	assert.Equal(t, "Credited", sum.Variants()[1].Name())
	assert.Equal(t, []string{"AccountEvent"}, m.Bases())
}

func TestModule_DuplicateRegistrationIsIdempotent(t *testing.T) {
	// Arrange
	m := NewModule()
	require.NoError(t, m.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64()))))

	// Act
	err := m.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64())))

	// Assert
	require.NoError(t, err)
	sum, err := m.Sum("AccountEvent")
	require.NoError(t, err)
	assert.Len(t, sum.Variants(), 1)
}

func TestModule_ConflictingRegistration(t *testing.T) {
	// Arrange
	m := NewModule()
	require.NoError(t, m.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64()))))

	// Act
	err := m.Register("AccountEvent", Struct("Opened", Field("amount", Uint64())))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingVariant)
}

func TestModule_Merge(t *testing.T) {
	// Arrange
	first := NewModule()
	require.NoError(t, first.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64()))))
	second := NewModule()
	require.NoError(t, second.Register("AccountEvent", Struct("Opened", Field("initialDeposit", Uint64()))))
	require.NoError(t, second.Register("AccountEvent", Struct("Debited", Field("amount", Uint64()))))

	// Act
	err := first.Merge(second)

	// Assert
	require.NoError(t, err)
	sum, err := first.Sum("AccountEvent")
	require.NoError(t, err)
	s, err := Derive(sum)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"name":"Opened","type":"record","fields":[{"name":"initialDeposit","type":"long"}]},{"name":"Debited","type":"record","fields":[{"name":"amount","type":"long"}]}]`,
		s.String())
}

func TestModule_MergeConflict(t *testing.T) {
	first := NewModule()
	require.NoError(t, first.Register("E", Struct("A", Field("x", Int32()))))
	second := NewModule()
	require.NoError(t, second.Register("E", Struct("A", Field("x", Int64()))))

	err := first.Merge(second)

	assert.ErrorIs(t, err, ErrConflictingVariant)
}

func TestModule_UnknownBase(t *testing.T) {
	_, err := NewModule().Sum("Missing")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestSumBinding_Errors(t *testing.T) {
	s, err := Derive(accountEvent())
	require.NoError(t, err)
	binding, err := Bind(s)
	require.NoError(t, err)

	t.Run("unknown tag", func(t *testing.T) {
		_, err := binding.Wrap("Closed", value.NewRecord())
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})

	t.Run("branch out of range", func(t *testing.T) {
		_, _, err := binding.Unwrap(value.NewUnion(5, value.NewRecord()))
		assert.ErrorIs(t, err, ErrUnknownVariant)
	})

	t.Run("not a union", func(t *testing.T) {
		_, _, err := binding.Unwrap(value.Long(1))
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})

	t.Run("bind non-union", func(t *testing.T) {
		rec, err := Derive(Struct("Solo"))
		require.NoError(t, err)
		_, err = Bind(rec)
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})
}
