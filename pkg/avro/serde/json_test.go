package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

func TestJSONSerializer_RoundTrip(t *testing.T) {
	// Arrange
	serializer, err := NewJSONSerializer(schema.MustParse(orderV1))
	require.NoError(t, err)

	// Act
	text, err := serializer.Serialize(testOrder())
	require.NoError(t, err)
	decoded, err := serializer.Deserialize(text)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","qty":2}`, text)
	assert.True(t, value.Equal(testOrder(), decoded))
}

func TestJSONSerializer_Errors(t *testing.T) {
	// Arrange
	serializer, err := NewJSONSerializer(schema.MustParse(orderV1))
	require.NoError(t, err)

	// Act
	_, serErr := serializer.Serialize(value.Int(1))
	_, desErr := serializer.Deserialize(`{"id":"a"}`)

	// Assert
	assert.Error(t, serErr)
	assert.Error(t, desErr)
}

func TestNewJSONSerializer_RejectsUnresolvedSchema(t *testing.T) {
	// Arrange
	names := schema.NewNames()
	dangling := names.Ref("shop.Missing")

	// Act
	_, err := NewJSONSerializer(dangling)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalidDefinition)
}
