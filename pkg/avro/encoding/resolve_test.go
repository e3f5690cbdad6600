package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

func TestResolveBinary_RecordEvolution(t *testing.T) {
	// Arrange
	writer := schema.MustParse(`{"type": "record", "name": "User", "fields": [
		{"name": "id", "type": "int"},
		{"name": "name", "type": "string"},
		{"name": "legacy", "type": "long"}
	]}`)
	reader := schema.MustParse(`{"type": "record", "name": "User", "fields": [
		{"name": "full_name", "type": "string", "aliases": ["name"]},
		{"name": "id", "type": "long"},
		{"name": "favorite_state", "type": ["null", "string"], "default": null}
	]}`)
	data, err := MarshalBinary(writer, value.NewRecord(
		value.Field{Name: "id", Value: value.Int(7)},
		value.Field{Name: "name", Value: value.String("ann")},
		value.Field{Name: "legacy", Value: value.Long(99)},
	))
	require.NoError(t, err)

	// Act
	v, err := ResolveBinary(reader, writer, data)

	// Assert
	require.NoError(t, err)
	rec := v.(value.Record)
	require.Len(t, rec.Fields, 3)
	assert.Equal(t, "full_name", rec.Fields[0].Name)
	assert.Equal(t, value.String("ann"), rec.Fields[0].Value)
	assert.Equal(t, value.Long(7), rec.Fields[1].Value)
	assert.True(t, value.Equal(value.NewUnion(0, value.Null{}), rec.Fields[2].Value))
}

func TestResolve_Promotions(t *testing.T) {
	tests := []struct {
		name     string
		reader   string
		writer   string
		in       value.Value
		expected value.Value
	}{
		{"int to long", `"long"`, `"int"`, value.Int(3), value.Long(3)},
		{"int to float", `"float"`, `"int"`, value.Int(3), value.Float(3)},
		{"int to double", `"double"`, `"int"`, value.Int(3), value.Double(3)},
		{"long to float", `"float"`, `"long"`, value.Long(4), value.Float(4)},
		{"long to double", `"double"`, `"long"`, value.Long(4), value.Double(4)},
		{"float to double", `"double"`, `"float"`, value.Float(1.5), value.Double(1.5)},
		{"writer type into reader union", `["null", "long"]`, `"int"`, value.Int(1), value.NewUnion(1, value.Long(1))},
		{"exact branch preferred", `["double", "int"]`, `"int"`, value.Int(1), value.NewUnion(1, value.Int(1))},
		{"writer union into plain reader", `"string"`, `["null", "string"]`, value.NewUnion(1, value.String("s")), value.String("s")},
		{"unknown enum symbol uses reader default", `{"type": "enum", "name": "E", "symbols": ["A", "B"], "default": "A"}`, `{"type": "enum", "name": "E", "symbols": ["A", "B", "C"]}`, value.Enum{Symbol: "C"}, value.Enum{Symbol: "A"}},
		{"array items", `{"type": "array", "items": "long"}`, `{"type": "array", "items": "int"}`, value.Array{value.Int(1)}, value.Array{value.Long(1)}},
		{"map values", `{"type": "map", "values": "double"}`, `{"type": "map", "values": "float"}`, value.Map{"k": value.Float(2)}, value.Map{"k": value.Double(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			v, err := Resolve(schema.MustParse(tt.reader), schema.MustParse(tt.writer), tt.in)

			// Assert
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.expected, v), "got %#v", v)
		})
	}
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name   string
		reader string
		writer string
		in     value.Value
	}{
		{"long to int", `"int"`, `"long"`, value.Long(1)},
		{"string to bytes", `"bytes"`, `"string"`, value.String("x")},
		{"null branch into string", `"string"`, `["null", "string"]`, value.NewUnion(0, value.Null{})},
		{"reader field without default", `{"type": "record", "name": "R", "fields": [{"name": "x", "type": "int"}]}`, `{"type": "record", "name": "R", "fields": []}`, value.NewRecord()},
		{"unknown symbol without default", `{"type": "enum", "name": "E", "symbols": ["A"]}`, `{"type": "enum", "name": "E", "symbols": ["A", "B"]}`, value.Enum{Symbol: "B"}},
		{"fixed size", `{"type": "fixed", "name": "F", "size": 2}`, `{"type": "fixed", "name": "F", "size": 3}`, value.Fixed{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(schema.MustParse(tt.reader), schema.MustParse(tt.writer), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}

func TestDefaultValue(t *testing.T) {
	// Arrange
	s := schema.MustParse(`{"type": "record", "name": "Defaults", "fields": [
		{"name": "inner", "type": {"type": "record", "name": "Inner", "fields": [
			{"name": "n", "type": "int"},
			{"name": "flag", "type": "boolean", "default": true}
		]}, "default": {"n": 4}}
	]}`)
	field, ok := s.(*schema.RecordSchema).Field("inner")
	require.True(t, ok)

	// Act
	v, err := DefaultValue(field.Type(), field.Default())

	// Assert
	require.NoError(t, err)
	expected := value.NewRecord(
		value.Field{Name: "n", Value: value.Int(4)},
		value.Field{Name: "flag", Value: value.Boolean(true)},
	)
	assert.True(t, value.Equal(expected, v))
}
