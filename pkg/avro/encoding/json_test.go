package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

const accountEventSchema = `[
	{"type": "record", "name": "Opened", "fields": [{"name": "initialDeposit", "type": "long"}]},
	{"type": "record", "name": "Credited", "fields": [{"name": "amount", "type": "long"}]},
	{"type": "record", "name": "Debited", "fields": [{"name": "amount", "type": "long"}]}
]`

func TestMarshalJSON_AccountEventScenario(t *testing.T) {
	// Arrange
	s := schema.MustParse(accountEventSchema)
	opened := value.NewUnion(0, value.NewRecord(value.Field{Name: "initialDeposit", Value: value.Long(100)}))

	// Act
	data, err := MarshalJSON(s, opened)
	require.NoError(t, err)
	decoded, err := UnmarshalJSON(s, data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `{"Opened":{"initialDeposit":100}}`, string(data))
	assert.True(t, value.Equal(opened, decoded))
}

func TestMarshalJSON_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		value    value.Value
		expected string
	}{
		{"null", `"null"`, value.Null{}, `null`},
		{"boolean", `"boolean"`, value.Boolean(true), `true`},
		{"int", `"int"`, value.Int(-7), `-7`},
		{"long", `"long"`, value.Long(1 << 40), `1099511627776`},
		{"string", `"string"`, value.String("hi"), `"hi"`},
		{"nan", `"double"`, value.Double(math.NaN()), `"NaN"`},
		{"positive infinity", `"float"`, value.Float(float32(math.Inf(1))), `"Infinity"`},
		{"negative infinity", `"double"`, value.Double(math.Inf(-1)), `"-Infinity"`},
		{"enum", `{"type": "enum", "name": "E", "symbols": ["A", "B"]}`, value.Enum{Symbol: "B"}, `"B"`},
		{"bytes", `"bytes"`, value.Bytes("ab"), `"ab"`},
		{"array", `{"type": "array", "items": "int"}`, value.Array{value.Int(1), value.Int(2)}, `[1,2]`},
		{"map in key order", `{"type": "map", "values": "int"}`, value.Map{"b": value.Int(1), "a": value.Int(2)}, `{"a":2,"b":1}`},
		{"union null", `["null", "string"]`, value.NewUnion(0, value.Null{}), `null`},
		{"union string", `["null", "string"]`, value.NewUnion(1, value.String("x")), `{"string":"x"}`},
		{
			"union of named type uses full name",
			`["null", {"type": "fixed", "name": "Id", "namespace": "acme", "size": 1}]`,
			value.NewUnion(1, value.Fixed("z")),
			`{"acme.Id":"z"}`,
		},
		{
			"record",
			`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "int"}, {"name": "b", "type": ["null", "int"]}]}`,
			value.NewRecord(value.Field{Name: "a", Value: value.Int(1)}, value.Field{Name: "b", Value: value.NewUnion(0, value.Null{})}),
			`{"a":1,"b":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s := schema.MustParse(tt.schema)

			// Act
			data, err := MarshalJSON(s, tt.value)
			require.NoError(t, err)
			decoded, err := UnmarshalJSON(s, data)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
			assert.True(t, value.Equal(tt.value, decoded), "decoded %#v", decoded)
		})
	}
}

func TestJSON_BytesRoundTrip(t *testing.T) {
	// Arrange
	s := schema.MustPrimitive(schema.Bytes)
	raw := value.Bytes{0x00, 0x7f, 0x80, 0xff}

	// Act
	data, err := MarshalJSON(s, raw)
	require.NoError(t, err)
	decoded, err := UnmarshalJSON(s, data)

	// Assert
	require.NoError(t, err)
	assert.True(t, value.Equal(raw, decoded))
}

func TestUnmarshalJSON_RecordDefaults(t *testing.T) {
	// Arrange
	s := schema.MustParse(`{"type": "record", "name": "R", "fields": [
		{"name": "a", "type": "int"},
		{"name": "b", "type": "string", "default": "fallback"},
		{"name": "c", "type": ["null", "long"], "default": null}
	]}`)

	// Act
	v, err := UnmarshalJSON(s, []byte(`{"a": 5}`))

	// Assert
	require.NoError(t, err)
	expected := value.NewRecord(
		value.Field{Name: "a", Value: value.Int(5)},
		value.Field{Name: "b", Value: value.String("fallback")},
		value.Field{Name: "c", Value: value.NewUnion(0, value.Null{})},
	)
	assert.True(t, value.Equal(expected, v))
}

func TestUnmarshalJSON_Errors(t *testing.T) {
	record := `{"type": "record", "name": "R", "fields": [{"name": "a", "type": "int"}]}`
	tests := []struct {
		name   string
		schema string
		data   string
		kind   error
	}{
		{"string for int", `"int"`, `"1"`, ErrSchemaMismatch},
		{"float for int", `"int"`, `1.5`, ErrSchemaMismatch},
		{"object for array", `{"type": "array", "items": "int"}`, `{}`, ErrSchemaMismatch},
		{"unknown union branch", `["null", "int"]`, `{"long": 1}`, ErrSchemaMismatch},
		{"bare union value", `["null", "int"]`, `1`, ErrSchemaMismatch},
		{"two union keys", `["int", "string"]`, `{"int": 1, "string": "a"}`, ErrSchemaMismatch},
		{"empty union object", `["null", "int"]`, `{}`, ErrSchemaMismatch},
		{"null without null branch", `["int", "string"]`, `null`, ErrSchemaMismatch},
		{"unknown record field", record, `{"a": 1, "z": 2}`, ErrSchemaMismatch},
		{"missing record field", record, `{}`, ErrSchemaMismatch},
		{"unknown enum symbol", `{"type": "enum", "name": "E", "symbols": ["A"]}`, `"B"`, ErrSchemaMismatch},
		{"bytes above latin1", `"bytes"`, `"Ā"`, ErrSchemaMismatch},
		{"fixed wrong length", `{"type": "fixed", "name": "F", "size": 2}`, `"a"`, ErrSchemaMismatch},
		{"invalid float string", `"double"`, `"many"`, ErrSchemaMismatch},
		{"trailing value", `"int"`, `1 2`, ErrTrailingBytes},
		{"trailing brace", `"int"`, `1}`, ErrTrailingBytes},
		{"trailing comma", `"int"`, `1,2`, ErrTrailingBytes},
		{"trailing word", `"int"`, `1 x`, ErrTrailingBytes},
		{"trailing bracket after record", record, `{"a": 1}]`, ErrTrailingBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			v, err := UnmarshalJSON(schema.MustParse(tt.schema), []byte(tt.data))

			// Assert
			require.Error(t, err)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestUnmarshalJSON_TrailingWhitespace(t *testing.T) {
	// Act
	v, err := UnmarshalJSON(schema.MustParse(`"int"`), []byte("7 \n\t"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), v)
}

func TestUnmarshalJSON_RepeatedMapKeyKeepsLast(t *testing.T) {
	// Act
	v, err := UnmarshalJSON(schema.MustParse(`{"type": "map", "values": "int"}`), []byte(`{"a": 1, "a": 2}`))

	// Assert
	require.NoError(t, err)
	assert.True(t, value.Equal(value.Map{"a": value.Int(2)}, v))
}

func TestJSON_UnionBranchInNullNamespace(t *testing.T) {
	// Arrange
	s := schema.MustParse(`{"type": "record", "name": "Outer", "fields": [
		{"name": "a", "type": {"type": "record", "name": "Foo", "fields": [{"name": "x", "type": "int"}]}},
		{"name": "b", "type": {"type": "record", "name": "Inner", "namespace": "ns", "fields": [
			{"name": "u", "type": ["null", "Foo"]}
		]}}
	]}`)
	foo := value.NewRecord(value.Field{Name: "x", Value: value.Int(1)})
	v := value.NewRecord(
		value.Field{Name: "a", Value: foo},
		value.Field{Name: "b", Value: value.NewRecord(value.Field{Name: "u", Value: value.NewUnion(1, foo)})},
	)

	// Act
	data, err := MarshalJSON(s, v)
	require.NoError(t, err)
	decoded, err := UnmarshalJSON(s, []byte(`{"a": {"x": 1}, "b": {"u": {"Foo": {"x": 1}}}}`))

	// Assert
	assert.JSONEq(t, `{"a": {"x": 1}, "b": {"u": {"Foo": {"x": 1}}}}`, string(data))
	require.NoError(t, err)
	assert.True(t, value.Equal(v, decoded))
}

func TestCodecs_CrossCodecAgreement(t *testing.T) {
	// Arrange
	s := schema.MustParse(`{"type": "record", "name": "Order", "namespace": "shop", "fields": [
		{"name": "id", "type": "long"},
		{"name": "lines", "type": {"type": "array", "items": {"type": "record", "name": "Line", "fields": [
			{"name": "sku", "type": "string"},
			{"name": "qty", "type": "int"},
			{"name": "unit", "type": "float"}
		]}}},
		{"name": "tags", "type": {"type": "map", "values": "string"}},
		{"name": "status", "type": {"type": "enum", "name": "Status", "symbols": ["NEW", "PAID"]}},
		{"name": "coupon", "type": ["null", "string"]},
		{"name": "hash", "type": {"type": "fixed", "name": "Hash", "size": 2}}
	]}`)
	v := value.NewRecord(
		value.Field{Name: "id", Value: value.Long(9)},
		value.Field{Name: "lines", Value: value.Array{
			value.NewRecord(
				value.Field{Name: "sku", Value: value.String("A-1")},
				value.Field{Name: "qty", Value: value.Int(2)},
				value.Field{Name: "unit", Value: value.Float(1.25)},
			),
		}},
		value.Field{Name: "tags", Value: value.Map{"gift": value.String("yes")}},
		value.Field{Name: "status", Value: value.Enum{Symbol: "PAID"}},
		value.Field{Name: "coupon", Value: value.NewUnion(1, value.String("SAVE"))},
		value.Field{Name: "hash", Value: value.Fixed{0x01, 0xfe}},
	)
	binaryCodec, jsonCodec := NewBinaryCodec(), NewJSONCodec()

	// Act
	bin, err := binaryCodec.Marshal(s, v)
	require.NoError(t, err)
	viaBinary, err := binaryCodec.Unmarshal(s, bin)
	require.NoError(t, err)
	jsonOfBinary, err := jsonCodec.Marshal(s, viaBinary)
	require.NoError(t, err)
	left, err := jsonCodec.Unmarshal(s, jsonOfBinary)
	require.NoError(t, err)

	jsonOfOriginal, err := jsonCodec.Marshal(s, v)
	require.NoError(t, err)
	right, err := jsonCodec.Unmarshal(s, jsonOfOriginal)
	require.NoError(t, err)

	// Assert
	assert.True(t, value.Equal(left, right))
	assert.True(t, value.Equal(v, right))
	assert.Equal(t, string(jsonOfOriginal), string(jsonOfBinary))
}

func TestCodecByName(t *testing.T) {
	c, ok := CodecByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = CodecByName("binary")
	require.True(t, ok)
	assert.Equal(t, "binary", c.Name())

	_, ok = CodecByName("xml")
	assert.False(t, ok)
}
