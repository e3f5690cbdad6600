package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentedSchema = `{
	"type": "record",
	"name": "Account",
	"namespace": "bank",
	"doc": "A customer account",
	"aliases": ["Acct"],
	"fields": [
		{"name": "id", "type": {"type": "fixed", "name": "AccountId", "size": 4}},
		{"name": "balance", "type": "long", "default": 0, "doc": "in cents"},
		{"name": "kind", "type": {"type": "enum", "name": "Kind", "symbols": ["CHECKING", "SAVINGS"], "default": "CHECKING"}},
		{"name": "opened", "type": {"type": "long", "logicalType": "timestamp-millis"}, "order": "descending"},
		{"name": "previous", "type": ["null", "AccountId"], "default": null}
	]
}`

func TestDocument_RoundTrip(t *testing.T) {
	// Arrange
	s := MustParse(documentedSchema)

	// Act
	doc, err := Document(s)
	require.NoError(t, err)
	reparsed, err := ParseBytes(doc)

	// Assert
	require.NoError(t, err)
	assert.True(t, Equal(s, reparsed))
	rec := reparsed.(*RecordSchema)
	assert.Equal(t, "A customer account", rec.Doc())
	assert.Equal(t, []string{"bank.Acct"}, rec.Aliases())
	balance, _ := rec.Field("balance")
	assert.Equal(t, json.Number("0"), balance.Default())
	assert.Equal(t, "in cents", balance.Doc())
	opened, _ := rec.Field("opened")
	assert.Equal(t, Descending, opened.Order())
	assert.Equal(t, "timestamp-millis", opened.Type().(*PrimitiveSchema).Prop("logicalType"))
	kind, _ := rec.Field("kind")
	def, ok := kind.Type().(*EnumSchema).Default()
	assert.True(t, ok)
	assert.Equal(t, "CHECKING", def)
}

func TestDocument_MarshalJSON(t *testing.T) {
	// Arrange
	s := MustParse(`{"type": "map", "values": ["null", "string"]}`)

	// Act
	data, err := json.Marshal(s)

	// Assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "map", "values": ["null", "string"]}`, string(data))
}

func TestDocumentIndent(t *testing.T) {
	data, err := DocumentIndent(MustPrimitive(Int), "", "  ")
	require.NoError(t, err)
	assert.Equal(t, `"int"`, string(data))
}
