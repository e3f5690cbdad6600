package schema

import (
	"testing"

	hambavro "github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		expected string
	}{
		{
			name:     "primitive simple form",
			schema:   `"string"`,
			expected: `"string"`,
		},
		{
			name:     "primitive object form",
			schema:   `{"type": "int"}`,
			expected: `"int"`,
		},
		{
			name:     "logical type is stripped",
			schema:   `{"type": "long", "logicalType": "timestamp-millis"}`,
			expected: `"long"`,
		},
		{
			name: "record with full names and stripped attributes",
			schema: `{
				"type": "record",
				"name": "User",
				"namespace": "example",
				"doc": "a user",
				"aliases": ["Person"],
				"fields": [
					{"name": "name", "type": "string", "default": "anon", "doc": "display name"},
					{"name": "age", "type": "int", "order": "descending"}
				]
			}`,
			expected: `{"name":"example.User","type":"record","fields":[{"name":"name","type":"string"},{"name":"age","type":"int"}]}`,
		},
		{
			name:     "attribute order is normalized",
			schema:   `{ "fields": [ {"type": "int", "name": "a"} ], "name": "R", "type": "record" }`,
			expected: `{"name":"R","type":"record","fields":[{"name":"a","type":"int"}]}`,
		},
		{
			name:     "enum",
			schema:   `{"type": "enum", "name": "Color", "symbols": ["RED", "GREEN"], "default": "RED"}`,
			expected: `{"name":"Color","type":"enum","symbols":["RED","GREEN"]}`,
		},
		{
			name:     "fixed",
			schema:   `{"type": "fixed", "name": "md5", "namespace": "x", "size": 16}`,
			expected: `{"name":"x.md5","type":"fixed","size":16}`,
		},
		{
			name:     "nested array and map",
			schema:   `{"type": "array", "items": {"type": "map", "values": "bytes"}}`,
			expected: `{"type":"array","items":{"type":"map","values":"bytes"}}`,
		},
		{
			name:     "union",
			schema:   `["null", {"type": "string"}, "long"]`,
			expected: `["null","string","long"]`,
		},
		{
			name: "repeated named type becomes a reference",
			schema: `{"type": "record", "name": "P", "fields": [
				{"name": "a", "type": {"type": "fixed", "name": "F", "size": 2}},
				{"name": "b", "type": "F"}
			]}`,
			expected: `{"name":"P","type":"record","fields":[{"name":"a","type":{"name":"F","type":"fixed","size":2}},{"name":"b","type":"F"}]}`,
		},
		{
			name: "recursive record",
			schema: `{"type": "record", "name": "LinkedList", "fields": [
				{"name": "value", "type": "int"},
				{"name": "next", "type": ["null", "LinkedList"], "default": null}
			]}`,
			expected: `{"name":"LinkedList","type":"record","fields":[{"name":"value","type":"int"},{"name":"next","type":["null","LinkedList"]}]}`,
		},
		{
			name: "nested record inherits namespace",
			schema: `{"type": "record", "name": "Outer", "namespace": "a.b", "fields": [
				{"name": "in", "type": {"type": "record", "name": "Inner", "fields": []}},
				{"name": "again", "type": "Inner"}
			]}`,
			expected: `{"name":"a.b.Outer","type":"record","fields":[{"name":"in","type":{"name":"a.b.Inner","type":"record","fields":[]}},{"name":"again","type":"a.b.Inner"}]}`,
		},
		{
			name: "error type renders as record",
			schema: `{"type": "error", "name": "Failure", "fields": [{"name": "message", "type": "string"}]}`,
			expected: `{"name":"Failure","type":"record","fields":[{"name":"message","type":"string"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			s, err := Parse(tt.schema)
			require.NoError(t, err)

			// Act
			canonical, err := Canonical(s)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(canonical))
			assert.Equal(t, tt.expected, s.String())
		})
	}
}

func TestCanonical_ReferenceIntoNullNamespace(t *testing.T) {
	// Arrange
	s, err := Parse(`{"type": "record", "name": "Outer", "namespace": "a", "fields": [
		{"name": "in", "type": {"type": "record", "name": "Inner", "namespace": "", "fields": []}},
		{"name": "again", "type": "Inner"}
	]}`)
	require.NoError(t, err)

	// Act
	canonical, err := Canonical(s)

	// Assert
	require.NoError(t, err)
	assert.Equal(t,
		`{"name":"a.Outer","type":"record","fields":[{"name":"in","type":{"name":"Inner","type":"record","fields":[]}},{"name":"again","type":"Inner"}]}`,
		string(canonical))
}

func TestBranchName_ReferenceIntoNullNamespace(t *testing.T) {
	// Arrange
	s, err := Parse(`{"type": "record", "name": "Outer", "fields": [
		{"name": "a", "type": {"type": "record", "name": "Foo", "fields": []}},
		{"name": "b", "type": {"type": "record", "name": "Inner", "namespace": "ns", "fields": [
			{"name": "u", "type": ["null", "Foo"]}
		]}}
	]}`)
	require.NoError(t, err)
	inner, ok := s.(*RecordSchema).Fields()[1].Type().(*RecordSchema)
	require.True(t, ok)
	union, ok := inner.Fields()[0].Type().(*UnionSchema)
	require.True(t, ok)

	// Act
	idx, found := union.IndexOf("Foo")
	_, qualified := union.IndexOf("ns.Foo")

	// Assert
	assert.True(t, found)
	assert.Equal(t, 1, idx)
	assert.False(t, qualified)
	assert.Equal(t, "Foo", BranchName(union.Types()[1]))
	canonical, err := Canonical(s)
	require.NoError(t, err)
	assert.Contains(t, string(canonical), `"type":["null","Foo"]`)
}

func TestParse_DuplicateBranchSpelledTwoWays(t *testing.T) {
	// Act
	_, err := Parse(`{"type": "record", "name": "Outer", "namespace": "ns", "fields": [
		{"name": "u", "type": ["Later", "ns.Later"]},
		{"name": "l", "type": {"type": "record", "name": "Later", "fields": []}}
	]}`)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCanonical_DanglingReference(t *testing.T) {
	// Arrange
	names := NewNames()
	ref := names.Ref("missing.Type")

	// Act
	_, err := Canonical(ref)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	assert.Equal(t, `"missing.Type"`, ref.String())
}

func TestEqual(t *testing.T) {
	a := MustParse(`{"type": "record", "name": "R", "doc": "first", "fields": [{"name": "x", "type": "int", "default": 1}]}`)
	b := MustParse(`{"fields": [{"type": "int", "name": "x"}], "type": "record", "name": "R"}`)
	c := MustParse(`{"type": "record", "name": "R", "fields": [{"name": "x", "type": "long"}]}`)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.True(t, Equal(MustPrimitive(Int), MustParse(`{"type":"int"}`)))
}

func TestCanonical_MatchesHamba(t *testing.T) {
	schemas := []string{
		`"null"`,
		`"double"`,
		`{"type": "record", "name": "User", "namespace": "example", "fields": [
			{"name": "name", "type": "string"},
			{"name": "favorite_number", "type": ["null", "int"]},
			{"name": "tags", "type": {"type": "array", "items": "string"}},
			{"name": "attrs", "type": {"type": "map", "values": "long"}}
		]}`,
		`{"type": "enum", "name": "Suit", "namespace": "cards", "symbols": ["SPADES", "HEARTS"]}`,
		`{"type": "fixed", "name": "Hash", "size": 32}`,
		`{"type": "record", "name": "Node", "fields": [
			{"name": "label", "type": "string"},
			{"name": "children", "type": {"type": "array", "items": "Node"}}
		]}`,
	}

	for _, text := range schemas {
		// Arrange
		ours, err := Parse(text)
		require.NoError(t, err)
		theirs, err := hambavro.ParseWithCache(text, "", &hambavro.SchemaCache{})
		require.NoError(t, err)

		// Act
		canonical, err := Canonical(ours)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, theirs.String(), string(canonical))
	}
}
