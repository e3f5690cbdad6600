package serde

import (
	"fmt"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/encoding"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// JSONSerializer converts values of one schema to and from Avro JSON text.
type JSONSerializer struct {
	schema schema.Schema
}

// NewJSONSerializer creates a JSON serializer for s. The schema is validated
// up front so that Serialize only fails on bad values.
func NewJSONSerializer(s schema.Schema) (*JSONSerializer, error) {
	if err := schema.Validate(s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &JSONSerializer{schema: s}, nil
}

// Schema returns the schema values are written with.
func (j *JSONSerializer) Schema() schema.Schema {
	return j.schema
}

// Serialize renders v as JSON text.
func (j *JSONSerializer) Serialize(v value.Value) (string, error) {
	data, err := encoding.MarshalJSON(j.schema, v)
	if err != nil {
		return "", fmt.Errorf("failed to encode avro json: %w", err)
	}
	return string(data), nil
}

// Deserialize parses JSON text into a value.
func (j *JSONSerializer) Deserialize(text string) (value.Value, error) {
	v, err := encoding.UnmarshalJSON(j.schema, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avro json: %w", err)
	}
	return v, nil
}
