// Package encoding implements the Avro binary and JSON encodings of
// schema-described values, schema-resolving decoding, and the single-object
// and Confluent wire framings.
package encoding

import (
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
)

// Codec encodes and decodes values of a schema.
type Codec interface {
	// Name identifies the encoding, "binary" or "json".
	Name() string
	// Marshal encodes v as a value of s.
	Marshal(s schema.Schema, v value.Value) ([]byte, error)
	// Unmarshal decodes data as a value of s.
	Unmarshal(s schema.Schema, data []byte) (value.Value, error)
}

type binaryCodec struct{}

// NewBinaryCodec returns the Avro binary codec.
func NewBinaryCodec() Codec {
	return binaryCodec{}
}

func (binaryCodec) Name() string { return "binary" }

func (binaryCodec) Marshal(s schema.Schema, v value.Value) ([]byte, error) {
	return MarshalBinary(s, v)
}

func (binaryCodec) Unmarshal(s schema.Schema, data []byte) (value.Value, error) {
	return UnmarshalBinary(s, data)
}

type jsonCodec struct{}

// NewJSONCodec returns the Avro JSON codec.
func NewJSONCodec() Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(s schema.Schema, v value.Value) ([]byte, error) {
	return MarshalJSON(s, v)
}

func (jsonCodec) Unmarshal(s schema.Schema, data []byte) (value.Value, error) {
	return UnmarshalJSON(s, data)
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, bool) {
	switch name {
	case "binary":
		return NewBinaryCodec(), true
	case "json":
		return NewJSONCodec(), true
	}
	return nil, false
}
