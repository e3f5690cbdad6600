package serde

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/encoding"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/registry"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/value"
	"github.com/Sokol111/ecommerce-avro/pkg/core/logger"
)

// Message is a decoded framed message.
type Message struct {
	Framing encoding.Framing
	// SchemaID is set for confluent framing.
	SchemaID int
	// Fingerprint is set for single-object framing.
	Fingerprint uint64
	// Writer is the schema the payload was written with.
	Writer schema.Schema
	Value  value.Value
}

// Deserializer reads framed messages. The framing is detected from the
// leading bytes.
type Deserializer interface {
	// Deserialize decodes data with its writer schema.
	Deserialize(data []byte) (Message, error)
	// DeserializeInto decodes data and resolves it into the shape of reader.
	DeserializeInto(reader schema.Schema, data []byte) (Message, error)
}

type deserializer struct {
	store        registry.Store
	registry     registry.ConfluentRegistry
	singleObject encoding.WireFormatParser[uint64]
	confluent    encoding.WireFormatParser[int]
	throttler    *logger.LogThrottler
}

// DeserializerOption configures a Deserializer.
type DeserializerOption func(*deserializer)

// WithStore enables single-object framing.
func WithStore(store registry.Store) DeserializerOption {
	return func(d *deserializer) {
		d.store = store
	}
}

// WithConfluentRegistry enables confluent framing.
func WithConfluentRegistry(reg registry.ConfluentRegistry) DeserializerOption {
	return func(d *deserializer) {
		d.registry = reg
	}
}

// WithThrottler logs decode failures through t.
func WithThrottler(t *logger.LogThrottler) DeserializerOption {
	return func(d *deserializer) {
		d.throttler = t
	}
}

// NewDeserializer creates a deserializer. At least one of WithStore or
// WithConfluentRegistry should be given.
func NewDeserializer(opts ...DeserializerOption) Deserializer {
	d := &deserializer{
		singleObject: encoding.NewSingleObjectWireFormat(),
		confluent:    encoding.NewConfluentWireFormat(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.throttler == nil {
		d.throttler = logger.NewLogThrottler(zap.NewNop(), 0)
	}
	return d
}

func (d *deserializer) Deserialize(data []byte) (Message, error) {
	msg, payload, err := d.writer(data)
	if err != nil {
		return d.fail(msg, err)
	}

	v, err := encoding.UnmarshalBinary(msg.Writer, payload)
	if err != nil {
		return d.fail(msg, fmt.Errorf("failed to decode avro data: %w", err))
	}

	msg.Value = v
	return msg, nil
}

func (d *deserializer) DeserializeInto(reader schema.Schema, data []byte) (Message, error) {
	msg, payload, err := d.writer(data)
	if err != nil {
		return d.fail(msg, err)
	}

	v, err := encoding.ResolveBinary(reader, msg.Writer, payload)
	if err != nil {
		return d.fail(msg, fmt.Errorf("failed to resolve avro data: %w", err))
	}

	msg.Value = v
	return msg, nil
}

// writer parses the framing header and looks up the writer schema.
func (d *deserializer) writer(data []byte) (Message, []byte, error) {
	if len(data) > 0 && data[0] == 0x00 {
		return d.confluentWriter(data)
	}
	return d.singleObjectWriter(data)
}

func (d *deserializer) confluentWriter(data []byte) (Message, []byte, error) {
	msg := Message{Framing: encoding.ConfluentFraming}
	if d.registry == nil {
		return msg, nil, fmt.Errorf("%w: %s", ErrFramingUnavailable, msg.Framing)
	}

	schemaID, payload, err := d.confluent.Parse(data)
	if err != nil {
		return msg, nil, fmt.Errorf("failed to parse wire format: %w", err)
	}
	msg.SchemaID = schemaID

	writer, err := d.registry.Schema(schemaID)
	if err != nil {
		return msg, nil, fmt.Errorf("%w: schema id %d: %w", ErrUnknownSchema, schemaID, err)
	}
	msg.Writer = writer
	return msg, payload, nil
}

func (d *deserializer) singleObjectWriter(data []byte) (Message, []byte, error) {
	msg := Message{Framing: encoding.SingleObjectFraming}
	if d.store == nil {
		return msg, nil, fmt.Errorf("%w: %s", ErrFramingUnavailable, msg.Framing)
	}

	fp, payload, err := d.singleObject.Parse(data)
	if err != nil {
		return msg, nil, fmt.Errorf("failed to parse wire format: %w", err)
	}
	msg.Fingerprint = fp

	entry, ok := d.store.Lookup(fp)
	if !ok {
		return msg, nil, fmt.Errorf("%w: fingerprint %016x", ErrUnknownSchema, fp)
	}
	msg.Writer = entry.Schema
	return msg, payload, nil
}

// fail logs a decode failure. A framing the deserializer was not configured
// for is a deployment error and is logged as such; bad messages are warnings.
func (d *deserializer) fail(msg Message, err error) (Message, error) {
	fields := []zap.Field{
		zap.String("framing", string(msg.Framing)),
		zap.Int("schemaId", msg.SchemaID),
		zap.Uint64("fingerprint", msg.Fingerprint),
		zap.Error(err),
	}
	if errors.Is(err, ErrFramingUnavailable) {
		d.throttler.Error("avro-framing-"+string(msg.Framing), "avro framing is not configured", fields...)
	} else {
		d.throttler.Warn("avro-decode-"+string(msg.Framing), "failed to deserialize avro message", fields...)
	}
	return Message{}, err
}
