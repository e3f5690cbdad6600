package encoding

import (
	"encoding/binary"
	"fmt"
)

// Framing names a wire framing.
type Framing string

// Supported framings.
const (
	// ConfluentFraming is [0x00][schema id, 4 bytes big-endian][payload].
	ConfluentFraming Framing = "confluent"
	// SingleObjectFraming is [0xC3 0x01][CRC-64-AVRO, 8 bytes little-endian][payload].
	SingleObjectFraming Framing = "single-object"
)

// ParseFraming validates a framing name.
func ParseFraming(s string) (Framing, error) {
	switch f := Framing(s); f {
	case ConfluentFraming, SingleObjectFraming:
		return f, nil
	}
	return "", fmt.Errorf("unknown framing %q", s)
}

// WireFormatParser splits a framed message into its schema identifier and
// payload.
type WireFormatParser[ID any] interface {
	Parse(data []byte) (id ID, payload []byte, err error)
}

// WireFormatBuilder frames a payload with its schema identifier.
type WireFormatBuilder[ID any] interface {
	Build(id ID, payload []byte) []byte
}

// WireFormat both parses and builds one framing.
type WireFormat[ID any] interface {
	WireFormatParser[ID]
	WireFormatBuilder[ID]
}

const (
	confluentMagic       = 0x00
	confluentHeaderLen   = 5
	singleObjectHeader   = 2
	singleObjectFullHead = singleObjectHeader + 8
)

var singleObjectMagic = [singleObjectHeader]byte{0xC3, 0x01}

type confluentWireFormat struct{}

// NewConfluentWireFormat returns the Confluent framing keyed by registry
// schema id.
func NewConfluentWireFormat() WireFormat[int] {
	return confluentWireFormat{}
}

func (confluentWireFormat) Parse(data []byte) (int, []byte, error) {
	if len(data) < confluentHeaderLen {
		return 0, nil, newError(ErrInvalidFraming, "", "data too short: expected at least %d bytes, got %d", confluentHeaderLen, len(data))
	}
	if data[0] != confluentMagic {
		return 0, nil, newError(ErrInvalidFraming, "", "invalid magic byte: expected 0x00, got 0x%02x", data[0])
	}
	schemaID := int(binary.BigEndian.Uint32(data[1:confluentHeaderLen]))
	return schemaID, data[confluentHeaderLen:], nil
}

func (confluentWireFormat) Build(schemaID int, payload []byte) []byte {
	out := make([]byte, confluentHeaderLen, confluentHeaderLen+len(payload))
	out[0] = confluentMagic
	binary.BigEndian.PutUint32(out[1:], uint32(schemaID))
	return append(out, payload...)
}

type singleObjectWireFormat struct{}

// NewSingleObjectWireFormat returns the Avro single-object framing keyed by
// the CRC-64-AVRO fingerprint of the writer schema.
func NewSingleObjectWireFormat() WireFormat[uint64] {
	return singleObjectWireFormat{}
}

func (singleObjectWireFormat) Parse(data []byte) (uint64, []byte, error) {
	if len(data) < singleObjectFullHead {
		return 0, nil, newError(ErrInvalidFraming, "", "data too short: expected at least %d bytes, got %d", singleObjectFullHead, len(data))
	}
	if data[0] != singleObjectMagic[0] || data[1] != singleObjectMagic[1] {
		return 0, nil, newError(ErrInvalidFraming, "", "invalid marker: expected 0xC301, got 0x%02X%02X", data[0], data[1])
	}
	fp := binary.LittleEndian.Uint64(data[singleObjectHeader:singleObjectFullHead])
	return fp, data[singleObjectFullHead:], nil
}

func (singleObjectWireFormat) Build(fp uint64, payload []byte) []byte {
	out := make([]byte, 0, singleObjectFullHead+len(payload))
	out = append(out, singleObjectMagic[:]...)
	out = binary.LittleEndian.AppendUint64(out, fp)
	return append(out, payload...)
}
