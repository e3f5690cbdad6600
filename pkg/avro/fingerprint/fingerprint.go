// Package fingerprint computes schema fingerprints from the Parsing Canonical
// Form: the 64-bit CRC-64-AVRO (Rabin) fingerprint and SHA-256, plus MD5 for
// interoperability with other Avro implementations.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// Empty is the CRC-64-AVRO fingerprint of the empty input.
const Empty uint64 = 0xc15d213aa4d7a795

var table = func() [256]uint64 {
	var t [256]uint64
	for i := range t {
		fp := uint64(i)
		for j := 0; j < 8; j++ {
			fp = (fp >> 1) ^ (Empty & -(fp & 1))
		}
		t[i] = fp
	}
	return t
}()

// Algorithm selects a fingerprint function for FingerprintUsing.
type Algorithm string

// Supported algorithms.
const (
	CRC64Avro Algorithm = "CRC-64-AVRO"
	MD5       Algorithm = "MD5"
	SHA256    Algorithm = "SHA-256"
)

// Sum64 returns the CRC-64-AVRO fingerprint of data.
func Sum64(data []byte) uint64 {
	fp := Empty
	for _, b := range data {
		fp = (fp >> 8) ^ table[(fp^uint64(b))&0xff]
	}
	return fp
}

// Fingerprint64 returns the CRC-64-AVRO fingerprint of the canonical form of s.
func Fingerprint64(s schema.Schema) (uint64, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return 0, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	return Sum64(canonical), nil
}

// FingerprintSHA256 returns the SHA-256 digest of the canonical form of s.
func FingerprintSHA256(s schema.Schema) ([32]byte, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	return sha256.Sum256(canonical), nil
}

// FingerprintUsing returns the fingerprint of s computed with alg. The
// 64-bit fingerprint is returned big-endian.
func FingerprintUsing(alg Algorithm, s schema.Schema) ([]byte, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	switch alg {
	case CRC64Avro:
		return Bytes64(Sum64(canonical)), nil
	case MD5:
		sum := md5.Sum(canonical)
		return sum[:], nil
	case SHA256:
		sum := sha256.Sum256(canonical)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("unsupported fingerprint algorithm %q", alg)
	}
}

// Bytes64 serializes a 64-bit fingerprint big-endian.
func Bytes64(fp uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), fp)
}

// Pair is what a schema registry stores for a schema: both fingerprints and
// the canonical bytes they were computed from.
type Pair struct {
	Fingerprint64 uint64
	SHA256        [32]byte
	Canonical     []byte
}

// Of computes the fingerprint pair of s with a single canonicalization.
func Of(s schema.Schema) (Pair, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to canonicalize schema: %w", err)
	}
	return pairOf(canonical), nil
}

func pairOf(canonical []byte) Pair {
	return Pair{
		Fingerprint64: Sum64(canonical),
		SHA256:        sha256.Sum256(canonical),
		Canonical:     canonical,
	}
}
