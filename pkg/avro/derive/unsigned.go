package derive

import "github.com/Sokol111/ecommerce-avro/pkg/avro/value"

// Uint64ToLong reinterprets the bits of u as a long. Values above
// math.MaxInt64 become negative; LongToUint64 restores them.
func Uint64ToLong(u uint64) value.Long {
	return value.Long(int64(u))
}

// LongToUint64 is the inverse of Uint64ToLong.
func LongToUint64(l value.Long) uint64 {
	return uint64(int64(l))
}

// Uint32ToLong widens u without loss.
func Uint32ToLong(u uint32) value.Long {
	return value.Long(int64(u))
}

// Uint16ToInt widens u without loss.
func Uint16ToInt(u uint16) value.Int {
	return value.Int(int32(u))
}
