// Package safeconv converts between integer widths without silent wraparound.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// ClampUint32 converts v to uint32, saturating at 0 and math.MaxUint32.
func ClampUint32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}

// Uint32ToInt converts v to int, saturating at MaxInt where int is 32 bits.
func Uint32ToInt(v uint32) int {
	if uint64(v) > uint64(MaxInt) {
		return MaxInt
	}

	return int(v)
}
