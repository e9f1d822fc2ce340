// Package bitint provides power-of-2 helpers for FFT and buffer sizing.
// All operations are O(1), allocation-free and real-time safe.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
// The size-1 subtraction keeps exact powers of 2 from being doubled:
// bits.Len64(7) == 3 so 8 maps back to 1<<3 == 8.
//
// Examples:
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return int(1 << (bits.Len64(uint64(size - 1))))
}

// IsPowerOfTwo checks if n is a power of 2. Powers of 2 have exactly one
// bit set, so n&(n-1) clears it and leaves zero only for powers of 2.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
