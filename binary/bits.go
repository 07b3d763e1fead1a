// Package binary provides the cross-architecture bit-twiddling
// primitives the codec, MEMC, and IOC packages build on: bit scan,
// rotate, population count, byte swap, and byte-order conversion.
package binary

import "math/bits"

// BitScanForward returns the 0-based index of the least-significant
// set bit of x. Returns -1 for x == 0.
func BitScanForward(x uint32) int {
	if x == 0 {
		return -1
	}

	return bits.TrailingZeros32(x)
}

// BitScanReverse returns the 0-based index of the most-significant set
// bit of x. Returns -1 for x == 0.
func BitScanReverse(x uint32) int {
	if x == 0 {
		return -1
	}

	return 31 - bits.LeadingZeros32(x)
}

// PopCount16 returns the count of set bits in x.
func PopCount16(x uint16) int {
	return bits.OnesCount16(x)
}

// PopCount32 returns the count of set bits in x.
func PopCount32(x uint32) int {
	return bits.OnesCount32(x)
}

// RotateLeft32 rotates x left by n bits (n taken mod 32).
func RotateLeft32(x uint32, n int) uint32 {
	return bits.RotateLeft32(x, n)
}

// RotateRight32 rotates x right by n bits (n taken mod 32).
func RotateRight32(x uint32, n int) uint32 {
	return bits.RotateLeft32(x, -n)
}

// ByteSwap16 reverses the byte order of a 16-bit value.
func ByteSwap16(x uint16) uint16 {
	return bits.ReverseBytes16(x)
}

// ByteSwap32 reverses the byte order of a 32-bit value.
func ByteSwap32(x uint32) uint32 {
	return bits.ReverseBytes32(x)
}

// ByteSwap64 reverses the byte order of a 64-bit value.
func ByteSwap64(x uint64) uint64 {
	return bits.ReverseBytes64(x)
}
