package binary

import "encoding/binary"

// ByteOrder converts between host and target (guest) byte order at the
// widths the codec and MEMC care about. Two implementations exist: a
// no-op for a native-endian target and a swapping one; the core always
// targets a little-endian ARM guest, so ForTarget picks one from
// endianness flags rather than probing the host at runtime.
type ByteOrder interface {
	ToHost16(word uint16) uint16
	ToTarget16(word uint16) uint16
	ToHost32(word uint32) uint32
	ToTarget32(word uint32) uint32
	ToHost64(word uint64) uint64
	ToTarget64(word uint64) uint64
}

// nativeByteOrder passes values through unchanged; used when the host
// and guest share endianness.
type nativeByteOrder struct{}

func (nativeByteOrder) ToHost16(w uint16) uint16   { return w }
func (nativeByteOrder) ToTarget16(w uint16) uint16 { return w }
func (nativeByteOrder) ToHost32(w uint32) uint32   { return w }
func (nativeByteOrder) ToTarget32(w uint32) uint32 { return w }
func (nativeByteOrder) ToHost64(w uint64) uint64   { return w }
func (nativeByteOrder) ToTarget64(w uint64) uint64 { return w }

// swappingByteOrder reverses byte order in both directions; used when
// the host and guest endianness differ.
type swappingByteOrder struct{}

func (swappingByteOrder) ToHost16(w uint16) uint16   { return ByteSwap16(w) }
func (swappingByteOrder) ToTarget16(w uint16) uint16 { return ByteSwap16(w) }
func (swappingByteOrder) ToHost32(w uint32) uint32   { return ByteSwap32(w) }
func (swappingByteOrder) ToTarget32(w uint32) uint32 { return ByteSwap32(w) }
func (swappingByteOrder) ToHost64(w uint64) uint64   { return ByteSwap64(w) }
func (swappingByteOrder) ToTarget64(w uint64) uint64 { return ByteSwap64(w) }

// Native is the identity ByteOrder.
var Native ByteOrder = nativeByteOrder{}

// Swapping is the byte-reversing ByteOrder.
var Swapping ByteOrder = swappingByteOrder{}

// ForTarget returns the ByteOrder to use when the host is hostLittle
// and the guest/target is targetLittle.
func ForTarget(hostLittleEndian, targetLittleEndian bool) ByteOrder {
	if hostLittleEndian == targetLittleEndian {
		return Native
	}

	return Swapping
}

// LoadLittle32 decodes a little-endian 32-bit word from b, matching
// the guest's natural word layout in host memory blocks.
func LoadLittle32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// StoreLittle32 encodes a little-endian 32-bit word into b.
func StoreLittle32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}
