// Package wire provides the byte-ordered fixed-width primitives the
// codec builds on: big-endian reads/writes of 8/16/32/64-bit integers
// and IEEE-754 double-precision floats at a cursor offset into a byte
// slice.
//
// None of these helpers allocate, suspend, or perform I/O; they are
// the building blocks the codec composes into term decoding.
package wire

import (
	"encoding/binary"
	"math"
)

// Put8 writes n at buf[off] and returns the offset past it.
func Put8(buf []byte, off int, n uint8) int {
	buf[off] = n
	return off + 1
}

// Put16 writes n big-endian at buf[off:] and returns the offset past it.
func Put16(buf []byte, off int, n uint16) int {
	binary.BigEndian.PutUint16(buf[off:], n)
	return off + 2
}

// Put32 writes n big-endian at buf[off:] and returns the offset past it.
func Put32(buf []byte, off int, n uint32) int {
	binary.BigEndian.PutUint32(buf[off:], n)
	return off + 4
}

// Put64 writes n big-endian at buf[off:] and returns the offset past it.
func Put64(buf []byte, off int, n uint64) int {
	binary.BigEndian.PutUint64(buf[off:], n)
	return off + 8
}

// PutFloat64 writes f as an IEEE-754 big-endian double at buf[off:].
func PutFloat64(buf []byte, off int, f float64) int {
	return Put64(buf, off, math.Float64bits(f))
}

// Get8 reads a byte at buf[off].
func Get8(buf []byte, off int) (uint8, int) {
	return buf[off], off + 1
}

// Get16 reads a big-endian uint16 at buf[off:].
func Get16(buf []byte, off int) (uint16, int) {
	return binary.BigEndian.Uint16(buf[off:]), off + 2
}

// Get32 reads a big-endian uint32 at buf[off:].
func Get32(buf []byte, off int) (uint32, int) {
	return binary.BigEndian.Uint32(buf[off:]), off + 4
}

// Get64 reads a big-endian uint64 at buf[off:].
func Get64(buf []byte, off int) (uint64, int) {
	return binary.BigEndian.Uint64(buf[off:]), off + 8
}

// GetFloat64 reads an IEEE-754 big-endian double at buf[off:].
func GetFloat64(buf []byte, off int) (float64, int) {
	bits, next := Get64(buf, off)
	return math.Float64frombits(bits), next
}

// Int8/16/32/64 read the two's-complement signed interpretation of
// the same widths.

func GetInt8(buf []byte, off int) (int8, int) {
	u, next := Get8(buf, off)
	return int8(u), next
}

func GetInt16(buf []byte, off int) (int16, int) {
	u, next := Get16(buf, off)
	return int16(u), next
}

func GetInt32(buf []byte, off int) (int32, int) {
	u, next := Get32(buf, off)
	return int32(u), next
}

func GetInt64(buf []byte, off int) (int64, int) {
	u, next := Get64(buf, off)
	return int64(u), next
}

// NeedBytes reports whether off..off+n is within the slice of length
// size; used by the codec to bounds-check before reading.
func NeedBytes(off, n, size int) bool {
	if n < 0 {
		return false
	}
	return off >= 0 && n <= size-off
}
