// Package bits provides the FLAC-specific bit codes (unary, Rice, UTF-8-style
// integers, two's-complement sign extension) layered on top of
// github.com/icza/bitio's bit-level reader and writer.
package bits

// Position identifies a location within a bitio-backed stream as a
// byte-index/bit-offset pair, derived from the running bit count of a
// bitio.CountReader / bitio.CountWriter.
type Position struct {
	// ByteIndex is the number of whole bytes consumed (or emitted) so far.
	ByteIndex int64
	// BitOffset is the number of bits consumed (or emitted) within the byte at
	// ByteIndex; always in [0,7].
	BitOffset uint8
}

// FromBitCount converts a running count of bits into a Position.
func FromBitCount(nbits int64) Position {
	return Position{
		ByteIndex: nbits / 8,
		BitOffset: uint8(nbits % 8),
	}
}

// BitCount returns the running bit count represented by pos, the inverse of
// FromBitCount.
func (pos Position) BitCount() int64 {
	return pos.ByteIndex*8 + int64(pos.BitOffset)
}
