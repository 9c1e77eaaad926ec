package bits

import (
	"io"

	"github.com/icza/bitio"
)

// Reader adds FLAC's bit-level codes on top of a bitio.CountReader: unary
// codes, Rice codes, signed fields, and UTF-8-style integers. The running
// bit count makes the read cursor observable as a Position.
type Reader struct {
	*bitio.CountReader
}

// NewReader returns a Reader that reads MSB-first bits from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{CountReader: bitio.NewCountReader(r)}
}

// Position returns the current read cursor.
func (r *Reader) Position() Position {
	return FromBitCount(r.BitsCount)
}

// ReadUnary reads zeros until the first one bit and returns the zero count.
func (r *Reader) ReadUnary() (uint64, error) {
	return ReadUnary(r.CountReader)
}

// ReadSigned reads n bits (1..64) and sign-extends them as a two's-complement
// value of width n.
func (r *Reader) ReadSigned(n uint8) (int64, error) {
	x, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}
	return IntN(x, uint(n)), nil
}

// ReadRiceUnsigned reads a Rice-coded value with parameter k: a unary
// quotient followed by a k-bit remainder. k=0 degenerates to pure unary.
func (r *Reader) ReadRiceUnsigned(k uint) (uint64, error) {
	high, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	var low uint64
	if k > 0 {
		low, err = r.ReadBits(uint8(k))
		if err != nil {
			return 0, err
		}
	}
	return high<<uint(k) | low, nil
}

// ReadRiceSigned reads a Rice-coded signed value with parameter k, unfolding
// the zigzag mapping applied by WriteRiceSigned.
func (r *Reader) ReadRiceSigned(k uint) (int32, error) {
	folded, err := r.ReadRiceUnsigned(k)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag(uint32(folded)), nil
}

// ReadUTF8 reads a FLAC "UTF-8"-style coded integer (7 to 36 bits).
func (r *Reader) ReadUTF8() (uint64, error) {
	return readUTF8(r.CountReader)
}
