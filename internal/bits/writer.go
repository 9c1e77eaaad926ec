package bits

import (
	"io"

	"github.com/icza/bitio"
)

// Writer adds FLAC's bit-level codes on top of a bitio.CountWriter: unary
// codes, Rice codes, signed fields, and UTF-8-style integers. The running
// bit count makes the write cursor observable as a Position.
type Writer struct {
	*bitio.CountWriter
}

// NewWriter returns a Writer that writes MSB-first bits to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{CountWriter: bitio.NewCountWriter(w)}
}

// Position returns the current write cursor.
func (w *Writer) Position() Position {
	return FromBitCount(w.BitsCount)
}

// WriteUnary writes n as a unary code: n zero bits followed by a one bit.
func (w *Writer) WriteUnary(n uint64) error {
	return WriteUnary(w.CountWriter, n)
}

// WriteSigned writes the low n bits (1..64) of x, a two's-complement value of
// width n.
func (w *Writer) WriteSigned(x int64, n uint8) error {
	return w.WriteBits(uint64(x)&mask(uint(n)), n)
}

// WriteRiceUnsigned writes x Rice-coded with parameter k: the quotient in
// unary followed by the remainder in k bits.
func (w *Writer) WriteRiceUnsigned(x uint64, k uint) error {
	if err := w.WriteUnary(x >> uint(k)); err != nil {
		return err
	}
	if k == 0 {
		return nil
	}
	return w.WriteBits(x&mask(k), uint8(k))
}

// WriteRiceSigned writes x Rice-coded with parameter k, folding x to the
// unsigned domain via the zigzag mapping first.
func (w *Writer) WriteRiceSigned(x int32, k uint) error {
	return w.WriteRiceUnsigned(uint64(EncodeZigZag(x)), k)
}

// WriteUTF8 writes x as a FLAC "UTF-8"-style coded integer.
func (w *Writer) WriteUTF8(x uint64) error {
	return writeUTF8(w.CountWriter, x)
}

func mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<n - 1
}
