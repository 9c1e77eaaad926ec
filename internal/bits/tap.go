package bits

import "io"

// ByteSink receives the bytes flowing through a tap; the CRC-8 and CRC-16
// accumulators satisfy it via their embedded hash.Hash.
type ByteSink interface {
	Write(p []byte) (int, error)
}

// TapReader wraps src so every byte it yields is also written to each tap,
// one byte at a time. Reading a single byte at a time (rather than letting
// a bufio.Reader prefetch ahead) keeps a tap's view exactly in sync with
// what the caller has logically consumed, which matters when a tap is
// meant to span only part of a stream (a frame header, say) and a fresh
// reader takes over afterward. TapReader also implements io.ByteReader, so
// bitio.NewReader uses it directly instead of silently adding its own
// prefetching bufio.Reader on top.
type TapReader struct {
	src  io.Reader
	taps []ByteSink
}

// NewTapReader returns a TapReader over src feeding every byte it reads to
// each of taps.
func NewTapReader(src io.Reader, taps ...ByteSink) *TapReader {
	return &TapReader{src: src, taps: taps}
}

// ReadByte implements io.ByteReader.
func (t *TapReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(t.src, buf[:]); err != nil {
		return 0, err
	}
	for _, tap := range t.taps {
		tap.Write(buf[:])
	}
	return buf[0], nil
}

// Read implements io.Reader by reading a single byte at a time, so taps
// never observe more bytes than the caller actually consumes.
func (t *TapReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := t.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// TapWriter wraps dst so every byte written through it is also written to
// each tap.
type TapWriter struct {
	dst  io.Writer
	taps []ByteSink
}

// NewTapWriter returns a TapWriter over dst feeding every written byte to
// each of taps.
func NewTapWriter(dst io.Writer, taps ...ByteSink) *TapWriter {
	return &TapWriter{dst: dst, taps: taps}
}

func (t *TapWriter) Write(p []byte) (int, error) {
	n, err := t.dst.Write(p)
	for _, tap := range t.taps {
		tap.Write(p[:n])
	}
	return n, err
}
