// Package flac parses and emits FLAC (Free Lossless Audio Codec) streams:
// metadata blocks followed by a sequence of audio frames.
//
// ref: https://www.xiph.org/flac/format.html
package flac

import (
	"errors"
	"io"
	"os"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mkzflac/flac/frame"
	"github.com/mkzflac/flac/internal/bufseekio"
	"github.com/mkzflac/flac/meta"
)

// Signature is the 4-byte magic that opens every FLAC stream.
const Signature = "fLaC"

// Stream is a parsed FLAC bitstream: its metadata blocks (the first of
// which is always StreamInfo) and the underlying reader positioned at the
// start of the first frame, ready for frame-by-frame decoding.
type Stream struct {
	// Info is the mandatory StreamInfo metadata block.
	Info *meta.StreamInfo
	// MetaBlocks holds every metadata block in stream order, Info included.
	MetaBlocks []*meta.Block

	r *countReader
	c io.Closer
}

// countReader tracks the absolute byte offset of the read cursor, so parse
// failures can report where in the stream the offending token sits.
type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// Open opens path and returns its parsed FLAC stream. The returned Stream's
// Close method closes the underlying file.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errutil.Err(err)
	}
	// The stream is read one bit-field at a time, so buffer the file here
	// rather than burning a syscall per TapReader byte.
	s, err := NewStream(bufseekio.NewReadSeeker(f))
	if err != nil {
		f.Close()
		return nil, err
	}
	s.c = f
	return s, nil
}

// Close closes the stream's underlying file, if Open provided one; it is a
// no-op otherwise.
func (s *Stream) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

// NewStream reads the magic and metadata blocks from r and returns a
// Stream ready to decode frames from the remainder of r.
//
// ref: https://www.xiph.org/flac/format.html#stream
func NewStream(r io.Reader) (*Stream, error) {
	cr := &countReader{r: r}
	var magic [4]byte
	if _, err := io.ReadFull(cr, magic[:]); err != nil {
		return nil, NewStreamError(BadMagic, 0, err)
	}
	if string(magic[:]) != Signature {
		return nil, NewStreamError(BadMagic, 0, nil)
	}

	s := &Stream{r: cr}
	for {
		off := cr.n
		block, err := meta.NewBlock(cr)
		if err != nil {
			return nil, NewStreamError(classify(err), off, err)
		}
		s.MetaBlocks = append(s.MetaBlocks, block)
		if s.Info == nil {
			si, ok := block.Body.(*meta.StreamInfo)
			if !ok {
				return nil, NewStreamError(InvariantViolated, off, nil)
			}
			s.Info = si
		}
		if block.Header.IsLast {
			break
		}
	}
	return s, nil
}

// classify maps a parse failure onto the closed error-kind set.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return EndOfStream
	case errors.Is(err, frame.ErrCRCMismatch):
		return CrcMismatch
	case errors.Is(err, frame.ErrInvariant):
		return InvariantViolated
	default:
		return InvalidBits
	}
}

// ParseNext reads and returns the next frame from the stream, resolving
// any header fields the frame header leaves for StreamInfo to supply. It
// returns io.EOF once the stream is exhausted; every other failure is a
// *StreamError carrying the byte offset at which parsing stopped. On a
// frame CRC-16 mismatch the parsed frame is returned alongside the error,
// so callers may choose to keep it.
func (s *Stream) ParseNext() (*frame.Frame, error) {
	f, err := frame.New(s.r, frame.StreamInfo{
		SampleRate:    s.Info.SampleRate,
		BitsPerSample: s.Info.BitsPerSample,
	})
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return f, NewStreamError(classify(err), s.r.n, err)
	}
	return f, nil
}
