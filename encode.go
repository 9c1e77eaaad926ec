package flac

import (
	"errors"
	"io"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mkzflac/flac/frame"
	"github.com/mkzflac/flac/meta"
)

// Encoder writes a FLAC stream: the magic, a StreamInfo metadata block plus
// any caller-supplied metadata blocks, and then a sequence of frames
// written one block at a time via Write.
type Encoder struct {
	stream *Stream
	w      io.Writer
	c      io.Closer
	// curNum is the next frame number (fixed block size streams only).
	curNum uint64
}

// NewEncoder writes the FLAC magic and metadata blocks (StreamInfo plus
// any extra blocks) to w and returns an Encoder ready to accept frames via
// Write.
func NewEncoder(w io.Writer, info *meta.StreamInfo, extra ...*meta.Block) (*Encoder, error) {
	if _, err := io.WriteString(w, Signature); err != nil {
		return nil, errutil.Err(err)
	}

	blocks := make([]*meta.Block, 0, 1+len(extra))
	blocks = append(blocks, &meta.Block{
		Header: meta.BlockHeader{Type: meta.TypeStreamInfo, Length: 34},
		Body:   info,
	})
	blocks = append(blocks, extra...)
	for i, block := range blocks {
		block.Header.IsLast = i == len(blocks)-1
		if err := block.Encode(w); err != nil {
			return nil, errutil.Err(err)
		}
	}

	enc := &Encoder{
		stream: &Stream{Info: info, MetaBlocks: blocks},
		w:      w,
	}
	if c, ok := w.(io.Closer); ok {
		enc.c = c
	}
	return enc, nil
}

// Write encodes one block of samples (one slice per channel, all of equal
// length) as a single frame. A request outside the format's representable
// ranges fails with a *StreamError of kind InvalidInput.
func (enc *Encoder) Write(samples [][]int32) error {
	if err := enc.encodeBlock(enc.w, samples); err != nil {
		if errors.Is(err, frame.ErrInvalidInput) {
			return NewStreamError(InvalidInput, 0, err)
		}
		return err
	}
	return nil
}

// Close closes the underlying writer, if it implements io.Closer.
func (enc *Encoder) Close() error {
	if enc.c != nil {
		return enc.c.Close()
	}
	return nil
}
