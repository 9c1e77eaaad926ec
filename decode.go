package flac

import (
	"io"

	"github.com/mkzflac/flac/frame"
)

// Decoder produces successive blocks of decoded, channel-undecorrelated
// PCM samples from a Stream.
type Decoder struct {
	s *Stream
}

// NewDecoder returns a Decoder reading frames from s.
func NewDecoder(s *Stream) *Decoder {
	return &Decoder{s: s}
}

// Next decodes and returns the next frame's samples as one slice per
// output channel (post channel-decorrelation), along with the frame
// header that produced them. It returns io.EOF once the stream is
// exhausted.
//
// ref: https://www.xiph.org/flac/format.html#interchannel
func (d *Decoder) Next() (frame.Header, [][]int32, error) {
	f, err := d.s.ParseNext()
	if err != nil {
		return frame.Header{}, nil, err
	}

	chans := make([][]int32, len(f.Subframes))
	for i, sf := range f.Subframes {
		chans[i] = sf.Samples
	}

	if !f.Header.Channels.IsDecorrelated() {
		return f.Header, chans, nil
	}
	l, r := undecorrelate(f.Header.Channels, chans)
	return f.Header, [][]int32{l, r}, nil
}

// Decode decodes every frame in the stream, returning the full,
// channel-undecorrelated sample matrix (one slice per channel).
func Decode(s *Stream) ([][]int32, error) {
	d := NewDecoder(s)
	var out [][]int32
	for {
		_, chans, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make([][]int32, len(chans))
		}
		for i, c := range chans {
			out[i] = append(out[i], c...)
		}
	}
	return out, nil
}
