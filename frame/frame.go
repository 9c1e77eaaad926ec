// Package frame parses and emits FLAC audio frames: a header, one subframe
// per channel, and a CRC-16-protected footer.
package frame

import (
	"fmt"
	"io"

	"github.com/mewkiz/pkg/readerutil"

	"github.com/mkzflac/flac/internal/bits"
	"github.com/mkzflac/flac/internal/hashutil/crc16"
	"github.com/mkzflac/flac/internal/hashutil/crc8"
)

// Frame is one inter-channel block of audio: a header plus one subframe per
// channel.
type Frame struct {
	Header    Header
	Subframes []Subframe
}

// StreamInfo is the subset of metadata a frame needs to resolve a header's
// "use StreamInfo" escapes (SampleRate/BitsPerSample == 0) and to widen the
// side channel's bit depth for stereo decorrelation.
type StreamInfo struct {
	SampleRate    uint32
	BitsPerSample uint8
}

// New reads one frame from r. si supplies the StreamInfo fallback values for
// a frame header that omits SampleRate/BitsPerSample.
//
// The header is read through a reader tapped by both CRC-8 and CRC-16; the
// rest of the frame through one tapped by CRC-16 alone, so the CRC-8 never
// observes bytes past the header. Both tapped readers read straight from r
// one byte at a time, so no bytes are ever buffered ahead and discarded.
func New(r io.Reader, si StreamInfo) (*Frame, error) {
	crc16h := crc16.NewIBM()
	crc8h := crc8.NewATM()

	headerIn := bits.NewTapReader(r, crc16h, crc8h)
	br := bits.NewReader(headerIn)

	hdr, err := parseHeader(br)
	if err != nil {
		return nil, err
	}
	if hdr.SampleRate == 0 {
		hdr.SampleRate = si.SampleRate
	}
	bps := hdr.BitsPerSample
	if bps == 0 {
		bps = si.BitsPerSample
	}

	// the header always ends byte-aligned, so the CRC-8 byte can be read
	// straight off the CRC-16-only tap without disturbing br's cache.
	bodyIn := bits.NewTapReader(r, crc16h)
	gotCRC8, err := readerutil.ReadByte(bodyIn)
	if err != nil {
		return nil, unexpected(err)
	}
	wantCRC8 := crc8h.Sum8()
	if gotCRC8 != wantCRC8 {
		return nil, fmt.Errorf("frame.New: header CRC-8 mismatch; expected 0x%02X, got 0x%02X: %w", wantCRC8, gotCRC8, ErrCRCMismatch)
	}

	br = bits.NewReader(bodyIn)

	f := &Frame{Header: hdr}
	chCount := hdr.Channels.Count()
	for ch := 0; ch < chCount; ch++ {
		sampleBPS := bps
		if widenSide(hdr.Channels, ch) {
			sampleBPS++
		}
		sf, err := parseSubframe(br, sampleBPS, hdr.BlockSize)
		if err != nil {
			return nil, err
		}
		f.Subframes = append(f.Subframes, sf)
	}
	br.Align()

	wantCRC16 := crc16h.Sum16()
	var footerBuf [2]byte
	if _, err := io.ReadFull(r, footerBuf[:]); err != nil {
		return nil, unexpected(err)
	}
	gotCRC16 := uint16(footerBuf[0])<<8 | uint16(footerBuf[1])
	if gotCRC16 != wantCRC16 {
		// the frame is structurally complete at this point; hand it back
		// with the error so callers may choose to keep or skip it.
		return f, fmt.Errorf("frame.New: frame CRC-16 mismatch; expected 0x%04X, got 0x%04X: %w", wantCRC16, gotCRC16, ErrCRCMismatch)
	}
	return f, nil
}

// widenSide reports whether channel ch is the side channel of a
// decorrelated stereo assignment, and therefore carries one extra bit.
func widenSide(ch Channels, channel int) bool {
	switch ch {
	case ChannelsLeftSide, ChannelsMidSide:
		return channel == 1
	case ChannelsSideRight:
		return channel == 0
	}
	return false
}

// Encode writes f to w, computing and appending the header CRC-8 and frame
// CRC-16 via hash taps stacked over the same underlying byte sink.
func (f *Frame) Encode(w io.Writer) error {
	crc16h := crc16.NewIBM()
	crc8h := crc8.NewATM()

	headerOut := bits.NewTapWriter(w, crc16h, crc8h)
	bw := bits.NewWriter(headerOut)

	if err := encodeHeader(bw, f.Header); err != nil {
		return err
	}
	if _, err := bw.Align(); err != nil {
		return err
	}

	bodyOut := bits.NewTapWriter(w, crc16h)
	if _, err := bodyOut.Write([]byte{crc8h.Sum8()}); err != nil {
		return err
	}

	bw = bits.NewWriter(bodyOut)
	bps := f.Header.BitsPerSample
	for ch, sf := range f.Subframes {
		sampleBPS := bps
		if widenSide(f.Header.Channels, ch) {
			sampleBPS++
		}
		if err := encodeSubframe(bw, sf, sampleBPS); err != nil {
			return err
		}
	}
	if _, err := bw.Align(); err != nil {
		return err
	}

	sum := crc16h.Sum16()
	_, err := w.Write([]byte{byte(sum >> 8), byte(sum)})
	return err
}
