package meta

import (
	"encoding/binary"
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// StreamInfo carries the properties shared by the entire stream: blocksize
// and frame-size bounds, sample rate, channel count, bit depth, total sample
// count and the stored MD5 signature of the decoded audio. It must be
// present as the first metadata block of a FLAC stream, and is the only
// metadata body this package decodes field-by-field, since the frame
// decoder needs it to resolve a frame header's SampleRate/BitsPerSample==0
// ("use StreamInfo") escape.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_streaminfo
type StreamInfo struct {
	// MinBlockSize is the minimum block size (in samples) used in the
	// stream.
	MinBlockSize uint16
	// MaxBlockSize is the maximum block size (in samples) used in the
	// stream. MinBlockSize == MaxBlockSize implies a fixed blocksize stream.
	MaxBlockSize uint16
	// MinFrameSize is the minimum frame size (in bytes), or 0 if unknown.
	MinFrameSize uint32
	// MaxFrameSize is the maximum frame size (in bytes), or 0 if unknown.
	MaxFrameSize uint32
	// SampleRate in Hz; non-zero, fits in 20 bits.
	SampleRate uint32
	// NChannels is the number of channels, 1..8.
	NChannels uint8
	// BitsPerSample is the bit depth, 4..32.
	BitsPerSample uint8
	// NSamples is the total number of inter-channel samples, or 0 if
	// unknown.
	NSamples uint64
	// MD5sum is the MD5 signature of the unencoded audio data, stored as
	// found; this package never computes or verifies it.
	MD5sum [16]byte
}

const streamInfoLen = 34

// parseStreamInfo decodes the 34-byte STREAMINFO body.
func parseStreamInfo(r io.Reader) (*StreamInfo, error) {
	var raw [streamInfoLen]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, errutil.Err(err)
	}
	si := new(StreamInfo)
	si.MinBlockSize = binary.BigEndian.Uint16(raw[0:2])
	si.MaxBlockSize = binary.BigEndian.Uint16(raw[2:4])
	si.MinFrameSize = uint32(raw[4])<<16 | uint32(raw[5])<<8 | uint32(raw[6])
	si.MaxFrameSize = uint32(raw[7])<<16 | uint32(raw[8])<<8 | uint32(raw[9])

	bits := binary.BigEndian.Uint64(raw[10:18])
	si.SampleRate = uint32(bits >> 44)
	si.NChannels = uint8(bits>>41&0x7) + 1
	si.BitsPerSample = uint8(bits>>36&0x1F) + 1
	si.NSamples = bits & 0xFFFFFFFFF
	copy(si.MD5sum[:], raw[18:34])

	if si.MinBlockSize < 16 {
		return nil, errutil.Newf("meta.parseStreamInfo: invalid min block size %d", si.MinBlockSize)
	}
	if si.SampleRate == 0 || si.SampleRate > 655350 {
		return nil, errutil.Newf("meta.parseStreamInfo: invalid sample rate %d", si.SampleRate)
	}
	if si.NChannels < 1 || si.NChannels > 8 {
		return nil, errutil.Newf("meta.parseStreamInfo: invalid channel count %d", si.NChannels)
	}
	if si.BitsPerSample < 4 || si.BitsPerSample > 32 {
		return nil, errutil.Newf("meta.parseStreamInfo: invalid bits per sample %d", si.BitsPerSample)
	}
	return si, nil
}

// encode re-serializes the StreamInfo body to its canonical 34-byte form.
func (si *StreamInfo) encode(w io.Writer) error {
	var raw [streamInfoLen]byte
	binary.BigEndian.PutUint16(raw[0:2], si.MinBlockSize)
	binary.BigEndian.PutUint16(raw[2:4], si.MaxBlockSize)
	raw[4], raw[5], raw[6] = byte(si.MinFrameSize>>16), byte(si.MinFrameSize>>8), byte(si.MinFrameSize)
	raw[7], raw[8], raw[9] = byte(si.MaxFrameSize>>16), byte(si.MaxFrameSize>>8), byte(si.MaxFrameSize)

	bits := uint64(si.SampleRate)<<44 |
		uint64(si.NChannels-1)<<41 |
		uint64(si.BitsPerSample-1)<<36 |
		si.NSamples&0xFFFFFFFFF
	binary.BigEndian.PutUint64(raw[10:18], bits)
	copy(raw[18:34], si.MD5sum[:])

	_, err := w.Write(raw[:])
	return errutil.Err(err)
}
