package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/mkzflac/flac/internal/bits"
)

// unexpected upgrades a bare io.EOF into io.ErrUnexpectedEOF: once the sync
// code of a frame header has been consumed, a short read means a truncated
// stream, not a graceful end.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Sentinel error categories, wrapped by the parse and encode paths so
// callers can classify failures with errors.Is without matching message
// text.
var (
	// ErrCRCMismatch marks a header CRC-8 or frame CRC-16 verification
	// failure. A frame CRC-16 mismatch is returned together with the fully
	// parsed frame, so callers may keep or discard it.
	ErrCRCMismatch = errors.New("checksum mismatch")
	// ErrInvariant marks a structurally valid but inconsistent value: a
	// residual partition too small for the predictor order, a fixed
	// predictor order above 4, or a reserved blocksize code.
	ErrInvariant = errors.New("invariant violated")
	// ErrInvalidInput marks an encode request outside the format's
	// representable ranges.
	ErrInvalidInput = errors.New("invalid input")
)

// Channels specifies the number of channels (subframes) in a frame, their
// order, and any inter-channel decorrelation in effect.
type Channels uint8

// Channel assignments. The first eight follow the SMPTE/ITU-R channel order;
// the last three apply stereo decorrelation.
const (
	ChannelsMono           Channels = iota // 1 channel: mono.
	ChannelsLR                             // 2 channels: left, right.
	ChannelsLRC                            // 3 channels: left, right, center.
	ChannelsLRLsRs                         // 4 channels.
	ChannelsLRCLsRs                        // 5 channels.
	ChannelsLRCLfeLsRs                     // 6 channels.
	ChannelsLRCLfeCsSlSr                   // 7 channels.
	ChannelsLRCLfeLsRsSlSr                 // 8 channels.
	ChannelsLeftSide                       // 2 channels: left, side.
	ChannelsSideRight                      // 2 channels: side, right.
	ChannelsMidSide                        // 2 channels: mid, side.
)

var nChannels = [...]int{
	ChannelsMono:           1,
	ChannelsLR:             2,
	ChannelsLRC:            3,
	ChannelsLRLsRs:         4,
	ChannelsLRCLsRs:        5,
	ChannelsLRCLfeLsRs:     6,
	ChannelsLRCLfeCsSlSr:   7,
	ChannelsLRCLfeLsRsSlSr: 8,
	ChannelsLeftSide:       2,
	ChannelsSideRight:      2,
	ChannelsMidSide:        2,
}

// Count returns the number of subframes used by the channel assignment.
func (ch Channels) Count() int {
	return nChannels[ch]
}

// IsDecorrelated reports whether ch applies a stereo decorrelation transform.
func (ch Channels) IsDecorrelated() bool {
	switch ch {
	case ChannelsLeftSide, ChannelsSideRight, ChannelsMidSide:
		return true
	}
	return false
}

// Header holds the basic properties of an audio frame, parsed from the
// 14-bit-sync-prefixed header that opens every frame.
//
// ref: https://www.xiph.org/flac/format.html#frame_header
type Header struct {
	// HasFixedBlockSize reports whether Num is a frame number (true) or a
	// sample number (false).
	HasFixedBlockSize bool
	// BlockSize in inter-channel samples.
	BlockSize uint16
	// SampleRate in Hz; 0 means "use StreamInfo".
	SampleRate uint32
	// Channels specifies subframe count, order and decorrelation.
	Channels Channels
	// BitsPerSample; 0 means "use StreamInfo".
	BitsPerSample uint8
	// Num is the frame number (fixed block size) or first sample number
	// (variable block size).
	Num uint64
}

// SampleNumber returns the first sample number contained within the frame.
func (hdr Header) SampleNumber() uint64 {
	if hdr.HasFixedBlockSize {
		return hdr.Num * uint64(hdr.BlockSize)
	}
	return hdr.Num
}

const syncCode = 0x3FFE

// parseHeader reads and parses a frame header from br; the caller is
// responsible for wiring a CRC-8 tap around the underlying reader and
// verifying the trailing checksum byte.
func parseHeader(br *bits.Reader) (hdr Header, err error) {
	x, err := br.ReadBits(14)
	if err != nil {
		// the only point at which a graceful end-of-stream (io.EOF) may
		// surface.
		return hdr, err
	}
	if x != syncCode {
		return hdr, fmt.Errorf("frame.parseHeader: invalid sync-code (0x%04X)", x)
	}

	if x, err = br.ReadBits(1); err != nil {
		return hdr, unexpected(err)
	} else if x != 0 {
		return hdr, fmt.Errorf("frame.parseHeader: non-zero reserved bit")
	}

	x, err = br.ReadBits(1)
	if err != nil {
		return hdr, unexpected(err)
	}
	hdr.HasFixedBlockSize = x == 0

	blockSizeCode, err := br.ReadBits(4)
	if err != nil {
		return hdr, unexpected(err)
	}
	sampleRateCode, err := br.ReadBits(4)
	if err != nil {
		return hdr, unexpected(err)
	}

	if hdr.Channels, err = parseChannels(br); err != nil {
		return hdr, err
	}
	if hdr.BitsPerSample, err = parseBitsPerSample(br); err != nil {
		return hdr, err
	}

	if x, err = br.ReadBits(1); err != nil {
		return hdr, unexpected(err)
	} else if x != 0 {
		return hdr, fmt.Errorf("frame.parseHeader: non-zero reserved bit")
	}

	hdr.Num, err = br.ReadUTF8()
	if err != nil {
		return hdr, unexpected(err)
	}
	if hdr.BlockSize, err = parseBlockSize(br, blockSizeCode); err != nil {
		return hdr, err
	}
	if hdr.SampleRate, err = parseSampleRate(br, sampleRateCode); err != nil {
		return hdr, err
	}
	return hdr, nil
}

func parseChannels(br *bits.Reader) (Channels, error) {
	x, err := br.ReadBits(4)
	if err != nil {
		return 0, unexpected(err)
	}
	if x >= 0xB {
		return 0, fmt.Errorf("frame.parseHeader: reserved channel assignment (%04b)", x)
	}
	return Channels(x), nil
}

func parseBitsPerSample(br *bits.Reader) (uint8, error) {
	x, err := br.ReadBits(3)
	if err != nil {
		return 0, unexpected(err)
	}
	switch x {
	case 0x0:
		return 0, nil
	case 0x1:
		return 8, nil
	case 0x2:
		return 12, nil
	case 0x4:
		return 16, nil
	case 0x5:
		return 20, nil
	case 0x6:
		return 24, nil
	default:
		return 0, fmt.Errorf("frame.parseHeader: reserved sample size bit pattern (%03b)", x)
	}
}

func parseBlockSize(br *bits.Reader, code uint64) (uint16, error) {
	switch {
	case code == 0x0:
		return 0, fmt.Errorf("frame.parseHeader: reserved block size bit pattern (0000): %w", ErrInvariant)
	case code == 0x1:
		return 192, nil
	case code >= 0x2 && code <= 0x5:
		return uint16(576 * (1 << (code - 2))), nil
	case code == 0x6:
		x, err := br.ReadBits(8)
		if err != nil {
			return 0, unexpected(err)
		}
		return uint16(x + 1), nil
	case code == 0x7:
		x, err := br.ReadBits(16)
		if err != nil {
			return 0, unexpected(err)
		}
		return uint16(x + 1), nil
	default:
		return uint16(256 * (1 << (code - 8))), nil
	}
}

func parseSampleRate(br *bits.Reader, code uint64) (uint32, error) {
	switch code {
	case 0x0:
		return 0, nil
	case 0x1:
		return 88200, nil
	case 0x2:
		return 176400, nil
	case 0x3:
		return 192000, nil
	case 0x4:
		return 8000, nil
	case 0x5:
		return 16000, nil
	case 0x6:
		return 22050, nil
	case 0x7:
		return 24000, nil
	case 0x8:
		return 32000, nil
	case 0x9:
		return 44100, nil
	case 0xA:
		return 48000, nil
	case 0xB:
		return 96000, nil
	case 0xC:
		x, err := br.ReadBits(8)
		if err != nil {
			return 0, unexpected(err)
		}
		return uint32(x) * 1000, nil
	case 0xD:
		x, err := br.ReadBits(16)
		if err != nil {
			return 0, unexpected(err)
		}
		return uint32(x), nil
	case 0xE:
		x, err := br.ReadBits(16)
		if err != nil {
			return 0, unexpected(err)
		}
		return uint32(x) * 10, nil
	default:
		return 0, fmt.Errorf("frame.parseHeader: invalid sample rate bit pattern (1111)")
	}
}

// encodeHeader writes hdr to bw, choosing the most compact table entry for
// BlockSize and SampleRate and falling back to the 8-/16-bit tails.
func encodeHeader(bw *bits.Writer, hdr Header) error {
	if err := bw.WriteBits(syncCode, 14); err != nil {
		return err
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}
	if err := bw.WriteBool(!hdr.HasFixedBlockSize); err != nil {
		return err
	}

	bsCode, bsTailBits, err := blockSizeCode(hdr.BlockSize)
	if err != nil {
		return err
	}
	srCode, srTail, srTailBits, err := sampleRateCode(hdr.SampleRate)
	if err != nil {
		return err
	}
	if err := bw.WriteBits(bsCode, 4); err != nil {
		return err
	}
	if err := bw.WriteBits(srCode, 4); err != nil {
		return err
	}
	if err := encodeChannels(bw, hdr.Channels); err != nil {
		return err
	}
	if err := encodeBitsPerSample(bw, hdr.BitsPerSample); err != nil {
		return err
	}
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}
	if err := bw.WriteUTF8(hdr.Num); err != nil {
		return err
	}
	if bsTailBits > 0 {
		if err := bw.WriteBits(uint64(hdr.BlockSize-1), bsTailBits); err != nil {
			return err
		}
	}
	if srTailBits > 0 {
		if err := bw.WriteBits(srTail, srTailBits); err != nil {
			return err
		}
	}
	return nil
}

func blockSizeCode(blockSize uint16) (code uint64, tailBits uint8, err error) {
	switch blockSize {
	case 192:
		return 0x1, 0, nil
	case 576, 1152, 2304, 4608:
		code = 0x2
		for n := blockSize / 576; n > 1; n >>= 1 {
			code++
		}
		return code, 0, nil
	case 256, 512, 1024, 2048, 4096, 8192, 16384, 32768:
		code = 0x8
		for n := blockSize / 256; n > 1; n >>= 1 {
			code++
		}
		return code, 0, nil
	}
	if blockSize == 0 {
		return 0, 0, fmt.Errorf("frame.encodeHeader: block size must be non-zero: %w", ErrInvalidInput)
	}
	if blockSize <= 256 {
		return 0x6, 8, nil
	}
	return 0x7, 16, nil
}

func sampleRateCode(sampleRate uint32) (code, tail uint64, tailBits uint8, err error) {
	switch sampleRate {
	case 0:
		return 0x0, 0, 0, nil
	case 88200:
		return 0x1, 0, 0, nil
	case 176400:
		return 0x2, 0, 0, nil
	case 192000:
		return 0x3, 0, 0, nil
	case 8000:
		return 0x4, 0, 0, nil
	case 16000:
		return 0x5, 0, 0, nil
	case 22050:
		return 0x6, 0, 0, nil
	case 24000:
		return 0x7, 0, 0, nil
	case 32000:
		return 0x8, 0, 0, nil
	case 44100:
		return 0x9, 0, 0, nil
	case 48000:
		return 0xA, 0, 0, nil
	case 96000:
		return 0xB, 0, 0, nil
	}
	switch {
	case sampleRate <= 255000 && sampleRate%1000 == 0:
		return 0xC, uint64(sampleRate / 1000), 8, nil
	case sampleRate <= 65535:
		return 0xD, uint64(sampleRate), 16, nil
	case sampleRate <= 655350 && sampleRate%10 == 0:
		return 0xE, uint64(sampleRate / 10), 16, nil
	}
	return 0, 0, 0, fmt.Errorf("frame.encodeHeader: unable to encode sample rate %d: %w", sampleRate, ErrInvalidInput)
}

func encodeChannels(bw *bits.Writer, ch Channels) error {
	var code uint64
	switch ch {
	case ChannelsLeftSide:
		code = 0x8
	case ChannelsSideRight:
		code = 0x9
	case ChannelsMidSide:
		code = 0xA
	default:
		if int(ch) >= len(nChannels) || nChannels[ch] == 0 {
			return fmt.Errorf("frame.encodeHeader: unsupported channel assignment %v: %w", ch, ErrInvalidInput)
		}
		code = uint64(ch.Count() - 1)
	}
	return bw.WriteBits(code, 4)
}

func encodeBitsPerSample(bw *bits.Writer, bps uint8) error {
	var code uint64
	switch bps {
	case 0:
		code = 0x0
	case 8:
		code = 0x1
	case 12:
		code = 0x2
	case 16:
		code = 0x4
	case 20:
		code = 0x5
	case 24:
		code = 0x6
	default:
		return fmt.Errorf("frame.encodeHeader: unsupported sample size %d: %w", bps, ErrInvalidInput)
	}
	return bw.WriteBits(code, 3)
}
