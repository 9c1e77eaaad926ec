package flac

import (
	"bytes"
	"io"
	"testing"

	"github.com/mkzflac/flac/frame"
	"github.com/mkzflac/flac/meta"
)

func encodeStream(t *testing.T, info *meta.StreamInfo, blockSize int, chans [][]int32) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, info)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	n := len(chans[0])
	for off := 0; off < n; off += blockSize {
		end := off + blockSize
		if end > n {
			end = n
		}
		block := make([][]int32, len(chans))
		for ch := range chans {
			block[ch] = chans[ch][off:end]
		}
		if err := enc.Write(block); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func parseFrames(t *testing.T, raw []byte) (*Stream, []*frame.Frame) {
	t.Helper()
	s, err := NewStream(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	var frames []*frame.Frame
	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			return s, frames
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		frames = append(frames, f)
	}
}

// A run of identical samples must come out as a single Constant subframe.
func TestEncodeConstantBlock(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 16, MaxBlockSize: 16,
		SampleRate: 44100, NChannels: 1, BitsPerSample: 8,
	}
	samples := make([]int32, 16)
	for i := range samples {
		samples[i] = 0x2A
	}
	raw := encodeStream(t, info, 16, [][]int32{samples})

	_, frames := parseFrames(t, raw)
	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	sf := frames[0].Subframes[0]
	if sf.Pred != frame.PredConstant {
		t.Fatalf("prediction = %v, want constant", sf.Pred)
	}
	for i, v := range sf.Samples {
		if v != 0x2A {
			t.Fatalf("sample %d = %#x, want 0x2A", i, v)
		}
	}
}

// A pure ramp is polynomial of degree one: a fixed predictor captures it
// exactly and beats every other candidate.
func TestEncodeRampPicksFixed(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 8192, MaxBlockSize: 8192,
		SampleRate: 44100, NChannels: 1, BitsPerSample: 16,
	}
	samples := rampSamples(8192)
	raw := encodeStream(t, info, 8192, [][]int32{samples})

	_, frames := parseFrames(t, raw)
	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	sf := frames[0].Subframes[0]
	if sf.Pred != frame.PredFixed {
		t.Fatalf("prediction = %v, want fixed", sf.Pred)
	}
	// Orders 2..4 all have zero residual on a ramp; the bps*order term
	// makes 2 the cheapest of them.
	if sf.Order != 2 {
		t.Errorf("fixed order = %d, want 2", sf.Order)
	}
	if !equalSlice(sf.Samples, samples) {
		t.Error("decoded ramp mismatch")
	}
	// The whole frame should be tiny: warmup plus roughly one bit per
	// residual sample.
	if len(raw) > 1500 {
		t.Errorf("encoded stream is %d bytes; the ramp should compress to ~1KB", len(raw))
	}
}

// Identical left and right channels: mid/side must win, with the side
// subframe collapsing to constant zero.
func TestEncodePerfectCorrelationPicksMidSide(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		SampleRate: 44100, NChannels: 2, BitsPerSample: 16,
	}
	l := rampSamples(4096)
	r := append([]int32(nil), l...)
	raw := encodeStream(t, info, 4096, [][]int32{l, r})

	_, frames := parseFrames(t, raw)
	if len(frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(frames))
	}
	hdr := frames[0].Header
	if hdr.Channels != frame.ChannelsMidSide {
		t.Fatalf("channel assignment = %v, want mid/side", hdr.Channels)
	}
	side := frames[0].Subframes[1]
	if side.Pred != frame.PredConstant {
		t.Fatalf("side prediction = %v, want constant", side.Pred)
	}
	if side.Samples[0] != 0 {
		t.Fatalf("side value = %d, want 0", side.Samples[0])
	}
}

// Re-emitting a parsed frame must reproduce its bytes exactly.
func TestFrameEmitParseExact(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 1024, MaxBlockSize: 1024,
		SampleRate: 22050, NChannels: 2, BitsPerSample: 16,
	}
	l, r := randomStereo(4096, 21)
	raw := encodeStream(t, info, 1024, [][]int32{l, r})

	s, err := NewStream(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	var reemitted bytes.Buffer
	io.WriteString(&reemitted, Signature)
	for _, block := range s.MetaBlocks {
		if err := block.Encode(&reemitted); err != nil {
			t.Fatalf("meta re-encode: %v", err)
		}
	}
	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ParseNext: %v", err)
		}
		if err := f.Encode(&reemitted); err != nil {
			t.Fatalf("frame re-encode: %v", err)
		}
	}
	if !bytes.Equal(reemitted.Bytes(), raw) {
		t.Fatal("re-emitted stream differs from the original bytes")
	}
}

// Decoding and re-encoding at the original blocksize must reproduce the
// same sample matrix on a second decode.
func TestEncodeDecodeIdempotent(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 512, MaxBlockSize: 512,
		SampleRate: 48000, NChannels: 2, BitsPerSample: 16,
	}
	l, r := randomStereo(2048, 13)
	raw := encodeStream(t, info, 512, [][]int32{l, r})

	s, err := NewStream(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	first, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	raw2 := encodeStream(t, info, 512, first)
	s2, err := NewStream(bytes.NewReader(raw2))
	if err != nil {
		t.Fatalf("NewStream (2nd): %v", err)
	}
	second, err := Decode(s2)
	if err != nil {
		t.Fatalf("Decode (2nd): %v", err)
	}
	for ch := range first {
		if !equalSlice(second[ch], first[ch]) {
			t.Fatalf("channel %d: second decode differs from first", ch)
		}
	}
	if !equalSlice(first[0], l) || !equalSlice(first[1], r) {
		t.Fatal("first decode differs from the source samples")
	}
}

// Samples sharing trailing zero bits must survive a full encode/decode
// cycle regardless of how the subframe search models them.
func TestEncodeDecodeShiftedSamples(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 256, MaxBlockSize: 256,
		SampleRate: 8000, NChannels: 1, BitsPerSample: 16,
	}
	samples := make([]int32, 256)
	for i := range samples {
		// Every sample has 4 trailing zero bits.
		samples[i] = int32((i%100 - 50) << 4)
	}
	raw := encodeStream(t, info, 256, [][]int32{samples})

	s, err := NewStream(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	got, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !equalSlice(got[0], samples) {
		t.Fatal("shifted-sample round-trip mismatch")
	}
}
