package flac

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/mkzflac/flac/meta"
)

func TestEncodeRangesMatchesSerial(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 512, MaxBlockSize: 512,
		SampleRate: 44100, NChannels: 2, BitsPerSample: 16,
	}
	l, r := randomStereo(512*8, 17)

	serial := encodeStream(t, info, 512, [][]int32{l, r})

	var parallel bytes.Buffer
	progress, err := EncodeRanges(&parallel, info, 512, [][]int32{l, r}, 4, nil)
	if err != nil {
		t.Fatalf("EncodeRanges: %v", err)
	}
	if !bytes.Equal(parallel.Bytes(), serial) {
		t.Fatal("parallel encoding differs from serial encoding")
	}

	var done int64
	for _, p := range progress {
		done += atomic.LoadInt64(&p.Done)
	}
	if done != 8 {
		t.Fatalf("total blocks done = %d, want 8", done)
	}
}

func TestEncodeRangesSingleWorker(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 256, MaxBlockSize: 256,
		SampleRate: 8000, NChannels: 1, BitsPerSample: 16,
	}
	samples := rampSamples(256 * 3)

	var buf bytes.Buffer
	if _, err := EncodeRanges(&buf, info, 256, [][]int32{samples}, 1, nil); err != nil {
		t.Fatalf("EncodeRanges: %v", err)
	}

	s, err := NewStream(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	got, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !equalSlice(got[0], samples) {
		t.Fatal("round-trip mismatch")
	}
}

func TestEncodeRangesAbort(t *testing.T) {
	info := &meta.StreamInfo{
		MinBlockSize: 256, MaxBlockSize: 256,
		SampleRate: 8000, NChannels: 1, BitsPerSample: 16,
	}
	samples := rampSamples(256 * 16)

	abort := new(atomic.Bool)
	abort.Store(true)

	var buf bytes.Buffer
	progress, err := EncodeRanges(&buf, info, 256, [][]int32{samples}, 2, abort)
	if err != nil {
		t.Fatalf("EncodeRanges: %v", err)
	}
	for worker, p := range progress {
		if n := atomic.LoadInt64(&p.Done); n != 0 {
			t.Errorf("worker %d completed %d blocks after abort", worker, n)
		}
	}
}
