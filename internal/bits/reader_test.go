package bits_test

import (
	"bytes"
	"testing"

	"github.com/mkzflac/flac/internal/bits"
)

func TestBitsRoundTrip(t *testing.T) {
	for n := uint8(1); n <= 64; n++ {
		buf := new(bytes.Buffer)
		w := bits.NewWriter(buf)
		vmax := uint64(1)<<n - 1
		if n == 64 {
			vmax = ^uint64(0)
		}
		samples := []uint64{0, 1, vmax}
		for _, v := range samples {
			if err := w.WriteBits(v&vmax, n); err != nil {
				t.Fatalf("n=%d: write error: %v", n, err)
			}
		}
		if _, err := w.Align(); err != nil {
			t.Fatalf("n=%d: align error: %v", n, err)
		}

		r := bits.NewReader(buf)
		for _, want := range samples {
			got, err := r.ReadBits(n)
			if err != nil {
				t.Fatalf("n=%d: read error: %v", n, err)
			}
			if got != want&vmax {
				t.Fatalf("n=%d: round-trip mismatch; want %d, got %d", n, want&vmax, got)
			}
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	for n := uint8(2); n <= 40; n++ {
		buf := new(bytes.Buffer)
		w := bits.NewWriter(buf)
		lo := -(int64(1) << (n - 1))
		hi := int64(1)<<(n-1) - 1
		samples := []int64{lo, -1, 0, 1, hi}
		for _, v := range samples {
			if err := w.WriteSigned(v, n); err != nil {
				t.Fatalf("n=%d: write error: %v", n, err)
			}
		}
		if _, err := w.Align(); err != nil {
			t.Fatalf("n=%d: align error: %v", n, err)
		}

		r := bits.NewReader(buf)
		for _, want := range samples {
			got, err := r.ReadSigned(n)
			if err != nil {
				t.Fatalf("n=%d: read error: %v", n, err)
			}
			if got != want {
				t.Fatalf("n=%d: round-trip mismatch; want %d, got %d", n, want, got)
			}
		}
	}
}

func TestRiceSignedRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 100, -100, 1 << 20, -(1 << 20)}
	for k := uint(0); k <= 30; k++ {
		buf := new(bytes.Buffer)
		w := bits.NewWriter(buf)
		for _, v := range values {
			if err := w.WriteRiceSigned(v, k); err != nil {
				t.Fatalf("k=%d: write error: %v", k, err)
			}
		}
		if _, err := w.Align(); err != nil {
			t.Fatalf("k=%d: align error: %v", k, err)
		}

		r := bits.NewReader(buf)
		for _, want := range values {
			got, err := r.ReadRiceSigned(k)
			if err != nil {
				t.Fatalf("k=%d: read error: %v", k, err)
			}
			if got != want {
				t.Fatalf("k=%d: round-trip mismatch; want %d, got %d", k, want, got)
			}
		}
	}
}

func TestRiceUnsignedRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 7, 100, 1 << 21}
	for k := uint(0); k <= 20; k += 5 {
		buf := new(bytes.Buffer)
		w := bits.NewWriter(buf)
		for _, v := range values {
			if err := w.WriteRiceUnsigned(v, k); err != nil {
				t.Fatalf("k=%d: write error: %v", k, err)
			}
		}
		if _, err := w.Align(); err != nil {
			t.Fatalf("k=%d: align error: %v", k, err)
		}

		r := bits.NewReader(buf)
		for _, want := range values {
			got, err := r.ReadRiceUnsigned(k)
			if err != nil {
				t.Fatalf("k=%d: read error: %v", k, err)
			}
			if got != want {
				t.Fatalf("k=%d: round-trip mismatch; want %d, got %d", k, want, got)
			}
		}
	}
}

func TestUTF8RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, 0x3FFFFFFFF, 0xFFFFFFFFF}
	for _, want := range values {
		buf := new(bytes.Buffer)
		w := bits.NewWriter(buf)
		if err := w.WriteUTF8(want); err != nil {
			t.Fatalf("value=%d: write error: %v", want, err)
		}
		if _, err := w.Align(); err != nil {
			t.Fatalf("value=%d: align error: %v", want, err)
		}

		r := bits.NewReader(buf)
		got, err := r.ReadUTF8()
		if err != nil {
			t.Fatalf("value=%d: read error: %v", want, err)
		}
		if got != want {
			t.Fatalf("round-trip mismatch; want %d, got %d", want, got)
		}
	}
}

func TestUTF8TooLarge(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bits.NewWriter(buf)
	// 2^36-1 is the largest encodable value; 2^36 must be rejected.
	if err := w.WriteUTF8(0x1000000000); err == nil {
		t.Fatal("expected an error encoding a value beyond the 36-bit UTF-8 coding range")
	}
}

func TestPositionTracksCursor(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bits.NewWriter(buf)
	w.WriteBits(0x3FFE, 14)
	if pos := w.Position(); pos.ByteIndex != 1 || pos.BitOffset != 6 {
		t.Fatalf("write position = %+v, want byte 1, bit 6", pos)
	}
	w.WriteBits(0, 2)
	w.WriteBits(0xAB, 8)
	if pos := w.Position(); pos.ByteIndex != 3 || pos.BitOffset != 0 {
		t.Fatalf("write position = %+v, want byte 3, bit 0", pos)
	}

	r := bits.NewReader(buf)
	r.ReadBits(14)
	got := r.Position()
	if got.ByteIndex != 1 || got.BitOffset != 6 {
		t.Fatalf("read position = %+v, want byte 1, bit 6", got)
	}
	if back := bits.FromBitCount(got.BitCount()); back != got {
		t.Fatalf("BitCount/FromBitCount round-trip: %+v -> %+v", got, back)
	}
}

func TestBitWriterExactBytes(t *testing.T) {
	buf := new(bytes.Buffer)
	w := bits.NewWriter(buf)
	if err := w.WriteBits(0b101, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(0b11110000, 8); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(0b1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Align(); err != nil {
		t.Fatal(err)
	}
	got := buf.Bytes()
	// 12 bits written (101 11110000 1), padded to 16: 10111110 00010000.
	want := []byte{0b10111110, 0b00010000}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %08b %08b, want %08b %08b", got[0], got[1], want[0], want[1])
	}
}
