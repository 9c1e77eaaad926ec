package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/mkzflac/flac/internal/bits"
)

func residualRoundTrip(t *testing.T, residuals []int32, predOrder int, blockSize uint16) []int32 {
	t.Helper()
	buf := new(bytes.Buffer)
	bw := bits.NewWriter(buf)
	if err := encodeResidual(bw, residuals, predOrder, blockSize); err != nil {
		t.Fatalf("encodeResidual: %v", err)
	}
	if _, err := bw.Align(); err != nil {
		t.Fatalf("align: %v", err)
	}

	br := bits.NewReader(buf)
	got, err := decodeResidual(br, predOrder, blockSize)
	if err != nil {
		t.Fatalf("decodeResidual: %v", err)
	}
	return got
}

func TestResidualRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, predOrder := range []int{0, 1, 2, 4, 8} {
		for _, blockSize := range []uint16{16, 192, 576, 4096} {
			residuals := make([]int32, int(blockSize)-predOrder)
			for i := range residuals {
				residuals[i] = int32(rng.Intn(1<<10) - 1<<9)
			}
			got := residualRoundTrip(t, residuals, predOrder, blockSize)
			if !equalInt32(got, residuals) {
				t.Fatalf("order %d, blocksize %d: round-trip mismatch", predOrder, blockSize)
			}
		}
	}
}

// A handful of enormous outliers makes raw-bits escape partitions cheaper
// than Rice coding; the plan must use them and still round-trip.
func TestResidualEscapePartitions(t *testing.T) {
	residuals := make([]int32, 1024)
	for i := 0; i < 256; i++ {
		if i%2 == 0 {
			residuals[i] = 1 << 29
		} else {
			residuals[i] = -(1 << 29)
		}
	}

	plan := planPartitionedRice(residuals, 0, 1024)
	escaped := false
	for _, e := range plan.escape {
		escaped = escaped || e
	}
	if !escaped {
		t.Error("expected at least one raw-bits escape partition")
	}

	got := residualRoundTrip(t, residuals, 0, 1024)
	if !equalInt32(got, residuals) {
		t.Fatal("escape partition round-trip mismatch")
	}
}

// Parameters above 14 do not fit the 4-bit field, so the plan must widen
// to the 5-bit variant.
func TestResidualRice2Selection(t *testing.T) {
	// Two-sided geometric residuals with a large scale: the optimal Rice
	// parameter lands around 16, past the 4-bit field's ceiling, while
	// the occasional outlier keeps raw-bits escapes unattractive.
	rng := rand.New(rand.NewSource(4))
	residuals := make([]int32, 256)
	for i := range residuals {
		v := int32(rng.ExpFloat64() * 65536)
		if rng.Intn(2) == 0 {
			v = -v
		}
		residuals[i] = v
	}

	plan := planPartitionedRice(residuals, 0, 256)
	if !plan.usesRice2() {
		for _, e := range plan.escape {
			if e {
				t.Skip("plan escaped every partition; no wide parameter to test")
			}
		}
		t.Fatalf("plan parameters %v fit 4 bits for residuals of scale 2^16", plan.params)
	}

	got := residualRoundTrip(t, residuals, 0, 256)
	if !equalInt32(got, residuals) {
		t.Fatal("rice2 round-trip mismatch")
	}
}

func TestDecodeResidualRejectsBadPartitionOrder(t *testing.T) {
	buf := new(bytes.Buffer)
	bw := bits.NewWriter(buf)
	// method 00, partition order 4 over blocksize 24: 24 is not divisible
	// by 16 partitions.
	bw.WriteBits(0, 2)
	bw.WriteBits(4, 4)
	bw.Align()

	br := bits.NewReader(buf)
	if _, err := decodeResidual(br, 0, 24); err == nil {
		t.Fatal("expected partition order rejection")
	}
}

func TestDecodeResidualRejectsReservedMethod(t *testing.T) {
	buf := new(bytes.Buffer)
	bw := bits.NewWriter(buf)
	bw.WriteBits(2, 2) // reserved method 10
	bw.Align()

	br := bits.NewReader(buf)
	if _, err := decodeResidual(br, 0, 16); err == nil {
		t.Fatal("expected reserved method rejection")
	}
}

func TestFirstPartitionExactlyWarmup(t *testing.T) {
	// blocksize 64, partition order 2 (4 partitions of 16), predictor order 16: the first
	// partition holds zero residuals, which the format permits.
	const blockSize = 64
	const predOrder = 16
	residuals := make([]int32, blockSize-predOrder)
	for i := range residuals {
		residuals[i] = int32(i % 5)
	}
	buf := new(bytes.Buffer)
	bw := bits.NewWriter(buf)
	bw.WriteBits(0, 2) // 4-bit Rice method
	bw.WriteBits(2, 4) // partition order 2: 4 partitions of 16
	for part := 0; part < 4; part++ {
		bw.WriteBits(3, 4) // parameter 3
		n := 16
		if part == 0 {
			n = 0
		}
		base := part*16 - predOrder
		for j := 0; j < n; j++ {
			if err := bw.WriteRiceSigned(residuals[base+j], 3); err != nil {
				t.Fatalf("WriteRiceSigned: %v", err)
			}
		}
	}
	bw.Align()

	br := bits.NewReader(buf)
	got, err := decodeResidual(br, predOrder, blockSize)
	if err != nil {
		t.Fatalf("decodeResidual: %v", err)
	}
	if !equalInt32(got, residuals) {
		t.Fatal("round-trip mismatch with an empty first partition")
	}
}
