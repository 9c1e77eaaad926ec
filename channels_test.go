package flac

import (
	"math/rand"
	"testing"

	"github.com/mkzflac/flac/frame"
)

func randomStereo(n int, seed int64) (l, r []int32) {
	rng := rand.New(rand.NewSource(seed))
	l = make([]int32, n)
	r = make([]int32, n)
	for i := range l {
		l[i] = int32(rng.Intn(1<<16) - 1<<15)
		r[i] = int32(rng.Intn(1<<16) - 1<<15)
	}
	return l, r
}

func TestDecorrelateRoundTrip(t *testing.T) {
	assignments := []frame.Channels{
		frame.ChannelsLeftSide,
		frame.ChannelsSideRight,
		frame.ChannelsMidSide,
	}
	l, r := randomStereo(512, 7)
	for _, a := range assignments {
		ch0, ch1 := decorrelate(a, l, r)
		gotL, gotR := undecorrelate(a, [][]int32{ch0, ch1})
		if !equalSlice(gotL, l) {
			t.Errorf("%v: left mismatch", a)
		}
		if !equalSlice(gotR, r) {
			t.Errorf("%v: right mismatch", a)
		}
	}
}

// An odd l+r loses a bit in the mid channel; the side channel's low bit
// must restore it.
func TestMidSideOddParity(t *testing.T) {
	l := []int32{3, -3, 5, 1, -1, 7}
	r := []int32{0, 0, 0, 0, 0, 0}
	mid, side := decorrelate(frame.ChannelsMidSide, l, r)
	gotL, gotR := undecorrelate(frame.ChannelsMidSide, [][]int32{mid, side})
	if !equalSlice(gotL, l) {
		t.Errorf("left = %v, want %v", gotL, l)
	}
	if !equalSlice(gotR, r) {
		t.Errorf("right = %v, want %v", gotR, r)
	}
}

func TestMidSideSideWidth(t *testing.T) {
	// At 16 bits per sample the side channel needs 17: extreme opposite
	// samples must survive the transform.
	l := []int32{32767, -32768}
	r := []int32{-32768, 32767}
	mid, side := decorrelate(frame.ChannelsMidSide, l, r)
	if side[0] != 65535 || side[1] != -65535 {
		t.Fatalf("side = %v, want [65535 -65535]", side)
	}
	gotL, gotR := undecorrelate(frame.ChannelsMidSide, [][]int32{mid, side})
	if !equalSlice(gotL, l) || !equalSlice(gotR, r) {
		t.Fatalf("round-trip mismatch: got %v/%v, want %v/%v", gotL, gotR, l, r)
	}
}

func TestDecorrelateIndependentPassthrough(t *testing.T) {
	l, r := randomStereo(16, 9)
	ch0, ch1 := decorrelate(frame.ChannelsLR, l, r)
	if !equalSlice(ch0, l) || !equalSlice(ch1, r) {
		t.Fatal("independent assignment must pass samples through unchanged")
	}
}
