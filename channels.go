package flac

import "github.com/mkzflac/flac/frame"

// decorrelate applies the forward channel transform used by the encoder's
// stereo candidates, returning per-channel sample vectors at the widths
// required by assignment (the side channel carries bps+1 bits).
func decorrelate(assignment frame.Channels, l, r []int32) (ch0, ch1 []int32) {
	n := len(l)
	switch assignment {
	case frame.ChannelsLeftSide:
		side := make([]int32, n)
		for i := range l {
			side[i] = l[i] - r[i]
		}
		return l, side
	case frame.ChannelsSideRight:
		side := make([]int32, n)
		for i := range l {
			side[i] = l[i] - r[i]
		}
		return side, r
	case frame.ChannelsMidSide:
		mid := make([]int32, n)
		side := make([]int32, n)
		for i := range l {
			mid[i] = int32((int64(l[i]) + int64(r[i])) >> 1)
			side[i] = l[i] - r[i]
		}
		return mid, side
	default:
		return l, r
	}
}

// undecorrelate reverses decorrelate, reconstructing left/right samples
// from the two decoded channel vectors per the frame's channel assignment.
//
// ref: https://www.xiph.org/flac/format.html#interchannel
func undecorrelate(assignment frame.Channels, chans [][]int32) (l, r []int32) {
	switch assignment {
	case frame.ChannelsLeftSide:
		l, s := chans[0], chans[1]
		r = make([]int32, len(l))
		for i := range l {
			r[i] = l[i] - s[i]
		}
		return l, r
	case frame.ChannelsSideRight:
		s, rc := chans[0], chans[1]
		l = make([]int32, len(rc))
		for i := range rc {
			l[i] = rc[i] + s[i]
		}
		return l, rc
	case frame.ChannelsMidSide:
		m, s := chans[0], chans[1]
		l = make([]int32, len(m))
		r = make([]int32, len(m))
		for i := range m {
			mid := (int64(m[i]) << 1) | (int64(s[i]) & 1)
			l[i] = int32((mid + int64(s[i])) >> 1)
			r[i] = int32((mid - int64(s[i])) >> 1)
		}
		return l, r
	default:
		return chans[0], chans[1]
	}
}
