package flac

import (
	"io"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mkzflac/flac/frame"
)

// encodeBlock builds and writes one frame from samples (one slice per
// source channel), choosing the cheapest channel assignment for stereo
// input and the cheapest subframe encoding per channel.
func (enc *Encoder) encodeBlock(w io.Writer, samples [][]int32) error {
	blockSize := len(samples[0])
	for _, s := range samples {
		if len(s) != blockSize {
			return errutil.Newf("flac.Encoder: channel sample-count mismatch; expected %d, got %d", blockSize, len(s))
		}
	}

	assignment, chanSamples := enc.chooseAssignment(samples)

	hdr := frame.Header{
		HasFixedBlockSize: true,
		BlockSize:         uint16(blockSize),
		SampleRate:        enc.stream.Info.SampleRate,
		Channels:          assignment,
		BitsPerSample:     enc.stream.Info.BitsPerSample,
		Num:               enc.curNum,
	}
	enc.curNum++

	f := &frame.Frame{Header: hdr}
	bps := hdr.BitsPerSample
	for i, s := range chanSamples {
		sampleBPS := bps
		if widenSideAssignment(assignment, i) {
			sampleBPS++
		}
		f.Subframes = append(f.Subframes, chooseSubframe(s, sampleBPS))
	}

	return f.Encode(w)
}

// chooseAssignment picks the channel assignment (and the resulting
// per-channel sample vectors) with the lowest estimated total bit cost:
// Independent, LeftSide, RightSide, or MidSide. Only stereo input is a
// candidate for decorrelation.
func (enc *Encoder) chooseAssignment(samples [][]int32) (frame.Channels, [][]int32) {
	if len(samples) != 2 {
		return independentAssignment(len(samples)), samples
	}
	l, r := samples[0], samples[1]
	bps := enc.stream.Info.BitsPerSample

	// MidSide before LeftSide/SideRight so it wins cost ties, as with a
	// perfectly correlated pair where every side candidate is constant zero.
	candidates := []frame.Channels{frame.ChannelsLR, frame.ChannelsMidSide, frame.ChannelsLeftSide, frame.ChannelsSideRight}
	var best frame.Channels
	var bestChans [][]int32
	bestCost := int64(1) << 62

	for _, c := range candidates {
		ch0, ch1 := decorrelate(c, l, r)
		bps0, bps1 := bps, bps
		if widenSideAssignment(c, 0) {
			bps0++
		}
		if widenSideAssignment(c, 1) {
			bps1++
		}
		cost := subframeCostEstimate(ch0, bps0) + subframeCostEstimate(ch1, bps1)
		if cost < bestCost {
			bestCost = cost
			best = c
			bestChans = [][]int32{ch0, ch1}
		}
	}
	return best, bestChans
}

// subframeCostEstimate returns the bit cost of the cheapest encoding found
// for samples, without constructing the chosen Subframe.
func subframeCostEstimate(samples []int32, bps uint8) int64 {
	sf := chooseSubframe(samples, bps)
	switch sf.Pred {
	case frame.PredConstant:
		return int64(bps)
	case frame.PredVerbatim:
		return int64(bps) * int64(len(samples))
	case frame.PredFixed:
		residual := fixedResidual(samples, sf.Order)
		_, bits := bestPartitionOrder(residual, sf.Order, uint16(len(samples)))
		return int64(bps)*int64(sf.Order) + bits
	case frame.PredLPC:
		residual := lpcResidual(samples, sf.LPCCoeffs, sf.LPCShift)
		_, bits := bestPartitionOrder(residual, sf.Order, uint16(len(samples)))
		return int64(bps)*int64(sf.Order) + int64(sf.LPCPrecision)*int64(sf.Order) + 9 + bits
	}
	return int64(bps) * int64(len(samples))
}

func independentAssignment(nch int) frame.Channels {
	return frame.Channels(nch - 1)
}

func widenSideAssignment(ch frame.Channels, channel int) bool {
	switch ch {
	case frame.ChannelsLeftSide, frame.ChannelsMidSide:
		return channel == 1
	case frame.ChannelsSideRight:
		return channel == 0
	}
	return false
}
