package flac

import "github.com/mkzflac/flac/frame"

// maxLPCOrder bounds the encoder's LPC order search.
const maxLPCOrder = 8

// chooseSubframe picks the cheapest encoding (in total bits) for one
// channel's samples at the given bit depth: Constant, Verbatim, Fixed
// order 0..4, or LPC at orders 1..maxLPCOrder and precisions 5..15.
func chooseSubframe(samples []int32, bps uint8) frame.Subframe {
	if allEqual(samples) {
		return frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredConstant},
			Samples:   samples,
		}
	}

	best := frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
		Samples:   samples,
	}
	bestBits := int64(bps) * int64(len(samples))

	for order := 0; order <= 4 && order < len(samples); order++ {
		residual := fixedResidual(samples, order)
		_, bits := bestPartitionOrder(residual, order, uint16(len(samples)))
		cost := int64(bps)*int64(order) + bits
		if cost < bestBits {
			bestBits = cost
			best = frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredFixed, Order: order},
				Samples:   samples,
			}
		}
	}

	if order, qcoeffs, shift, precision, cost := bestLPC(samples, bps); qcoeffs != nil && cost < bestBits {
		best = frame.Subframe{
			SubHeader:    frame.SubHeader{Pred: frame.PredLPC, Order: order},
			Samples:      samples,
			LPCCoeffs:    qcoeffs,
			LPCShift:     shift,
			LPCPrecision: precision,
		}
	}

	return best
}

// bestLPC searches LPC orders 1..maxLPCOrder and precisions 5..15 for the
// cheapest quantized predictor, returning its order, quantized
// coefficients, shift, precision, and total bit cost.
func bestLPC(samples []int32, bps uint8) (order int, qcoeffs []int32, shift int8, precision uint8, cost int64) {
	maxOrder := maxLPCOrder
	if maxOrder >= len(samples) {
		maxOrder = len(samples) - 1
	}
	if maxOrder < 1 {
		return 0, nil, 0, 0, 0
	}

	ac := autocorrelate(samples, maxOrder)
	coeffsByOrder := lpcCoeffsByOrder(ac)

	bestCost := int64(1) << 62
	var bestOrder int
	var bestQ []int32
	var bestShift int8
	var bestPrecision uint8

	for o := 1; o <= maxOrder; o++ {
		fc := coeffsByOrder[o]
		if fc == nil {
			continue
		}
		for p := uint8(5); p <= 15; p++ {
			qc, sh, ok := quantizeLPC(fc, p)
			if !ok {
				continue
			}
			residual := lpcResidual(samples, qc, sh)
			_, bits := bestPartitionOrder(residual, o, uint16(len(samples)))
			c := int64(bps)*int64(o) + int64(p)*int64(o) + 9 + bits
			if c < bestCost {
				bestCost = c
				bestOrder = o
				bestQ = qc
				bestShift = sh
				bestPrecision = p
			}
		}
	}
	return bestOrder, bestQ, bestShift, bestPrecision, bestCost
}

func allEqual(samples []int32) bool {
	for _, v := range samples[1:] {
		if v != samples[0] {
			return false
		}
	}
	return true
}
