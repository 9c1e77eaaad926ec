package flac

// fixedCoeffs holds the five fixed-predictor coefficient vectors, indexed
// by predictor order. Order 0 has no coefficients: its prediction is 0 and
// its residual is the sample itself.
var fixedCoeffs = [5][]int32{
	0: {},
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// fixedResidual returns the order-p forward-difference residual of
// samples[p:], given that samples[0:p] are the warmup values.
//
// ref: https://www.xiph.org/flac/format.html#subframe_fixed
func fixedResidual(samples []int32, order int) []int32 {
	coeffs := fixedCoeffs[order]
	residual := make([]int32, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += int64(c) * int64(samples[i-1-j])
		}
		residual[i-order] = int32(int64(samples[i]) - pred)
	}
	return residual
}
