package flac

import "math"

// autocorrelate computes a[g] = Σ x[i]·x[i+g] for g in 0..order, in
// floating point, the input to Levinson-Durbin recursion.
func autocorrelate(samples []int32, order int) []float64 {
	ac := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for i := lag; i < len(samples); i++ {
			sum += float64(samples[i]) * float64(samples[i-lag])
		}
		ac[lag] = sum
	}
	return ac
}

// lpcCoeffsByOrder runs the Levinson-Durbin recurrence over autocorrelation
// ac, returning the floating-point coefficient set for every order from 1
// to len(ac)-1, so the caller can evaluate every order's quantized cost
// without re-deriving the recursion each time. An entry is nil for every
// order when ac[0] is zero, and for the orders past the point where the
// prediction error reaches zero.
func lpcCoeffsByOrder(ac []float64) [][]float64 {
	maxOrder := len(ac) - 1
	result := make([][]float64, maxOrder+1)
	if ac[0] == 0 {
		return result
	}

	err := ac[0]
	lpc := make([]float64, maxOrder)
	for i := 0; i < maxOrder; i++ {
		var acc float64
		for j := 0; j < i; j++ {
			acc += lpc[j] * ac[i-j]
		}
		var k float64
		if err != 0 {
			k = (ac[i+1] - acc) / err
		}
		var tmp [32]float64
		copy(tmp[:i], lpc[:i])
		lpc[i] = k
		for j := 0; j < i; j++ {
			lpc[j] = tmp[j] - k*tmp[i-1-j]
		}
		err *= 1 - k*k

		order := i + 1
		coeffs := make([]float64, order)
		copy(coeffs, lpc[:order])
		result[order] = coeffs

		if err <= 0 {
			break
		}
	}
	return result
}

// quantizeLPC quantizes floating-point LPC coefficients to signed
// precision-bit integers, returning the coefficients and the shift
// (quantization_level) used: coefficient i is round(coef[i] * 2^shift),
// with each coefficient's rounding error fed into the next.
func quantizeLPC(coeffs []float64, precision uint8) (qcoeffs []int32, shift int8, ok bool) {
	maxCoeff := 0.0
	for _, c := range coeffs {
		if a := math.Abs(c); a > maxCoeff {
			maxCoeff = a
		}
	}
	if maxCoeff <= 0 {
		return nil, 0, false
	}
	headroom := int(math.Floor(math.Log2(maxCoeff))) + 1
	level := int(precision) - headroom - 1
	if level > 15 {
		level = 15
	}
	if level < 0 {
		level = 0
	}

	qmax := int32(1)<<(precision-1) - 1
	qmin := -(int32(1) << (precision - 1))

	qcoeffs = make([]int32, len(coeffs))
	var errAcc float64
	for i, c := range coeffs {
		scaled := c*float64(int64(1)<<uint(level)) + errAcc
		q := int32(math.Round(scaled))
		if q > qmax {
			q = qmax
		}
		if q < qmin {
			q = qmin
		}
		errAcc = scaled - float64(q)
		qcoeffs[i] = q
	}
	return qcoeffs, int8(level), true
}

// lpcResidual computes the order-p LPC residual of samples, given
// quantized coefficients qcoeffs and quantization shift.
func lpcResidual(samples []int32, qcoeffs []int32, shift int8) []int32 {
	order := len(qcoeffs)
	residual := make([]int32, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range qcoeffs {
			pred += int64(c) * int64(samples[i-1-j])
		}
		pred >>= uint(shift)
		residual[i-order] = int32(int64(samples[i]) - pred)
	}
	return residual
}
