package frame

import (
	"fmt"

	"github.com/mkzflac/flac/internal/bits"
)

// PredMethod specifies the prediction method used to encode a subframe.
type PredMethod uint8

// Prediction methods.
const (
	PredConstant PredMethod = iota
	PredVerbatim
	PredFixed
	PredLPC
)

func (m PredMethod) String() string {
	switch m {
	case PredConstant:
		return "constant"
	case PredVerbatim:
		return "verbatim"
	case PredFixed:
		return "fixed"
	case PredLPC:
		return "lpc"
	default:
		return fmt.Sprintf("PredMethod(%d)", uint8(m))
	}
}

// SubHeader describes how a subframe's samples are encoded.
type SubHeader struct {
	// Pred is the prediction method used.
	Pred PredMethod
	// Order is the fixed predictor order (0-4) or LPC order (1-32);
	// meaningless for Constant and Verbatim.
	Order int
	// Wasted is the number of wasted (trailing zero) bits shared by every
	// sample in the subframe. The stream stores the samples shifted right by
	// Wasted; Samples holds them shifted back.
	Wasted uint8
}

// Subframe holds the decoded samples of a single channel within a frame.
type Subframe struct {
	SubHeader
	// Samples holds one value per inter-channel sample, already shifted left
	// by Wasted bits and sign-extended to the subframe's bit depth, but NOT
	// yet inverse-decorrelated across channels.
	Samples []int32
	// LPCCoeffs, LPCShift and LPCPrecision carry the quantized predictor of a
	// PredLPC subframe: the one an encoder has chosen, or the one read from
	// the stream when decoding.
	LPCCoeffs    []int32
	LPCShift     int8
	LPCPrecision uint8
}

// fixedCoeffs are the LPC coefficients of the five fixed predictors (orders
// 0 to 4), derived
// from repeated first differencing.
//
// ref: https://www.xiph.org/flac/format.html#subframe_fixed
var fixedCoeffs = [...][]int32{
	0: {},
	1: {1},
	2: {2, -1},
	3: {3, -3, 1},
	4: {4, -6, 4, -1},
}

// parseSubframe reads a subframe header and its encoded samples. bps is the
// subframe's bit depth (as resolved from the frame header/StreamInfo, plus
// one for a side channel), blockSize the number of inter-channel samples.
func parseSubframe(br *bits.Reader, bps uint8, blockSize uint16) (Subframe, error) {
	var sf Subframe

	x, err := br.ReadBits(1)
	if err != nil {
		return sf, unexpected(err)
	}
	if x != 0 {
		return sf, fmt.Errorf("frame.parseSubframe: non-zero padding bit")
	}

	typ, err := br.ReadBits(6)
	if err != nil {
		return sf, unexpected(err)
	}
	switch {
	case typ == 0x00:
		sf.Pred = PredConstant
	case typ == 0x01:
		sf.Pred = PredVerbatim
	case typ < 0x08:
		return sf, fmt.Errorf("frame.parseSubframe: reserved subframe type (%06b)", typ)
	case typ < 0x10:
		order := int(typ & 0x07)
		if order > 4 {
			return sf, fmt.Errorf("frame.parseSubframe: invalid fixed predictor order %d: %w", order, ErrInvariant)
		}
		sf.Pred = PredFixed
		sf.Order = order
	case typ < 0x20:
		return sf, fmt.Errorf("frame.parseSubframe: reserved subframe type (%06b)", typ)
	default:
		sf.Pred = PredLPC
		sf.Order = int(typ&0x1F) + 1
	}

	hasWasted, err := br.ReadBits(1)
	if err != nil {
		return sf, unexpected(err)
	}
	if hasWasted != 0 {
		k, err := br.ReadUnary()
		if err != nil {
			return sf, unexpected(err)
		}
		sf.Wasted = uint8(k) + 1
	}

	sampleBPS := bps - sf.Wasted

	switch sf.Pred {
	case PredConstant:
		x, err := br.ReadSigned(sampleBPS)
		if err != nil {
			return sf, unexpected(err)
		}
		sf.Samples = make([]int32, blockSize)
		for i := range sf.Samples {
			sf.Samples[i] = int32(x)
		}

	case PredVerbatim:
		sf.Samples = make([]int32, blockSize)
		for i := range sf.Samples {
			x, err := br.ReadSigned(sampleBPS)
			if err != nil {
				return sf, unexpected(err)
			}
			sf.Samples[i] = int32(x)
		}

	case PredFixed:
		if err := decodeFIR(br, &sf, fixedCoeffs[sf.Order], 0, sampleBPS, blockSize); err != nil {
			return sf, err
		}

	case PredLPC:
		coeffs, shift, precision, err := parseLPCCoeffs(br, sf.Order)
		if err != nil {
			return sf, err
		}
		sf.LPCCoeffs, sf.LPCShift, sf.LPCPrecision = coeffs, shift, precision
		if err := decodeFIR(br, &sf, coeffs, shift, sampleBPS, blockSize); err != nil {
			return sf, err
		}
	}

	if sf.Wasted > 0 {
		for i, v := range sf.Samples {
			sf.Samples[i] = v << sf.Wasted
		}
	}
	return sf, nil
}

func parseLPCCoeffs(br *bits.Reader, order int) (coeffs []int32, shift int8, precision uint8, err error) {
	x, err := br.ReadBits(4)
	if err != nil {
		return nil, 0, 0, unexpected(err)
	}
	if x == 0xF {
		return nil, 0, 0, fmt.Errorf("frame.parseSubframe: reserved LPC precision (1111)")
	}
	precision = uint8(x) + 1

	shiftRaw, err := br.ReadSigned(5)
	if err != nil {
		return nil, 0, 0, unexpected(err)
	}
	if shiftRaw < 0 {
		return nil, 0, 0, fmt.Errorf("frame.parseSubframe: negative quantization level %d", shiftRaw)
	}
	shift = int8(shiftRaw)

	coeffs = make([]int32, order)
	for i := range coeffs {
		x, err := br.ReadSigned(precision)
		if err != nil {
			return nil, 0, 0, unexpected(err)
		}
		coeffs[i] = int32(x)
	}
	return coeffs, shift, precision, nil
}

// decodeFIR reads the warm-up samples and residual for a fixed or LPC
// subframe, then reconstructs Samples by running the FIR predictor forward.
func decodeFIR(br *bits.Reader, sf *Subframe, coeffs []int32, shift int8, sampleBPS uint8, blockSize uint16) error {
	order := len(coeffs)
	warm := make([]int32, order)
	for i := range warm {
		x, err := br.ReadSigned(sampleBPS)
		if err != nil {
			return unexpected(err)
		}
		warm[i] = int32(x)
	}
	residuals, err := decodeResidual(br, order, blockSize)
	if err != nil {
		return err
	}

	samples := make([]int32, blockSize)
	copy(samples, warm)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += int64(c) * int64(samples[i-j-1])
		}
		samples[i] = int32(pred>>uint(shift)) + residuals[i-order]
	}
	sf.Samples = samples
	return nil
}

// encodeSubframe writes sf's header and samples. sampleBPS is the bit depth
// the raw samples (pre-wasted-bits shift) should be encoded at.
func encodeSubframe(bw *bits.Writer, sf Subframe, sampleBPS uint8) error {
	if err := bw.WriteBits(0, 1); err != nil {
		return err
	}

	var typ uint64
	switch sf.Pred {
	case PredConstant:
		typ = 0x00
	case PredVerbatim:
		typ = 0x01
	case PredFixed:
		if sf.Order < 0 || sf.Order > 4 {
			return fmt.Errorf("frame.encodeSubframe: fixed predictor order %d outside [0,4]: %w", sf.Order, ErrInvalidInput)
		}
		typ = 0x08 | uint64(sf.Order)
	case PredLPC:
		if sf.Order < 1 || sf.Order > 32 {
			return fmt.Errorf("frame.encodeSubframe: LPC order %d outside [1,32]: %w", sf.Order, ErrInvalidInput)
		}
		if sf.LPCPrecision < 5 || sf.LPCPrecision > 15 {
			return fmt.Errorf("frame.encodeSubframe: LPC precision %d outside [5,15]: %w", sf.LPCPrecision, ErrInvalidInput)
		}
		typ = 0x20 | uint64(sf.Order-1)
	default:
		return fmt.Errorf("frame.encodeSubframe: unknown prediction method %v", sf.Pred)
	}
	if err := bw.WriteBits(typ, 6); err != nil {
		return err
	}

	if sf.Wasted > 0 {
		if err := bw.WriteBits(1, 1); err != nil {
			return err
		}
		if err := bw.WriteUnary(uint64(sf.Wasted - 1)); err != nil {
			return err
		}
	} else {
		if err := bw.WriteBits(0, 1); err != nil {
			return err
		}
	}

	samples := sf.Samples
	bps := sampleBPS - sf.Wasted
	if sf.Wasted > 0 {
		shifted := make([]int32, len(samples))
		for i, v := range samples {
			shifted[i] = v >> sf.Wasted
		}
		samples = shifted
	}

	switch sf.Pred {
	case PredConstant:
		return bw.WriteSigned(int64(samples[0]), bps)

	case PredVerbatim:
		for _, v := range samples {
			if err := bw.WriteSigned(int64(v), bps); err != nil {
				return err
			}
		}
		return nil

	case PredFixed:
		return encodeFIR(bw, samples, fixedCoeffs[sf.Order], 0, bps)

	case PredLPC:
		coeffs, shift, precision := sf.LPCCoeffs, sf.LPCShift, sf.LPCPrecision
		if err := bw.WriteBits(uint64(precision-1), 4); err != nil {
			return err
		}
		if err := bw.WriteSigned(int64(shift), 5); err != nil {
			return err
		}
		for _, c := range coeffs {
			if err := bw.WriteSigned(int64(c), precision); err != nil {
				return err
			}
		}
		return encodeFIR(bw, samples, coeffs, shift, bps)
	}
	return nil
}

// encodeFIR writes order warm-up samples followed by the Rice-coded
// residual of running coeffs/shift forward over samples.
func encodeFIR(bw *bits.Writer, samples []int32, coeffs []int32, shift int8, bps uint8) error {
	order := len(coeffs)
	for i := 0; i < order; i++ {
		if err := bw.WriteSigned(int64(samples[i]), bps); err != nil {
			return err
		}
	}
	residuals := make([]int32, len(samples)-order)
	for i := order; i < len(samples); i++ {
		var pred int64
		for j, c := range coeffs {
			pred += int64(c) * int64(samples[i-j-1])
		}
		residuals[i-order] = samples[i] - int32(pred>>uint(shift))
	}
	return encodeResidual(bw, residuals, order, uint16(len(samples)))
}
