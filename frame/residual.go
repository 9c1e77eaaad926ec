package frame

import (
	"fmt"
	"math/bits"

	fbits "github.com/mkzflac/flac/internal/bits"
)

// residual coding methods, selected by the 2-bit field that opens a
// subframe's residual section.
const (
	riceMethod  = 0x0 // partitioned Rice coding, 4-bit parameters.
	rice2Method = 0x1 // partitioned Rice coding, 5-bit parameters.
)

const (
	riceEscape  = 0xF  // 4-bit escape code: partition stored as raw n-bit samples.
	rice2Escape = 0x1F // 5-bit escape code.
)

// decodeResidual reads predOrder..blockSize-1 residual values (the warm-up
// samples occupy indices 0..predOrder-1 and are read by the caller).
//
// ref: https://www.xiph.org/flac/format.html#residual
func decodeResidual(br *fbits.Reader, predOrder int, blockSize uint16) ([]int32, error) {
	method, err := br.ReadBits(2)
	if err != nil {
		return nil, unexpected(err)
	}
	switch method {
	case riceMethod:
		return decodePartitionedRice(br, predOrder, blockSize, 4, riceEscape)
	case rice2Method:
		return decodePartitionedRice(br, predOrder, blockSize, 5, rice2Escape)
	default:
		return nil, fmt.Errorf("frame.decodeResidual: reserved residual coding method (%02b)", method)
	}
}

func decodePartitionedRice(br *fbits.Reader, predOrder int, blockSize uint16, paramBits uint8, escape uint64) ([]int32, error) {
	partOrder, err := br.ReadBits(4)
	if err != nil {
		return nil, unexpected(err)
	}
	partCount := 1 << partOrder
	if partCount > int(blockSize) || int(blockSize)%partCount != 0 {
		return nil, fmt.Errorf("frame.decodePartitionedRice: partition order %d incompatible with block size %d: %w", partOrder, blockSize, ErrInvariant)
	}
	partLen := int(blockSize) / partCount
	if partLen < predOrder {
		return nil, fmt.Errorf("frame.decodePartitionedRice: first partition too small for prediction order %d: %w", predOrder, ErrInvariant)
	}

	residuals := make([]int32, 0, int(blockSize)-predOrder)
	for i := 0; i < partCount; i++ {
		n := partLen
		if i == 0 {
			n -= predOrder
		}
		param, err := br.ReadBits(uint8(paramBits))
		if err != nil {
			return nil, unexpected(err)
		}
		if param == escape {
			rawBits, err := br.ReadBits(5)
			if err != nil {
				return nil, unexpected(err)
			}
			for j := 0; j < n; j++ {
				x, err := br.ReadSigned(uint8(rawBits))
				if err != nil {
					return nil, unexpected(err)
				}
				residuals = append(residuals, int32(x))
			}
			continue
		}
		for j := 0; j < n; j++ {
			x, err := br.ReadRiceSigned(uint(param))
			if err != nil {
				return nil, unexpected(err)
			}
			residuals = append(residuals, x)
		}
	}
	return residuals, nil
}

// ricePartitionPlan is a fully-specified partitioned Rice encoding: a
// partition order plus one Rice parameter per partition. escape[i] is true
// when partition i is cheaper stored as raw rawBits[i]-wide samples than
// Rice-coded.
type ricePartitionPlan struct {
	order   uint8
	params  []uint8
	escape  []bool
	rawBits []uint8
}

// usesRice2 reports whether any partition's parameter needs the 5-bit
// (rather than 4-bit) parameter field.
func (p ricePartitionPlan) usesRice2() bool {
	for i, e := range p.escape {
		if e {
			continue
		}
		if p.params[i] > 14 {
			return true
		}
	}
	return false
}

// planPartitionedRice searches partition orders 0..maxRiceParamOrder for the
// one minimizing total encoded bit count, picking the best constant Rice
// parameter (or raw escape) within each partition.
//
// ref: https://www.xiph.org/flac/format.html#residual
func planPartitionedRice(residuals []int32, predOrder int, blockSize uint16) ricePartitionPlan {
	best := planPartitionOrder(residuals, predOrder, blockSize, 0)
	bestBits := partitionedRiceCost(best, residuals, predOrder, blockSize)

	for order := uint8(1); order <= maxRiceParamOrder; order++ {
		partCount := 1 << order
		if partCount > int(blockSize) || int(blockSize)%partCount != 0 {
			break
		}
		if int(blockSize)>>(order+1) < predOrder {
			break
		}
		plan := planPartitionOrder(residuals, predOrder, blockSize, order)
		if c := partitionedRiceCost(plan, residuals, predOrder, blockSize); c < bestBits {
			bestBits = c
			best = plan
		}
	}
	return best
}

func planPartitionOrder(residuals []int32, predOrder int, blockSize uint16, order uint8) ricePartitionPlan {
	partCount := 1 << order
	partLen := int(blockSize) / partCount
	params := make([]uint8, partCount)
	escape := make([]bool, partCount)
	rawBits := make([]uint8, partCount)
	off := 0
	for i := 0; i < partCount; i++ {
		n := partLen
		if i == 0 {
			n -= predOrder
		}
		part := residuals[off : off+n]
		params[i] = bestRiceParam(part)
		riceBits := riceCost(part, params[i])
		rb := rawBitWidth(part)
		rawCost := int64(5) + int64(rb)*int64(n)
		if rawCost < riceBits {
			escape[i] = true
			rawBits[i] = rb
		}
		off += n
	}
	return ricePartitionPlan{order: order, params: params, escape: escape, rawBits: rawBits}
}

// maxRiceParamOrder bounds the partition-order search. The format's 4-bit
// field allows up to 15; 14 is the largest order the search considers.
const maxRiceParamOrder = 14

// rawBitWidth returns a two's-complement bit width that can hold every value
// in vals: the bit length of the largest magnitude plus a sign bit, and at
// least 2. For a negative power of two this is one bit wider than needed.
func rawBitWidth(vals []int32) uint8 {
	var maxAbs uint32
	for _, v := range vals {
		a := uint32(v)
		if v < 0 {
			a = uint32(-int64(v))
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	w := uint8(bits.Len32(maxAbs)) + 1 // sign bit plus magnitude
	if w < 2 {
		w = 2
	}
	return w
}

// bestRiceParam returns the Rice parameter minimizing the encoded size of
// vals, searched exhaustively over parameters 0..30: coding at parameter k
// costs (k+1)*len(vals) + Σ(fold(v)>>k) bits. Ties go to the smaller
// parameter.
func bestRiceParam(vals []int32) uint8 {
	if len(vals) == 0 {
		return 0
	}
	var sums [31]int64
	for _, v := range vals {
		folded := uint64(fbits.EncodeZigZag(v))
		for k := 0; folded != 0 && k <= 30; k++ {
			sums[k] += int64(folded)
			folded >>= 1
		}
	}
	best, bestCost := uint8(0), int64(len(vals))+sums[0]
	for k := uint8(1); k <= 30; k++ {
		c := int64(k+1)*int64(len(vals)) + sums[k]
		if c < bestCost {
			best, bestCost = k, c
		}
		if sums[k] == 0 {
			break
		}
	}
	return best
}

// riceCost returns the number of bits needed to Rice-code vals with
// parameter k: one stop bit and k remainder bits per value, plus the unary
// quotient.
func riceCost(vals []int32, k uint8) int64 {
	var total int64
	for _, v := range vals {
		folded := fbits.EncodeZigZag(v)
		total += int64(folded>>k) + 1 + int64(k)
	}
	return total
}

func partitionedRiceCost(plan ricePartitionPlan, residuals []int32, predOrder int, blockSize uint16) int64 {
	partCount := 1 << plan.order
	partLen := int(blockSize) / partCount
	paramBits := int64(4)
	if plan.usesRice2() {
		paramBits = 5
	}
	total := int64(2 + 4) // method field + partition order field
	off := 0
	for i := 0; i < partCount; i++ {
		n := partLen
		if i == 0 {
			n -= predOrder
		}
		if plan.escape[i] {
			total += paramBits + 5 + int64(plan.rawBits[i])*int64(n)
		} else {
			total += paramBits + riceCost(residuals[off:off+n], plan.params[i])
		}
		off += n
	}
	return total
}

// encodeResidual writes residuals (len(residuals) == blockSize-predOrder)
// using partitioned Rice coding, searching for the cheapest partition order
// and escaping to raw samples, or widening to 5-bit parameters, whichever
// the plan calls for.
func encodeResidual(bw *fbits.Writer, residuals []int32, predOrder int, blockSize uint16) error {
	plan := planPartitionedRice(residuals, predOrder, blockSize)
	method := uint64(riceMethod)
	paramBits := uint8(4)
	escapeCode := uint64(riceEscape)
	if plan.usesRice2() {
		method = rice2Method
		paramBits = 5
		escapeCode = rice2Escape
	}
	if err := bw.WriteBits(method, 2); err != nil {
		return err
	}
	if err := bw.WriteBits(uint64(plan.order), 4); err != nil {
		return err
	}
	partCount := 1 << plan.order
	partLen := int(blockSize) / partCount
	off := 0
	for i := 0; i < partCount; i++ {
		n := partLen
		if i == 0 {
			n -= predOrder
		}
		part := residuals[off : off+n]
		if plan.escape[i] {
			if err := bw.WriteBits(escapeCode, paramBits); err != nil {
				return err
			}
			if err := bw.WriteBits(uint64(plan.rawBits[i]), 5); err != nil {
				return err
			}
			for _, v := range part {
				if err := bw.WriteSigned(int64(v), plan.rawBits[i]); err != nil {
					return err
				}
			}
		} else {
			param := plan.params[i]
			if err := bw.WriteBits(uint64(param), paramBits); err != nil {
				return err
			}
			for _, v := range part {
				if err := bw.WriteRiceSigned(v, uint(param)); err != nil {
					return err
				}
			}
		}
		off += n
	}
	return nil
}
