package flac

import "github.com/mkzflac/flac/internal/bits"

// riceFold is the zigzag-style mapping used both for encoded Rice codes
// and for the sum-based parameter search below.
func riceFold(v int32) uint64 {
	return uint64(bits.EncodeZigZag(v))
}

// bestPartitionOrder searches partition orders 0..14 for the one that
// minimizes the total encoded bit count of residual under partitioned Rice
// coding, used by the predictor search in enc_subframe.go to compare
// candidate Fixed orders and LPC (order, precision) pairs without
// committing to the bit-exact partition layout frame.encodeResidual will
// later choose.
//
// ref: https://www.xiph.org/flac/format.html#partitioned_rice
func bestPartitionOrder(residual []int32, predOrder int, blockSize uint16) (order uint8, totalBits int64) {
	bestOrder := uint8(0)
	bestBits := partitionCost(residual, predOrder, blockSize, 0)

	for k := uint8(1); k <= 14; k++ {
		partCount := 1 << k
		if partCount > int(blockSize) || int(blockSize)%partCount != 0 {
			break
		}
		if int(blockSize)>>(k+1) < predOrder {
			break
		}
		if c := partitionCost(residual, predOrder, blockSize, k); c < bestBits {
			bestBits = c
			bestOrder = k
		}
	}
	return bestOrder, bestBits
}

// partitionCost returns the total bit cost of Rice-coding residual split
// into 1<<order partitions, each with its own optimal parameter.
func partitionCost(residual []int32, predOrder int, blockSize uint16, order uint8) int64 {
	partCount := 1 << order
	partLen := int(blockSize) / partCount
	total := int64(4) // partition order field
	off := 0
	for i := 0; i < partCount; i++ {
		n := partLen
		if i == 0 {
			n -= predOrder
		}
		if n < 0 || off+n > len(residual) {
			return int64(1) << 62 // infeasible split; caller should break earlier
		}
		_, cost := bestParam(residual[off : off+n])
		total += 4 + cost
		off += n
	}
	return total
}

// bestParam returns the Rice parameter minimizing the bit cost of coding
// vals, and that cost, searching parameters 0..30 on per-parameter quotient
// sums: cost(p) = (p+1)*len(vals) + Σ(fold(v)>>p). Ties go to the smaller
// parameter.
func bestParam(vals []int32) (param uint8, cost int64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sums [31]int64
	for _, v := range vals {
		folded := riceFold(v)
		for p := 0; folded != 0 && p <= 30; p++ {
			sums[p] += int64(folded)
			folded >>= 1
		}
	}
	bestP, bestCost := uint8(0), int64(len(vals))+sums[0]
	for p := uint8(1); p <= 30; p++ {
		c := int64(p+1)*int64(len(vals)) + sums[p]
		if c < bestCost {
			bestCost = c
			bestP = p
		}
		if sums[p] == 0 {
			break
		}
	}
	return bestP, bestCost
}
