package flac

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mkzflac/flac/meta"
)

// RangeProgress reports a worker's completed-block count for one sample
// range; callers poll it to drive a progress display.
type RangeProgress struct {
	Done int64
}

// EncodeRanges encodes samples (one slice per channel) in parallel by
// splitting it into numWorkers disjoint, block-aligned sample ranges, each
// encoded by an independent Encoder instance against its own buffer, and
// concatenating the resulting frame bytes in range order. The magic and
// StreamInfo block are written once, ahead of the concatenated frames.
//
// Workers share no mutable state beyond their RangeProgress counter and
// the shared abort flag; abort is checked between blocks, so calling
// abort.Store(true) stops every worker at its next block boundary.
func EncodeRanges(w io.Writer, info *meta.StreamInfo, blockSize int, samples [][]int32, numWorkers int, abort *atomic.Bool) ([]RangeProgress, error) {
	if _, err := io.WriteString(w, Signature); err != nil {
		return nil, errutil.Err(err)
	}
	infoBlock := &meta.Block{
		Header: meta.BlockHeader{IsLast: true, Type: meta.TypeStreamInfo, Length: 34},
		Body:   info,
	}
	if err := infoBlock.Encode(w); err != nil {
		return nil, errutil.Err(err)
	}

	nsamples := len(samples[0])
	if numWorkers < 1 {
		numWorkers = 1
	}
	nblocks := (nsamples + blockSize - 1) / blockSize
	if nblocks < numWorkers {
		numWorkers = nblocks
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	blocksPerWorker := (nblocks + numWorkers - 1) / numWorkers

	type result struct {
		buf *bytes.Buffer
		err error
	}
	results := make([]result, numWorkers)
	progress := make([]RangeProgress, numWorkers)

	var wg sync.WaitGroup
	for worker := 0; worker < numWorkers; worker++ {
		startBlock := worker * blocksPerWorker
		endBlock := startBlock + blocksPerWorker
		if endBlock > nblocks {
			endBlock = nblocks
		}
		if startBlock >= endBlock {
			continue
		}

		wg.Add(1)
		go func(worker, startBlock, endBlock int) {
			defer wg.Done()
			buf := &bytes.Buffer{}
			enc := &Encoder{stream: &Stream{Info: info}, w: buf, curNum: uint64(startBlock)}

			for b := startBlock; b < endBlock; b++ {
				if abort != nil && abort.Load() {
					return
				}
				lo := b * blockSize
				hi := lo + blockSize
				if hi > nsamples {
					hi = nsamples
				}
				block := make([][]int32, len(samples))
				for ch := range samples {
					block[ch] = samples[ch][lo:hi]
				}
				if err := enc.encodeBlock(buf, block); err != nil {
					results[worker] = result{err: errutil.Err(err)}
					return
				}
				atomic.AddInt64(&progress[worker].Done, 1)
			}
			results[worker] = result{buf: buf}
		}(worker, startBlock, endBlock)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return progress, r.err
		}
		if r.buf != nil {
			if _, err := w.Write(r.buf.Bytes()); err != nil {
				return progress, errutil.Err(err)
			}
		}
	}
	return progress, nil
}
