package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// Padding is a block reserving space in the stream without carrying any
// data; its body must be all-zero bytes.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_padding
type Padding struct {
	n uint32
}

func (p *Padding) raw() []byte { return make([]byte, p.n) }

func newPadding(r io.Reader, length uint32) (*Padding, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	for _, b := range buf {
		if b != 0 {
			return nil, errutil.Newf("meta.newPadding: non-zero padding byte")
		}
	}
	return &Padding{n: length}, nil
}
