package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// CueSheet describes how tracks are laid out within a FLAC stream. Per-track
// index points are beyond this package's scope; the body is kept opaque and
// re-emitted unchanged.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_cuesheet
type CueSheet struct {
	data []byte
}

func (cs *CueSheet) raw() []byte { return cs.data }

func newCueSheet(r io.Reader, length uint32) (*CueSheet, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	return &CueSheet{data: buf}, nil
}
