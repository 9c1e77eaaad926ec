package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// SeekTable holds one or more precalculated audio-frame seek points.
// Constructing or interpreting seek tables is out of scope; the body is
// kept opaque and re-emitted unchanged.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_seektable
type SeekTable struct {
	data []byte
}

func (st *SeekTable) raw() []byte { return st.data }

func newSeekTable(r io.Reader, length uint32) (*SeekTable, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	return &SeekTable{data: buf}, nil
}
