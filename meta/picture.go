package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// Picture associates an image (cover art, artist photo, and so on) with the
// stream. Its body is kept opaque and re-emitted unchanged.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_picture
type Picture struct {
	data []byte
}

func (pic *Picture) raw() []byte { return pic.data }

func newPicture(r io.Reader, length uint32) (*Picture, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	return &Picture{data: buf}, nil
}
