package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// VorbisComment carries the stream's human-readable tags (artist, title,
// and so on) as an opaque, unparsed body.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_vorbis_comment
type VorbisComment struct {
	data []byte
}

func (vc *VorbisComment) raw() []byte { return vc.data }

func newVorbisComment(r io.Reader, length uint32) (*VorbisComment, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	return &VorbisComment{data: buf}, nil
}
