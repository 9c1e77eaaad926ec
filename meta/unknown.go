package meta

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// Unknown is the body of a metadata block whose type is reserved or not
// otherwise recognized; kept and re-emitted as an opaque byte slice so
// forward-compatible streams still round-trip.
type Unknown struct {
	data []byte
}

func (u *Unknown) raw() []byte { return u.data }

func newUnknown(r io.Reader, length uint32) (*Unknown, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errutil.Err(err)
	}
	return &Unknown{data: buf}, nil
}
