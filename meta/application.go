package meta

import (
	"encoding/binary"
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// Application contains third-party application-specific data. Only the
// 4-byte registered application ID is decoded; the remainder of the body is
// opaque, passed through unchanged.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_application
type Application struct {
	// ID is the registered application ID.
	//
	// ref: https://www.xiph.org/flac/id.html
	ID uint32
	// Data is the opaque, application-defined remainder of the body.
	Data []byte
}

func (app *Application) raw() []byte {
	buf := make([]byte, 4+len(app.Data))
	binary.BigEndian.PutUint32(buf, app.ID)
	copy(buf[4:], app.Data)
	return buf
}

func newApplication(r io.Reader, length uint32) (*Application, error) {
	if length < 4 {
		return nil, errutil.Newf("meta.newApplication: length %d too small for an application ID", length)
	}
	var idBuf [4]byte
	if _, err := io.ReadFull(r, idBuf[:]); err != nil {
		return nil, errutil.Err(err)
	}
	data := make([]byte, length-4)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errutil.Err(err)
	}
	return &Application{ID: binary.BigEndian.Uint32(idBuf[:]), Data: data}, nil
}
