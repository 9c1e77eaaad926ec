// Package bufseekio buffers an io.ReadSeeker while keeping Seek cheap:
// seeks that land inside the window already read are satisfied by moving
// the buffer cursor, without touching the underlying reader.
package bufseekio

import (
	"errors"
	"io"
)

const (
	defaultSize = 4096
	minSize     = 16
)

var errNegativeRead = errors.New("bufseekio: reader returned negative count from Read")

// ReadSeeker wraps an io.ReadSeeker with a read buffer. The frame decoder
// consumes FLAC streams one byte at a time, so reading through a ReadSeeker
// turns a syscall per byte into a syscall per window.
type ReadSeeker struct {
	src io.ReadSeeker
	// window holds bytes src yielded starting at absolute offset start;
	// cur and end delimit the unread portion within it.
	window   []byte
	start    int64
	cur, end int
	err      error
}

// NewReadSeeker returns a ReadSeeker over src with the default window size.
func NewReadSeeker(src io.ReadSeeker) *ReadSeeker {
	return NewReadSeekerSize(src, defaultSize)
}

// NewReadSeekerSize returns a ReadSeeker over src whose window holds at
// least size bytes. If src is already a ReadSeeker with a window that
// large, src itself is returned.
func NewReadSeekerSize(src io.ReadSeeker, size int) *ReadSeeker {
	if rs, ok := src.(*ReadSeeker); ok && len(rs.window) >= size {
		return rs
	}
	if size < minSize {
		size = minSize
	}
	return &ReadSeeker{src: src, window: make([]byte, size)}
}

// takeErr returns and clears the sticky error from the last short fill.
func (rs *ReadSeeker) takeErr() error {
	err := rs.err
	rs.err = nil
	return err
}

// fill discards the consumed window and reads the next one from src. It
// performs at most one Read on src.
func (rs *ReadSeeker) fill() (int, error) {
	rs.start += int64(rs.cur)
	rs.cur, rs.end = 0, 0
	n, err := rs.src.Read(rs.window)
	if n < 0 {
		panic(errNegativeRead)
	}
	rs.end = n
	rs.err = err
	if n == 0 {
		return 0, rs.takeErr()
	}
	return n, nil
}

// Read reads into p from the window, refilling it when drained. It performs
// at most one Read on the underlying reader, so n may be less than len(p);
// use io.ReadFull for exact-length reads.
func (rs *ReadSeeker) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		if rs.cur < rs.end {
			return 0, nil
		}
		return 0, rs.takeErr()
	}
	if rs.cur == rs.end {
		if rs.err != nil {
			return 0, rs.takeErr()
		}
		if len(p) >= len(rs.window) {
			// Read too large for the window; bypass it.
			rs.start += int64(rs.cur)
			rs.cur, rs.end = 0, 0
			n, rs.err = rs.src.Read(p)
			if n < 0 {
				panic(errNegativeRead)
			}
			rs.start += int64(n)
			return n, rs.takeErr()
		}
		if _, err := rs.fill(); err != nil {
			return 0, err
		}
	}
	n = copy(p, rs.window[rs.cur:rs.end])
	rs.cur += n
	return n, nil
}

// ReadByte reads and returns a single byte.
func (rs *ReadSeeker) ReadByte() (byte, error) {
	if rs.cur == rs.end {
		if rs.err != nil {
			return 0, rs.takeErr()
		}
		if _, err := rs.fill(); err != nil {
			return 0, err
		}
	}
	b := rs.window[rs.cur]
	rs.cur++
	return b, nil
}

// Position returns the absolute read offset within the underlying stream.
func (rs *ReadSeeker) Position() int64 {
	return rs.start + int64(rs.cur)
}

// Seek repositions the read offset. A target inside the buffered window
// only moves the window cursor; anything else seeks the underlying reader
// and invalidates the window.
func (rs *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		if offset == 0 {
			return rs.Position(), nil
		}
		offset += rs.Position()
	case io.SeekEnd:
		// The absolute end offset is unknown here; delegate.
		return rs.seekSrc(offset, whence)
	}
	if offset >= rs.start && offset < rs.start+int64(rs.end) {
		rs.cur = int(offset - rs.start)
		return offset, nil
	}
	return rs.seekSrc(offset, io.SeekStart)
}

func (rs *ReadSeeker) seekSrc(offset int64, whence int) (int64, error) {
	rs.cur, rs.end = 0, 0
	rs.err = nil
	var err error
	rs.start, err = rs.src.Seek(offset, whence)
	return rs.start, err
}
