package flac

import "github.com/pkg/errors"

// ErrorKind classifies a StreamError. The set is closed: every failure this
// module reports falls into exactly one of these kinds.
type ErrorKind int

const (
	// EndOfStream means a read ran past the available bytes.
	EndOfStream ErrorKind = iota
	// BadMagic means the stream did not open with "fLaC".
	BadMagic
	// InvalidBits means a reserved bit pattern or malformed variable-width
	// field was encountered: an invalid sample-rate or sample-size code, an
	// invalid channel assignment code, a malformed or over-long UTF-8-style
	// integer, or a reserved subframe type.
	InvalidBits
	// InvariantViolated means a structurally-decoded value violates a
	// cross-field invariant: a partition too small for the predictor order,
	// a fixed-predictor order above 4, an LPC order outside [1,32], a
	// side-channel assignment on a stream that isn't stereo, or a reserved
	// blocksize code.
	InvariantViolated
	// CrcMismatch means a header CRC-8 or frame CRC-16 failed to verify.
	CrcMismatch
	// InvalidInput means the encoder was asked to emit a structure that
	// fails a range check.
	InvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case EndOfStream:
		return "end of stream"
	case BadMagic:
		return "bad magic"
	case InvalidBits:
		return "invalid bits"
	case InvariantViolated:
		return "invariant violated"
	case CrcMismatch:
		return "crc mismatch"
	case InvalidInput:
		return "invalid input"
	default:
		return "unknown error kind"
	}
}

// StreamError is the error type returned by NewStream and ParseNext for
// every failure other than a clean end of stream, and by Encoder.Write for
// a request outside the format's ranges. It carries the kind of failure and
// the byte offset of the token that failed, so callers can report precisely
// where a stream went bad. Other failures (opening a file, writer errors,
// blocks with unequal channel lengths) are returned as wrapped errors.
type StreamError struct {
	Kind   ErrorKind
	Offset int64
	cause  error
}

// NewStreamError returns a StreamError of the given kind at offset,
// wrapping cause (which may be nil) with github.com/pkg/errors so a stack
// trace is attached at the point of failure.
func NewStreamError(kind ErrorKind, offset int64, cause error) *StreamError {
	return &StreamError{Kind: kind, Offset: offset, cause: errors.WithStack(cause)}
}

func (e *StreamError) Error() string {
	if e.cause != nil {
		return errors.Wrapf(e.cause, "flac: %s at offset %d", e.Kind, e.Offset).Error()
	}
	return errors.Errorf("flac: %s at offset %d", e.Kind, e.Offset).Error()
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As and to
// github.com/pkg/errors.Cause.
func (e *StreamError) Unwrap() error {
	return e.cause
}
