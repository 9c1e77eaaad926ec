// Package meta parses and emits FLAC metadata blocks. Every block header
// (is_last, block type, length) round-trips exactly; with the exception of
// StreamInfo, which the frame decoder needs to resolve a frame header's
// "use StreamInfo" escape, block bodies are re-emitted unchanged rather than
// decoded field-by-field: Application splits off only its 4-byte ID,
// Padding keeps only its length, and every other body is an opaque byte
// slice.
package meta

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// BlockType identifies the kind of a metadata block body.
type BlockType uint8

// Metadata block types, as assigned by the FLAC format.
//
// ref: https://www.xiph.org/flac/format.html#metadata_block_header
const (
	TypeStreamInfo BlockType = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

func (t BlockType) String() string {
	switch t {
	case TypeStreamInfo:
		return "stream info"
	case TypePadding:
		return "padding"
	case TypeApplication:
		return "application"
	case TypeSeekTable:
		return "seek table"
	case TypeVorbisComment:
		return "vorbis comment"
	case TypeCueSheet:
		return "cue sheet"
	case TypePicture:
		return "picture"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(t))
	}
}

// invalidBlockType is the block type reserved to avoid confusion with a frame
// sync code.
const invalidBlockType = 127

// BlockHeader precedes every metadata block body.
type BlockHeader struct {
	// IsLast reports whether this is the final metadata block before the
	// audio frames begin.
	IsLast bool
	// Type is the metadata block type.
	Type BlockType
	// Length is the body length in bytes.
	Length uint32
}

// parseBlockHeader reads the 32-bit metadata block header.
func parseBlockHeader(r io.Reader) (BlockHeader, error) {
	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return BlockHeader{}, err
	}
	x := binary.BigEndian.Uint32(raw[:])
	typ := BlockType(x >> 24 & 0x7F)
	if typ == invalidBlockType {
		return BlockHeader{}, errutil.Newf("meta.parseBlockHeader: invalid block type %d", typ)
	}
	return BlockHeader{
		IsLast: x&0x80000000 != 0,
		Type:   typ,
		Length: x & 0x00FFFFFF,
	}, nil
}

func (h BlockHeader) encode(w io.Writer) error {
	x := uint32(h.Type&0x7F) << 24
	x |= h.Length & 0x00FFFFFF
	if h.IsLast {
		x |= 0x80000000
	}
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], x)
	_, err := w.Write(raw[:])
	return err
}

// Block is a metadata block: a header plus a body. Body holds *StreamInfo
// for TypeStreamInfo and one of the opaque wrapper types (*Padding,
// *Application, *SeekTable, *VorbisComment, *CueSheet, *Picture, *Unknown)
// for every other type.
type Block struct {
	Header BlockHeader
	Body   interface{}
}

// rawBody is implemented by every non-StreamInfo body: it stores the
// payload verbatim so NewBlock/(*Block).Encode round-trip exactly.
type rawBody interface {
	raw() []byte
}

// NewBlock reads a metadata block header and body from r.
func NewBlock(r io.Reader) (*Block, error) {
	hdr, err := parseBlockHeader(r)
	if err != nil {
		return nil, err
	}
	lr := io.LimitReader(r, int64(hdr.Length))
	block := &Block{Header: hdr}
	switch hdr.Type {
	case TypeStreamInfo:
		si, err := parseStreamInfo(lr)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = si
	case TypePadding:
		p, err := newPadding(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = p
	case TypeApplication:
		body, err := newApplication(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	case TypeSeekTable:
		body, err := newSeekTable(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	case TypeVorbisComment:
		body, err := newVorbisComment(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	case TypeCueSheet:
		body, err := newCueSheet(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	case TypePicture:
		body, err := newPicture(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	default:
		body, err := newUnknown(lr, hdr.Length)
		if err != nil {
			return nil, errutil.Err(err)
		}
		block.Body = body
	}
	// A block may declare a longer body than its decoder consumes (a
	// StreamInfo extended by a future revision, say); skip whatever is left
	// so the cursor always lands on the next block header.
	if _, err := io.Copy(io.Discard, lr); err != nil {
		return nil, errutil.Err(err)
	}
	return block, nil
}

// Encode writes the block header and body to w.
func (block *Block) Encode(w io.Writer) error {
	if err := block.Header.encode(w); err != nil {
		return errutil.Err(err)
	}
	if si, ok := block.Body.(*StreamInfo); ok {
		return errutil.Err(si.encode(w))
	}
	rb, ok := block.Body.(rawBody)
	if !ok {
		return errutil.Newf("meta.Block.Encode: unsupported body type %T", block.Body)
	}
	_, err := w.Write(rb.raw())
	return errutil.Err(err)
}
