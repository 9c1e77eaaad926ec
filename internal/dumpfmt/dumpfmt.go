// Package dumpfmt renders metadata blocks and frame headers as
// human-readable text, in the style of a metaflac-like listing tool.
package dumpfmt

import (
	"fmt"
	"io"

	"github.com/mkzflac/flac/frame"
	"github.com/mkzflac/flac/meta"
)

// Block writes a "METADATA block #n" listing for block to w.
func Block(w io.Writer, num int, block *meta.Block) {
	hdr := block.Header
	fmt.Fprintf(w, "METADATA block #%d\n", num)
	fmt.Fprintf(w, "  type: %d (%s)\n", hdr.Type, hdr.Type)
	fmt.Fprintf(w, "  is last: %t\n", hdr.IsLast)
	fmt.Fprintf(w, "  length: %d\n", hdr.Length)

	if si, ok := block.Body.(*meta.StreamInfo); ok {
		streamInfo(w, si)
		return
	}
	// Every other block type is kept opaque by the meta package (see its
	// doc comment); the header's Length field is the only thing worth
	// reporting for them.
	fmt.Fprintf(w, "  body length: %d bytes\n", hdr.Length)
}

func streamInfo(w io.Writer, si *meta.StreamInfo) {
	fmt.Fprintf(w, "  minimum blocksize: %d samples\n", si.MinBlockSize)
	fmt.Fprintf(w, "  maximum blocksize: %d samples\n", si.MaxBlockSize)
	fmt.Fprintf(w, "  minimum framesize: %d bytes\n", si.MinFrameSize)
	fmt.Fprintf(w, "  maximum framesize: %d bytes\n", si.MaxFrameSize)
	fmt.Fprintf(w, "  sample_rate: %d Hz\n", si.SampleRate)
	fmt.Fprintf(w, "  channels: %d\n", si.NChannels)
	fmt.Fprintf(w, "  bits-per-sample: %d\n", si.BitsPerSample)
	fmt.Fprintf(w, "  total samples: %d\n", si.NSamples)
	fmt.Fprintf(w, "  MD5 signature: %x\n", si.MD5sum)
}

// channelsName names a channel assignment the way the FLAC format spells it.
func channelsName(ch frame.Channels) string {
	switch ch {
	case frame.ChannelsMono:
		return "mono"
	case frame.ChannelsLR:
		return "left/right"
	case frame.ChannelsLeftSide:
		return "left/side"
	case frame.ChannelsSideRight:
		return "side/right"
	case frame.ChannelsMidSide:
		return "mid/side"
	default:
		return fmt.Sprintf("%d channels", ch.Count())
	}
}

// FrameHeader writes a one-line summary of a frame header to w.
func FrameHeader(w io.Writer, num int, hdr frame.Header) {
	kind := "frame"
	if !hdr.HasFixedBlockSize {
		kind = "sample"
	}
	fmt.Fprintf(w, "frame #%d: blocksize=%d %s_num=%d channels=%s bps=%d sample_rate=%d\n",
		num, hdr.BlockSize, kind, hdr.Num, channelsName(hdr.Channels), hdr.BitsPerSample, hdr.SampleRate)
}

// Subframe writes a one-line summary of a subframe to w.
func Subframe(w io.Writer, ch int, sf frame.Subframe) {
	fmt.Fprintf(w, "  subframe %d: pred=%s order=%d wasted=%d\n", ch, sf.Pred, sf.Order, sf.Wasted)
}
