// dump is a tool which prints the metadata blocks and frame headers of a
// FLAC stream, in the style of a metaflac listing.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/mkzflac/flac"
	"github.com/mkzflac/flac/internal/dumpfmt"
)

var flagFrames bool

func init() {
	flag.BoolVar(&flagFrames, "frames", false, "also list frame headers and subframes")
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("usage: dump [-frames] FILE...")
	}
	for _, path := range flag.Args() {
		if err := dump(path); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func dump(path string) error {
	s, err := flac.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	for num, block := range s.MetaBlocks {
		dumpfmt.Block(os.Stdout, num, block)
	}

	if !flagFrames {
		return nil
	}
	for num := 0; ; num++ {
		f, err := s.ParseNext()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		dumpfmt.FrameHeader(os.Stdout, num, f.Header)
		for ch, sf := range f.Subframes {
			dumpfmt.Subframe(os.Stdout, ch, sf)
		}
	}
}
