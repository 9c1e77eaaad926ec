// encode is a tool which converts WAV files to FLAC files.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"

	"github.com/mkzflac/flac"
	"github.com/mkzflac/flac/meta"
)

var (
	flagForce     bool
	flagBlockSize int
)

func init() {
	flag.BoolVar(&flagForce, "f", false, "force overwrite")
	flag.IntVar(&flagBlockSize, "blocksize", 4096, "samples per block")
}

func usage() {
	log.Fatal("usage: encode [-f] [-blocksize N] IN.wav [OUT.flac]")
}

func main() {
	flag.Parse()
	switch flag.NArg() {
	case 1:
		// Output path derived from the input path.
		if err := encode(flag.Arg(0), "", flagForce, flagBlockSize); err != nil {
			log.Fatalf("%+v", err)
		}
	case 2:
		if err := encode(flag.Arg(0), flag.Arg(1), flagForce, flagBlockSize); err != nil {
			log.Fatalf("%+v", err)
		}
	default:
		usage()
	}
}

func encode(wavPath, flacPath string, force bool, blockSize int) error {
	r, err := os.Open(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return errors.Errorf("invalid WAV file %q", wavPath)
	}
	sampleRate, nchannels, bps := int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth)

	if flacPath == "" {
		flacPath = pathutil.TrimExt(wavPath) + ".flac"
	}
	if !force && osutil.Exists(flacPath) {
		return errors.Errorf("FLAC file %q already present; use -f flag to force overwrite", flacPath)
	}
	w, err := os.Create(flacPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()

	info := &meta.StreamInfo{
		MinBlockSize:  uint16(blockSize),
		MaxBlockSize:  uint16(blockSize),
		SampleRate:    uint32(sampleRate),
		NChannels:     uint8(nchannels),
		BitsPerSample: uint8(bps),
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return errors.WithStack(err)
	}
	defer enc.Close()

	if err := dec.FwdToPCM(); err != nil {
		return errors.WithStack(err)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nchannels, SampleRate: sampleRate},
		Data:           make([]int, nchannels*blockSize),
		SourceBitDepth: bps,
	}

	chans := make([][]int32, nchannels)
	for ch := range chans {
		chans[ch] = make([]int32, blockSize)
	}
	for !dec.EOF() {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return errors.WithStack(err)
		}
		if n == 0 {
			break
		}
		nsamples := n / nchannels
		for ch := range chans {
			chans[ch] = chans[ch][:nsamples]
		}
		for i := 0; i < nsamples; i++ {
			for ch := 0; ch < nchannels; ch++ {
				chans[ch][i] = int32(buf.Data[i*nchannels+ch])
			}
		}
		if err := enc.Write(chans); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
