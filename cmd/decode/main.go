// decode is a tool which converts FLAC files to WAV files.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"

	"github.com/mkzflac/flac"
)

var flagForce bool

func init() {
	flag.BoolVar(&flagForce, "f", false, "force overwrite")
}

func usage() {
	log.Fatal("usage: decode [-f] IN.flac [OUT.wav]")
}

func main() {
	flag.Parse()
	switch flag.NArg() {
	case 1:
		// Output path derived from the input path.
		if err := decode(flag.Arg(0), "", flagForce); err != nil {
			log.Fatalf("%+v", err)
		}
	case 2:
		if err := decode(flag.Arg(0), flag.Arg(1), flagForce); err != nil {
			log.Fatalf("%+v", err)
		}
	default:
		usage()
	}
}

func decode(flacPath, wavPath string, force bool) error {
	s, err := flac.Open(flacPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if wavPath == "" {
		wavPath = pathutil.TrimExt(flacPath) + ".wav"
	}
	if !force && osutil.Exists(wavPath) {
		return errors.Errorf("WAV file %q already present; use -f flag to force overwrite", wavPath)
	}
	fw, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer fw.Close()

	nchannels := int(s.Info.NChannels)
	enc := wav.NewEncoder(fw, int(s.Info.SampleRate), int(s.Info.BitsPerSample), nchannels, 1)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nchannels, SampleRate: int(s.Info.SampleRate)},
		SourceBitDepth: int(s.Info.BitsPerSample),
	}

	d := flac.NewDecoder(s)
	for {
		_, chans, err := d.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		blockSize := len(chans[0])
		buf.Data = buf.Data[:0]
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < nchannels; ch++ {
				buf.Data = append(buf.Data, int(chans[ch][i]))
			}
		}
		if err := enc.Write(buf); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
