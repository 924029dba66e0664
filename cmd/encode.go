package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dh1tw/opusbridge/audio/sources/wavReader"
	"github.com/dh1tw/opusbridge/packetfile"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <in.wav> <out.opf>",
	Short: "Encode a wav file into an opus packet file",
	Long: `Encode a wav file into an opus packet file.

The audio is converted to the configured opus channels and samplerate
before it is encoded. The packet file contains one record per opus packet
and can be turned back into audio with 'opusbridge decode'.
`,
	Args: cobra.ExactArgs(2),
	Run:  encodeFile,
}

func init() {
	RootCmd.AddCommand(encodeCmd)
}

func encodeFile(cmd *cobra.Command, args []string) {

	settings, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}

	host := newHost(backend)
	defer host.Close()

	in, err := wavReader.NewWavReader(args[0], wavReader.FramesPerBuffer(4096))
	if err != nil {
		exit(err)
	}
	defer in.Close()

	f, err := os.Create(args[1])
	if err != nil {
		exit(err)
	}
	defer f.Close()

	out := packetfile.NewWriter(f)

	enc, err := newEncoderPipeline(host, settings)
	if err != nil {
		exit(err)
	}
	defer enc.Close()

	if err := encodeStream(in, enc, out.Write); err != nil {
		exit(err)
	}

	if err := out.Flush(); err != nil {
		exit(err)
	}

	log.Printf("encoded %s (%d Hz, %d ch) into %d packets / %d bytes\n",
		args[0], in.Samplerate(), in.Channels(), enc.packets, enc.bytes)
}

// encodeStream encodes all audio of src and hands the frames to emit.
func encodeStream(src *wavReader.WavReader, enc *encoderPipeline, emit emitFn) error {
	for {
		msg, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read audio: %v", err)
		}
		if err := enc.Process(msg, emit); err != nil {
			return err
		}
	}
	return enc.Flush(emit)
}
