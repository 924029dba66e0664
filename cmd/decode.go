package cmd

import (
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/dh1tw/opusbridge/audio/sinks/wavWriter"
	"github.com/dh1tw/opusbridge/packetfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <in.opf> <out.wav>",
	Short: "Decode an opus packet file into a wav file",
	Long: `Decode an opus packet file into a wav file.

Lost packets are concealed by the decoder. With --loss a percentage of
the packets can be dropped on purpose, e.g. to listen to the effect of
packet loss concealment and in-band forward error correction (--inband-fec).
`,
	Args: cobra.ExactArgs(2),
	Run:  decodeFile,
}

func init() {
	RootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Int("loss", 0, "simulated packet loss in percent [0...100]")
	decodeCmd.Flags().Int("out-samplerate", 0, "samplerate of the wav file (default: samplerate of the packets)")
}

// lossSimulator randomly drops frames.
type lossSimulator struct {
	percent int
	rnd     *rand.Rand
}

func newLossSimulator(percent int) *lossSimulator {
	return &lossSimulator{
		percent: percent,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// apply marks f as lost with the configured probability.
func (l *lossSimulator) apply(f packetfile.Frame) packetfile.Frame {
	if l.percent > 0 && l.rnd.Intn(100) < l.percent {
		f.Data = nil
		f.Lost = true
	}
	return f
}

func decodeFile(cmd *cobra.Command, args []string) {

	viper.BindPFlag("decode.loss", cmd.Flags().Lookup("loss"))
	viper.BindPFlag("decode.out-samplerate", cmd.Flags().Lookup("out-samplerate"))

	loss := viper.GetInt("decode.loss")
	if loss < 0 || loss > 100 {
		exit(&parmError{parm: "decode.loss", msg: "allowed values are [0...100]"})
	}

	_, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}

	host := newHost(backend)
	defer host.Close()

	f, err := os.Open(args[0])
	if err != nil {
		exit(err)
	}
	defer f.Close()

	in := packetfile.NewReader(f)

	first, err := in.Read()
	if err != nil {
		exit(err)
	}

	samplerate := first.Samplerate
	if samplerate == 0 {
		samplerate = viper.GetInt("opus.samplerate")
	}
	channels := first.Channels
	if channels == 0 {
		channels = viper.GetInt("opus.channels")
	}

	outSamplerate := viper.GetInt("decode.out-samplerate")
	if outSamplerate == 0 {
		outSamplerate = samplerate
	}

	out, err := wavWriter.NewWavWriter(args[1],
		wavWriter.Channels(channels),
		wavWriter.Samplerate(outSamplerate),
	)
	if err != nil {
		exit(err)
	}

	dec, err := newDecoderPipeline(host, samplerate, channels, viper.GetBool("opus.inband-fec"))
	if err != nil {
		exit(err)
	}
	defer dec.Close()

	sim := newLossSimulator(loss)
	packets := 0

	frame := first
	for {
		msg, err := dec.Process(sim.apply(frame))
		if err != nil {
			exit(err)
		}
		if len(msg.Data) > 0 {
			if err := out.Write(msg); err != nil {
				exit(err)
			}
		}
		packets++

		frame, err = in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			exit(err)
		}
	}

	// the final message flushes the samplerate converter of the writer
	msg, err := dec.Flush()
	if err != nil {
		exit(err)
	}
	if err := out.Write(msg); err != nil {
		exit(err)
	}

	frames := out.Frames()
	if err := out.Close(); err != nil {
		exit(err)
	}

	log.Printf("decoded %d packets (%d concealed, %d recovered) into %s (%d frames)\n",
		packets, dec.concealed, dec.recovered, args[1], frames)
}
