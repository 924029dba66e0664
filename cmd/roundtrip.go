package cmd

import (
	"fmt"
	"time"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/audio/sinks/wavWriter"
	"github.com/dh1tw/opusbridge/audio/sources/wavReader"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/dh1tw/opusbridge/packetfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <in.wav>",
	Short: "Encode and decode a wav file and report the result",
	Long: `Encode and decode a wav file and report packets, bitrate and levels.

This is a quick way to evaluate the opus settings. The decoded audio can
be saved with --out.
`,
	Args: cobra.ExactArgs(1),
	Run:  roundtripFile,
}

func init() {
	RootCmd.AddCommand(roundtripCmd)
	roundtripCmd.Flags().StringP("out", "o", "", "save the decoded audio into this wav file")
	roundtripCmd.Flags().Int("loss", 0, "simulated packet loss in percent [0...100]")
}

// roundtripResult summarizes a roundtrip.
type roundtripResult struct {
	packets   int
	bytes     int
	concealed int
	recovered int
	duration  time.Duration
	decoded   audio.Msg
}

// bitrate returns the average bitrate of the packets in bit/s.
func (r roundtripResult) bitrate() float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.bytes*8) / r.duration.Seconds()
}

// roundtrip encodes and decodes all audio of src.
func roundtrip(host *bridge.Host, s opusSettings, src *wavReader.WavReader, loss int, fec bool) (roundtripResult, error) {

	enc, err := newEncoderPipeline(host, s)
	if err != nil {
		return roundtripResult{}, err
	}
	defer enc.Close()

	dec, err := newDecoderPipeline(host, s.samplerate, s.channels, fec)
	if err != nil {
		return roundtripResult{}, err
	}
	defer dec.Close()

	sim := newLossSimulator(loss)
	res := roundtripResult{
		decoded: audio.Msg{
			Samplerate: s.samplerate,
			Channels:   s.channels,
		},
	}

	emit := func(f packetfile.Frame) error {
		msg, err := dec.Process(sim.apply(f))
		if err != nil {
			return err
		}
		res.decoded.Data = append(res.decoded.Data, msg.Data...)
		return nil
	}

	if err := encodeStream(src, enc, emit); err != nil {
		return roundtripResult{}, err
	}

	msg, err := dec.Flush()
	if err != nil {
		return roundtripResult{}, err
	}
	res.decoded.Data = append(res.decoded.Data, msg.Data...)
	res.decoded.Frames = len(res.decoded.Data) / s.channels
	res.decoded.EOF = true

	res.packets = enc.packets
	res.bytes = enc.bytes
	res.concealed = dec.concealed
	res.recovered = dec.recovered
	res.duration = time.Duration(res.packets*s.frameSize) * time.Second / time.Duration(s.samplerate)

	return res, nil
}

func roundtripFile(cmd *cobra.Command, args []string) {

	viper.BindPFlag("roundtrip.out", cmd.Flags().Lookup("out"))
	viper.BindPFlag("roundtrip.loss", cmd.Flags().Lookup("loss"))

	loss := viper.GetInt("roundtrip.loss")
	if loss < 0 || loss > 100 {
		exit(&parmError{parm: "roundtrip.loss", msg: "allowed values are [0...100]"})
	}

	settings, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}

	host := newHost(backend)
	defer host.Close()

	original, err := wavReader.ReadFile(args[0])
	if err != nil {
		exit(err)
	}

	src, err := wavReader.NewWavReader(args[0], wavReader.FramesPerBuffer(4096))
	if err != nil {
		exit(err)
	}
	defer src.Close()

	res, err := roundtrip(host, settings, src, loss, viper.GetBool("opus.inband-fec"))
	if err != nil {
		exit(err)
	}

	inLevel, _ := audio.DBFS(original.Data)
	outLevel, _ := audio.DBFS(res.decoded.Data)

	fmt.Printf("input:      %s (%d Hz, %d ch, %.0f ms)\n",
		args[0], original.Samplerate, original.Channels, original.Duration())
	fmt.Printf("codec:      %s, %d Hz, %d ch, %s, %d samples/frame\n",
		host.Version(), settings.samplerate, settings.channels, settings.application, settings.frameSize)
	fmt.Printf("packets:    %d (%d bytes, %.1f kbit/s)\n", res.packets, res.bytes, res.bitrate()/1000)
	fmt.Printf("lost:       %d concealed, %d recovered\n", res.concealed, res.recovered)
	fmt.Printf("level in:   %.1f dBFS\n", inLevel)
	fmt.Printf("level out:  %.1f dBFS\n", outLevel)

	outPath := viper.GetString("roundtrip.out")
	if outPath == "" {
		return
	}

	w, err := wavWriter.NewWavWriter(outPath,
		wavWriter.Channels(settings.channels),
		wavWriter.Samplerate(settings.samplerate),
	)
	if err != nil {
		exit(err)
	}
	if err := w.Write(res.decoded); err != nil {
		exit(err)
	}
	if err := w.Close(); err != nil {
		exit(err)
	}
	fmt.Printf("output:     %s\n", outPath)
}
