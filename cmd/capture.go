package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dh1tw/opusbridge/audio/sources/scReader"
	"github.com/dh1tw/opusbridge/packetfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var captureCmd = &cobra.Command{
	Use:   "capture <out.opf>",
	Short: "Record audio from a sound card into an opus packet file",
	Long: `Record audio from a sound card into an opus packet file.

In order to find the supported audio devices and audio host APIs
for your platform run:

$ opusbridge(.exe) enumerate

Buffers dropped by the audio device are recorded as lost packets.
`,
	Args: cobra.ExactArgs(1),
	Run:  captureAudio,
}

func init() {
	RootCmd.AddCommand(captureCmd)
	captureCmd.Flags().DurationP("duration", "d", time.Second*10, "recording duration (0 = until Ctrl-C)")
	captureCmd.Flags().String("host-api", "default", "portaudio host api")
	captureCmd.Flags().StringP("input-device", "i", "default", "input device name")
	captureCmd.Flags().Int("input-channels", 1, "input device channels")
	captureCmd.Flags().Float64("input-samplerate", 48000, "input device samplerate")
	captureCmd.Flags().Duration("input-latency", time.Millisecond*10, "input device latency")
	captureCmd.Flags().Int("ring-buffer-size", 50, "amount of device buffers queued before the encoder")
}

func captureAudio(cmd *cobra.Command, args []string) {

	viper.BindPFlag("capture.duration", cmd.Flags().Lookup("duration"))
	viper.BindPFlag("input-device.host-api", cmd.Flags().Lookup("host-api"))
	viper.BindPFlag("input-device.device-name", cmd.Flags().Lookup("input-device"))
	viper.BindPFlag("input-device.channels", cmd.Flags().Lookup("input-channels"))
	viper.BindPFlag("input-device.samplerate", cmd.Flags().Lookup("input-samplerate"))
	viper.BindPFlag("input-device.latency", cmd.Flags().Lookup("input-latency"))
	viper.BindPFlag("input-device.ring-buffer-size", cmd.Flags().Lookup("ring-buffer-size"))

	settings, backend, err := readOpusSettings()
	if err != nil {
		exit(err)
	}

	// viper settings need to be copied in local variables
	// since viper lookups allocate of each lookup a copy
	// and are quite unperformant
	duration := viper.GetDuration("capture.duration")
	iSamplerate := viper.GetFloat64("input-device.samplerate")

	host := newHost(backend)
	defer host.Close()

	f, err := os.Create(args[0])
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

	// the device delivers buffers with the duration of one opus frame
	framesPerBuffer := int(iSamplerate) * settings.frameSize / settings.samplerate

	mic, err := scReader.NewScReader(
		scReader.HostAPI(viper.GetString("input-device.host-api")),
		scReader.DeviceName(viper.GetString("input-device.device-name")),
		scReader.Channels(viper.GetInt("input-device.channels")),
		scReader.Samplerate(iSamplerate),
		scReader.Latency(viper.GetDuration("input-device.latency")),
		scReader.FramesPerBuffer(framesPerBuffer),
		scReader.RingBufferSize(viper.GetInt("input-device.ring-buffer-size")),
	)
	if err != nil {
		exit(err)
	}
	defer mic.Close()

	if err := mic.Start(); err != nil {
		exit(err)
	}

	// Channel to handle OS signals
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	var done <-chan time.Time
	if duration > 0 {
		done = time.After(duration)
	}

	ticker := time.NewTicker(time.Millisecond * 5)
	defer ticker.Stop()

	overflows := 0

	log.Printf("recording into %s\n", args[0])

loop:
	for {
		select {
		case sig := <-osSignals:
			log.Printf("received signal %v, stopping\n", sig)
			break loop
		case <-done:
			break loop
		case <-ticker.C:
			if err := drainMic(mic, enc, out.Write, &overflows); err != nil {
				exit(err)
			}
		}
	}

	if err := mic.Stop(); err != nil {
		log.Println(err)
	}
	if err := drainMic(mic, enc, out.Write, &overflows); err != nil {
		exit(err)
	}
	if err := enc.Flush(out.Write); err != nil {
		exit(err)
	}
	if err := out.Flush(); err != nil {
		exit(err)
	}

	log.Printf("recorded %d packets (%d bytes), %d buffers dropped\n",
		enc.packets, enc.bytes, overflows)
}

// drainMic encodes all buffers queued by the sound card reader. Buffers
// the device dropped since the last call are recorded as lost frames.
func drainMic(mic *scReader.ScReader, enc *encoderPipeline, emit emitFn, overflows *int) error {
	for n := mic.Overflows(); *overflows < n; *overflows++ {
		if err := enc.Lost(emit); err != nil {
			return err
		}
	}
	for {
		msg, ok := mic.Read()
		if !ok {
			return nil
		}
		if err := enc.Process(msg, emit); err != nil {
			return err
		}
	}
}
