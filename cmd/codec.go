package cmd

import (
	"log"

	"github.com/dh1tw/opusbridge/audiocodec/opus"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	goopus "gopkg.in/hraban/opus.v2"
)

// opusSettings contains the opus related settings. viper settings are
// copied into local variables since each lookup allocates.
type opusSettings struct {
	samplerate     int
	channels       int
	application    bridge.ApplicationMode
	frameSize      int
	maxPayloadSize int
}

// readOpusSettings validates the opus parameters from config file / pflags
// and returns them together with a libopus backend configured with the
// encoder tuning values.
func readOpusSettings() (opusSettings, *opus.Backend, error) {
	if err := checkOpusParameterValues(); err != nil {
		return opusSettings{}, nil, err
	}

	// values checked before
	app, _ := getOpusApplication(viper.GetString("opus.application"))
	maxBw, _ := getOpusMaxBandwith(viper.GetString("opus.max-bandwidth"))
	fs, _ := frameSize(viper.GetInt("opus.samplerate"), viper.GetFloat64("opus.frame-length"))

	s := opusSettings{
		samplerate:     viper.GetInt("opus.samplerate"),
		channels:       viper.GetInt("opus.channels"),
		application:    app,
		frameSize:      fs,
		maxPayloadSize: viper.GetInt("opus.max-payload-size"),
	}

	return s, opus.NewBackend(encoderOptions(maxBw)...), nil
}

// encoderOptions returns the encoder tuning values from viper.
func encoderOptions(maxBw goopus.Bandwidth) []opus.Option {
	return []opus.Option{
		opus.Bitrate(viper.GetInt("opus.bitrate")),
		opus.Complexity(viper.GetInt("opus.complexity")),
		opus.MaxBandwidth(maxBw),
		opus.InBandFEC(viper.GetBool("opus.inband-fec")),
		opus.PacketLossPerc(viper.GetInt("opus.packet-loss")),
	}
}

// watchConfig reconfigures the encoder tuning of backend whenever the
// config file changes. Sessions created before keep their settings.
func watchConfig(backend *opus.Backend) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if err := checkOpusParameterValues(); err != nil {
			log.Printf("ignoring changed config file %s: %v\n", e.Name, err)
			return
		}
		maxBw, _ := getOpusMaxBandwith(viper.GetString("opus.max-bandwidth"))
		backend.Configure(encoderOptions(maxBw)...)
		log.Printf("config file %s changed, new encoders use %+v\n", e.Name, backend.Options())
	})
	viper.WatchConfig()
}

// newHost creates a bridge host on top of backend.
func newHost(backend *opus.Backend) *bridge.Host {
	return bridge.NewHost(backend, bridge.Verbose(viper.GetBool("verbose")))
}
