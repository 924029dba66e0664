package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dh1tw/opusbridge/bridge"
	"github.com/spf13/viper"
	"gopkg.in/hraban/opus.v2"
)

func checkOpusParameterValues() error {

	switch viper.GetInt("opus.samplerate") {
	case 8000, 12000, 16000, 24000, 48000:
	default:
		return &parmError{
			parm: "opus.samplerate",
			msg:  "allowed values are [8000, 12000, 16000, 24000, 48000]",
		}
	}

	if chs := viper.GetInt("opus.channels"); chs < 1 || chs > 2 {
		return &parmError{
			parm: "opus.channels",
			msg:  "allowed values are [1 (Mono), 2 (Stereo)]",
		}
	}

	opusBw := viper.GetString("opus.max-bandwidth")
	if _, err := getOpusMaxBandwith(opusBw); err != nil {
		return &parmError{
			parm: "opus.max-bandwidth",
			msg:  "allowed values are NARROWBAND, MEDIUMBAND, WIDEBAND, SUPERWIDEBAND, FULLBAND",
		}
	}

	opusApp := viper.GetString("opus.application")
	if _, err := getOpusApplication(opusApp); err != nil {
		return &parmError{
			parm: "opus.application",
			msg:  "allowed values are VOIP, AUDIO or RESTRICTED_LOWDELAY",
		}
	}

	if viper.GetInt("opus.bitrate") < 6000 || viper.GetInt("opus.bitrate") > 510000 {
		return &parmError{
			parm: "opus.bitrate",
			msg:  "allowed values are [6000...510000]",
		}
	}

	if viper.GetInt("opus.complexity") < 0 || viper.GetInt("opus.complexity") > 10 {
		return &parmError{
			parm: "opus.complexity",
			msg:  "allowed values are [0...10]",
		}
	}

	if _, err := frameSize(viper.GetInt("opus.samplerate"), viper.GetFloat64("opus.frame-length")); err != nil {
		return &parmError{
			parm: "opus.frame-length",
			msg:  "allowed values are 2.5, 5, 10, 20, 40, 60 (ms)",
		}
	}

	if viper.GetInt("opus.max-payload-size") <= 0 {
		return &parmError{
			parm: "opus.max-payload-size",
			msg:  "value must be > 0",
		}
	}

	if pl := viper.GetInt("opus.packet-loss"); pl < 0 || pl > 100 {
		return &parmError{
			parm: "opus.packet-loss",
			msg:  "allowed values are [0...100]",
		}
	}

	return nil
}

type parmError struct {
	parm string
	msg  string
}

func (p *parmError) Error() string {
	return fmt.Sprintf("%v: %v", p.parm, p.msg)
}

// getOpusApplication returns the bridge application mode of an
// Opus application value string (typically read from application settings)
func getOpusApplication(app string) (bridge.ApplicationMode, error) {
	switch strings.ToLower(app) {
	case "audio":
		return bridge.GeneralAudio, nil
	case "restricted_lowdelay":
		return bridge.LowDelay, nil
	case "voip":
		return bridge.VoiceOptimized, nil
	}
	return 0, errors.New("unknown opus application value")
}

// getOpusMaxBandwith returns the integer representation of an
// Opus max bandwidth value string (typically read from application settings)
func getOpusMaxBandwith(maxBw string) (opus.Bandwidth, error) {
	switch strings.ToLower(maxBw) {
	case "narrowband":
		return opus.Narrowband, nil
	case "mediumband":
		return opus.Mediumband, nil
	case "wideband":
		return opus.Wideband, nil
	case "superwideband":
		return opus.SuperWideband, nil
	case "fullband":
		return opus.Fullband, nil
	}

	return 0, errors.New("unknown opus max bandwidth value")
}

// frameSize returns the amount of samples per channel of an opus frame
// with the given length in ms.
func frameSize(samplerate int, ms float64) (int, error) {
	switch ms {
	case 2.5, 5, 10, 20, 40, 60:
	default:
		return 0, fmt.Errorf("invalid opus frame length %vms", ms)
	}
	return int(float64(samplerate) * ms / 1000), nil
}
