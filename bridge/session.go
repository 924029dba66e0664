package bridge

import (
	"strings"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// Channels is the channel layout of a session.
type Channels int

const (
	Mono   Channels = 1
	Stereo Channels = 2
)

// ParseChannels validates a host supplied channel count.
func ParseChannels(chs int) (Channels, error) {
	switch Channels(chs) {
	case Mono, Stereo:
		return Channels(chs), nil
	}
	return 0, invalidArgument("Invalid number of channels: %d", chs)
}

func (c Channels) String() string {
	switch c {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	}
	return "invalid"
}

// ApplicationMode is the tuning profile of an encoder. It is selected at
// creation and can not be changed afterwards.
type ApplicationMode int

const (
	VoiceOptimized ApplicationMode = iota
	LowDelay
	GeneralAudio
)

// ApplicationModeFromInt maps the host's integer representation:
// 1 = voice optimized, 2 = low delay. Every other value falls back to
// VoiceOptimized.
func ApplicationModeFromInt(mode int) ApplicationMode {
	if mode == 2 {
		return LowDelay
	}
	return VoiceOptimized
}

// ParseApplicationMode maps a textual application mode ("voip",
// "lowdelay" or "audio") as used in configuration files and URLs.
func ParseApplicationMode(name string) (ApplicationMode, error) {
	switch strings.ToLower(name) {
	case "", "voip", "voice":
		return VoiceOptimized, nil
	case "lowdelay", "low-delay", "restricted_lowdelay":
		return LowDelay, nil
	case "audio":
		return GeneralAudio, nil
	}
	return VoiceOptimized, invalidArgument("Invalid application mode: %s", name)
}

func (m ApplicationMode) String() string {
	switch m {
	case VoiceOptimized:
		return "VoiceOptimized"
	case LowDelay:
		return "LowDelay"
	case GeneralAudio:
		return "GeneralAudio"
	}
	return "VoiceOptimized"
}

func (m ApplicationMode) native() ac.Application {
	switch m {
	case LowDelay:
		return ac.AppRestrictedLowdelay
	case GeneralAudio:
		return ac.AppAudio
	}
	return ac.AppVoIP
}

// State is the lifecycle state of a session.
type State int

const (
	Uninitialized State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "uninitialized"
}

// Default session settings.
const (
	DefaultMaxPayloadSize = 1024
	DefaultFrameSize      = 960
)
