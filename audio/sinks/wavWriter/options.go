package wavWriter

// Option is the type for a function option
type Option func(*Options)

const (
	DefaultChannels   int = 1
	DefaultSamplerate int = 48000
)

// Options contains the parameters for initializing a wav writer.
type Options struct {
	Channels   int
	Samplerate int
}

// Channels is a functional option to set the amount of channels of the
// wav file. Typically this is either Mono (1) or Stereo (2).
func Channels(chs int) Option {
	return func(args *Options) {
		args.Channels = chs
	}
}

// Samplerate is a functional option to set the sampling rate with which the
// audio will be recorded.
func Samplerate(s int) Option {
	return func(args *Options) {
		args.Samplerate = s
	}
}
