package opus

import opus "gopkg.in/hraban/opus.v2"

// Option is the type for a function option
type Option func(*Options)

// Options is the data structure holding the optional encoder tuning values.
// Zero values leave the libopus defaults untouched, except for Complexity
// where -1 means default.
type Options struct {
	Bitrate        int
	Complexity     int
	MaxBandwidth   opus.Bandwidth
	InBandFEC      bool
	PacketLossPerc int
}

// Bitrate is a functional option to set the encoder bitrate in bits/s.
func Bitrate(b int) Option {
	return func(args *Options) {
		args.Bitrate = b
	}
}

// Complexity is a functional option to set the computational complexity
// of the encoder [0...10].
func Complexity(c int) Option {
	return func(args *Options) {
		args.Complexity = c
	}
}

// MaxBandwidth is a functional option to limit the audio bandwidth the
// encoder may use.
func MaxBandwidth(bw opus.Bandwidth) Option {
	return func(args *Options) {
		args.MaxBandwidth = bw
	}
}

// InBandFEC is a functional option which enables the in-band forward error
// correction. Decoders can then recover a lost packet from the next one.
func InBandFEC(enabled bool) Option {
	return func(args *Options) {
		args.InBandFEC = enabled
	}
}

// PacketLossPerc is a functional option which tells the encoder the
// expected packet loss on the wire in percent.
func PacketLossPerc(p int) Option {
	return func(args *Options) {
		args.PacketLossPerc = p
	}
}
