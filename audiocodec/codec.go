// Package audiocodec describes the capabilities a native audio codec has to
// provide so that it can be driven through the bridge. The codec itself is a
// black box: it can be created, fed with buffers, reset and destroyed.
package audiocodec

// Application selects the tuning profile of a native encoder.
type Application int

const (
	AppVoIP Application = iota
	AppRestrictedLowdelay
	AppAudio
)

func (a Application) String() string {
	switch a {
	case AppVoIP:
		return "voip"
	case AppRestrictedLowdelay:
		return "restricted_lowdelay"
	case AppAudio:
		return "audio"
	}
	return "unknown"
}

// Config holds the creation parameters of a native codec instance.
// Application is ignored by decoders.
type Config struct {
	Samplerate  int
	Channels    int
	Application Application
}

// Backend creates native codec instances. Every instance returned by a
// Backend is exclusively owned by the caller, which has to call Destroy
// exactly once.
type Backend interface {
	Name() string
	Version() string
	NewEncoder(Config) (NativeEncoder, error)
	NewDecoder(Config) (NativeDecoder, error)
}

// NativeEncoder is a single native encoder instance. It is not reentrant.
type NativeEncoder interface {
	// Encode compresses frameSize samples per channel from the interleaved
	// pcm buffer into data and returns the amount of bytes written.
	Encode(pcm []int16, frameSize int, data []byte) (int, error)
	Reset() error
	Destroy()
}

// NativeDecoder is a single native decoder instance. It is not reentrant.
type NativeDecoder interface {
	// Decode decompresses data into the interleaved pcm buffer and returns
	// the amount of samples per channel written. frameSize is the maximum
	// amount of samples per channel pcm can hold. An empty data slice
	// requests packet loss concealment.
	Decode(data []byte, pcm []int16, frameSize int, fec bool) (int, error)
	Reset() error
	Destroy()
}
