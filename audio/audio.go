package audio

// OnDataCb is executed whenever a source has produced a new audio buffer.
type OnDataCb func(Msg)

// Source is the interface which is implemented by an audio source. This
// could be a local audio device (e.g. microphone) or a local file.
type Source interface {
	Start() error
	Stop() error
	Close() error
	SetCb(OnDataCb)
}

// Sink is the interface which is implemented by an audio sink, e.g. a file
// for recording.
type Sink interface {
	Write(Msg) error
	Close() error
}

// Msg contains an interleaved buffer of 16 bit signed samples with its
// metadata.
type Msg struct {
	Data       []int16
	Samplerate int
	Channels   int
	Frames     int // Number of Frames in the buffer
	EOF        bool
}

// Duration returns the playback length of the buffer in milliseconds.
func (m Msg) Duration() float64 {
	if m.Samplerate == 0 {
		return 0
	}
	return float64(m.Frames) * 1000 / float64(m.Samplerate)
}
