package bridge

import (
	"fmt"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// DecodeSession owns exactly one native decoder. It is not safe for
// concurrent use; callers have to serialize the operations on a session.
type DecodeSession struct {
	native     ac.NativeDecoder
	samplerate int
	channels   Channels
	frameSize  int
}

// NewDecodeSession validates the channel count and creates the native
// decoder. The session starts with a frame size of DefaultFrameSize samples
// per channel.
func NewDecodeSession(backend ac.Backend, samplerate int, channels Channels) (*DecodeSession, error) {
	if _, err := ParseChannels(int(channels)); err != nil {
		return nil, err
	}

	native, err := backend.NewDecoder(ac.Config{
		Samplerate: samplerate,
		Channels:   int(channels),
	})
	if err != nil {
		return nil, nativeFailure(FailureKind(true), "Failed to create decoder", err)
	}
	if native == nil {
		return nil, &Error{
			Kind:  KindIoFailure,
			Label: LabelUnknown,
			Msg:   "Failed to create decoder: " + string(LabelUnknown),
		}
	}

	return &DecodeSession{
		native:     native,
		samplerate: samplerate,
		channels:   channels,
		frameSize:  DefaultFrameSize,
	}, nil
}

func (s *DecodeSession) closedErr() error {
	return illegalState("Decoder is closed")
}

// SetFrameSize sets the amount of samples per channel a decode call may
// produce. On failure the previous value stays in place.
func (s *DecodeSession) SetFrameSize(size int) error {
	if s.IsClosed() {
		return s.closedErr()
	}
	if size <= 0 {
		return invalidArgument("Invalid frame size: %d", size)
	}
	s.frameSize = size
	return nil
}

// FrameSize returns the current frame size in samples per channel.
func (s *DecodeSession) FrameSize() (int, error) {
	if s.IsClosed() {
		return 0, s.closedErr()
	}
	return s.frameSize, nil
}

// Decode decompresses a packet into interleaved samples. A nil or empty
// packet requests packet loss concealment; fec is then forced to true.
func (s *DecodeSession) Decode(packet []byte, fec bool) ([]int16, error) {
	if s.IsClosed() {
		return nil, s.closedErr()
	}
	return decodeBuffer(s.native, s.channels, packet, fec, s.frameSize)
}

// DecodeFEC asks the decoder for its best guess of a lost frame.
func (s *DecodeSession) DecodeFEC() ([]int16, error) {
	return s.Decode(nil, false)
}

// ResetState resets the native decoder state.
func (s *DecodeSession) ResetState() error {
	if s.IsClosed() {
		return s.closedErr()
	}
	if err := s.native.Reset(); err != nil {
		return nativeFailure(FailureKind(false), "Failed to reset state", err)
	}
	return nil
}

// Close destroys the native decoder. Closing an already closed session is
// a no-op.
func (s *DecodeSession) Close() error {
	if s.native == nil {
		return nil
	}
	native := s.native
	s.native = nil
	native.Destroy()
	return nil
}

// IsClosed reports whether the session has been destroyed.
func (s *DecodeSession) IsClosed() bool {
	return s.native == nil
}

// State returns the lifecycle state of the session.
func (s *DecodeSession) State() State {
	if s.IsClosed() {
		return Closed
	}
	return Open
}

// Samplerate returns the sample rate the session was created with.
func (s *DecodeSession) Samplerate() int {
	return s.samplerate
}

// Channels returns the channel layout of the session.
func (s *DecodeSession) Channels() Channels {
	return s.channels
}

func (s *DecodeSession) String() string {
	return fmt.Sprintf("DecodeSession[samplerate=%d, channels=%s, frameSize=%d, state=%s]",
		s.samplerate, s.channels, s.frameSize, s.State())
}
