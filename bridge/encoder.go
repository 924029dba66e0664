package bridge

import (
	"fmt"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// EncodeSession owns exactly one native encoder. It is not safe for
// concurrent use; callers have to serialize the operations on a session.
type EncodeSession struct {
	native         ac.NativeEncoder
	samplerate     int
	channels       Channels
	application    ApplicationMode
	maxPayloadSize int
}

// NewEncodeSession validates the channel count and creates the native
// encoder. The session starts with a maximum payload size of
// DefaultMaxPayloadSize bytes.
func NewEncodeSession(backend ac.Backend, samplerate int, channels Channels, app ApplicationMode) (*EncodeSession, error) {
	if _, err := ParseChannels(int(channels)); err != nil {
		return nil, err
	}

	native, err := backend.NewEncoder(ac.Config{
		Samplerate:  samplerate,
		Channels:    int(channels),
		Application: app.native(),
	})
	if err != nil {
		return nil, nativeFailure(FailureKind(true), "Failed to create encoder", err)
	}
	if native == nil {
		return nil, &Error{
			Kind:  KindIoFailure,
			Label: LabelUnknown,
			Msg:   "Failed to create encoder: " + string(LabelUnknown),
		}
	}

	return &EncodeSession{
		native:         native,
		samplerate:     samplerate,
		channels:       channels,
		application:    app,
		maxPayloadSize: DefaultMaxPayloadSize,
	}, nil
}

func (s *EncodeSession) closedErr() error {
	return illegalState("Encoder is closed")
}

// SetMaxPayloadSize sets the size of the buffer a packet is encoded into.
// On failure the previous value stays in place.
func (s *EncodeSession) SetMaxPayloadSize(size int) error {
	if s.IsClosed() {
		return s.closedErr()
	}
	if size <= 0 {
		return invalidArgument("Invalid maximum payload size: %d", size)
	}
	s.maxPayloadSize = size
	return nil
}

// MaxPayloadSize returns the current maximum payload size in bytes.
func (s *EncodeSession) MaxPayloadSize() (int, error) {
	if s.IsClosed() {
		return 0, s.closedErr()
	}
	return s.maxPayloadSize, nil
}

// Encode compresses the interleaved samples into one packet. The amount of
// samples per channel is len(samples)/channels.
func (s *EncodeSession) Encode(samples []int16) ([]byte, error) {
	if s.IsClosed() {
		return nil, s.closedErr()
	}
	return encodeBuffer(s.native, s.channels, samples, s.maxPayloadSize)
}

// ResetState resets the native encoder state.
func (s *EncodeSession) ResetState() error {
	if s.IsClosed() {
		return s.closedErr()
	}
	if err := s.native.Reset(); err != nil {
		return nativeFailure(FailureKind(false), "Failed to reset state", err)
	}
	return nil
}

// Close destroys the native encoder. Closing an already closed session is
// a no-op.
func (s *EncodeSession) Close() error {
	if s.native == nil {
		return nil
	}
	native := s.native
	s.native = nil
	native.Destroy()
	return nil
}

// IsClosed reports whether the session has been destroyed.
func (s *EncodeSession) IsClosed() bool {
	return s.native == nil
}

// State returns the lifecycle state of the session.
func (s *EncodeSession) State() State {
	if s.IsClosed() {
		return Closed
	}
	return Open
}

// Samplerate returns the sample rate the session was created with.
func (s *EncodeSession) Samplerate() int {
	return s.samplerate
}

// Channels returns the channel layout of the session.
func (s *EncodeSession) Channels() Channels {
	return s.channels
}

// Application returns the application mode of the session.
func (s *EncodeSession) Application() ApplicationMode {
	return s.application
}

func (s *EncodeSession) String() string {
	return fmt.Sprintf("EncodeSession[samplerate=%d, channels=%s, application=%s, maxPayloadSize=%d, state=%s]",
		s.samplerate, s.channels, s.application, s.maxPayloadSize, s.State())
}
