package bridge

import (
	"fmt"
	"io"
	"log"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// Host is the boundary surface presented to a host environment. Sessions
// are identified by opaque handles; the zero handle always means "no live
// native resource". Host is safe for concurrent use: calls on the same
// handle are serialized, calls on different handles are independent.
type Host struct {
	backend  ac.Backend
	sessions *Registry
	verbose  bool
}

// HostOption is the type for a function option of the Host.
type HostOption func(*Host)

// Verbose is a functional option which logs the creation and destruction
// of sessions.
func Verbose(v bool) HostOption {
	return func(h *Host) {
		h.verbose = v
	}
}

// NewHost creates a Host which creates its sessions with backend.
func NewHost(backend ac.Backend, opts ...HostOption) *Host {
	h := &Host{
		backend:  backend,
		sessions: NewRegistry(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Version returns the version string of the native codec library.
func (h *Host) Version() string {
	return h.backend.Version()
}

// Len returns the number of live sessions.
func (h *Host) Len() int {
	return h.sessions.Len()
}

// Close destroys every live session.
func (h *Host) Close() error {
	return h.sessions.Close()
}

func (h *Host) insert(s io.Closer) (Handle, error) {
	desc := fmt.Sprint(s)
	handle := h.sessions.Insert(s)
	if handle == 0 {
		s.Close()
		return 0, illegalState("Host is closed")
	}
	if h.verbose {
		log.Printf("created %s (handle %d)", desc, handle)
	}
	return handle, nil
}

// CreateEncoder creates an encoder session. channels must be 1 or 2;
// applicationMode follows ApplicationModeFromInt.
func (h *Host) CreateEncoder(samplerate, channels, applicationMode int) (Handle, error) {
	chs, err := ParseChannels(channels)
	if err != nil {
		return 0, err
	}
	return h.CreateEncoderMode(samplerate, int(chs), ApplicationModeFromInt(applicationMode))
}

// CreateEncoderMode creates an encoder session with a typed application
// mode. Unlike the integer representation it can select GeneralAudio.
func (h *Host) CreateEncoderMode(samplerate, channels int, mode ApplicationMode) (Handle, error) {
	chs, err := ParseChannels(channels)
	if err != nil {
		return 0, err
	}
	s, err := NewEncodeSession(h.backend, samplerate, chs, mode)
	if err != nil {
		return 0, err
	}
	return h.insert(s)
}

// CreateDecoder creates a decoder session. channels must be 1 or 2.
func (h *Host) CreateDecoder(samplerate, channels int) (Handle, error) {
	chs, err := ParseChannels(channels)
	if err != nil {
		return 0, err
	}
	s, err := NewDecodeSession(h.backend, samplerate, chs)
	if err != nil {
		return 0, err
	}
	return h.insert(s)
}

// withEncoder runs fn with the encoder behind handle. Unknown or destroyed
// handles report IllegalState, a handle of a decoder InvalidArgument.
func (h *Host) withEncoder(handle Handle, fn func(*EncodeSession) error) error {
	var err error
	found := h.sessions.With(handle, func(v io.Closer) {
		enc, ok := v.(*EncodeSession)
		if !ok {
			err = invalidArgument("Handle %d does not refer to an encoder", handle)
			return
		}
		err = fn(enc)
	})
	if !found {
		return illegalState("Encoder is closed")
	}
	return err
}

func (h *Host) withDecoder(handle Handle, fn func(*DecodeSession) error) error {
	var err error
	found := h.sessions.With(handle, func(v io.Closer) {
		dec, ok := v.(*DecodeSession)
		if !ok {
			err = invalidArgument("Handle %d does not refer to a decoder", handle)
			return
		}
		err = fn(dec)
	})
	if !found {
		return illegalState("Decoder is closed")
	}
	return err
}

// SetMaxPayloadSize sets the maximum payload size of an encoder.
func (h *Host) SetMaxPayloadSize(handle Handle, size int) error {
	return h.withEncoder(handle, func(s *EncodeSession) error {
		return s.SetMaxPayloadSize(size)
	})
}

// GetMaxPayloadSize returns the maximum payload size of an encoder.
func (h *Host) GetMaxPayloadSize(handle Handle) (int, error) {
	var size int
	err := h.withEncoder(handle, func(s *EncodeSession) error {
		var err error
		size, err = s.MaxPayloadSize()
		return err
	})
	return size, err
}

// Encode encodes interleaved samples into one packet.
func (h *Host) Encode(handle Handle, samples []int16) ([]byte, error) {
	var packet []byte
	err := h.withEncoder(handle, func(s *EncodeSession) error {
		var err error
		packet, err = s.Encode(samples)
		return err
	})
	return packet, err
}

// ResetEncoderState resets the native encoder state.
func (h *Host) ResetEncoderState(handle Handle) error {
	return h.withEncoder(handle, func(s *EncodeSession) error {
		return s.ResetState()
	})
}

// DestroyEncoder destroys an encoder. Destroying the zero handle or an
// already destroyed handle is a no-op.
func (h *Host) DestroyEncoder(handle Handle) error {
	return h.destroy(handle, true)
}

// SetFrameSize sets the frame size of a decoder.
func (h *Host) SetFrameSize(handle Handle, size int) error {
	return h.withDecoder(handle, func(s *DecodeSession) error {
		return s.SetFrameSize(size)
	})
}

// GetFrameSize returns the frame size of a decoder.
func (h *Host) GetFrameSize(handle Handle) (int, error) {
	var size int
	err := h.withDecoder(handle, func(s *DecodeSession) error {
		var err error
		size, err = s.FrameSize()
		return err
	})
	return size, err
}

// Decode decodes a packet. A nil packet requests packet loss concealment.
func (h *Host) Decode(handle Handle, packet []byte, fec bool) ([]int16, error) {
	var samples []int16
	err := h.withDecoder(handle, func(s *DecodeSession) error {
		var err error
		samples, err = s.Decode(packet, fec)
		return err
	})
	return samples, err
}

// ResetDecoderState resets the native decoder state.
func (h *Host) ResetDecoderState(handle Handle) error {
	return h.withDecoder(handle, func(s *DecodeSession) error {
		return s.ResetState()
	})
}

// DestroyDecoder destroys a decoder. Destroying the zero handle or an
// already destroyed handle is a no-op.
func (h *Host) DestroyDecoder(handle Handle) error {
	return h.destroy(handle, false)
}

func (h *Host) destroy(handle Handle, encoder bool) error {
	v, ok := h.sessions.Get(handle)
	if !ok {
		return nil
	}
	switch v.(type) {
	case *EncodeSession:
		if !encoder {
			return invalidArgument("Handle %d does not refer to a decoder", handle)
		}
	case *DecodeSession:
		if encoder {
			return invalidArgument("Handle %d does not refer to an encoder", handle)
		}
	}
	if _, ok := h.sessions.Remove(handle); ok && h.verbose {
		log.Printf("destroyed %v (handle %d)", v, handle)
	}
	return nil
}

// DescribeEncoder returns a description of the encoder behind handle.
func (h *Host) DescribeEncoder(handle Handle) (string, error) {
	var desc string
	err := h.withEncoder(handle, func(s *EncodeSession) error {
		desc = s.String()
		return nil
	})
	return desc, err
}

// DescribeDecoder returns a description of the decoder behind handle.
func (h *Host) DescribeDecoder(handle Handle) (string, error) {
	var desc string
	err := h.withDecoder(handle, func(s *DecodeSession) error {
		desc = s.String()
		return nil
	})
	return desc, err
}
