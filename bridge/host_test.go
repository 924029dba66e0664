package bridge

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dh1tw/opusbridge/audiocodec/fake"
)

func newTestHost(t *testing.T) (*Host, *fake.Backend) {
	t.Helper()
	b := fake.NewBackend()
	h := NewHost(b)
	t.Cleanup(func() { h.Close() })
	return h, b
}

func TestHostVersion(t *testing.T) {
	h, b := newTestHost(t)
	if h.Version() != b.Version() || h.Version() == "" {
		t.Fatal("unexpected version:", h.Version())
	}
}

func TestHostInvalidChannels(t *testing.T) {
	h, b := newTestHost(t)

	for _, chs := range []int{0, 3, -1, 255} {
		handle, err := h.CreateEncoder(48000, chs, 1)
		if !errors.Is(err, ErrInvalidArgument) || handle != 0 {
			t.Fatalf("encoder with %d channels: expected InvalidArgument, got %v", chs, err)
		}
		handle, err = h.CreateDecoder(48000, chs)
		if !errors.Is(err, ErrInvalidArgument) || handle != 0 {
			t.Fatalf("decoder with %d channels: expected InvalidArgument, got %v", chs, err)
		}
	}
	if b.Calls() != 0 || h.Len() != 0 {
		t.Fatal("no native resource may be created for invalid channel counts")
	}
}

func TestHostCreateFailure(t *testing.T) {
	h, _ := newTestHost(t)
	handle, err := h.CreateEncoder(44100, 1, 1)
	if !errors.Is(err, ErrIoFailure) || handle != 0 {
		t.Fatal("expected IoFailure, got", err)
	}
	if h.Len() != 0 {
		t.Fatal("failed creation must not register a session")
	}
}

func TestHostRoundTrip(t *testing.T) {
	h, _ := newTestHost(t)

	enc, err := h.CreateEncoder(48000, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := h.CreateDecoder(48000, 2)
	if err != nil {
		t.Fatal(err)
	}
	if enc == 0 || dec == 0 || enc == dec {
		t.Fatal("expected two distinct non-zero handles")
	}

	size, err := h.GetMaxPayloadSize(enc)
	if err != nil || size != DefaultMaxPayloadSize {
		t.Fatal("unexpected max payload size", size, err)
	}
	frameSize, err := h.GetFrameSize(dec)
	if err != nil || frameSize != DefaultFrameSize {
		t.Fatal("unexpected frame size", frameSize, err)
	}

	packet, err := h.Encode(enc, make([]int16, 2*960))
	if err != nil {
		t.Fatal(err)
	}
	pcm, err := h.Decode(dec, packet, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(pcm) != 2*960 {
		t.Fatalf("expected %d samples, got %d", 2*960, len(pcm))
	}

	pcm, err = h.Decode(dec, nil, false)
	if err != nil || len(pcm) != 2*960 {
		t.Fatal("concealment failed", len(pcm), err)
	}

	if err := h.ResetEncoderState(enc); err != nil {
		t.Fatal(err)
	}
	if err := h.ResetDecoderState(dec); err != nil {
		t.Fatal(err)
	}
}

func TestHostSetters(t *testing.T) {
	h, _ := newTestHost(t)
	enc, _ := h.CreateEncoder(48000, 1, 1)
	dec, _ := h.CreateDecoder(48000, 1)

	if err := h.SetMaxPayloadSize(enc, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if err := h.SetMaxPayloadSize(enc, 4000); err != nil {
		t.Fatal(err)
	}
	if size, _ := h.GetMaxPayloadSize(enc); size != 4000 {
		t.Fatal("expected 4000, got", size)
	}

	if err := h.SetFrameSize(dec, -5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if err := h.SetFrameSize(dec, 2880); err != nil {
		t.Fatal(err)
	}
	if size, _ := h.GetFrameSize(dec); size != 2880 {
		t.Fatal("expected 2880, got", size)
	}
}

func TestHostWrongKind(t *testing.T) {
	h, _ := newTestHost(t)
	enc, _ := h.CreateEncoder(48000, 1, 1)
	dec, _ := h.CreateDecoder(48000, 1)

	if _, err := h.Decode(enc, nil, false); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if _, err := h.Encode(dec, make([]int16, 960)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if err := h.DestroyEncoder(dec); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if err := h.DestroyDecoder(enc); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if h.Len() != 2 {
		t.Fatal("wrong kind destroy must not remove a session")
	}
}

func TestHostDestroy(t *testing.T) {
	h, b := newTestHost(t)
	enc, _ := h.CreateEncoder(48000, 1, 1)
	dec, _ := h.CreateDecoder(48000, 1)

	if err := h.DestroyEncoder(enc); err != nil {
		t.Fatal(err)
	}
	if err := h.DestroyDecoder(dec); err != nil {
		t.Fatal(err)
	}
	if b.Live() != 0 || h.Len() != 0 {
		t.Fatal("native resources leaked")
	}
	calls := b.Calls()

	// destroying twice, or destroying nothing, is a no-op
	for _, handle := range []Handle{enc, dec, 0} {
		if err := h.DestroyEncoder(handle); err != nil {
			t.Fatal(err)
		}
		if err := h.DestroyDecoder(handle); err != nil {
			t.Fatal(err)
		}
	}

	_, err := h.Encode(enc, make([]int16, 960))
	if !errors.Is(err, ErrIllegalState) || err.Error() != "Encoder is closed" {
		t.Fatal("expected IllegalState, got", err)
	}
	_, err = h.Decode(dec, nil, false)
	if !errors.Is(err, ErrIllegalState) || err.Error() != "Decoder is closed" {
		t.Fatal("expected IllegalState, got", err)
	}
	if _, err := h.GetFrameSize(0); !errors.Is(err, ErrIllegalState) {
		t.Fatal("expected IllegalState, got", err)
	}
	if b.Calls() != calls {
		t.Fatal("operations on destroyed handles must not reach the native layer")
	}
}

func TestHostClose(t *testing.T) {
	b := fake.NewBackend()
	h := NewHost(b, Verbose(true))
	for i := 0; i < 4; i++ {
		if _, err := h.CreateEncoder(48000, 1, 1); err != nil {
			t.Fatal(err)
		}
	}
	h.Close()
	if b.Live() != 0 {
		t.Fatal("Close must destroy all sessions")
	}
	if _, err := h.CreateDecoder(48000, 1); !errors.Is(err, ErrIllegalState) {
		t.Fatal("expected IllegalState, got", err)
	}
	if b.Live() != 0 {
		t.Fatal("rejected session must be destroyed")
	}
}

func TestHostDescribe(t *testing.T) {
	h, _ := newTestHost(t)
	enc, _ := h.CreateEncoderMode(24000, 2, GeneralAudio)
	dec, _ := h.CreateDecoder(24000, 1)

	desc, err := h.DescribeEncoder(enc)
	if err != nil || !strings.Contains(desc, "GeneralAudio") {
		t.Fatal("unexpected description:", desc, err)
	}
	desc, err = h.DescribeDecoder(dec)
	if err != nil || !strings.HasPrefix(desc, "DecodeSession") {
		t.Fatal("unexpected description:", desc, err)
	}

	// a handle only describes a session of the matching kind
	if _, err := h.DescribeEncoder(dec); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if _, err := h.DescribeDecoder(enc); !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if _, err := h.DescribeEncoder(0); !errors.Is(err, ErrIllegalState) {
		t.Fatal("expected IllegalState, got", err)
	}
}

func TestHostConcurrentSessions(t *testing.T) {
	h, b := newTestHost(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enc, err := h.CreateEncoder(48000, 1, 1)
			if err != nil {
				errs <- err
				return
			}
			dec, err := h.CreateDecoder(48000, 1)
			if err != nil {
				errs <- err
				return
			}
			for j := 0; j < 50; j++ {
				packet, err := h.Encode(enc, make([]int16, 960))
				if err != nil {
					errs <- err
					return
				}
				if _, err := h.Decode(dec, packet, false); err != nil {
					errs <- err
					return
				}
			}
			h.DestroyEncoder(enc)
			h.DestroyDecoder(dec)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	if b.Live() != 0 || h.Len() != 0 {
		t.Fatal("native resources leaked")
	}
}

func TestHostConcurrentSameHandle(t *testing.T) {
	h, b := newTestHost(t)
	enc, _ := h.CreateEncoder(48000, 1, 1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Encode(enc, make([]int16, 960))
			}
		}()
		go func() {
			defer wg.Done()
			h.DestroyEncoder(enc)
		}()
	}
	wg.Wait()

	if b.Destroyed() != 1 {
		t.Fatalf("expected exactly one native destroy, got %d", b.Destroyed())
	}
}
