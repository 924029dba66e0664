package bridge

import (
	"errors"
	"testing"

	ac "github.com/dh1tw/opusbridge/audiocodec"
	"github.com/dh1tw/opusbridge/audiocodec/fake"
)

func newTestPair(t *testing.T, samplerate int, chs Channels) (*EncodeSession, *DecodeSession, *fake.Backend) {
	t.Helper()
	b := fake.NewBackend()
	enc, err := NewEncodeSession(b, samplerate, chs, VoiceOptimized)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecodeSession(b, samplerate, chs)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		enc.Close()
		dec.Close()
	})
	return enc, dec, b
}

func TestNewDecodeSession(t *testing.T) {
	b := fake.NewBackend()
	dec, err := NewDecodeSession(b, 48000, Stereo)
	if err != nil {
		t.Fatal(err)
	}
	size, err := dec.FrameSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != DefaultFrameSize {
		t.Fatalf("expected default frame size %d, got %d", DefaultFrameSize, size)
	}
	dec.Close()

	_, err = NewDecodeSession(b, 48000, 3)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatal("expected InvalidArgument, got", err)
	}
	if err.Error() != "Invalid number of channels: 3" {
		t.Fatal("unexpected message:", err.Error())
	}

	_, err = NewDecodeSession(b, 48001, Mono)
	if !errors.Is(err, ErrIoFailure) || err.Error() != "Failed to create decoder: BadArgument" {
		t.Fatal("expected IoFailure, got", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, chs := range []Channels{Mono, Stereo} {
		enc, dec, _ := newTestPair(t, 48000, chs)
		frameSize, _ := dec.FrameSize()

		packet, err := enc.Encode(make([]int16, int(chs)*frameSize))
		if err != nil {
			t.Fatal(err)
		}
		pcm, err := dec.Decode(packet, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(pcm) != int(chs)*frameSize {
			t.Fatalf("%s: expected %d samples, got %d", chs, int(chs)*frameSize, len(pcm))
		}
	}
}

func TestDecodeFrameSizes(t *testing.T) {
	enc, dec, _ := newTestPair(t, 48000, Mono)

	if err := dec.SetFrameSize(2880); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{120, 240, 480, 960, 1920, 2880} {
		packet, err := enc.Encode(make([]int16, n))
		if err != nil {
			t.Fatal(err)
		}
		pcm, err := dec.Decode(packet, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(pcm) != n {
			t.Fatalf("expected %d samples, got %d", n, len(pcm))
		}
	}
}

func TestDecodeWrongFrameSize(t *testing.T) {
	enc, dec, _ := newTestPair(t, 48000, Mono)

	packet, _ := enc.Encode(make([]int16, 120))
	dec.SetFrameSize(119)
	_, err := dec.Decode(packet, false)
	if err == nil || err.Error() != "Failed to decode: BufferTooSmall" {
		t.Fatal("expected BufferTooSmall, got", err)
	}

	dec.SetFrameSize(100000)
	if _, err := dec.Decode(packet, false); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeInvalidPacket(t *testing.T) {
	enc, dec, _ := newTestPair(t, 48000, Mono)

	packet, _ := enc.Encode(make([]int16, 960))
	_, err := dec.Decode(packet[4:], false)
	var bErr *Error
	if !errors.As(err, &bErr) {
		t.Fatal("expected *Error, got", err)
	}
	if bErr.Kind != KindRuntimeFailure || bErr.Label != LabelInvalidPacket {
		t.Fatalf("unexpected failure: %v", bErr)
	}
}

func TestDecodeConcealment(t *testing.T) {
	for _, chs := range []Channels{Mono, Stereo} {
		_, dec, _ := newTestPair(t, 48000, chs)
		dec.SetFrameSize(480)

		for _, fec := range []bool{false, true} {
			pcm, err := dec.Decode(nil, fec)
			if err != nil {
				t.Fatal(err)
			}
			if len(pcm) != 480*int(chs) {
				t.Fatalf("expected %d samples, got %d", 480*int(chs), len(pcm))
			}
		}

		pcm, err := dec.DecodeFEC()
		if err != nil {
			t.Fatal(err)
		}
		if len(pcm) != 480*int(chs) {
			t.Fatalf("expected %d samples, got %d", 480*int(chs), len(pcm))
		}
	}
}

func TestDecodeConcealmentForcesFEC(t *testing.T) {
	b := fake.NewBackend()
	native, _ := b.NewDecoder(ac.Config{Samplerate: 48000, Channels: 1})
	dec := &DecodeSession{native: native, samplerate: 48000, channels: Mono, frameSize: 960}
	defer dec.Close()

	if _, err := dec.Decode(nil, false); err != nil {
		t.Fatal(err)
	}
	if !native.(*fake.Decoder).LastFEC {
		t.Fatal("fec must be forced when no packet is supplied")
	}
}

func TestSetFrameSize(t *testing.T) {
	_, dec, _ := newTestPair(t, 48000, Mono)

	for _, size := range []int{0, -1, -1 << 31} {
		err := dec.SetFrameSize(size)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("size %d: expected InvalidArgument, got %v", size, err)
		}
		if got, _ := dec.FrameSize(); got != DefaultFrameSize {
			t.Fatalf("rejected size must not be stored, got %d", got)
		}
	}
	if err := dec.SetFrameSize(0); err.Error() != "Invalid frame size: 0" {
		t.Fatal("unexpected message:", err.Error())
	}

	for _, size := range []int{1, 960, 1<<31 - 1} {
		if err := dec.SetFrameSize(size); err != nil {
			t.Fatal(err)
		}
		if got, _ := dec.FrameSize(); got != size {
			t.Fatalf("expected %d, got %d", size, got)
		}
	}
}

func TestDecodeHugeFrameSize(t *testing.T) {
	_, dec, _ := newTestPair(t, 48000, Stereo)
	dec.SetFrameSize(1<<31 - 1)
	_, err := dec.Decode(nil, false)
	if !errors.Is(err, ErrMarshalFailure) {
		t.Fatal("expected MarshalFailure, got", err)
	}
}

func TestDecoderResetState(t *testing.T) {
	enc, dec, b := newTestPair(t, 48000, Mono)
	dec.SetFrameSize(2880)

	p1, _ := enc.Encode(make([]int16, 120))
	p2, _ := enc.Encode(make([]int16, 2880))

	if _, err := dec.Decode(p1, false); err != nil {
		t.Fatal(err)
	}
	if err := dec.ResetState(); err != nil {
		t.Fatal(err)
	}
	if _, err := dec.Decode(p2, false); err != nil {
		t.Fatal(err)
	}

	b.FailNext("reset", ac.Status(-99))
	err := dec.ResetState()
	var bErr *Error
	if !errors.As(err, &bErr) || bErr.Label != LabelUnknown {
		t.Fatal("expected Unknown label, got", err)
	}
}

func TestDecoderClosed(t *testing.T) {
	b := fake.NewBackend()
	dec, _ := NewDecodeSession(b, 48000, Mono)
	if _, err := dec.Decode(nil, false); err != nil {
		t.Fatal(err)
	}
	dec.Close()
	calls := b.Calls()

	checks := map[string]error{
		"decode": func() error { _, err := dec.Decode(nil, false); return err }(),
		"fec":    func() error { _, err := dec.DecodeFEC(); return err }(),
		"reset":  dec.ResetState(),
		"set":    dec.SetFrameSize(100),
		"get":    func() error { _, err := dec.FrameSize(); return err }(),
	}
	for op, err := range checks {
		if !errors.Is(err, ErrIllegalState) {
			t.Fatalf("%s: expected IllegalState, got %v", op, err)
		}
		if err.Error() != "Decoder is closed" {
			t.Fatalf("%s: unexpected message %q", op, err.Error())
		}
	}

	dec.Close()
	if b.Calls() != calls {
		t.Fatal("operations on a closed session must not reach the native layer")
	}
	if b.Destroyed() != 1 {
		t.Fatalf("expected exactly one native destroy, got %d", b.Destroyed())
	}
}
