package opus

import (
	"strings"
	"testing"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// skipShort skips tests which need the libopus shared library.
func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("libopus test skipped in short mode")
	}
}

func TestVersion(t *testing.T) {
	skipShort(t)
	b := NewBackend()
	if !strings.HasPrefix(b.Version(), "libopus") {
		t.Fatal("unexpected version string:", b.Version())
	}
	if b.Name() != "opus" {
		t.Fatal("unexpected codec name:", b.Name())
	}
}

func TestInvalidSamplerate(t *testing.T) {
	skipShort(t)
	b := NewBackend()
	_, err := b.NewEncoder(ac.Config{Samplerate: 48001, Channels: 1})
	if ac.StatusOf(err) != ac.StatusBadArg {
		t.Fatalf("expected BAD_ARG, got %v", err)
	}
	_, err = b.NewDecoder(ac.Config{Samplerate: 48001, Channels: 1})
	if ac.StatusOf(err) != ac.StatusBadArg {
		t.Fatalf("expected BAD_ARG, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	skipShort(t)
	b := NewBackend(Bitrate(24000), Complexity(5))
	cfg := ac.Config{Samplerate: 48000, Channels: 2, Application: ac.AppAudio}

	enc, err := b.NewEncoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Destroy()

	dec, err := b.NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Destroy()

	for _, frameSize := range []int{120, 240, 480, 960, 1920, 2880} {
		data := make([]byte, 1024)
		n, err := enc.Encode(make([]int16, frameSize*2), frameSize, data)
		if err != nil {
			t.Fatal(err)
		}
		if n <= 0 {
			t.Fatal("encoder returned an empty packet")
		}

		pcm := make([]int16, 2880*2)
		num, err := dec.Decode(data[:n], pcm, 2880, false)
		if err != nil {
			t.Fatal(err)
		}
		if num != frameSize {
			t.Fatalf("expected %d samples, got %d", frameSize, num)
		}
	}
}

func TestDecodeConcealment(t *testing.T) {
	skipShort(t)
	b := NewBackend()
	dec, err := b.NewDecoder(ac.Config{Samplerate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}

	pcm := make([]int16, 960)
	num, err := dec.Decode(nil, pcm, 960, false)
	if err != nil {
		t.Fatal(err)
	}
	if num != 960 {
		t.Fatalf("expected 960 samples, got %d", num)
	}
}

func TestDecodeBufferTooSmall(t *testing.T) {
	skipShort(t)
	b := NewBackend()
	cfg := ac.Config{Samplerate: 48000, Channels: 1}

	enc, _ := b.NewEncoder(cfg)
	data := make([]byte, 1024)
	n, err := enc.Encode(make([]int16, 960), 960, data)
	if err != nil {
		t.Fatal(err)
	}

	dec, _ := b.NewDecoder(cfg)
	pcm := make([]int16, 959)
	_, err = dec.Decode(data[:n], pcm, 959, false)
	if ac.StatusOf(err) != ac.StatusBufferTooSmall {
		t.Fatalf("expected BUFFER_TOO_SMALL, got %v", err)
	}
}

func TestDestroyedEncoder(t *testing.T) {
	skipShort(t)
	b := NewBackend()
	enc, err := b.NewEncoder(ac.Config{Samplerate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	enc.Destroy()
	if _, err := enc.Encode(make([]int16, 960), 960, make([]byte, 100)); ac.StatusOf(err) != ac.StatusInvalidState {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
	if err := enc.Reset(); ac.StatusOf(err) != ac.StatusInvalidState {
		t.Fatalf("expected INVALID_STATE, got %v", err)
	}
}

func TestConfigure(t *testing.T) {
	b := NewBackend(Bitrate(24000))
	b.Configure(Complexity(3), InBandFEC(true))

	exp := Options{
		Bitrate:    24000,
		Complexity: 3,
		InBandFEC:  true,
	}
	if got := b.Options(); got != exp {
		t.Fatalf("expected %+v, got %+v", exp, got)
	}
}

func TestEncoderReset(t *testing.T) {
	skipShort(t)

	b := NewBackend(Bitrate(24000))
	native, err := b.NewEncoder(ac.Config{Samplerate: 48000, Channels: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer native.Destroy()

	enc := native.(*OpusEncoder)
	libEnc := enc.encoder

	pcm := make([]int16, 960)
	for i := range pcm {
		pcm[i] = int16(i * 20)
	}

	for i := 0; i < 3; i++ {
		if _, err := enc.Encode(pcm, 960, make([]byte, 1000)); err != nil {
			t.Fatal(err)
		}
		if err := enc.Reset(); err != nil {
			t.Fatal(err)
		}
	}

	if enc.encoder != libEnc {
		t.Fatal("reset must keep the libopus encoder instance")
	}

	bitrate, err := enc.encoder.Bitrate()
	if err != nil {
		t.Fatal(err)
	}
	if bitrate != 24000 {
		t.Fatalf("expected bitrate 24000 after reset, got %d", bitrate)
	}
}
