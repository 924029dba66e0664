package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/audio/sinks/wavWriter"
	"github.com/dh1tw/opusbridge/audio/sources/wavReader"
	"github.com/dh1tw/opusbridge/audiocodec/fake"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/dh1tw/opusbridge/packetfile"
)

var testSettings = opusSettings{
	samplerate:     48000,
	channels:       1,
	application:    bridge.VoiceOptimized,
	frameSize:      960,
	maxPayloadSize: 1024,
}

func writeTestWav(t *testing.T, frames, channels int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	w, err := wavWriter.NewWavWriter(path,
		wavWriter.Channels(channels),
		wavWriter.Samplerate(48000),
	)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]int16, frames*channels)
	for i := range data {
		data[i] = int16(i % 1000)
	}
	err = w.Write(audio.Msg{
		Data:       data,
		Samplerate: 48000,
		Channels:   channels,
		Frames:     frames,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEncoderPipeline(t *testing.T) {
	b := fake.NewBackend()
	host := bridge.NewHost(b)
	defer host.Close()

	enc, err := newEncoderPipeline(host, testSettings)
	if err != nil {
		t.Fatal(err)
	}

	var frames []packetfile.Frame
	emit := func(f packetfile.Frame) error {
		frames = append(frames, f)
		return nil
	}

	// stereo input is reduced to mono; 1500 frames make one complete
	// opus frame, the rest stays buffered
	msg := audio.Msg{
		Data:       make([]int16, 3000),
		Samplerate: 48000,
		Channels:   2,
		Frames:     1500,
	}
	if err := enc.Process(msg, emit); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if err := enc.Lost(emit); err != nil {
		t.Fatal(err)
	}
	if err := enc.Flush(emit); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if !frames[1].Lost || len(frames[1].Data) != 0 {
		t.Fatal("expected a lost frame")
	}
	for _, f := range []packetfile.Frame{frames[0], frames[2]} {
		if f.FrameSize != 960 || f.Channels != 1 || f.Samplerate != 48000 || len(f.Data) == 0 {
			t.Fatalf("unexpected frame %+v", f)
		}
	}
	if enc.packets != 2 {
		t.Fatalf("expected 2 packets, got %d", enc.packets)
	}

	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if host.Len() != 0 {
		t.Fatal("encoder not destroyed")
	}
}

func TestDecoderPipelineGaps(t *testing.T) {
	b := fake.NewBackend()
	host := bridge.NewHost(b)
	defer host.Close()

	enc, err := newEncoderPipeline(host, testSettings)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()

	var packets []packetfile.Frame
	emit := func(f packetfile.Frame) error {
		f.Sequence = uint64(len(packets) + 1)
		packets = append(packets, f)
		return nil
	}
	msg := audio.Msg{Data: make([]int16, 960*5), Samplerate: 48000, Channels: 1, Frames: 960 * 5}
	if err := enc.Process(msg, emit); err != nil {
		t.Fatal(err)
	}
	if len(packets) != 5 {
		t.Fatalf("expected 5 packets, got %d", len(packets))
	}

	tests := []struct {
		name      string
		fec       bool
		concealed int
		recovered int
	}{
		{"plc", false, 2, 0},
		{"fec", true, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dec, err := newDecoderPipeline(host, 48000, 1, tc.fec)
			if err != nil {
				t.Fatal(err)
			}
			defer dec.Close()

			total := 0
			// packets 2 and 3 never arrive
			for _, i := range []int{0, 3, 4} {
				msg, err := dec.Process(packets[i])
				if err != nil {
					t.Fatal(err)
				}
				total += msg.Frames
			}
			if total != 5*960 {
				t.Fatalf("expected %d frames, got %d", 5*960, total)
			}
			if dec.concealed != tc.concealed || dec.recovered != tc.recovered {
				t.Fatalf("expected %d/%d concealed/recovered, got %d/%d",
					tc.concealed, tc.recovered, dec.concealed, dec.recovered)
			}
			size, err := host.GetFrameSize(dec.handle)
			if err != nil {
				t.Fatal(err)
			}
			if size != 48000*maxFrameLength/1000 {
				t.Fatalf("frame size not restored: %d", size)
			}
		})
	}
}

func TestDecoderPipelineTrailingLoss(t *testing.T) {
	host := bridge.NewHost(fake.NewBackend())
	defer host.Close()

	dec, err := newDecoderPipeline(host, 48000, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	lost := packetfile.Frame{Lost: true, FrameSize: 480, Channels: 1, Samplerate: 48000}
	for i := 0; i < 3; i++ {
		msg, err := dec.Process(lost)
		if err != nil {
			t.Fatal(err)
		}
		if len(msg.Data) != 0 {
			t.Fatal("lost frames must not produce audio before the next packet")
		}
	}

	msg, err := dec.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Frames != 3*480 || !msg.EOF {
		t.Fatalf("expected 3 concealed frames of 480 samples, got %d", msg.Frames)
	}
}

func TestRoundtrip(t *testing.T) {
	path := writeTestWav(t, 4800, 2)

	tests := []struct {
		name      string
		loss      int
		concealed int
	}{
		{"no loss", 0, 0},
		{"total loss", 100, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			host := bridge.NewHost(fake.NewBackend())
			defer host.Close()

			src, err := wavReader.NewWavReader(path, wavReader.FramesPerBuffer(1000))
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()

			res, err := roundtrip(host, testSettings, src, tc.loss, false)
			if err != nil {
				t.Fatal(err)
			}
			if res.packets != 5 {
				t.Fatalf("expected 5 packets, got %d", res.packets)
			}
			if res.concealed != tc.concealed {
				t.Fatalf("expected %d concealed frames, got %d", tc.concealed, res.concealed)
			}
			if res.decoded.Frames != 4800 || res.decoded.Channels != 1 {
				t.Fatalf("unexpected decoded audio: %d frames, %d ch",
					res.decoded.Frames, res.decoded.Channels)
			}
			if res.duration.Milliseconds() != 100 {
				t.Fatalf("expected 100ms, got %v", res.duration)
			}
			if res.bitrate() <= 0 {
				t.Fatal("expected a positive bitrate")
			}
			if host.Len() != 0 {
				t.Fatalf("%d sessions leaked", host.Len())
			}
		})
	}
}

func TestDecoderPipelineRestoreFailure(t *testing.T) {
	host := bridge.NewHost(fake.NewBackend())
	defer host.Close()

	dec, err := newDecoderPipeline(host, 48000, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	// an invalid size makes restoring the frame size after concealment fail
	dec.maxFrame = 0

	if _, err := dec.Process(packetfile.Frame{Lost: true, FrameSize: 960}); err != nil {
		t.Fatal(err)
	}
	_, err = dec.Flush()
	if !errors.Is(err, bridge.ErrInvalidArgument) {
		t.Fatalf("expected the failed restore to be reported, got %v", err)
	}
}
