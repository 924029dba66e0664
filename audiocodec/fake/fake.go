// Package fake provides a deterministic in-memory audiocodec.Backend for
// testing. It validates its arguments the way libopus does, produces small
// self-describing packets and counts every call which reaches the "native"
// layer.
package fake

import (
	"encoding/binary"
	"sync"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// magic marks the first byte of every packet produced by the fake encoder.
const magic byte = 0xfb

// headerSize is the size of a fake packet without payload.
const headerSize = 4

// Backend is a fake implementation of audiocodec.Backend.
type Backend struct {
	mu        sync.Mutex
	calls     int
	created   int
	destroyed int
	failNext  ac.Status
	failOp    string
}

// NewBackend creates a new fake backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Name returns the name of the audio codec
func (b *Backend) Name() string {
	return "fake"
}

// Version returns a libopus styled version string.
func (b *Backend) Version() string {
	return "fake 1.0.0"
}

// Calls returns the amount of calls which reached a native instance
// (creation included).
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Live returns the amount of created but not yet destroyed instances.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created - b.destroyed
}

// Destroyed returns the amount of destroyed instances.
func (b *Backend) Destroyed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed
}

// FailNext makes the next native call of the given operation ("create",
// "encode", "decode" or "reset") fail with status s.
func (b *Backend) FailNext(op string, s ac.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOp = op
	b.failNext = s
}

// enter registers a native call and returns an injected failure, if any.
func (b *Backend) enter(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failOp == op && b.failNext != ac.StatusOK {
		s := b.failNext
		b.failOp = ""
		b.failNext = ac.StatusOK
		return s
	}
	return nil
}

func (b *Backend) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.destroyed++
}

func validConfig(cfg ac.Config) bool {
	switch cfg.Samplerate {
	case 8000, 12000, 16000, 24000, 48000:
	default:
		return false
	}
	return cfg.Channels == 1 || cfg.Channels == 2
}

// validFrameSize reports whether frameSize samples form a 2.5, 5, 10, 20,
// 40 or 60 ms frame at the given sample rate.
func validFrameSize(samplerate, frameSize int) bool {
	if frameSize <= 0 || (frameSize*400)%samplerate != 0 {
		return false
	}
	switch frameSize * 400 / samplerate {
	case 1, 2, 4, 8, 16, 24:
		return true
	}
	return false
}

// NewEncoder creates a fake encoder.
func (b *Backend) NewEncoder(cfg ac.Config) (ac.NativeEncoder, error) {
	if err := b.enter("create"); err != nil {
		return nil, err
	}
	if !validConfig(cfg) {
		return nil, ac.StatusBadArg
	}
	b.mu.Lock()
	b.created++
	b.mu.Unlock()
	return &Encoder{backend: b, config: cfg}, nil
}

// NewDecoder creates a fake decoder.
func (b *Backend) NewDecoder(cfg ac.Config) (ac.NativeDecoder, error) {
	if err := b.enter("create"); err != nil {
		return nil, err
	}
	if !validConfig(cfg) {
		return nil, ac.StatusBadArg
	}
	b.mu.Lock()
	b.created++
	b.mu.Unlock()
	return &Decoder{backend: b, config: cfg}, nil
}

// Encoder is a fake implementation of audiocodec.NativeEncoder.
type Encoder struct {
	backend   *Backend
	config    ac.Config
	destroyed bool
	packets   int
}

// Encode writes a packet consisting of a header (magic, channels, frame
// duration in 48 kHz samples) followed by one byte per 120 samples carrying
// a running packet counter.
func (e *Encoder) Encode(pcm []int16, frameSize int, data []byte) (int, error) {
	if err := e.backend.enter("encode"); err != nil {
		return 0, err
	}
	if e.destroyed {
		return 0, ac.StatusInvalidState
	}
	if !validFrameSize(e.config.Samplerate, frameSize) || frameSize*e.config.Channels > len(pcm) {
		return 0, ac.StatusBadArg
	}
	size := headerSize + frameSize/120 + 1
	if len(data) < size {
		return 0, ac.StatusBufferTooSmall
	}
	data[0] = magic
	data[1] = byte(e.config.Channels)
	binary.BigEndian.PutUint16(data[2:4], uint16(frameSize*48000/e.config.Samplerate))
	for i := headerSize; i < size; i++ {
		data[i] = byte(e.packets)
	}
	e.packets++
	return size, nil
}

// Reset clears the packet counter.
func (e *Encoder) Reset() error {
	if err := e.backend.enter("reset"); err != nil {
		return err
	}
	if e.destroyed {
		return ac.StatusInvalidState
	}
	e.packets = 0
	return nil
}

// Destroy marks the encoder as destroyed. Destroying twice panics, which
// makes double frees visible in tests.
func (e *Encoder) Destroy() {
	if e.destroyed {
		panic("fake: encoder destroyed twice")
	}
	e.destroyed = true
	e.backend.release()
}

// Decoder is a fake implementation of audiocodec.NativeDecoder.
type Decoder struct {
	backend   *Backend
	config    ac.Config
	destroyed bool
	// LastFEC reports the fec flag of the most recent Decode call.
	LastFEC bool
}

// Decode parses packets produced by the fake Encoder and writes silence.
// Concealment and FEC requests produce a full frame.
func (d *Decoder) Decode(data []byte, pcm []int16, frameSize int, fec bool) (int, error) {
	if err := d.backend.enter("decode"); err != nil {
		return 0, err
	}
	if d.destroyed {
		return 0, ac.StatusInvalidState
	}
	d.LastFEC = fec
	if frameSize <= 0 || frameSize*d.config.Channels > len(pcm) {
		return 0, ac.StatusBadArg
	}

	if len(data) == 0 || fec {
		clear(pcm[:frameSize*d.config.Channels])
		return frameSize, nil
	}

	if len(data) < headerSize || data[0] != magic {
		return 0, ac.StatusInvalidPacket
	}
	samples := int(binary.BigEndian.Uint16(data[2:4])) * d.config.Samplerate / 48000
	if samples == 0 {
		return 0, ac.StatusInvalidPacket
	}
	if samples > frameSize {
		return 0, ac.StatusBufferTooSmall
	}
	clear(pcm[:samples*d.config.Channels])
	return samples, nil
}

// Reset is a no-op besides the bookkeeping.
func (d *Decoder) Reset() error {
	if err := d.backend.enter("reset"); err != nil {
		return err
	}
	if d.destroyed {
		return ac.StatusInvalidState
	}
	return nil
}

// Destroy marks the decoder as destroyed. Destroying twice panics.
func (d *Decoder) Destroy() {
	if d.destroyed {
		panic("fake: decoder destroyed twice")
	}
	d.destroyed = true
	d.backend.release()
}
