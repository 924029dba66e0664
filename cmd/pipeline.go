package cmd

import (
	"fmt"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/audio/resampler"
	"github.com/dh1tw/opusbridge/bridge"
	"github.com/dh1tw/opusbridge/packetfile"
)

// maxFrameLength is the longest opus frame (ms) a decoder has to expect.
const maxFrameLength = 120

// encoderPipeline converts arbitrary audio buffers into opus packets. The
// audio is mapped onto the opus channel layout, resampled to the opus
// sample rate and cut into frames of the configured length.
type encoderPipeline struct {
	host     *bridge.Host
	handle   bridge.Handle
	settings opusSettings
	framer   *audio.Framer
	src      *resampler.Resampler
	srcRate  int
	packets  int
	bytes    int
}

func newEncoderPipeline(host *bridge.Host, s opusSettings) (*encoderPipeline, error) {
	handle, err := host.CreateEncoderMode(s.samplerate, s.channels, s.application)
	if err != nil {
		return nil, err
	}
	if err := host.SetMaxPayloadSize(handle, s.maxPayloadSize); err != nil {
		host.DestroyEncoder(handle)
		return nil, err
	}
	return &encoderPipeline{
		host:     host,
		handle:   handle,
		settings: s,
		framer:   audio.NewFramer(s.frameSize, s.channels),
	}, nil
}

// emitFn is called for every encoded frame.
type emitFn func(f packetfile.Frame) error

func (p *encoderPipeline) frame(packet []byte) packetfile.Frame {
	return packetfile.Frame{
		Data:       packet,
		Channels:   p.settings.channels,
		Samplerate: p.settings.samplerate,
		FrameSize:  p.settings.frameSize,
	}
}

// Process feeds one audio buffer into the pipeline.
func (p *encoderPipeline) Process(msg audio.Msg, emit emitFn) error {
	if msg.Samplerate != p.srcRate {
		if p.src != nil {
			p.src.Close()
		}
		src, err := resampler.New(p.settings.channels, msg.Samplerate, p.settings.samplerate)
		if err != nil {
			return err
		}
		p.src = src
		p.srcRate = msg.Samplerate
	}

	data := audio.AdjustChannels(msg.Channels, p.settings.channels, msg.Data)
	data, err := p.src.Process(data, msg.EOF)
	if err != nil {
		return fmt.Errorf("resample: %v", err)
	}

	for _, frame := range p.framer.Write(data) {
		if err := p.encode(frame, emit); err != nil {
			return err
		}
	}
	return nil
}

func (p *encoderPipeline) encode(frame []int16, emit emitFn) error {
	packet, err := p.host.Encode(p.handle, frame)
	if err != nil {
		return err
	}
	p.packets++
	p.bytes += len(packet)
	return emit(p.frame(packet))
}

// Lost records a frame which never reached the encoder, e.g. due to a
// buffer overflow of the audio device.
func (p *encoderPipeline) Lost(emit emitFn) error {
	f := p.frame(nil)
	f.Lost = true
	return emit(f)
}

// Flush encodes the remaining buffered samples padded with silence.
func (p *encoderPipeline) Flush(emit emitFn) error {
	frame := p.framer.Flush()
	if frame == nil {
		return nil
	}
	return p.encode(frame, emit)
}

// Close destroys the encoder and releases the resampler.
func (p *encoderPipeline) Close() error {
	if p.src != nil {
		p.src.Close()
	}
	return p.host.DestroyEncoder(p.handle)
}

// decoderPipeline turns packets back into audio. Missing frames, either
// marked as lost or detected by a gap in the sequence numbers, are
// concealed. If fec is set, the last missing frame before a packet is
// recovered from the in-band FEC data of that packet.
type decoderPipeline struct {
	host       *bridge.Host
	handle     bridge.Handle
	samplerate int
	channels   int
	fec        bool
	maxFrame   int
	lastFrame  int
	sequence   uint64
	missing    int
	concealed  int
	recovered  int
}

func newDecoderPipeline(host *bridge.Host, samplerate, channels int, fec bool) (*decoderPipeline, error) {
	handle, err := host.CreateDecoder(samplerate, channels)
	if err != nil {
		return nil, err
	}
	maxFrame := samplerate * maxFrameLength / 1000
	if err := host.SetFrameSize(handle, maxFrame); err != nil {
		host.DestroyDecoder(handle)
		return nil, err
	}
	return &decoderPipeline{
		host:       host,
		handle:     handle,
		samplerate: samplerate,
		channels:   channels,
		fec:        fec,
		maxFrame:   maxFrame,
		lastFrame:  samplerate * 20 / 1000,
	}, nil
}

// Process decodes one frame of a packet stream and returns the audio
// including the audio of concealed or recovered frames before it.
func (p *decoderPipeline) Process(f packetfile.Frame) (audio.Msg, error) {
	if f.Sequence > p.sequence+1 && p.sequence > 0 {
		p.missing += int(f.Sequence - p.sequence - 1)
	}
	if f.Sequence > 0 {
		p.sequence = f.Sequence
	}
	if f.FrameSize > 0 && f.FrameSize <= p.maxFrame {
		p.lastFrame = f.FrameSize
	}

	if f.Lost || len(f.Data) == 0 {
		p.missing++
		return p.msg(nil), nil
	}

	var out []int16
	for p.missing > 0 {
		fec := p.fec && p.missing == 1
		samples, err := p.recover(f.Data, fec)
		if err != nil {
			return audio.Msg{}, err
		}
		out = append(out, samples...)
		p.missing--
	}

	samples, err := p.host.Decode(p.handle, f.Data, false)
	if err != nil {
		return audio.Msg{}, err
	}
	out = append(out, samples...)

	return p.msg(out), nil
}

// recover produces one frame of audio for a missing packet. The decoder
// produces exactly one frame size of samples, so it is temporarily set to
// the length of the last known frame.
func (p *decoderPipeline) recover(next []byte, fec bool) (samples []int16, err error) {
	if err = p.host.SetFrameSize(p.handle, p.lastFrame); err != nil {
		return nil, err
	}
	defer func() {
		if rErr := p.host.SetFrameSize(p.handle, p.maxFrame); rErr != nil && err == nil {
			samples, err = nil, fmt.Errorf("restore frame size: %w", rErr)
		}
	}()

	if !fec {
		next = nil
	}
	samples, err = p.host.Decode(p.handle, next, fec)
	if err != nil {
		return nil, err
	}
	if fec {
		p.recovered++
	} else {
		p.concealed++
	}
	return samples, nil
}

// Flush conceals frames missing at the end of the stream.
func (p *decoderPipeline) Flush() (audio.Msg, error) {
	var out []int16
	for ; p.missing > 0; p.missing-- {
		samples, err := p.recover(nil, false)
		if err != nil {
			return audio.Msg{}, err
		}
		out = append(out, samples...)
	}
	msg := p.msg(out)
	msg.EOF = true
	return msg, nil
}

func (p *decoderPipeline) msg(data []int16) audio.Msg {
	return audio.Msg{
		Data:       data,
		Samplerate: p.samplerate,
		Channels:   p.channels,
		Frames:     len(data) / p.channels,
	}
}

// Close destroys the decoder.
func (p *decoderPipeline) Close() error {
	return p.host.DestroyDecoder(p.handle)
}
