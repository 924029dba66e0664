package wavReader

import (
	"fmt"
	"io"
	"os"

	"github.com/dh1tw/opusbridge/audio"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

// WavReader reads PCM audio from a wav file and provides it as 16 bit
// interleaved samples.
type WavReader struct {
	file    *os.File
	decoder *wav.Decoder
	options Options
	buf     *ga.IntBuffer
	eof     bool
}

// NewWavReader opens the wav file at path.
func NewWavReader(path string, opts ...Option) (*WavReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &WavReader{
		file:    f,
		decoder: wav.NewDecoder(f),
		options: Options{
			FramesPerBuffer: DefaultFramesPerBuffer,
		},
	}

	for _, o := range opts {
		o(&r.options)
	}

	if !r.decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}

	if r.options.FramesPerBuffer <= 0 {
		f.Close()
		return nil, fmt.Errorf("invalid frames per buffer: %d", r.options.FramesPerBuffer)
	}

	r.buf = &ga.IntBuffer{
		Format: &ga.Format{
			NumChannels: r.Channels(),
			SampleRate:  r.Samplerate(),
		},
		Data: make([]int, r.options.FramesPerBuffer*r.Channels()),
	}

	return r, nil
}

// Samplerate returns the sample rate of the file.
func (r *WavReader) Samplerate() int {
	return int(r.decoder.SampleRate)
}

// Channels returns the amount of channels of the file.
func (r *WavReader) Channels() int {
	return int(r.decoder.NumChans)
}

// BitDepth returns the bit depth of the samples in the file.
func (r *WavReader) BitDepth() int {
	return int(r.decoder.BitDepth)
}

// Next returns the next buffer with up to FramesPerBuffer frames. At the
// end of the file io.EOF is returned.
func (r *WavReader) Next() (audio.Msg, error) {
	if r.eof {
		return audio.Msg{}, io.EOF
	}

	n, err := r.decoder.PCMBuffer(r.buf)
	if err != nil {
		return audio.Msg{}, err
	}
	if n == 0 {
		r.eof = true
		return audio.Msg{}, io.EOF
	}

	chs := r.Channels()
	// drop a trailing incomplete frame
	n -= n % chs

	msg := audio.Msg{
		Data:       toInt16(r.buf.Data[:n], r.BitDepth()),
		Samplerate: r.Samplerate(),
		Channels:   chs,
		Frames:     n / chs,
	}

	if n < len(r.buf.Data) {
		r.eof = true
		msg.EOF = true
	}

	return msg, nil
}

// Close closes the underlying file.
func (r *WavReader) Close() error {
	return r.file.Close()
}

// ReadFile reads the complete wav file at path into a single buffer.
func ReadFile(path string) (audio.Msg, error) {
	r, err := NewWavReader(path)
	if err != nil {
		return audio.Msg{}, err
	}
	defer r.Close()

	buf, err := r.decoder.FullPCMBuffer()
	if err != nil {
		return audio.Msg{}, err
	}

	chs := r.Channels()
	n := len(buf.Data) - len(buf.Data)%chs

	return audio.Msg{
		Data:       toInt16(buf.Data[:n], r.BitDepth()),
		Samplerate: r.Samplerate(),
		Channels:   chs,
		Frames:     n / chs,
		EOF:        true,
	}, nil
}

// toInt16 scales samples of an arbitrary bit depth to 16 bit.
func toInt16(data []int, bitDepth int) []int16 {
	res := make([]int16, len(data))
	for i, v := range data {
		switch {
		case bitDepth == 8:
			// 8 bit wav files are unsigned
			v = (v - 128) << 8
		case bitDepth > 16:
			v >>= bitDepth - 16
		case bitDepth < 16:
			v <<= 16 - bitDepth
		}
		res[i] = int16(v)
	}
	return res
}
