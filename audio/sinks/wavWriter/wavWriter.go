package wavWriter

import (
	"fmt"
	"os"
	"sync"

	"github.com/dh1tw/opusbridge/audio"
	"github.com/dh1tw/opusbridge/audio/resampler"
	ga "github.com/go-audio/audio"
	wav "github.com/go-audio/wav"
)

// WavWriter implements the audio.Sink interface and is used to write (record)
// 16 bit audio frames in the wav format.
type WavWriter struct {
	sync.Mutex
	file    *os.File
	encoder *wav.Encoder
	options Options
	src     *resampler.Resampler
	srcRate int
	frames  int
}

var _ audio.Sink = (*WavWriter)(nil)

// NewWavWriter returns a wavWriter to which audio frames can be written to.
// The audio data will be saved in the wav format.
func NewWavWriter(path string, opts ...Option) (*WavWriter, error) {

	w := &WavWriter{
		options: Options{
			Channels:   DefaultChannels,
			Samplerate: DefaultSamplerate,
		},
	}

	for _, o := range opts {
		o(&w.options)
	}

	if w.options.Channels < 1 || w.options.Samplerate <= 0 {
		return nil, fmt.Errorf("invalid wav format: %d channels / %d Hz",
			w.options.Channels, w.options.Samplerate)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w.file = f

	w.encoder = wav.NewEncoder(f, w.options.Samplerate, 16, w.options.Channels, 1)

	return w, nil
}

// Write writes an audio buffer into the wav file. Channels and Samplerate
// will be adjusted, if necessary.
func (w *WavWriter) Write(msg audio.Msg) error {
	w.Lock()
	defer w.Unlock()

	data := audio.AdjustChannels(msg.Channels, w.options.Channels, msg.Data)

	if msg.Samplerate != w.options.Samplerate {
		if w.src == nil || w.srcRate != msg.Samplerate {
			if w.src != nil {
				w.src.Close()
			}
			src, err := resampler.New(w.options.Channels, msg.Samplerate, w.options.Samplerate)
			if err != nil {
				return err
			}
			w.src = src
			w.srcRate = msg.Samplerate
		}
		var err error
		data, err = w.src.Process(data, msg.EOF)
		if err != nil {
			return err
		}
	}

	buf := ga.IntBuffer{
		Format: &ga.Format{
			SampleRate:  w.options.Samplerate,
			NumChannels: w.options.Channels,
		},
		Data:           make([]int, len(data)),
		SourceBitDepth: 16,
	}
	for i, s := range data {
		buf.Data[i] = int(s)
	}

	if err := w.encoder.Write(&buf); err != nil {
		return err
	}
	w.frames += len(data) / w.options.Channels

	return nil
}

// Frames returns the amount of frames written so far.
func (w *WavWriter) Frames() int {
	w.Lock()
	defer w.Unlock()
	return w.frames
}

// Close finalizes the wav header and closes the file.
func (w *WavWriter) Close() error {
	w.Lock()
	defer w.Unlock()
	if w.src != nil {
		w.src.Close()
	}
	err := w.encoder.Close()
	if cErr := w.file.Close(); err == nil {
		err = cErr
	}
	return err
}
