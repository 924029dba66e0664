package resampler

import (
	"fmt"

	"github.com/dh1tw/gosamplerate"
	"github.com/dh1tw/opusbridge/audio"
)

// Resampler converts interleaved 16 bit samples between sample rates.
// If both rates are equal, the samples are passed through untouched.
type Resampler struct {
	src   gosamplerate.Src
	ratio float64
	from  int
	to    int
}

// New returns a Resampler for the given amount of channels.
func New(channels, from, to int) (*Resampler, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid samplerate conversion %d -> %d", from, to)
	}

	r := &Resampler{
		ratio: float64(to) / float64(from),
		from:  from,
		to:    to,
	}

	if from == to {
		return r, nil
	}

	srConv, err := gosamplerate.New(gosamplerate.SRC_SINC_FASTEST, channels, 65536)
	if err != nil {
		return nil, fmt.Errorf("samplerate converter: %v", err)
	}
	r.src = srConv

	return r, nil
}

// Process converts a chunk of samples. last must be set on the final
// chunk of a stream so that the converter flushes its internal state.
func (r *Resampler) Process(samples []int16, last bool) ([]int16, error) {
	if r.from == r.to {
		return samples, nil
	}
	out, err := r.src.Process(audio.ToFloat32(samples), r.ratio, last)
	if err != nil {
		return nil, err
	}
	return audio.ToInt16(out), nil
}

// Reset clears the internal state of the converter.
func (r *Resampler) Reset() error {
	if r.from == r.to {
		return nil
	}
	return r.src.Reset()
}

// Close frees the converter.
func (r *Resampler) Close() error {
	if r.from == r.to {
		return nil
	}
	return gosamplerate.Delete(r.src)
}
