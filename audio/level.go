package audio

import (
	"fmt"

	"github.com/chewxy/math32"
)

// RMS calculates the root mean square of the samples, normalized to the
// range [0, 1]. All channels are taken into account.
func RMS(samples []int16) (float32, error) {
	var sum float32

	if len(samples) == 0 {
		return sum, fmt.Errorf("empty slice provided")
	}

	for _, s := range samples {
		el := float32(s) / 32768
		sum = sum + el*el
	}

	sum = sum / float32(len(samples))

	return math32.Sqrt(sum), nil
}

// DBFS returns the level of the samples in dB relative to full scale.
// Digital silence returns -Inf.
func DBFS(samples []int16) (float32, error) {
	rms, err := RMS(samples)
	if err != nil {
		return 0, err
	}
	if rms == 0 {
		return math32.Inf(-1), nil
	}
	return 20 * math32.Log10(rms), nil
}
