package audio

// AdjustChannels converts interleaved samples between mono and stereo.
// Mono is duplicated into both channels; for stereo -> mono the right
// channel is chopped off.
func AdjustChannels(iChs, oChs int, samples []int16) []int16 {
	if iChs == oChs {
		return samples
	}

	// mono -> stereo
	if iChs == 1 && oChs == 2 {
		res := make([]int16, 0, len(samples)*2)
		// left channel = right channel
		for _, s := range samples {
			res = append(res, s, s)
		}
		return res
	}

	// stereo -> mono
	res := make([]int16, 0, len(samples)/2)
	for i := 0; i+1 < len(samples); i += 2 {
		res = append(res, samples[i])
	}
	return res
}

// ToFloat32 converts 16 bit samples into the range [-1, 1).
func ToFloat32(samples []int16) []float32 {
	res := make([]float32, len(samples))
	for i, s := range samples {
		res[i] = float32(s) / 32768
	}
	return res
}

// ToInt16 converts float samples into 16 bit samples. Values outside of
// [-1, 1] are clipped.
func ToInt16(samples []float32) []int16 {
	res := make([]int16, len(samples))
	for i, s := range samples {
		f := int(s * 32768)
		if f > 32767 {
			f = 32767
		} else if f < -32768 {
			f = -32768
		}
		res[i] = int16(f)
	}
	return res
}

// AdjustVolume scales the samples in place. The result is clipped.
func AdjustVolume(volume float32, samples []int16) {
	for i, s := range samples {
		f := float32(s) * volume
		if f > 32767 {
			f = 32767
		} else if f < -32768 {
			f = -32768
		}
		samples[i] = int16(f)
	}
}
