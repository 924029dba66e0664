package opus

import (
	ac "github.com/dh1tw/opusbridge/audiocodec"
	opus "gopkg.in/hraban/opus.v2"
)

// OpusDecoder is the data structure which holds internal values
// for the decoder.
type OpusDecoder struct {
	config  ac.Config
	decoder *opus.Decoder
}

func newDecoder(cfg ac.Config) (*OpusDecoder, error) {

	decoder, err := opus.NewDecoder(cfg.Samplerate, cfg.Channels)
	if err != nil {
		return nil, nativeErr(err)
	}

	return &OpusDecoder{
		config:  cfg,
		decoder: decoder,
	}, nil
}

// Decode encoded Opus data into the supplied int16 buffer. On success, the
// number of samples per channel written into the buffer will be returned.
// With an empty data slice the decoder conceals a lost packet, with fec set
// it recovers the previous packet from the in-band FEC data of this one.
// In both cases the full frameSize is produced.
func (oc *OpusDecoder) Decode(data []byte, pcm []int16, frameSize int, fec bool) (int, error) {
	if oc.decoder == nil {
		return 0, ac.StatusInvalidState
	}

	n := frameSize * oc.config.Channels
	if n <= 0 || n > len(pcm) {
		return 0, ac.StatusBadArg
	}
	// the binding derives the frame size from the capacity of pcm
	buf := pcm[:n:n]

	switch {
	case len(data) == 0:
		if err := oc.decoder.DecodePLC(buf); err != nil {
			return 0, nativeErr(err)
		}
		return frameSize, nil
	case fec:
		if err := oc.decoder.DecodeFEC(data, buf); err != nil {
			return 0, nativeErr(err)
		}
		return frameSize, nil
	}

	num, err := oc.decoder.Decode(data, buf)
	return num, nativeErr(err)
}

// Reset brings the decoder back into the state of a freshly created one.
func (oc *OpusDecoder) Reset() error {
	if oc.decoder == nil {
		return ac.StatusInvalidState
	}
	decoder, err := opus.NewDecoder(oc.config.Samplerate, oc.config.Channels)
	if err != nil {
		return nativeErr(err)
	}
	oc.decoder = decoder
	return nil
}

// Destroy releases the decoder.
func (oc *OpusDecoder) Destroy() {
	oc.decoder = nil
}
