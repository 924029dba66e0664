package opus

import (
	ac "github.com/dh1tw/opusbridge/audiocodec"
	opus "gopkg.in/hraban/opus.v2"
)

// OpusEncoder is the data structure for the opus encoder. This struct holds
// the libopus encoder state together with its configuration.
type OpusEncoder struct {
	config  ac.Config
	options Options
	encoder *opus.Encoder
}

func newEncoder(cfg ac.Config, opts Options) (*OpusEncoder, error) {

	oEnc := &OpusEncoder{
		config:  cfg,
		options: opts,
	}

	encoder, err := oEnc.create()
	if err != nil {
		return nil, err
	}

	oEnc.encoder = encoder
	return oEnc, nil
}

// create sets up a fresh libopus encoder and applies the tuning options.
func (oEnc *OpusEncoder) create() (*opus.Encoder, error) {

	encoder, err := opus.NewEncoder(oEnc.config.Samplerate,
		oEnc.config.Channels,
		application(oEnc.config.Application))

	if err != nil {
		return nil, nativeErr(err)
	}

	if oEnc.options.Bitrate > 0 {
		if err := encoder.SetBitrate(oEnc.options.Bitrate); err != nil {
			return nil, nativeErr(err)
		}
	}

	if oEnc.options.Complexity >= 0 {
		if err := encoder.SetComplexity(oEnc.options.Complexity); err != nil {
			return nil, nativeErr(err)
		}
	}

	if oEnc.options.MaxBandwidth != 0 {
		if err := encoder.SetMaxBandwidth(oEnc.options.MaxBandwidth); err != nil {
			return nil, nativeErr(err)
		}
	}

	if oEnc.options.InBandFEC {
		if err := encoder.SetInBandFEC(true); err != nil {
			return nil, nativeErr(err)
		}
	}

	if oEnc.options.PacketLossPerc > 0 {
		if err := encoder.SetPacketLossPerc(oEnc.options.PacketLossPerc); err != nil {
			return nil, nativeErr(err)
		}
	}

	return encoder, nil
}

// Encode frameSize samples per channel with the opus codec into the
// supplied buffer. On success the amount of bytes written into the buffer
// will be returned.
func (oEnc *OpusEncoder) Encode(pcm []int16, frameSize int, data []byte) (int, error) {
	if oEnc.encoder == nil {
		return 0, ac.StatusInvalidState
	}
	n := frameSize * oEnc.config.Channels
	if n > len(pcm) {
		return 0, ac.StatusBadArg
	}
	num, err := oEnc.encoder.Encode(pcm[:n:n], data)
	return num, nativeErr(err)
}

// Reset issues OPUS_RESET_STATE. The codec state is cleared, the tuning
// options stay in place.
func (oEnc *OpusEncoder) Reset() error {
	if oEnc.encoder == nil {
		return ac.StatusInvalidState
	}
	return nativeErr(oEnc.encoder.Reset())
}

// Destroy releases the encoder. The libopus state lives in Go managed
// memory, so dropping the reference is sufficient.
func (oEnc *OpusEncoder) Destroy() {
	oEnc.encoder = nil
}
