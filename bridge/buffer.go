package bridge

import (
	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// maxBufferSize limits the amount of bytes or samples the bridge allocates
// for a single native call.
const maxBufferSize = 1 << 26

// encodeBuffer runs one encode call. The frame size per channel is
// len(pcm)/channels; trailing samples which do not form a complete
// multi-channel sample are ignored. The returned packet is truncated to the
// amount of bytes the codec produced.
func encodeBuffer(enc ac.NativeEncoder, channels Channels, pcm []int16, maxPayloadSize int) ([]byte, error) {
	frameSize := len(pcm) / int(channels)

	if maxPayloadSize > maxBufferSize {
		return nil, marshalFailure("Unable to allocate output buffer of %d bytes", maxPayloadSize)
	}
	out := make([]byte, maxPayloadSize)

	n, err := enc.Encode(pcm[:frameSize*int(channels)], frameSize, out)
	if err != nil {
		return nil, nativeFailure(FailureKind(false), "Failed to encode", err)
	}
	if n < 0 || n > len(out) {
		return nil, marshalFailure("Invalid output length: %d>%d", n, len(out))
	}

	return out[:n:n], nil
}

// decodeBuffer runs one decode call. An empty packet requests packet loss
// concealment and forces fec. The output buffer holds frameSize samples per
// channel and the native decoder is told it may produce
// len(output)/channels samples per channel. The result is truncated to what
// the decoder actually produced.
func decodeBuffer(dec ac.NativeDecoder, channels Channels, packet []byte, fec bool, frameSize int) ([]int16, error) {
	if len(packet) == 0 {
		packet = nil
		fec = true
	}

	outLen := frameSize * int(channels)
	if frameSize > maxBufferSize/int(channels) {
		return nil, marshalFailure("Unable to allocate output buffer of %d samples", outLen)
	}
	out := make([]int16, outLen)
	nativeFrameSize := len(out) / int(channels)

	n, err := dec.Decode(packet, out, nativeFrameSize, fec)
	if err != nil {
		return nil, nativeFailure(FailureKind(false), "Failed to decode", err)
	}
	if n < 0 || n > nativeFrameSize {
		return nil, marshalFailure("Invalid output length: %d>%d", n, nativeFrameSize)
	}

	total := n * int(channels)
	return out[:total:total], nil
}
