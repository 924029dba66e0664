package audio

import (
	"encoding/binary"
	"fmt"
)

// PCMFromBytes converts signed 16 bit little endian samples.
func PCMFromBytes(b []byte) ([]int16, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("odd amount of bytes (%d) for 16 bit samples", len(b))
	}
	res := make([]int16, len(b)/2)
	for i := range res {
		res[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return res, nil
}

// PCMToBytes converts samples to signed 16 bit little endian.
func PCMToBytes(pcm []int16) []byte {
	res := make([]byte, 2*len(pcm))
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(res[2*i:], uint16(s))
	}
	return res
}
