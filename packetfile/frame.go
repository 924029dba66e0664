// Package packetfile stores opus packets in a stream of length prefixed
// protobuf messages. Each record is a uvarint with the size of the message
// followed by a Frame:
//
//	message Frame {
//	  bytes  data        = 1;
//	  uint32 channels    = 2;
//	  uint32 samplerate  = 3;
//	  uint32 frame_size  = 4;
//	  uint64 sequence    = 5;
//	  bool   lost        = 6;
//	}
//
// A lost frame carries no data; decoders have to conceal it.
package packetfile

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldData       protowire.Number = 1
	fieldChannels   protowire.Number = 2
	fieldSamplerate protowire.Number = 3
	fieldFrameSize  protowire.Number = 4
	fieldSequence   protowire.Number = 5
	fieldLost       protowire.Number = 6
)

// MaxFrameSize limits the size of a single record.
const MaxFrameSize = 1 << 20

// Frame is one opus packet with its metadata.
type Frame struct {
	Data       []byte
	Channels   int
	Samplerate int
	FrameSize  int // samples per channel
	Sequence   uint64
	Lost       bool
}

// Marshal encodes the frame in protobuf wire format.
func (f *Frame) Marshal() []byte {
	var b []byte
	if len(f.Data) > 0 {
		b = protowire.AppendTag(b, fieldData, protowire.BytesType)
		b = protowire.AppendBytes(b, f.Data)
	}
	b = appendUint(b, fieldChannels, uint64(f.Channels))
	b = appendUint(b, fieldSamplerate, uint64(f.Samplerate))
	b = appendUint(b, fieldFrameSize, uint64(f.FrameSize))
	b = appendUint(b, fieldSequence, f.Sequence)
	if f.Lost {
		b = protowire.AppendTag(b, fieldLost, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

// zero values are omitted, as proto3 does
func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// Unmarshal decodes a frame from protobuf wire format. Unknown fields are
// skipped.
func (f *Frame) Unmarshal(b []byte) error {
	*f = Frame{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == fieldData && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			f.Data = append([]byte(nil), v...)
			b = b[n:]
		case typ == protowire.VarintType && num >= fieldChannels && num <= fieldLost:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if err := f.setVarint(num, v); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func (f *Frame) setVarint(num protowire.Number, v uint64) error {
	switch num {
	case fieldChannels, fieldSamplerate, fieldFrameSize:
		if v > 1<<31-1 {
			return fmt.Errorf("field %d out of range: %d", num, v)
		}
	}
	switch num {
	case fieldChannels:
		f.Channels = int(v)
	case fieldSamplerate:
		f.Samplerate = int(v)
	case fieldFrameSize:
		f.FrameSize = int(v)
	case fieldSequence:
		f.Sequence = v
	case fieldLost:
		f.Lost = protowire.DecodeBool(v)
	}
	return nil
}
