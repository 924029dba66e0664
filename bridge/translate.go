package bridge

import (
	ac "github.com/dh1tw/opusbridge/audiocodec"
)

// Label is the human readable category of a native status code.
type Label string

const (
	LabelBadArgument       Label = "BadArgument"
	LabelBufferTooSmall    Label = "BufferTooSmall"
	LabelInternalError     Label = "InternalError"
	LabelInvalidPacket     Label = "InvalidPacket"
	LabelUnimplemented     Label = "Unimplemented"
	LabelInvalidState      Label = "InvalidState"
	LabelAllocationFailure Label = "AllocationFailure"
	LabelUnknown           Label = "Unknown"
)

// Translate maps a native status code to its label. Codes outside the known
// set map to LabelUnknown.
func Translate(code int) Label {
	switch ac.Status(code) {
	case ac.StatusBadArg:
		return LabelBadArgument
	case ac.StatusBufferTooSmall:
		return LabelBufferTooSmall
	case ac.StatusInternalError:
		return LabelInternalError
	case ac.StatusInvalidPacket:
		return LabelInvalidPacket
	case ac.StatusUnimplemented:
		return LabelUnimplemented
	case ac.StatusInvalidState:
		return LabelInvalidState
	case ac.StatusAllocFail:
		return LabelAllocationFailure
	}
	return LabelUnknown
}

// TranslateErr translates the status code carried by an error returned from
// a native codec.
func TranslateErr(err error) Label {
	return Translate(int(ac.StatusOf(err)))
}

// FailureKind is the propagation decision for a native failure: failures
// while creating a codec instance are fatal for the session (IoFailure),
// failures of per-call operations are recoverable (RuntimeFailure).
func FailureKind(creating bool) Kind {
	if creating {
		return KindIoFailure
	}
	return KindRuntimeFailure
}
