package bridge

import (
	"fmt"
)

// Kind categorizes a failure signalled to the host.
type Kind int

const (
	// KindInvalidArgument: bad channel count or non-positive size; rejected
	// before any native state is touched.
	KindInvalidArgument Kind = iota + 1
	// KindIllegalState: operation on a closed session or an unknown handle.
	KindIllegalState
	// KindIoFailure: the native codec instance could not be created.
	KindIoFailure
	// KindRuntimeFailure: a native per-call operation returned an error.
	KindRuntimeFailure
	// KindMarshalFailure: buffers could not be converted between the host
	// and the native layer.
	KindMarshalFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindIllegalState:
		return "IllegalState"
	case KindIoFailure:
		return "IoFailure"
	case KindRuntimeFailure:
		return "RuntimeFailure"
	case KindMarshalFailure:
		return "MarshalFailure"
	}
	return "Unknown"
}

// Error is the typed failure signal returned by every bridge operation.
// Label is only set for failures which originate in the native codec.
type Error struct {
	Kind  Kind
	Label Label
	Msg   string
	Cause error
}

// Sentinels for errors.Is comparisons, e.g.
//
//	if errors.Is(err, bridge.ErrIllegalState) { ... }
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrIllegalState    = &Error{Kind: KindIllegalState}
	ErrIoFailure       = &Error{Kind: KindIoFailure}
	ErrRuntimeFailure  = &Error{Kind: KindRuntimeFailure}
	ErrMarshalFailure  = &Error{Kind: KindMarshalFailure}
)

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func illegalState(format string, args ...any) *Error {
	return &Error{Kind: KindIllegalState, Msg: fmt.Sprintf(format, args...)}
}

func marshalFailure(format string, args ...any) *Error {
	return &Error{Kind: KindMarshalFailure, Msg: fmt.Sprintf(format, args...)}
}

// nativeFailure wraps an error returned by the native codec. The message
// reads "<action>: <label>", e.g. "Failed to decode: InvalidPacket".
func nativeFailure(kind Kind, action string, err error) *Error {
	label := TranslateErr(err)
	return &Error{
		Kind:  kind,
		Label: label,
		Msg:   fmt.Sprintf("%s: %s", action, label),
		Cause: err,
	}
}
