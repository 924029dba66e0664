package audiocodec

import (
	"errors"
	"fmt"
)

// Status is a signed status code as reported by a native codec. Negative
// values are failures. Status implements the error interface so that
// backends can return it (or wrap it) directly.
type Status int

// Status codes shared with libopus.
const (
	StatusOK             Status = 0
	StatusBadArg         Status = -1
	StatusBufferTooSmall Status = -2
	StatusInternalError  Status = -3
	StatusInvalidPacket  Status = -4
	StatusUnimplemented  Status = -5
	StatusInvalidState   Status = -6
	StatusAllocFail      Status = -7
)

func (s Status) Error() string {
	return fmt.Sprintf("native codec status %d", int(s))
}

// StatusOf extracts the native status code carried by err. Errors which do
// not carry a status are reported as StatusInternalError; a nil error is
// StatusOK.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusInternalError
}
