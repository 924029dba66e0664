package packetfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrFrameTooLarge is returned for records exceeding MaxFrameSize.
var ErrFrameTooLarge = errors.New("packetfile: frame too large")

// Writer writes frames to an underlying io.Writer.
type Writer struct {
	w        *bufio.Writer
	sequence uint64
	buf      []byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends a frame. If the sequence number of f is zero, the writer
// assigns the next one.
func (w *Writer) Write(f Frame) error {
	if f.Sequence == 0 {
		w.sequence++
		f.Sequence = w.sequence
	} else {
		w.sequence = f.Sequence
	}

	msg := f.Marshal()
	if len(msg) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	w.buf = protowire.AppendVarint(w.buf[:0], uint64(len(msg)))
	w.buf = append(w.buf, msg...)
	_, err := w.w.Write(w.buf)
	return err
}

// Flush writes buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Reader reads frames from an underlying io.Reader.
type Reader struct {
	r   *bufio.Reader
	buf []byte
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next frame. At the end of the stream io.EOF is
// returned; a stream ending in the middle of a record returns
// io.ErrUnexpectedEOF.
func (r *Reader) Read() (Frame, error) {
	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, io.ErrUnexpectedEOF
	}
	if size > MaxFrameSize {
		return Frame{}, ErrFrameTooLarge
	}

	if cap(r.buf) < int(size) {
		r.buf = make([]byte, size)
	}
	r.buf = r.buf[:size]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		return Frame{}, io.ErrUnexpectedEOF
	}

	var f Frame
	if err := f.Unmarshal(r.buf); err != nil {
		return Frame{}, fmt.Errorf("packetfile: %w", err)
	}
	return f, nil
}
