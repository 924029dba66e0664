package audio

// Framer cuts a stream of interleaved samples into frames of a fixed
// amount of samples per channel, as required by the opus encoder.
type Framer struct {
	frameSize int
	channels  int
	buf       []int16
}

// NewFramer returns a Framer producing frames with frameSize samples per
// channel.
func NewFramer(frameSize, channels int) *Framer {
	return &Framer{
		frameSize: frameSize,
		channels:  channels,
		buf:       make([]int16, 0, frameSize*channels),
	}
}

// Write appends samples and returns all frames which are complete.
// Incomplete samples stay buffered until the next call.
func (f *Framer) Write(samples []int16) [][]int16 {
	f.buf = append(f.buf, samples...)

	size := f.frameSize * f.channels
	var frames [][]int16
	for len(f.buf) >= size {
		frame := make([]int16, size)
		copy(frame, f.buf[:size])
		frames = append(frames, frame)
		f.buf = f.buf[size:]
	}

	// keep the buffer from growing indefinitely
	if len(f.buf) == 0 {
		f.buf = f.buf[:0:0]
	}
	return frames
}

// Flush returns the buffered samples padded with silence to a complete
// frame. It returns nil if nothing is buffered.
func (f *Framer) Flush() []int16 {
	if len(f.buf) == 0 {
		return nil
	}
	frame := make([]int16, f.frameSize*f.channels)
	copy(frame, f.buf)
	f.buf = f.buf[:0:0]
	return frame
}

// Buffered returns the amount of buffered samples.
func (f *Framer) Buffered() int {
	return len(f.buf)
}
