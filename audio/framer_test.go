package audio

import (
	"testing"
)

func TestFramer(t *testing.T) {
	f := NewFramer(4, 2)

	if frames := f.Write(make([]int16, 5)); len(frames) != 0 {
		t.Fatalf("expected no frame, got %d", len(frames))
	}
	if f.Buffered() != 5 {
		t.Fatalf("expected 5 buffered samples, got %d", f.Buffered())
	}

	frames := f.Write([]int16{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	for _, fr := range frames {
		if len(fr) != 8 {
			t.Fatalf("expected frames of 8 samples, got %d", len(fr))
		}
	}
	if frames[1][0] != 4 {
		t.Fatalf("unexpected frame content %v", frames[1])
	}

	last := f.Flush()
	if len(last) != 8 || last[0] != 12 || last[1] != 0 {
		t.Fatalf("unexpected flushed frame %v", last)
	}
	if f.Flush() != nil {
		t.Fatal("second flush must return nil")
	}
}
