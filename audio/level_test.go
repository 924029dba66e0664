package audio

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestRMS(t *testing.T) {
	if _, err := RMS(nil); err == nil {
		t.Fatal("expected error for empty slice")
	}

	rms, err := RMS([]int16{16384, -16384, 16384, -16384})
	if err != nil {
		t.Fatal(err)
	}
	if rms != 0.5 {
		t.Fatalf("expected 0.5, got %v", rms)
	}
}

func TestDBFS(t *testing.T) {
	db, err := DBFS(make([]int16, 10))
	if err != nil {
		t.Fatal(err)
	}
	if !math32.IsInf(db, -1) {
		t.Fatalf("silence must be -Inf, got %v", db)
	}

	db, err = DBFS([]int16{16384, -16384})
	if err != nil {
		t.Fatal(err)
	}
	if db > -6 || db < -6.1 {
		t.Fatalf("expected about -6dB, got %v", db)
	}
}
