package bridge

import (
	"errors"
	"fmt"
	"testing"

	ac "github.com/dh1tw/opusbridge/audiocodec"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		code int
		want Label
	}{
		{-1, LabelBadArgument},
		{-2, LabelBufferTooSmall},
		{-3, LabelInternalError},
		{-4, LabelInvalidPacket},
		{-5, LabelUnimplemented},
		{-6, LabelInvalidState},
		{-7, LabelAllocationFailure},
		{-8, LabelUnknown},
		{-1000, LabelUnknown},
		{0, LabelUnknown},
		{42, LabelUnknown},
	}

	for _, tc := range tests {
		if got := Translate(tc.code); got != tc.want {
			t.Fatalf("Translate(%d): expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestTranslateNeverEmpty(t *testing.T) {
	for code := -100; code < 0; code++ {
		if Translate(code) == "" {
			t.Fatalf("empty label for status %d", code)
		}
	}
}

func TestTranslateErr(t *testing.T) {
	if got := TranslateErr(fmt.Errorf("wrapped: %w", ac.StatusInvalidPacket)); got != LabelInvalidPacket {
		t.Fatal("unexpected label", got)
	}
	if got := TranslateErr(errors.New("no status")); got != LabelInternalError {
		t.Fatal("unexpected label", got)
	}
}

func TestFailureKind(t *testing.T) {
	if FailureKind(true) != KindIoFailure {
		t.Fatal("creation failures must be IoFailure")
	}
	if FailureKind(false) != KindRuntimeFailure {
		t.Fatal("per-call failures must be RuntimeFailure")
	}
}

func TestErrorIs(t *testing.T) {
	err := error(nativeFailure(KindRuntimeFailure, "Failed to decode", ac.StatusInvalidPacket))

	if !errors.Is(err, ErrRuntimeFailure) {
		t.Fatal("expected RuntimeFailure")
	}
	if errors.Is(err, ErrIllegalState) {
		t.Fatal("RuntimeFailure must not match IllegalState")
	}
	if !errors.Is(err, ac.StatusInvalidPacket) {
		t.Fatal("native status must be reachable through Unwrap")
	}
	if err.Error() != "Failed to decode: InvalidPacket" {
		t.Fatal("unexpected message:", err.Error())
	}

	var bErr *Error
	if !errors.As(err, &bErr) || bErr.Label != LabelInvalidPacket {
		t.Fatal("expected label InvalidPacket")
	}
}
