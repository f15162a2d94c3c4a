package audio

import (
	"testing"
	"time"
)

func TestDefaultEncodingDuration(t *testing.T) {
	info := GetDefaultEncodingInfo()
	if info.IsZero() {
		t.Fatalf("expected default encoding to be set")
	}
	if got := info.BytesPerSecond(); got != 48000 {
		t.Fatalf("expected 48000 bytes per second, got %d", got)
	}
	if got := info.Duration(4800); got != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %v", got)
	}
}

func TestDurationOfUnknownFormat(t *testing.T) {
	info := EncodingInfo{SampleRate: 8000, Format: "opus"}
	if got := info.Duration(1000); got != 0 {
		t.Fatalf("expected 0 for unknown format, got %v", got)
	}
}
