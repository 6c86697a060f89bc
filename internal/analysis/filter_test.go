package analysis

import (
	"testing"

	"github.com/verte-zerg/keyscope/internal/model"
)

func makeEvent(timestamp int64) model.KeystrokeEvent {
	return model.KeystrokeEvent{
		Timestamp:   timestamp,
		KeyCode:     0x00,
		Kind:        model.Press,
		Application: "test",
	}
}

func TestDefaultFilterConfig(t *testing.T) {
	cfg := DefaultFilterConfig()
	if cfg.MaxGapMs != 5000 || cfg.MinHoldMs != 10 || cfg.MaxHoldMs != 2000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestIsValidInterval(t *testing.T) {
	cfg := DefaultFilterConfig()
	cases := []struct {
		interval int64
		want     bool
	}{
		{100, true},
		{4999, true},
		{5000, false},
		{10000, false},
		{0, false},
		{-1, false},
	}
	for _, tc := range cases {
		if got := cfg.IsValidInterval(tc.interval); got != tc.want {
			t.Fatalf("IsValidInterval(%d) = %v, want %v", tc.interval, got, tc.want)
		}
	}
}

func TestIsValidHoldDuration(t *testing.T) {
	cfg := DefaultFilterConfig()
	cases := []struct {
		duration int64
		want     bool
	}{
		{10, true},
		{50, true},
		{2000, true},
		{5, false},
		{2001, false},
	}
	for _, tc := range cases {
		if got := cfg.IsValidHoldDuration(tc.duration); got != tc.want {
			t.Fatalf("IsValidHoldDuration(%d) = %v, want %v", tc.duration, got, tc.want)
		}
	}
}

func TestSegmentByGapEmpty(t *testing.T) {
	cfg := DefaultFilterConfig()
	if segments := cfg.SegmentByGap(nil); len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
}

func TestSegmentByGapSingle(t *testing.T) {
	cfg := DefaultFilterConfig()
	segments := cfg.SegmentByGap([]model.KeystrokeEvent{makeEvent(100)})
	if len(segments) != 1 || len(segments[0]) != 1 {
		t.Fatalf("expected one singleton segment, got %v", segments)
	}
}

func TestSegmentByGapContinuous(t *testing.T) {
	cfg := DefaultFilterConfig()
	events := []model.KeystrokeEvent{makeEvent(100), makeEvent(200), makeEvent(300)}
	segments := cfg.SegmentByGap(events)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if len(segments[0]) != 3 {
		t.Fatalf("expected segment of length 3, got %d", len(segments[0]))
	}
}

func TestSegmentByGapWithBreak(t *testing.T) {
	cfg := DefaultFilterConfig()
	events := []model.KeystrokeEvent{
		makeEvent(100),
		makeEvent(200),
		makeEvent(10000),
		makeEvent(10100),
	}
	segments := cfg.SegmentByGap(events)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if len(segments[0]) != 2 || len(segments[1]) != 2 {
		t.Fatalf("expected two segments of length 2, got %d and %d", len(segments[0]), len(segments[1]))
	}
}

func TestSegmentByGapThresholdDoesNotBreak(t *testing.T) {
	cfg := DefaultFilterConfig()
	// A gap exactly at MaxGapMs keeps the segment; one above breaks it.
	events := []model.KeystrokeEvent{makeEvent(0), makeEvent(5000), makeEvent(10001)}
	segments := cfg.SegmentByGap(events)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if len(segments[0]) != 2 || len(segments[1]) != 1 {
		t.Fatalf("unexpected segment lengths: %d, %d", len(segments[0]), len(segments[1]))
	}
}

func TestSegmentByGapPartitionsExactly(t *testing.T) {
	cfg := FilterConfig{MaxGapMs: 50, MinHoldMs: 10, MaxHoldMs: 2000}
	events := []model.KeystrokeEvent{
		makeEvent(0), makeEvent(10), makeEvent(200),
		makeEvent(210), makeEvent(220), makeEvent(500),
	}
	segments := cfg.SegmentByGap(events)
	total := 0
	next := int64(-1)
	for _, seg := range segments {
		total += len(seg)
		for _, e := range seg {
			if e.Timestamp < next {
				t.Fatalf("segments out of order at timestamp %d", e.Timestamp)
			}
			next = e.Timestamp
		}
	}
	if total != len(events) {
		t.Fatalf("segment lengths sum to %d, want %d", total, len(events))
	}
}

func TestFlatten(t *testing.T) {
	cfg := DefaultFilterConfig()
	events := []model.KeystrokeEvent{
		makeEvent(100), makeEvent(200), makeEvent(10000), makeEvent(10100),
	}
	flat := Flatten(cfg.SegmentByGap(events))
	if len(flat) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(flat))
	}
	for i, e := range flat {
		if e.Timestamp != events[i].Timestamp {
			t.Fatalf("event %d: timestamp %d, want %d", i, e.Timestamp, events[i].Timestamp)
		}
	}
	if Flatten(nil) != nil {
		t.Fatalf("expected nil for no segments")
	}
}
