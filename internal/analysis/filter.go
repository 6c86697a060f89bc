// Package analysis turns ordered keystroke event sequences into frequency
// tables and timing statistics.
package analysis

import "github.com/verte-zerg/keyscope/internal/model"

// Default filter bounds in milliseconds.
const (
	DefaultMaxGapMs  = 5000
	DefaultMinHoldMs = 10
	DefaultMaxHoldMs = 2000
)

// FilterConfig bounds which intervals and hold durations count as real typing.
type FilterConfig struct {
	MaxGapMs  int64
	MinHoldMs int64
	MaxHoldMs int64
}

// DefaultFilterConfig returns the standard filter bounds.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MaxGapMs:  DefaultMaxGapMs,
		MinHoldMs: DefaultMinHoldMs,
		MaxHoldMs: DefaultMaxHoldMs,
	}
}

// IsValidInterval reports whether an inter-key gap is plausible typing.
// Zero and negative gaps indicate clock anomalies or out-of-order input and
// are rejected along with gaps at or above the configured ceiling.
func (c FilterConfig) IsValidInterval(intervalMs int64) bool {
	return intervalMs > 0 && intervalMs < c.MaxGapMs
}

// IsValidHoldDuration reports whether a press-to-release duration is
// plausible. Both bounds are inclusive.
func (c FilterConfig) IsValidHoldDuration(durationMs int64) bool {
	return durationMs >= c.MinHoldMs && durationMs <= c.MaxHoldMs
}

// SegmentByGap partitions events into contiguous typing segments, breaking
// wherever the gap between adjacent events strictly exceeds MaxGapMs. The
// returned segments are sub-slices of the input, cover it exactly, and
// preserve order. A gap equal to the threshold does not break a segment.
func (c FilterConfig) SegmentByGap(events []model.KeystrokeEvent) [][]model.KeystrokeEvent {
	if len(events) == 0 {
		return nil
	}

	var segments [][]model.KeystrokeEvent
	start := 0
	for i := 1; i < len(events); i++ {
		gap := events[i].Timestamp - events[i-1].Timestamp
		if gap > c.MaxGapMs {
			segments = append(segments, events[start:i])
			start = i
		}
	}
	segments = append(segments, events[start:])
	return segments
}

// Flatten concatenates segments back into a single sequence, preserving
// order. Used to drop long idle gaps before frequency and timing analysis.
func Flatten(segments [][]model.KeystrokeEvent) []model.KeystrokeEvent {
	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	if total == 0 {
		return nil
	}
	out := make([]model.KeystrokeEvent, 0, total)
	for _, seg := range segments {
		out = append(out, seg...)
	}
	return out
}
