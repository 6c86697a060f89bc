package analysis

import (
	"sort"

	"github.com/verte-zerg/keyscope/internal/model"
)

// minPairSamples is the significance floor for per-pair reporting: a key pair
// needs this many valid intervals before a single fast sample can't dominate.
const minPairSamples = 3

// InterKeyStats summarizes all valid inter-key intervals.
type InterKeyStats struct {
	Count    int
	MeanMs   float64
	MedianMs int64
	P90Ms    int64
	P95Ms    int64
	P99Ms    int64
}

// InterKeyInterval summarizes the intervals of one ordered key pair.
type InterKeyInterval struct {
	FromKey     uint32
	ToKey       uint32
	IntervalsMs []int64
	MeanMs      float64
	MedianMs    int64
	P95Ms       int64
}

// HoldDuration summarizes press-to-release durations of one key.
type HoldDuration struct {
	KeyCode     uint32
	KeyName     string
	DurationsMs []int64
	MeanMs      float64
	MedianMs    int64
	P95Ms       int64
	SampleCount int
}

// TimingAnalysis holds inter-key latency and hold-duration statistics. It is
// immutable after construction and safe to share for reads. FilterConfig is
// the configuration the analysis was computed with, kept for reporting.
type TimingAnalysis struct {
	OverallInterKey InterKeyStats
	PerKeyInterKey  []InterKeyInterval
	HoldDurations   []HoldDuration
	FilterConfig    FilterConfig
}

// NewTimingAnalysis computes timing statistics over the sequence. It is total
// over arbitrary input: empty sequences, unmatched presses, and releases with
// no pending press all degrade to zeroed or empty aggregates.
func NewTimingAnalysis(events []model.KeystrokeEvent, cfg FilterConfig) *TimingAnalysis {
	return &TimingAnalysis{
		OverallInterKey: overallInterKey(events, cfg),
		PerKeyInterKey:  perKeyInterKey(events, cfg),
		HoldDurations:   holdDurations(events, cfg),
		FilterConfig:    cfg,
	}
}

// TopInterKeyPairs returns the first min(n, available) per-pair entries.
func (a *TimingAnalysis) TopInterKeyPairs(n int) []InterKeyInterval {
	return a.PerKeyInterKey[:clampTop(n, len(a.PerKeyInterKey))]
}

// TopHoldDurations returns the first min(n, available) hold entries.
func (a *TimingAnalysis) TopHoldDurations(n int) []HoldDuration {
	return a.HoldDurations[:clampTop(n, len(a.HoldDurations))]
}

func overallInterKey(events []model.KeystrokeEvent, cfg FilterConfig) InterKeyStats {
	presses := pressEvents(events)

	var intervals []int64
	for i := 1; i < len(presses); i++ {
		interval := presses[i].Timestamp - presses[i-1].Timestamp
		if cfg.IsValidInterval(interval) {
			intervals = append(intervals, interval)
		}
	}

	p50, p90, p95, p99, ok := Percentiles(intervals)
	if !ok {
		return InterKeyStats{}
	}

	return InterKeyStats{
		Count:    len(intervals),
		MeanMs:   meanInt64(intervals),
		MedianMs: p50,
		P90Ms:    p90,
		P95Ms:    p95,
		P99Ms:    p99,
	}
}

func perKeyInterKey(events []model.KeystrokeEvent, cfg FilterConfig) []InterKeyInterval {
	presses := pressEvents(events)

	type pair struct {
		from, to uint32
	}
	pairIntervals := map[pair][]int64{}
	for i := 1; i < len(presses); i++ {
		interval := presses[i].Timestamp - presses[i-1].Timestamp
		if cfg.IsValidInterval(interval) {
			key := pair{presses[i-1].KeyCode, presses[i].KeyCode}
			pairIntervals[key] = append(pairIntervals[key], interval)
		}
	}

	results := make([]InterKeyInterval, 0, len(pairIntervals))
	for key, intervals := range pairIntervals {
		if len(intervals) < minPairSamples {
			continue
		}
		mean := meanInt64(intervals)
		p50, _, p95, _, _ := Percentiles(intervals)
		results = append(results, InterKeyInterval{
			FromKey:     key.from,
			ToKey:       key.to,
			IntervalsMs: intervals,
			MeanMs:      mean,
			MedianMs:    p50,
			P95Ms:       p95,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if len(results[i].IntervalsMs) == len(results[j].IntervalsMs) {
			if results[i].FromKey == results[j].FromKey {
				return results[i].ToKey < results[j].ToKey
			}
			return results[i].FromKey < results[j].FromKey
		}
		return len(results[i].IntervalsMs) > len(results[j].IntervalsMs)
	})
	return results
}

// holdDurations pairs each Release with the most recent pending Press of the
// same key via a per-key LIFO stack. A Release with no pending Press and a
// Press never released both drop out silently.
func holdDurations(events []model.KeystrokeEvent, cfg FilterConfig) []HoldDuration {
	pending := map[uint32][]int64{}
	holdData := map[uint32][]int64{}

	for _, e := range events {
		switch e.Kind {
		case model.Press:
			pending[e.KeyCode] = append(pending[e.KeyCode], e.Timestamp)
		case model.Release:
			stack := pending[e.KeyCode]
			if len(stack) == 0 {
				continue
			}
			pressTime := stack[len(stack)-1]
			pending[e.KeyCode] = stack[:len(stack)-1]
			duration := e.Timestamp - pressTime
			if cfg.IsValidHoldDuration(duration) {
				holdData[e.KeyCode] = append(holdData[e.KeyCode], duration)
			}
		}
	}

	results := make([]HoldDuration, 0, len(holdData))
	for keyCode, durations := range holdData {
		mean := meanInt64(durations)
		p50, _, p95, _, _ := Percentiles(durations)
		results = append(results, HoldDuration{
			KeyCode:     keyCode,
			KeyName:     model.KeyName(keyCode),
			DurationsMs: durations,
			MeanMs:      mean,
			MedianMs:    p50,
			P95Ms:       p95,
			SampleCount: len(durations),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SampleCount == results[j].SampleCount {
			return results[i].KeyCode < results[j].KeyCode
		}
		return results[i].SampleCount > results[j].SampleCount
	})
	return results
}

func meanInt64(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
