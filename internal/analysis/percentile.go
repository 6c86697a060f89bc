package analysis

import "sort"

// percentileSorted picks the nearest-rank order statistic from ascending
// values: index floor((n-1)*p), clamped to n-1. No interpolation. Rank
// indices are non-decreasing in p, so p50 <= p90 <= p95 <= p99 holds by
// construction.
func percentileSorted(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Percentiles sorts values ascending in place and returns the p50/p90/p95/p99
// order statistics. ok is false when there is no data, which is distinct from
// a sample set whose percentiles are genuinely zero.
func Percentiles(values []int64) (p50, p90, p95, p99 int64, ok bool) {
	if len(values) == 0 {
		return 0, 0, 0, 0, false
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return percentileSorted(values, 0.50),
		percentileSorted(values, 0.90),
		percentileSorted(values, 0.95),
		percentileSorted(values, 0.99),
		true
}
