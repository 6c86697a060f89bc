package analysis

import "github.com/verte-zerg/keyscope/internal/model"

// TrendWeeks is the number of trailing 7-day windows compared.
const TrendWeeks = 4

const weekMs = 7 * 24 * 60 * 60 * 1000

// Trend direction labels.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// trendThresholdPct is the share change, in percentage points between the
// oldest and newest week, below which a key counts as stable.
const trendThresholdPct = 0.5

// KeyTrend tracks one key's share of presses across trailing weeks.
type KeyTrend struct {
	KeyCode  uint32
	KeyName  string
	WeekPcts [TrendWeeks]float64 // oldest week first
	Trend    string
}

// WeeklyKeyTrends computes per-week press shares for the overall top n
// keys, over TrendWeeks trailing 7-day windows anchored at the last
// event. Weeks with no presses report zero shares. Empty input yields nil.
func WeeklyKeyTrends(events []model.KeystrokeEvent, n int) []KeyTrend {
	presses := pressEvents(events)
	if len(presses) == 0 {
		return nil
	}
	end := presses[len(presses)-1].Timestamp

	var weekTotals [TrendWeeks]uint64
	weekCounts := [TrendWeeks]map[uint32]uint64{}
	for w := range weekCounts {
		weekCounts[w] = map[uint32]uint64{}
	}
	for _, e := range presses {
		age := end - e.Timestamp
		if age < 0 || age >= TrendWeeks*weekMs {
			continue
		}
		w := TrendWeeks - 1 - int(age/weekMs)
		weekTotals[w]++
		weekCounts[w][e.KeyCode]++
	}

	freq := NewFrequencyAnalysis(presses)
	trends := make([]KeyTrend, 0, n)
	for _, key := range freq.TopKeys(n) {
		trend := KeyTrend{KeyCode: key.KeyCode, KeyName: key.KeyName}
		for w := 0; w < TrendWeeks; w++ {
			if weekTotals[w] > 0 {
				trend.WeekPcts[w] = float64(weekCounts[w][key.KeyCode]) / float64(weekTotals[w]) * 100.0
			}
		}
		trend.Trend = classifyTrend(trend.WeekPcts)
		trends = append(trends, trend)
	}
	return trends
}

// classifyTrend compares the newest week against the oldest week that
// has data, so a short history doesn't read as a rise from zero.
func classifyTrend(pcts [TrendWeeks]float64) string {
	first := 0
	for first < TrendWeeks-1 && pcts[first] == 0 {
		first++
	}
	delta := pcts[TrendWeeks-1] - pcts[first]
	switch {
	case delta > trendThresholdPct:
		return TrendRising
	case delta < -trendThresholdPct:
		return TrendFalling
	}
	return TrendStable
}
