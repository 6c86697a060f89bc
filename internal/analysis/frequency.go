package analysis

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/keyscope/internal/model"
)

// ngramWindowMs is the adjacency window for bigram and trigram counting.
// Deliberately a fixed constant rather than FilterConfig.MaxGapMs: n-gram
// tables describe which sequences are typed, not how fast, so they keep a
// stable window regardless of the caller's timing filter.
const ngramWindowMs = 5000

// KeyCount is one row of the key frequency table.
type KeyCount struct {
	KeyCode    uint32
	KeyName    string
	Count      uint64
	Percentage float64
}

// BigramCount is one row of the bigram frequency table.
type BigramCount struct {
	FirstKey   uint32
	SecondKey  uint32
	Display    string
	Count      uint64
	Percentage float64
}

// TrigramCount is one row of the trigram frequency table.
type TrigramCount struct {
	Keys       [3]uint32
	Display    string
	Count      uint64
	Percentage float64
}

// FrequencyAnalysis holds ranked key, bigram, and trigram tables. It is
// immutable after construction and safe to share for reads.
type FrequencyAnalysis struct {
	TotalPresses       uint64
	KeyFrequencies     []KeyCount
	BigramFrequencies  []BigramCount
	TrigramFrequencies []TrigramCount
}

// NewFrequencyAnalysis counts key, bigram, and trigram occurrences over the
// Press events of the sequence. It is total over arbitrary input: an empty
// sequence yields empty tables.
func NewFrequencyAnalysis(events []model.KeystrokeEvent) *FrequencyAnalysis {
	presses := pressEvents(events)
	total := uint64(len(presses))

	return &FrequencyAnalysis{
		TotalPresses:       total,
		KeyFrequencies:     keyFrequencies(presses, total),
		BigramFrequencies:  bigramFrequencies(presses),
		TrigramFrequencies: trigramFrequencies(presses),
	}
}

// TopKeys returns the first min(n, available) entries of the key table.
func (a *FrequencyAnalysis) TopKeys(n int) []KeyCount {
	return a.KeyFrequencies[:clampTop(n, len(a.KeyFrequencies))]
}

// TopBigrams returns the first min(n, available) entries of the bigram table.
func (a *FrequencyAnalysis) TopBigrams(n int) []BigramCount {
	return a.BigramFrequencies[:clampTop(n, len(a.BigramFrequencies))]
}

// TopTrigrams returns the first min(n, available) entries of the trigram table.
func (a *FrequencyAnalysis) TopTrigrams(n int) []TrigramCount {
	return a.TrigramFrequencies[:clampTop(n, len(a.TrigramFrequencies))]
}

func clampTop(n, available int) int {
	if n < 0 {
		return 0
	}
	if n > available {
		return available
	}
	return n
}

func pressEvents(events []model.KeystrokeEvent) []model.KeystrokeEvent {
	presses := make([]model.KeystrokeEvent, 0, len(events))
	for _, e := range events {
		if e.Kind == model.Press {
			presses = append(presses, e)
		}
	}
	return presses
}

func keyFrequencies(presses []model.KeystrokeEvent, total uint64) []KeyCount {
	counts := map[uint32]uint64{}
	for _, e := range presses {
		counts[e.KeyCode]++
	}

	result := make([]KeyCount, 0, len(counts))
	for keyCode, count := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100.0
		}
		result = append(result, KeyCount{
			KeyCode:    keyCode,
			KeyName:    model.KeyName(keyCode),
			Count:      count,
			Percentage: pct,
		})
	}

	// Map iteration order is unspecified, so ties on count need a key-code
	// tiebreak to keep output reproducible.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return result[i].KeyCode < result[j].KeyCode
		}
		return result[i].Count > result[j].Count
	})
	return result
}

func bigramFrequencies(presses []model.KeystrokeEvent) []BigramCount {
	type pair struct {
		first, second uint32
	}
	counts := map[pair]uint64{}
	for i := 1; i < len(presses); i++ {
		gap := presses[i].Timestamp - presses[i-1].Timestamp
		if gap < ngramWindowMs {
			counts[pair{presses[i-1].KeyCode, presses[i].KeyCode}]++
		}
	}

	var bigramTotal uint64
	for _, count := range counts {
		bigramTotal += count
	}

	result := make([]BigramCount, 0, len(counts))
	for keys, count := range counts {
		pct := 0.0
		if bigramTotal > 0 {
			pct = float64(count) / float64(bigramTotal) * 100.0
		}
		result = append(result, BigramCount{
			FirstKey:   keys.first,
			SecondKey:  keys.second,
			Display:    fmt.Sprintf("%s -> %s", model.KeyName(keys.first), model.KeyName(keys.second)),
			Count:      count,
			Percentage: pct,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			if result[i].FirstKey == result[j].FirstKey {
				return result[i].SecondKey < result[j].SecondKey
			}
			return result[i].FirstKey < result[j].FirstKey
		}
		return result[i].Count > result[j].Count
	})
	return result
}

func trigramFrequencies(presses []model.KeystrokeEvent) []TrigramCount {
	counts := map[[3]uint32]uint64{}
	for i := 2; i < len(presses); i++ {
		gap1 := presses[i-1].Timestamp - presses[i-2].Timestamp
		gap2 := presses[i].Timestamp - presses[i-1].Timestamp
		if gap1 < ngramWindowMs && gap2 < ngramWindowMs {
			counts[[3]uint32{presses[i-2].KeyCode, presses[i-1].KeyCode, presses[i].KeyCode}]++
		}
	}

	var trigramTotal uint64
	for _, count := range counts {
		trigramTotal += count
	}

	result := make([]TrigramCount, 0, len(counts))
	for keys, count := range counts {
		pct := 0.0
		if trigramTotal > 0 {
			pct = float64(count) / float64(trigramTotal) * 100.0
		}
		result = append(result, TrigramCount{
			Keys: keys,
			Display: fmt.Sprintf("%s -> %s -> %s",
				model.KeyName(keys[0]), model.KeyName(keys[1]), model.KeyName(keys[2])),
			Count:      count,
			Percentage: pct,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return lessKeys3(result[i].Keys, result[j].Keys)
		}
		return result[i].Count > result[j].Count
	})
	return result
}

func lessKeys3(a, b [3]uint32) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
