package analysis

import (
	"math"
	"testing"

	"github.com/verte-zerg/keyscope/internal/model"
)

func makePress(timestamp int64, keyCode uint32) model.KeystrokeEvent {
	return model.KeystrokeEvent{
		Timestamp:   timestamp,
		KeyCode:     keyCode,
		Kind:        model.Press,
		Application: "test",
	}
}

func makeRelease(timestamp int64, keyCode uint32) model.KeystrokeEvent {
	return model.KeystrokeEvent{
		Timestamp:   timestamp,
		KeyCode:     keyCode,
		Kind:        model.Release,
		Application: "test",
	}
}

func TestFrequencyEmptyEvents(t *testing.T) {
	a := NewFrequencyAnalysis(nil)
	if a.TotalPresses != 0 {
		t.Fatalf("expected 0 presses, got %d", a.TotalPresses)
	}
	if len(a.KeyFrequencies) != 0 || len(a.BigramFrequencies) != 0 || len(a.TrigramFrequencies) != 0 {
		t.Fatalf("expected empty tables: %+v", a)
	}
	if len(a.TopKeys(5)) != 0 {
		t.Fatalf("TopKeys on empty table should be empty")
	}
}

func TestKeyFrequencyCountAndPercentage(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x00),
		makePress(300, 0x01),
	}
	a := NewFrequencyAnalysis(events)
	if a.TotalPresses != 3 {
		t.Fatalf("expected 3 presses, got %d", a.TotalPresses)
	}
	top := a.TopKeys(10)
	if top[0].KeyCode != 0x00 || top[0].Count != 2 {
		t.Fatalf("unexpected top key: %+v", top[0])
	}
	if top[1].KeyCode != 0x01 || top[1].Count != 1 {
		t.Fatalf("unexpected second key: %+v", top[1])
	}
	if math.Abs(top[0].Percentage-66.666) > 0.01 {
		t.Fatalf("unexpected top percentage: %f", top[0].Percentage)
	}
	if math.Abs(top[1].Percentage-33.333) > 0.01 {
		t.Fatalf("unexpected second percentage: %f", top[1].Percentage)
	}
}

func TestFrequencyOnlyCountsPresses(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makeRelease(150, 0x00),
		makePress(200, 0x01),
		makeRelease(250, 0x01),
	}
	a := NewFrequencyAnalysis(events)
	if a.TotalPresses != 2 {
		t.Fatalf("expected 2 presses, got %d", a.TotalPresses)
	}
}

func TestKeyFrequencyTieBreaksByKeyCode(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x05),
		makePress(200, 0x02),
		makePress(300, 0x09),
	}
	a := NewFrequencyAnalysis(events)
	top := a.TopKeys(3)
	if top[0].KeyCode != 0x02 || top[1].KeyCode != 0x05 || top[2].KeyCode != 0x09 {
		t.Fatalf("ties not broken by key code: %+v", top)
	}
}

func TestBigramDetection(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x01),
		makePress(300, 0x00),
		makePress(400, 0x01),
	}
	a := NewFrequencyAnalysis(events)
	bigrams := a.TopBigrams(10)
	if len(bigrams) == 0 {
		t.Fatalf("expected bigrams")
	}
	var found *BigramCount
	for i := range bigrams {
		if bigrams[i].FirstKey == 0x00 && bigrams[i].SecondKey == 0x01 {
			found = &bigrams[i]
		}
	}
	if found == nil {
		t.Fatalf("A->S bigram not found: %+v", bigrams)
	}
	if found.Count != 2 {
		t.Fatalf("expected count 2, got %d", found.Count)
	}
	if found.Display != "A -> S" {
		t.Fatalf("unexpected display: %q", found.Display)
	}
}

func TestBigramFiltersLargeGaps(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(10000, 0x01),
	}
	a := NewFrequencyAnalysis(events)
	if len(a.BigramFrequencies) != 0 {
		t.Fatalf("expected no bigrams, got %+v", a.BigramFrequencies)
	}
}

func TestBigramPercentageUsesBigramTotal(t *testing.T) {
	// Three presses, but only one qualifying bigram: its share must be 100%.
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x01),
		makePress(20000, 0x02),
	}
	a := NewFrequencyAnalysis(events)
	if len(a.BigramFrequencies) != 1 {
		t.Fatalf("expected 1 bigram, got %d", len(a.BigramFrequencies))
	}
	if math.Abs(a.BigramFrequencies[0].Percentage-100.0) > 0.01 {
		t.Fatalf("unexpected percentage: %f", a.BigramFrequencies[0].Percentage)
	}
}

func TestTrigramDetection(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x01),
		makePress(300, 0x02),
	}
	a := NewFrequencyAnalysis(events)
	trigrams := a.TopTrigrams(10)
	if len(trigrams) != 1 {
		t.Fatalf("expected 1 trigram, got %d", len(trigrams))
	}
	if trigrams[0].Keys != [3]uint32{0x00, 0x01, 0x02} {
		t.Fatalf("unexpected trigram keys: %v", trigrams[0].Keys)
	}
	if trigrams[0].Display != "A -> S -> D" {
		t.Fatalf("unexpected display: %q", trigrams[0].Display)
	}
}

func TestTrigramRequiresBothGapsInWindow(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x01),
		makePress(20000, 0x02),
	}
	a := NewFrequencyAnalysis(events)
	if len(a.TrigramFrequencies) != 0 {
		t.Fatalf("expected no trigrams, got %+v", a.TrigramFrequencies)
	}
}

func TestTopKeysLimit(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x01),
		makePress(300, 0x02),
		makePress(400, 0x03),
		makePress(500, 0x04),
	}
	a := NewFrequencyAnalysis(events)
	if got := len(a.TopKeys(2)); got != 2 {
		t.Fatalf("expected 2 keys, got %d", got)
	}
	if got := len(a.TopKeys(100)); got != 5 {
		t.Fatalf("expected 5 keys, got %d", got)
	}
}

func TestKeyPercentagesSumToHundred(t *testing.T) {
	events := []model.KeystrokeEvent{
		makePress(100, 0x00),
		makePress(200, 0x00),
		makePress(300, 0x01),
		makePress(400, 0x02),
		makePress(500, 0x02),
		makePress(600, 0x02),
	}
	a := NewFrequencyAnalysis(events)
	var sum float64
	for _, k := range a.KeyFrequencies {
		sum += k.Percentage
	}
	if math.Abs(sum-100.0) > 1e-9 {
		t.Fatalf("percentages sum to %f", sum)
	}
}
