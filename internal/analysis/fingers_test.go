package analysis

import (
	"testing"

	"github.com/verte-zerg/keyscope/internal/model"
)

func TestFingerForKey(t *testing.T) {
	cases := []struct {
		code   uint32
		finger Finger
	}{
		{0x00, LeftPinky},  // A
		{0x01, LeftRing},   // S
		{0x02, LeftMiddle}, // D
		{0x03, LeftIndex},  // F
		{0x26, RightIndex}, // J
		{0x28, RightMiddle},
		{0x25, RightRing},
		{0x29, RightPinky},
		{0x31, Thumb}, // Space
	}
	for _, tc := range cases {
		finger, ok := FingerForKey(tc.code)
		if !ok {
			t.Fatalf("expected mapping for 0x%02X", tc.code)
		}
		if finger != tc.finger {
			t.Fatalf("key 0x%02X: expected %s, got %s", tc.code, tc.finger, finger)
		}
	}
	if _, ok := FingerForKey(0x7E); ok {
		t.Fatalf("expected no mapping for UpArrow")
	}
}

func TestFingerHand(t *testing.T) {
	if LeftIndex.Hand() != LeftHand {
		t.Fatalf("expected left index on left hand")
	}
	if RightPinky.Hand() != RightHand {
		t.Fatalf("expected right pinky on right hand")
	}
	if Thumb.Hand() != RightHand {
		t.Fatalf("expected thumb on right hand")
	}
}

func TestFingerLoadsAndBalance(t *testing.T) {
	// Three A presses (left pinky), one J press (right index).
	events := []model.KeystrokeEvent{
		makePress(0, 0x00),
		makePress(100, 0x00),
		makePress(200, 0x00),
		makePress(300, 0x26),
	}
	fingers := NewFingerAnalysis(NewFrequencyAnalysis(events))

	if len(fingers.Loads) != 8 {
		t.Fatalf("expected 8 finger loads, got %d", len(fingers.Loads))
	}
	if fingers.Loads[0].Finger != LeftPinky {
		t.Fatalf("expected left pinky first, got %s", fingers.Loads[0].Finger)
	}
	if got := fingers.Loads[0].Percentage; got != 75.0 {
		t.Fatalf("expected left pinky at 75%%, got %f", got)
	}
	if fingers.LeftPct != 75.0 || fingers.RightPct != 25.0 {
		t.Fatalf("expected 75/25 balance, got %f/%f", fingers.LeftPct, fingers.RightPct)
	}
}

func TestHandBalanceDefaultsEven(t *testing.T) {
	fingers := NewFingerAnalysis(NewFrequencyAnalysis(nil))
	if fingers.LeftPct != 50.0 || fingers.RightPct != 50.0 {
		t.Fatalf("expected 50/50 default, got %f/%f", fingers.LeftPct, fingers.RightPct)
	}
}

func TestSameFingerBigramStats(t *testing.T) {
	// E -> D twice (both left middle) and F -> J three times (alternating
	// hands). Pairs are spaced past the adjacency window so no connector
	// bigrams form between them.
	events := []model.KeystrokeEvent{
		makePress(0, 0x0E),
		makePress(100, 0x02),
		makePress(10000, 0x0E),
		makePress(10100, 0x02),
		makePress(20000, 0x03),
		makePress(20100, 0x26),
		makePress(30000, 0x03),
		makePress(30100, 0x26),
		makePress(40000, 0x03),
		makePress(40100, 0x26),
	}
	fingers := NewFingerAnalysis(NewFrequencyAnalysis(events))

	if fingers.SameFingerPct != 40.0 {
		t.Fatalf("expected same-finger 40%%, got %f", fingers.SameFingerPct)
	}
	if fingers.AlternationPct != 60.0 {
		t.Fatalf("expected alternation 60%%, got %f", fingers.AlternationPct)
	}
	worst := fingers.TopWorstSameFinger(4)
	if len(worst) != 1 {
		t.Fatalf("expected one same-finger bigram, got %d", len(worst))
	}
	if worst[0].FirstKey != 0x0E || worst[0].SecondKey != 0x02 {
		t.Fatalf("unexpected worst bigram: %+v", worst[0])
	}
	if worst[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", worst[0].Count)
	}
}
