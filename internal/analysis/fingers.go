package analysis

// Finger identifies the finger conventionally assigned to a key on a
// QWERTY layout.
type Finger int

// Fingers in left-to-right order across the home row, thumb last.
const (
	LeftPinky Finger = iota
	LeftRing
	LeftMiddle
	LeftIndex
	RightIndex
	RightMiddle
	RightRing
	RightPinky
	Thumb
)

// Hand is the side a finger belongs to.
type Hand int

// Hand values.
const (
	LeftHand Hand = iota
	RightHand
)

// Hand returns the side of the finger. The thumb counts as right hand
// since the space bar is usually struck with it.
func (f Finger) Hand() Hand {
	switch f {
	case LeftPinky, LeftRing, LeftMiddle, LeftIndex:
		return LeftHand
	}
	return RightHand
}

// String returns the display name of the finger.
func (f Finger) String() string {
	switch f {
	case LeftPinky:
		return "Left Pinky"
	case LeftRing:
		return "Left Ring"
	case LeftMiddle:
		return "Left Middle"
	case LeftIndex:
		return "Left Index"
	case RightIndex:
		return "Right Index"
	case RightMiddle:
		return "Right Middle"
	case RightRing:
		return "Right Ring"
	case RightPinky:
		return "Right Pinky"
	case Thumb:
		return "Thumb"
	}
	return "Unknown"
}

// fingerByKey maps scan codes to the finger that strikes them on a
// standard QWERTY touch-typing assignment.
var fingerByKey = map[uint32]Finger{
	// Number row.
	0x32: LeftPinky, 0x12: LeftPinky, 0x13: LeftRing, 0x14: LeftMiddle,
	0x15: LeftIndex, 0x17: LeftIndex, 0x16: RightIndex, 0x1A: RightIndex,
	0x1C: RightMiddle, 0x19: RightRing, 0x1D: RightPinky, 0x1B: RightPinky,
	0x18: RightPinky, 0x33: RightPinky,
	// Top row.
	0x30: LeftPinky, 0x0C: LeftPinky, 0x0D: LeftRing, 0x0E: LeftMiddle,
	0x0F: LeftIndex, 0x11: LeftIndex, 0x10: RightIndex, 0x20: RightIndex,
	0x22: RightMiddle, 0x1F: RightRing, 0x23: RightPinky, 0x21: RightPinky,
	0x1E: RightPinky, 0x2A: RightPinky,
	// Home row.
	0x39: LeftPinky, 0x00: LeftPinky, 0x01: LeftRing, 0x02: LeftMiddle,
	0x03: LeftIndex, 0x05: LeftIndex, 0x04: RightIndex, 0x26: RightIndex,
	0x28: RightMiddle, 0x25: RightRing, 0x29: RightPinky, 0x27: RightPinky,
	0x24: RightPinky,
	// Bottom row.
	0x38: LeftPinky, 0x06: LeftPinky, 0x07: LeftRing, 0x08: LeftMiddle,
	0x09: LeftIndex, 0x0B: LeftIndex, 0x2D: RightIndex, 0x2E: RightMiddle,
	0x2B: RightMiddle, 0x2F: RightRing, 0x2C: RightPinky, 0x3C: RightPinky,
	// Space.
	0x31: Thumb,
}

// FingerForKey returns the finger assigned to the scan code, if any.
// Keys outside the main typing block (arrows, F-keys) have no assignment.
func FingerForKey(code uint32) (Finger, bool) {
	f, ok := fingerByKey[code]
	return f, ok
}

// FingerLoad is one finger's share of all key presses.
type FingerLoad struct {
	Finger     Finger
	Percentage float64
}

// FingerAnalysis summarizes how typing load spreads across fingers and
// hands, and how often consecutive keys land on the same finger.
type FingerAnalysis struct {
	// Loads lists the eight non-thumb fingers in left-to-right order.
	Loads           []FingerLoad
	LeftPct         float64
	RightPct        float64
	SameFingerPct   float64
	AlternationPct  float64
	WorstSameFinger []BigramCount
}

// balanceDefaultPct is the even split reported when no presses land on
// mapped keys.
const balanceDefaultPct = 50.0

// NewFingerAnalysis derives finger statistics from a frequency analysis.
// It is total over arbitrary input: with no mapped presses the loads are
// zero and the hand balance defaults to an even split.
func NewFingerAnalysis(freq *FrequencyAnalysis) *FingerAnalysis {
	loads := make([]FingerLoad, 0, int(RightPinky)+1)
	totals := map[Finger]float64{}
	for _, key := range freq.KeyFrequencies {
		if finger, ok := FingerForKey(key.KeyCode); ok {
			totals[finger] += key.Percentage
		}
	}
	for f := LeftPinky; f <= RightPinky; f++ {
		loads = append(loads, FingerLoad{Finger: f, Percentage: totals[f]})
	}

	var left, right float64
	for _, load := range loads {
		if load.Finger.Hand() == LeftHand {
			left += load.Percentage
		} else {
			right += load.Percentage
		}
	}
	leftPct, rightPct := balanceDefaultPct, balanceDefaultPct
	if total := left + right; total > 0 {
		leftPct = left / total * 100.0
		rightPct = right / total * 100.0
	}

	a := &FingerAnalysis{
		Loads:    loads,
		LeftPct:  leftPct,
		RightPct: rightPct,
	}
	a.bigramStats(freq.BigramFrequencies)
	return a
}

// TopWorstSameFinger returns the first min(n, available) same-finger
// bigrams, ordered by count descending.
func (a *FingerAnalysis) TopWorstSameFinger(n int) []BigramCount {
	return a.WorstSameFinger[:clampTop(n, len(a.WorstSameFinger))]
}

// bigramStats classifies each mapped bigram as same-finger, alternating
// (hands differ), or same-hand, weighting by occurrence count. The input
// is already sorted by count, so the worst same-finger list stays ranked.
func (a *FingerAnalysis) bigramStats(bigrams []BigramCount) {
	var total, sameFinger, alternating uint64
	for _, bigram := range bigrams {
		first, ok1 := FingerForKey(bigram.FirstKey)
		second, ok2 := FingerForKey(bigram.SecondKey)
		if !ok1 || !ok2 {
			continue
		}
		total += bigram.Count
		switch {
		case first == second:
			sameFinger += bigram.Count
			a.WorstSameFinger = append(a.WorstSameFinger, bigram)
		case first.Hand() != second.Hand():
			alternating += bigram.Count
		}
	}
	if total > 0 {
		a.SameFingerPct = float64(sameFinger) / float64(total) * 100.0
		a.AlternationPct = float64(alternating) / float64(total) * 100.0
	}
}
