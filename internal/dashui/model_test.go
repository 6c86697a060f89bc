package dashui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/keyscope/internal/analysis"
	"github.com/verte-zerg/keyscope/internal/model"
	"github.com/verte-zerg/keyscope/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "keyscope.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	// Recent timestamps so the default 7-day window includes them.
	base := time.Now().Add(-time.Hour).UnixMilli()
	events := []model.KeystrokeEvent{
		{Timestamp: base, KeyCode: 0x00, Kind: model.Press, Application: "com.test.app"},
		{Timestamp: base + 50, KeyCode: 0x00, Kind: model.Release, Application: "com.test.app"},
		{Timestamp: base + 100, KeyCode: 0x01, Kind: model.Press, Application: "com.test.app"},
		{Timestamp: base + 160, KeyCode: 0x01, Kind: model.Release, Application: "com.test.app"},
	}
	if err := st.InsertEvents(context.Background(), events); err != nil {
		t.Fatalf("insert events: %v", err)
	}

	return NewModel(st, Config{Filter: analysis.DefaultFilterConfig(), Top: 10})
}

func TestNewModelLoadsAnalysis(t *testing.T) {
	m := newTestModel(t)
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	if m.frequency == nil || m.timing == nil {
		t.Fatalf("expected analyses to be computed")
	}
	if m.frequency.TotalPresses != 2 {
		t.Fatalf("expected 2 presses, got %d", m.frequency.TotalPresses)
	}
	if m.segments != 1 {
		t.Fatalf("expected 1 segment, got %d", m.segments)
	}
}

func TestViewShowsTabs(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	view := updated.View()
	for _, tab := range []string{"Overview", "Frequency", "Timing", "Fingers", "Trends"} {
		if !strings.Contains(view, tab) {
			t.Fatalf("missing tab %q in view", tab)
		}
	}
	if !strings.Contains(view, "[7 days]") {
		t.Fatalf("missing time range label in view")
	}
}

func TestTabCycling(t *testing.T) {
	m := newTestModel(t)
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview active, got %d", m.activeTab)
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(*Model)
	if m.activeTab != tabFrequency {
		t.Fatalf("expected frequency active, got %d", m.activeTab)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(*Model)
	if m.activeTab != tabOverview {
		t.Fatalf("expected overview active, got %d", m.activeTab)
	}
}

func TestOverviewContent(t *testing.T) {
	m := newTestModel(t)
	content := m.renderOverview()
	for _, want := range []string{"Events", "Presses", "Segments", "Activity by hour"} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in overview:\n%s", want, content)
		}
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestTimeRangeCycling(t *testing.T) {
	m := newTestModel(t)
	if m.timeRange != range7d {
		t.Fatalf("expected 7-day default, got %v", m.timeRange)
	}
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = updated.(*Model)
	if m.timeRange != range30d {
		t.Fatalf("expected 30-day range, got %v", m.timeRange)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = updated.(*Model)
	if m.timeRange != range7d {
		t.Fatalf("expected 7-day range, got %v", m.timeRange)
	}
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = updated.(*Model)
	if m.timeRange != rangeAll {
		t.Fatalf("expected all-time wrap, got %v", m.timeRange)
	}
	if m.frequency == nil || m.frequency.TotalPresses != 2 {
		t.Fatalf("expected analysis refreshed after range change")
	}
}

func TestHourAxisAlignment(t *testing.T) {
	axis := hourAxis(24)
	if len(axis) != 24 {
		t.Fatalf("expected axis width 24, got %d (%q)", len(axis), axis)
	}
	if !strings.HasPrefix(axis, "0h") || !strings.HasSuffix(axis, "23h") {
		t.Fatalf("unexpected axis %q", axis)
	}
}

func TestFingersViewContent(t *testing.T) {
	m := newTestModel(t)
	content := m.renderFingers()
	for _, want := range []string{
		"Finger Assignments (QWERTY)",
		"Finger Load",
		"Left Pinky",
		"Hand Balance",
		"Same-Finger Bigrams",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in fingers view:\n%s", want, content)
		}
	}
	// A then S is left pinky then left ring: same hand, no alternation.
	if m.fingers == nil {
		t.Fatalf("expected finger analysis")
	}
	if m.fingers.LeftPct != 100.0 {
		t.Fatalf("expected all presses on left hand, got %.1f", m.fingers.LeftPct)
	}
}

func TestTrendsViewContent(t *testing.T) {
	m := newTestModel(t)
	content := m.renderTrends()
	for _, want := range []string{
		"Daily Key Presses",
		"Top Keys Over Time",
		"Per-App Distribution",
		"app", // com.test.app truncated to its last segment
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in trends view:\n%s", want, content)
		}
	}
}

func TestRenderKeyboardShowsKeys(t *testing.T) {
	m := newTestModel(t)
	board := renderKeyboard(m.frequency, false)
	for _, want := range []string{"Q", "A", "Space", "Shift"} {
		if !strings.Contains(board, want) {
			t.Fatalf("missing %q in keyboard:\n%s", want, board)
		}
	}
}

func TestTruncateAppName(t *testing.T) {
	if got := truncateAppName("com.apple.Safari"); got != "Safari" {
		t.Fatalf("expected Safari, got %q", got)
	}
	if got := truncateAppName("plain"); got != "plain" {
		t.Fatalf("expected plain, got %q", got)
	}
	long := "com.x." + strings.Repeat("a", 25)
	if got := truncateAppName(long); len([]rune(got)) != 18 {
		t.Fatalf("expected clipped name, got %q", got)
	}
}
