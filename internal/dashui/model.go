// Package dashui provides the Bubble Tea dashboard interface.
package dashui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyscope/internal/analysis"
	"github.com/verte-zerg/keyscope/internal/model"
	"github.com/verte-zerg/keyscope/internal/report"
	"github.com/verte-zerg/keyscope/internal/store"
)

const (
	tabOverview = iota
	tabFrequency
	tabTiming
	tabFingers
	tabTrends
)

// timeRange is the trailing window of events shown by the dashboard.
type timeRange int

const (
	range7d timeRange = iota
	range30d
	range90d
	rangeAll
)

func (r timeRange) label() string {
	switch r {
	case range7d:
		return "7 days"
	case range30d:
		return "30 days"
	case range90d:
		return "90 days"
	}
	return "All time"
}

// days returns the window length, 0 meaning unbounded.
func (r timeRange) days() int {
	switch r {
	case range7d:
		return 7
	case range30d:
		return 30
	case range90d:
		return 90
	}
	return 0
}

func (r timeRange) next() timeRange {
	if r == rangeAll {
		return range7d
	}
	return r + 1
}

func (r timeRange) prev() timeRange {
	if r == range7d {
		return rangeAll
	}
	return r - 1
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	leftHandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB3B3"))
	rightHandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C594C5"))
)

// Config holds dashboard parameters.
type Config struct {
	Filter analysis.FilterConfig
	Top    int
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	store *store.Store
	cfg   Config

	events    []model.KeystrokeEvent
	segments  int
	frequency *analysis.FrequencyAnalysis
	timing    *analysis.TimingAnalysis
	fingers   *analysis.FingerAnalysis
	trends    []analysis.KeyTrend
	errMsg    string

	timeRange timeRange
	tabs      []string
	activeTab int
	viewports []viewport.Model

	width  int
	height int
}

// NewModel constructs a dashboard model.
func NewModel(st *store.Store, cfg Config) *Model {
	m := &Model{
		store:     st,
		cfg:       cfg,
		timeRange: range7d,
		tabs:      []string{"Overview", "Frequency", "Timing", "Fingers", "Trends"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "l":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			return m, nil
		case "shift+tab", "h":
			m.activeTab = (m.activeTab + len(m.tabs) - 1) % len(m.tabs)
			return m, nil
		case "right":
			m.timeRange = m.timeRange.next()
			m.refresh()
			return m, nil
		case "left":
			m.timeRange = m.timeRange.prev()
			m.refresh()
			return m, nil
		case "r":
			m.refresh()
			m.renderTabContents()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	nav := m.renderNav()
	body := m.viewports[m.activeTab].View()
	footer := headerStyle.Render("tab switch · ←→ range · ↑↓ scroll · r refresh · q quit")
	if m.errMsg != "" {
		footer = errorStyle.Render(m.errMsg)
	}
	return lipgloss.JoinVertical(lipgloss.Left, nav, body, footer)
}

func (m *Model) refresh() {
	m.errMsg = ""
	ctx := context.Background()
	var events []model.KeystrokeEvent
	var err error
	if days := m.timeRange.days(); days > 0 {
		events, err = m.store.ListEventsSince(ctx, days)
	} else {
		events, err = m.store.ListEvents(ctx)
	}
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load events: %v", err)
		return
	}
	segments := m.cfg.Filter.SegmentByGap(events)
	filtered := analysis.Flatten(segments)

	m.events = filtered
	m.segments = len(segments)
	m.frequency = analysis.NewFrequencyAnalysis(filtered)
	m.timing = analysis.NewTimingAnalysis(filtered, m.cfg.Filter)
	m.fingers = analysis.NewFingerAnalysis(m.frequency)
	m.trends = analysis.WeeklyKeyTrends(filtered, trendKeyCount)
	m.renderTabContents()
}

func (m *Model) updateLayout() {
	navHeight := lipgloss.Height(m.renderNav())
	bodyHeight := m.height - navHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
}

func (m *Model) renderNav() string {
	items := make([]string, 0, len(m.tabs)+1)
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		items = append(items, style.Render(tab))
	}
	items = append(items, headerStyle.Render(" ["+m.timeRange.label()+"]"))
	return lipgloss.JoinHorizontal(lipgloss.Center, items...)
}

func (m *Model) renderTabContents() {
	if m.frequency == nil || m.timing == nil {
		return
	}
	m.viewports[tabOverview].SetContent(m.renderOverview())
	m.viewports[tabFrequency].SetContent(m.renderFrequency())
	m.viewports[tabTiming].SetContent(m.renderTiming())
	m.viewports[tabFingers].SetContent(m.renderFingers())
	m.viewports[tabTrends].SetContent(m.renderTrends())
}

func (m *Model) renderOverview() string {
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard("Events", fmt.Sprintf("%d", len(m.events))),
		renderCard("Presses", fmt.Sprintf("%d", m.frequency.TotalPresses)),
		renderCard("Segments", fmt.Sprintf("%d", m.segments)),
		renderCard("Mean Interval", fmt.Sprintf("%.0fms", m.timing.OverallInterKey.MeanMs)),
	)

	var b strings.Builder
	b.WriteString(cards)
	b.WriteString("\n\n")
	b.WriteString(cardTitleStyle.Render("Activity by hour (UTC)"))
	b.WriteString("\n")
	spark := report.Sparkline(report.HourlyActivity(m.events))
	b.WriteString(spark)
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(hourAxis(len(spark))))
	b.WriteString("\n\n")

	var buf bytes.Buffer
	top := m.cfg.Top
	if top > 5 {
		top = 5
	}
	if err := report.RenderFrequency(&buf, m.frequency, top, false); err != nil {
		return errorStyle.Render(err.Error())
	}
	b.WriteString(buf.String())
	return b.String()
}

// hourAxis labels a sparkline of the given width with its first and last
// hour, padding so "23h" ends under the last column.
func hourAxis(width int) string {
	pad := width - len("0h") - len("23h")
	if pad < 1 {
		pad = 1
	}
	return "0h" + strings.Repeat(" ", pad) + "23h"
}

func (m *Model) renderFrequency() string {
	var buf bytes.Buffer
	if err := report.RenderFrequency(&buf, m.frequency, m.cfg.Top, true); err != nil {
		return errorStyle.Render(err.Error())
	}
	return buf.String()
}

func (m *Model) renderTiming() string {
	var buf bytes.Buffer
	if err := report.RenderTiming(&buf, m.timing, m.cfg.Top, true); err != nil {
		return errorStyle.Render(err.Error())
	}
	return buf.String()
}

const (
	trendKeyCount      = 8
	worstBigramCount   = 4
	fingerBarScale     = 3.0
	fingerBarMax       = 12
	appBarScale        = 2.0
	appBarMax          = 30
	appDistributionTop = 5
)

func (m *Model) renderFingers() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Finger Assignments (QWERTY)"))
	b.WriteString("\n")
	b.WriteString(renderKeyboard(m.frequency, true))
	b.WriteString("\n\n")

	b.WriteString(cardTitleStyle.Render("Finger Load"))
	b.WriteString("\n")
	for _, load := range m.fingers.Loads {
		style := leftHandStyle
		if load.Finger.Hand() == analysis.RightHand {
			style = rightHandStyle
		}
		bar := barString(load.Percentage, fingerBarScale, fingerBarMax)
		fmt.Fprintf(&b, "%s %s %s\n",
			style.Render(fmt.Sprintf("%-12s", load.Finger.String())),
			fmt.Sprintf("%5.1f%%", load.Percentage),
			style.Render(bar))
	}
	b.WriteString("\n")

	b.WriteString(cardTitleStyle.Render("Hand Balance"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Left Hand:  %5.1f%%\n", m.fingers.LeftPct)
	fmt.Fprintf(&b, "Right Hand: %5.1f%%\n", m.fingers.RightPct)
	fmt.Fprintf(&b, "Balance:    %s (ideal: 45-55%%)\n\n", handBalanceLabel(m.fingers.LeftPct))

	b.WriteString(cardTitleStyle.Render("Same-Finger Bigrams"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Same finger: %.1f%%\n", m.fingers.SameFingerPct)
	fmt.Fprintf(&b, "Alternating: %.1f%%\n", m.fingers.AlternationPct)
	if worst := m.fingers.TopWorstSameFinger(worstBigramCount); len(worst) > 0 {
		b.WriteString("Worst (same finger):\n")
		for _, bigram := range worst {
			fmt.Fprintf(&b, "  %s  %d\n", bigram.Display, bigram.Count)
		}
	}
	return b.String()
}

// handBalanceLabel grades the left-hand share against the 45-55% ideal.
func handBalanceLabel(leftPct float64) string {
	switch {
	case leftPct >= 45.0 && leftPct <= 55.0:
		return "good"
	case leftPct >= 40.0 && leftPct <= 60.0:
		return "fair"
	}
	return "imbalanced"
}

func (m *Model) renderTrends() string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Daily Key Presses"))
	b.WriteString("\n")
	daily := report.DailyActivity(m.events)
	if len(daily) == 0 {
		b.WriteString(headerStyle.Render("(no data)"))
		b.WriteString("\n")
	} else {
		b.WriteString(report.Sparkline(daily))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(cardTitleStyle.Render("Top Keys Over Time"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-8s %7s %7s %7s %7s  %s\n",
		"Key", "W-3", "W-2", "W-1", "Now", "Trend")
	for _, trend := range m.trends {
		fmt.Fprintf(&b, "%-8s %6.1f%% %6.1f%% %6.1f%% %6.1f%%  %s\n",
			trend.KeyName,
			trend.WeekPcts[0], trend.WeekPcts[1], trend.WeekPcts[2], trend.WeekPcts[3],
			trendArrow(trend.Trend))
	}
	b.WriteString("\n")

	b.WriteString(cardTitleStyle.Render("Per-App Distribution"))
	b.WriteString("\n")
	for _, app := range m.appDistribution(appDistributionTop) {
		fmt.Fprintf(&b, "%-20s %5.1f%% %s\n",
			truncateAppName(app.name), app.pct, barString(app.pct, appBarScale, appBarMax))
	}
	return b.String()
}

func trendArrow(trend string) string {
	switch trend {
	case analysis.TrendRising:
		return "↗ " + trend
	case analysis.TrendFalling:
		return "↘ " + trend
	}
	return "→ " + trend
}

type appShare struct {
	name string
	pct  float64
}

// appDistribution ranks applications by their share of presses in the
// current window.
func (m *Model) appDistribution(limit int) []appShare {
	counts := map[string]int{}
	total := 0
	for _, e := range m.events {
		if e.Kind == model.Press {
			counts[e.Application]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	shares := make([]appShare, 0, len(counts))
	for name, count := range counts {
		shares = append(shares, appShare{name: name, pct: float64(count) / float64(total) * 100.0})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].pct == shares[j].pct {
			return shares[i].name < shares[j].name
		}
		return shares[i].pct > shares[j].pct
	})
	if limit < len(shares) {
		shares = shares[:limit]
	}
	return shares
}

// truncateAppName keeps the last dot-separated segment of a bundle
// identifier, clipped to fit the distribution column.
func truncateAppName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 && idx+1 < len(name) {
		name = name[idx+1:]
	}
	if len(name) > 18 {
		return name[:17] + "…"
	}
	return name
}

func barString(pct, scale float64, max int) string {
	n := int(pct / scale)
	if n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n)
}

func renderCard(title, value string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render(title),
		cardValueStyle.Render(value),
	)
	return cardStyle.Render(content)
}
