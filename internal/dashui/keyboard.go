package dashui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keyscope/internal/analysis"
)

// keyCap is one key of the on-screen QWERTY keyboard.
type keyCap struct {
	code  uint32
	label string
	width int
}

var keyboardRows = [][]keyCap{
	{
		{0x32, "`", 2}, {0x12, "1", 2}, {0x13, "2", 2}, {0x14, "3", 2},
		{0x15, "4", 2}, {0x17, "5", 2}, {0x16, "6", 2}, {0x1A, "7", 2},
		{0x1C, "8", 2}, {0x19, "9", 2}, {0x1D, "0", 2}, {0x1B, "-", 2},
		{0x18, "=", 2}, {0x33, "Bks", 4},
	},
	{
		{0x30, "Tab", 4}, {0x0C, "Q", 2}, {0x0D, "W", 2}, {0x0E, "E", 2},
		{0x0F, "R", 2}, {0x11, "T", 2}, {0x10, "Y", 2}, {0x20, "U", 2},
		{0x22, "I", 2}, {0x1F, "O", 2}, {0x23, "P", 2}, {0x21, "[", 2},
		{0x1E, "]", 2}, {0x2A, "\\", 2},
	},
	{
		{0x39, "Caps", 5}, {0x00, "A", 2}, {0x01, "S", 2}, {0x02, "D", 2},
		{0x03, "F", 2}, {0x05, "G", 2}, {0x04, "H", 2}, {0x26, "J", 2},
		{0x28, "K", 2}, {0x25, "L", 2}, {0x29, ";", 2}, {0x27, "'", 2},
		{0x24, "Ret", 5},
	},
	{
		{0x38, "Shift", 6}, {0x06, "Z", 2}, {0x07, "X", 2}, {0x08, "C", 2},
		{0x09, "V", 2}, {0x0B, "B", 2}, {0x2D, "N", 2}, {0x2E, "M", 2},
		{0x2B, ",", 2}, {0x2F, ".", 2}, {0x2C, "/", 2}, {0x3C, "Shift", 6},
	},
	{
		{0x31, "Space", 20},
	},
}

// spaceRowIndent lines the space bar up under the letter block.
const spaceRowIndent = 8

var fingerGrays = map[analysis.Finger]lipgloss.Style{
	analysis.LeftPinky:   lipgloss.NewStyle().Foreground(lipgloss.Color("#505050")),
	analysis.RightPinky:  lipgloss.NewStyle().Foreground(lipgloss.Color("#505050")),
	analysis.LeftRing:    lipgloss.NewStyle().Foreground(lipgloss.Color("#787878")),
	analysis.RightRing:   lipgloss.NewStyle().Foreground(lipgloss.Color("#787878")),
	analysis.LeftMiddle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
	analysis.RightMiddle: lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0")),
	analysis.LeftIndex:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C8C8C8")),
	analysis.RightIndex:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C8C8C8")),
	analysis.Thumb:       lipgloss.NewStyle().Foreground(lipgloss.Color("#DCDCDC")),
}

// heatChar maps a key's share of presses to a shade block, scaled so the
// hottest key renders solid.
func heatChar(pct, maxPct float64) byte {
	if maxPct <= 0 || pct <= 0 {
		return ' '
	}
	switch normalized := pct / maxPct * 100.0; {
	case normalized >= 75.0:
		return '#'
	case normalized >= 50.0:
		return '%'
	case normalized >= 25.0:
		return '+'
	default:
		return '.'
	}
}

// renderKeyboard draws the QWERTY block with a per-key heat shade. With
// showFingers, keys are grayed by their finger assignment.
func renderKeyboard(freq *analysis.FrequencyAnalysis, showFingers bool) string {
	pcts := make(map[uint32]float64, len(freq.KeyFrequencies))
	maxPct := 0.0
	for _, key := range freq.KeyFrequencies {
		pcts[key.KeyCode] = key.Percentage
		if key.Percentage > maxPct {
			maxPct = key.Percentage
		}
	}

	var b strings.Builder
	for _, row := range keyboardRows {
		if len(row) == 1 && row[0].code == 0x31 {
			b.WriteString(strings.Repeat(" ", spaceRowIndent))
		}
		for i, key := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			cell := key.label + string(heatChar(pcts[key.code], maxPct))
			if key.width >= 3 {
				cell = string(heatChar(pcts[key.code], maxPct)) + key.label
			}
			if len(cell) < key.width {
				cell += strings.Repeat(" ", key.width-len(cell))
			}
			b.WriteString(styleKey(key.code, pcts[key.code], maxPct, showFingers).Render(cell))
		}
		b.WriteByte('\n')
	}
	b.WriteString(headerStyle.Render(". low  + med  % high  # max"))
	return b.String()
}

func styleKey(code uint32, pct, maxPct float64, showFingers bool) lipgloss.Style {
	if showFingers {
		if finger, ok := analysis.FingerForKey(code); ok {
			return fingerGrays[finger]
		}
		return headerStyle
	}
	if maxPct > 0 && pct >= maxPct*0.5 {
		return cardValueStyle
	}
	return cardTitleStyle
}
