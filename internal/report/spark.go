package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/keyscope/internal/model"
)

const sparkChars = " .:-=+*#%@"

const (
	terminalWidthBackup = 80
	minBarWidth         = 10
	hourLabelWidth      = 4  // "23h "
	barCountReserve     = 12 // " 12345678901"
)

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// HourlyActivity buckets press counts by UTC hour of day, 24 values.
func HourlyActivity(events []model.KeystrokeEvent) []float64 {
	buckets := make([]float64, 24)
	for _, e := range events {
		if e.Kind != model.Press {
			continue
		}
		hour := (e.Timestamp / (60 * 60 * 1000)) % 24
		if hour < 0 {
			hour += 24
		}
		buckets[hour]++
	}
	return buckets
}

// DailyActivity buckets press counts by UTC day, one value per day from
// the first to the last event inclusive. Days without presses are zero.
func DailyActivity(events []model.KeystrokeEvent) []float64 {
	var firstDay, lastDay int64
	found := false
	for _, e := range events {
		if e.Kind != model.Press {
			continue
		}
		day := utcDay(e.Timestamp)
		if !found || day < firstDay {
			firstDay = day
		}
		if !found || day > lastDay {
			lastDay = day
		}
		found = true
	}
	if !found {
		return nil
	}

	buckets := make([]float64, lastDay-firstDay+1)
	for _, e := range events {
		if e.Kind != model.Press {
			continue
		}
		buckets[utcDay(e.Timestamp)-firstDay]++
	}
	return buckets
}

func utcDay(timestampMs int64) int64 {
	const dayMs = 24 * 60 * 60 * 1000
	if timestampMs < 0 {
		return (timestampMs - dayMs + 1) / dayMs
	}
	return timestampMs / dayMs
}

// TerminalWidth returns the current terminal width or a fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// BarWidthFor computes a bar width that fits within the total available
// width, leaving room for the hour label and the count column.
func BarWidthFor(totalWidth int) int {
	barWidth := totalWidth - hourLabelWidth - barCountReserve
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	return barWidth
}

// RenderHourlyBars writes a per-hour bar chart of press activity. Hours
// are UTC, bars are scaled to the busiest hour.
func RenderHourlyBars(w io.Writer, events []model.KeystrokeEvent, totalWidth int) error {
	buckets := HourlyActivity(events)
	maxVal := 0.0
	for _, v := range buckets {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return nil
	}

	barWidth := BarWidthFor(totalWidth)
	if _, err := fmt.Fprintln(w, "Activity by Hour (UTC)"); err != nil {
		return err
	}
	for hour, v := range buckets {
		n := int(math.Round(v / maxVal * float64(barWidth)))
		if v > 0 && n == 0 {
			n = 1
		}
		if _, err := fmt.Fprintf(w, "%02dh %s %d\n", hour, strings.Repeat("#", n), int(v)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
