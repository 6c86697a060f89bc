package report

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/keyscope/internal/analysis"
)

// AppUsage summarizes one application's share of key presses.
type AppUsage struct {
	Name       string
	Count      int64
	Percentage float64
}

// Summary holds storage-level totals for the stats command.
type Summary struct {
	TotalEvents int64
	PressCount  int64
	HasRange    bool
	StartMs     int64
	EndMs       int64
	TopApps     []AppUsage
}

// RenderSummary prints storage-level totals and top applications.
func RenderSummary(w io.Writer, s Summary) error {
	if s.TotalEvents == 0 {
		_, err := fmt.Fprintln(w, "No keystroke data recorded yet.")
		return err
	}

	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total events: %d\n", s.TotalEvents); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Key presses:  %d\n", s.PressCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Key releases: %d\n", s.TotalEvents-s.PressCount); err != nil {
		return err
	}

	if s.HasRange {
		start := time.UnixMilli(s.StartMs).UTC()
		end := time.UnixMilli(s.EndMs).UTC()
		days := int64(end.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		if _, err := fmt.Fprintf(w, "First event:  %s\n", start.Format("2006-01-02 15:04:05 UTC")); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Last event:   %s\n", end.Format("2006-01-02 15:04:05 UTC")); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Average:      %d presses/day\n", s.PressCount/days); err != nil {
			return err
		}
	}

	if len(s.TopApps) > 0 {
		if _, err := fmt.Fprintln(w, "\nTop Applications"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(s.TopApps))
		for i, app := range s.TopApps {
			rows = append(rows, []string{
				fmt.Sprintf("%d.", i+1),
				app.Name,
				fmt.Sprintf("%d", app.Count),
				fmt.Sprintf("%.1f%%", app.Percentage),
			})
		}
		if err := writeTable(w, []string{"#", "Application", "Presses", "Share"}, rows, map[int]bool{2: true, 3: true}); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderFrequency prints ranked key, bigram, and trigram tables.
func RenderFrequency(w io.Writer, freq *analysis.FrequencyAnalysis, top int, detailed bool) error {
	if _, err := fmt.Fprintf(w, "Total key presses: %d\n\n", freq.TotalPresses); err != nil {
		return err
	}

	keyRows := make([][]string, 0, top)
	for i, key := range freq.TopKeys(top) {
		row := []string{fmt.Sprintf("%d.", i+1), key.KeyName}
		if detailed {
			row = append(row, fmt.Sprintf("0x%02X", key.KeyCode))
		}
		row = append(row, fmt.Sprintf("%d", key.Count), fmt.Sprintf("%.2f%%", key.Percentage))
		keyRows = append(keyRows, row)
	}
	if err := writeSection(w, fmt.Sprintf("Top %d Keys", top), keyHeaders("Key", detailed), keyRows, detailed); err != nil {
		return err
	}

	bigramRows := make([][]string, 0, top)
	for i, bigram := range freq.TopBigrams(top) {
		row := []string{fmt.Sprintf("%d.", i+1), bigram.Display}
		if detailed {
			row = append(row, fmt.Sprintf("0x%02X->0x%02X", bigram.FirstKey, bigram.SecondKey))
		}
		row = append(row, fmt.Sprintf("%d", bigram.Count), fmt.Sprintf("%.2f%%", bigram.Percentage))
		bigramRows = append(bigramRows, row)
	}
	if err := writeSection(w, fmt.Sprintf("Top %d Bigrams", top), keyHeaders("Bigram", detailed), bigramRows, detailed); err != nil {
		return err
	}

	trigramRows := make([][]string, 0, top)
	for i, trigram := range freq.TopTrigrams(top) {
		row := []string{fmt.Sprintf("%d.", i+1), trigram.Display}
		if detailed {
			row = append(row, fmt.Sprintf("0x%02X->0x%02X->0x%02X", trigram.Keys[0], trigram.Keys[1], trigram.Keys[2]))
		}
		row = append(row, fmt.Sprintf("%d", trigram.Count), fmt.Sprintf("%.2f%%", trigram.Percentage))
		trigramRows = append(trigramRows, row)
	}
	return writeSection(w, fmt.Sprintf("Top %d Trigrams", top), keyHeaders("Trigram", detailed), trigramRows, detailed)
}

// RenderTiming prints inter-key latency and hold-duration statistics.
func RenderTiming(w io.Writer, timing *analysis.TimingAnalysis, top int, detailed bool) error {
	overall := timing.OverallInterKey
	if _, err := fmt.Fprintln(w, "Inter-Key Timing"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Samples: %d\n", overall.Count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mean:    %.1fms\n", overall.MeanMs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Median:  %dms\n", overall.MedianMs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "P90:     %dms\n", overall.P90Ms); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "P95:     %dms\n", overall.P95Ms); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "P99:     %dms\n\n", overall.P99Ms); err != nil {
		return err
	}

	if detailed && len(timing.PerKeyInterKey) > 0 {
		pairRows := make([][]string, 0, top)
		for i, pair := range timing.TopInterKeyPairs(top) {
			pairRows = append(pairRows, []string{
				fmt.Sprintf("%d.", i+1),
				fmt.Sprintf("0x%02X->0x%02X", pair.FromKey, pair.ToKey),
				fmt.Sprintf("%.1f", pair.MeanMs),
				fmt.Sprintf("%d", pair.MedianMs),
				fmt.Sprintf("%d", pair.P95Ms),
				fmt.Sprintf("%d", len(pair.IntervalsMs)),
			})
		}
		if _, err := fmt.Fprintf(w, "Top %d Key-Pair Timings\n", top); err != nil {
			return err
		}
		headers := []string{"#", "Pair", "Mean (ms)", "Median (ms)", "P95 (ms)", "N"}
		if err := writeTable(w, headers, pairRows, map[int]bool{2: true, 3: true, 4: true, 5: true}); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}

	holdRows := make([][]string, 0, top)
	for i, hold := range timing.TopHoldDurations(top) {
		row := []string{fmt.Sprintf("%d.", i+1), hold.KeyName}
		if detailed {
			row = append(row, fmt.Sprintf("0x%02X", hold.KeyCode))
		}
		row = append(row,
			fmt.Sprintf("%.1f", hold.MeanMs),
			fmt.Sprintf("%d", hold.MedianMs),
			fmt.Sprintf("%d", hold.P95Ms),
			fmt.Sprintf("%d", hold.SampleCount),
		)
		holdRows = append(holdRows, row)
	}
	if _, err := fmt.Fprintf(w, "Top %d Hold Durations\n", top); err != nil {
		return err
	}
	headers := []string{"#", "Key", "Mean (ms)", "Median (ms)", "P95 (ms)", "N"}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	if detailed {
		headers = []string{"#", "Key", "Code", "Mean (ms)", "Median (ms)", "P95 (ms)", "N"}
		rightAlign = map[int]bool{3: true, 4: true, 5: true, 6: true}
	}
	if err := writeTable(w, headers, holdRows, rightAlign); err != nil {
		return err
	}

	if detailed {
		cfg := timing.FilterConfig
		if _, err := fmt.Fprintln(w, "\nFilter Config"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Max gap:  %dms\n", cfg.MaxGapMs); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Min hold: %dms\n", cfg.MinHoldMs); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Max hold: %dms\n", cfg.MaxHoldMs); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func keyHeaders(label string, detailed bool) []string {
	if detailed {
		return []string{"#", label, "Code", "Count", "Share"}
	}
	return []string{"#", label, "Count", "Share"}
}

func writeSection(w io.Writer, title string, headers []string, rows [][]string, detailed bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "(no data)"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "")
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true}
	if detailed {
		rightAlign = map[int]bool{3: true, 4: true}
	}
	if err := writeTable(w, headers, rows, rightAlign); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
