// Package export reads and writes keystroke event files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/keyscope/internal/model"
)

var csvHeader = []string{"timestamp", "key_code", "key_name", "event_type", "modifiers", "application"}

// WriteCSV writes events as CSV with a header row.
func WriteCSV(w io.Writer, events []model.KeystrokeEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, event := range events {
		record := []string{
			strconv.FormatInt(event.Timestamp, 10),
			strconv.FormatUint(uint64(event.KeyCode), 10),
			model.KeyName(event.KeyCode),
			event.Kind.String(),
			model.JoinModifiers(event.Modifiers, ";"),
			event.Application,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DateRange is the timestamp span of an export.
type DateRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Metadata describes a JSON export.
type Metadata struct {
	ExportDate  string     `json:"export_date"`
	TotalEvents int        `json:"total_events"`
	DateRange   *DateRange `json:"date_range"`
}

type jsonEvent struct {
	Timestamp   int64            `json:"timestamp"`
	KeyCode     uint32           `json:"key_code"`
	KeyName     string           `json:"key_name"`
	Kind        model.EventKind  `json:"event_type"`
	Modifiers   []model.Modifier `json:"modifiers"`
	Application string           `json:"application"`
}

type jsonExport struct {
	Metadata Metadata    `json:"metadata"`
	Events   []jsonEvent `json:"events"`
}

// WriteJSON writes events with export metadata as indented JSON.
func WriteJSON(w io.Writer, events []model.KeystrokeEvent) error {
	out := jsonExport{
		Metadata: Metadata{
			ExportDate:  time.Now().UTC().Format(time.RFC3339),
			TotalEvents: len(events),
		},
		Events: make([]jsonEvent, 0, len(events)),
	}
	if len(events) > 0 {
		out.Metadata.DateRange = &DateRange{
			Start: events[0].Timestamp,
			End:   events[len(events)-1].Timestamp,
		}
	}
	for _, event := range events {
		out.Events = append(out.Events, jsonEvent{
			Timestamp:   event.Timestamp,
			KeyCode:     event.KeyCode,
			KeyName:     model.KeyName(event.KeyCode),
			Kind:        event.Kind,
			Modifiers:   event.Modifiers,
			Application: event.Application,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadJSON reads events from a JSON export or a bare event array. Extra
// fields like key_name are ignored.
func ReadJSON(r io.Reader) ([]model.KeystrokeEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var wrapped struct {
		Events []model.KeystrokeEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Events != nil {
		return wrapped.Events, nil
	}

	var events []model.KeystrokeEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}
