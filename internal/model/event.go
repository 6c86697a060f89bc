// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventKind distinguishes key presses from releases.
type EventKind int

const (
	// Press marks a key-down event.
	Press EventKind = iota
	// Release marks a key-up event.
	Release
)

// String returns the lowercase wire name of the kind.
func (k EventKind) String() string {
	if k == Release {
		return "release"
	}
	return "press"
}

// ParseEventKind parses a lowercase wire name into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "press":
		return Press, nil
	case "release":
		return Release, nil
	}
	return Press, fmt.Errorf("unknown event kind %q", s)
}

// MarshalJSON implements json.Marshaler.
func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *EventKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseEventKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Modifier is a modifier key active during an event.
type Modifier string

// Modifier values use the lowercase wire names.
const (
	ModShift    Modifier = "shift"
	ModControl  Modifier = "control"
	ModAlt      Modifier = "alt"
	ModCommand  Modifier = "command"
	ModCapsLock Modifier = "capslock"
	ModFunction Modifier = "function"
)

// JoinModifiers renders modifiers as a single separator-joined string.
func JoinModifiers(mods []Modifier, sep string) string {
	if len(mods) == 0 {
		return ""
	}
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = string(m)
	}
	return strings.Join(parts, sep)
}

// KeystrokeEvent is a single captured key event. Events are immutable once
// created; sequences handed to analysis are expected to be ordered by
// non-decreasing timestamp.
type KeystrokeEvent struct {
	Timestamp   int64      `json:"timestamp"`
	KeyCode     uint32     `json:"key_code"`
	Kind        EventKind  `json:"event_type"`
	Modifiers   []Modifier `json:"modifiers"`
	Application string     `json:"application"`
}

// NewKeystrokeEvent builds an event stamped with the current wall clock.
func NewKeystrokeEvent(keyCode uint32, kind EventKind, modifiers []Modifier, application string) KeystrokeEvent {
	return KeystrokeEvent{
		Timestamp:   time.Now().UnixMilli(),
		KeyCode:     keyCode,
		Kind:        kind,
		Modifiers:   modifiers,
		Application: application,
	}
}
