package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Key", "Count", "Share"}
	rows := [][]string{
		{"A", "120", "45.00%"},
		{"Backspace", "3", "1.13%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Key       Count  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "A           120 45.00%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Backspace     3  1.13%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty table, got %v", lines)
	}
}
