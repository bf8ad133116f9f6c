package export

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestCSVExportMessagesDialect(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	stats, err := CSVExporter{}.Export(conv, &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse CSV: %v", err)
	}
	if len(rows) != 4 { // header + 3 messages
		t.Fatalf("row count = %d, want 4", len(rows))
	}
	if rows[0][0] != "uuid" {
		t.Errorf("header = %v", rows[0])
	}
	if stats.MessagesWritten != 3 {
		t.Errorf("MessagesWritten = %d, want 3", stats.MessagesWritten)
	}
}

func TestCSVExportToolCallsDialect(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.Dialect = "tool_calls"
	var buf bytes.Buffer
	if _, err := (CSVExporter{}).Export(conv, &buf, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse CSV: %v", err)
	}
	if len(rows) != 2 { // header + one tool pair
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	if rows[1][2] != "Bash" {
		t.Errorf("tool_name = %q, want Bash", rows[1][2])
	}
	if rows[1][3] != "false" {
		t.Errorf("is_error = %q, want false", rows[1][3])
	}
}
