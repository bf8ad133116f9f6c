package export

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONLosslessRoundTripsRawBytes(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.Lossless = true

	var buf bytes.Buffer
	stats, err := JSONExporter{}.Export(conv, &buf, opts)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if stats.MessagesWritten != conv.Len() {
		t.Errorf("MessagesWritten = %d, want %d", stats.MessagesWritten, conv.Len())
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &arr); err != nil {
		t.Fatalf("lossless output is not a valid JSON array: %v", err)
	}
	if len(arr) != conv.Len() {
		t.Fatalf("array length = %d, want %d", len(arr), conv.Len())
	}
	var probe struct {
		UUID string `json:"uuid"`
	}
	if err := json.Unmarshal(arr[0], &probe); err != nil {
		t.Fatalf("decode first element: %v", err)
	}
	if probe.UUID != conv.Entry(0).UUID {
		t.Errorf("uuid = %q, want %q", probe.UUID, conv.Entry(0).UUID)
	}
}

func TestJSONStructuredOmitsSystemByDefault(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	if _, err := (JSONExporter{}).Export(conv, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode structured output: %v", err)
	}
	for _, m := range doc.Messages {
		if m.Role == "system" {
			t.Errorf("system message leaked despite IncludeSystem=false")
		}
	}
	if len(doc.Messages) != 3 {
		t.Errorf("messages = %d, want 3", len(doc.Messages))
	}
}
