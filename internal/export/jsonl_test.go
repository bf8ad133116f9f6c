package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestJSONLExportReplaysRawLinesVerbatim(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	stats, err := JSONLExporter{}.Export(conv, &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != conv.Len() {
		t.Fatalf("line count = %d, want %d", len(lines), conv.Len())
	}
	for i, line := range lines {
		if line != string(conv.Entry(i).Raw) {
			t.Errorf("line %d = %q, want %q", i, line, conv.Entry(i).Raw)
		}
	}
	if stats.MessagesWritten != conv.Len() {
		t.Errorf("MessagesWritten = %d, want %d", stats.MessagesWritten, conv.Len())
	}
}
