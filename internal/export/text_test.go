package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestTextExportWrapsAtLineWidth(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.LineWidth = 20
	var buf bytes.Buffer
	if _, err := (TextExporter{}).Export(conv, &buf, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > 40 { // separators and headers exceed width; body lines should not
			t.Errorf("line exceeds reasonable width: %q", line)
		}
	}
}

func TestTextExportSeparatorIsASCII(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	if _, err := (TextExporter{}).Export(conv, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), textSeparator) {
		t.Errorf("missing ASCII separator")
	}
}
