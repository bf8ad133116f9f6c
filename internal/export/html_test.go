package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestHTMLExportIsSelfContainedAndThemed(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.Theme = "dark"
	opts.TOC = true
	var buf bytes.Buffer
	stats, err := HTMLExporter{}.Export(conv, &buf, opts)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "http://") || strings.Contains(out, "https://") {
		t.Errorf("HTML output references an external resource: %s", out)
	}
	if !strings.Contains(out, "<nav>") {
		t.Errorf("missing TOC despite opts.TOC=true")
	}
	if stats.MessagesWritten != 3 {
		t.Errorf("MessagesWritten = %d, want 3", stats.MessagesWritten)
	}
}

func TestHTMLExportEscapesUserText(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	if _, err := (HTMLExporter{}).Export(conv, &buf, DefaultOptions()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("unescaped content in HTML output")
	}
}
