package export

import (
	"bytes"
	"encoding/xml"
	"testing"
)

func TestXMLExportParsesAsWellFormedXML(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	stats, err := XMLExporter{}.Export(conv, &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	type message struct {
		UUID string `xml:"uuid,attr"`
		Role string `xml:"role,attr"`
	}
	type session struct {
		Messages []message `xml:"message"`
	}
	var doc session
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("XML output not well-formed: %v", err)
	}
	if len(doc.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(doc.Messages))
	}
	if stats.MessagesWritten != 3 {
		t.Errorf("MessagesWritten = %d, want 3", stats.MessagesWritten)
	}
}
