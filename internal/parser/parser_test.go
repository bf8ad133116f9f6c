package parser

import (
	"strings"
	"testing"
)

func TestParseSingleUserMessage(t *testing.T) {
	line := `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","parentUuid":null,"sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/tmp","version":"2.0.70","isSidechain":false,"isTeammate":false,"message":{"id":"m1","role":"user","content":"hello"}}` + "\n"

	p := New(strings.NewReader(line), Lenient, "")
	entries, stats := Collect(p)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].UUID != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("uuid = %q", entries[0].UUID)
	}
	if stats.SchemaDetected != ProfileUnified {
		t.Errorf("schema = %v, want unified (2.0.70 is in 2.0.64-2.0.71)", stats.SchemaDetected)
	}
	if len(stats.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none", stats.Diagnostics)
	}
}

func TestParseTornWriteStrict(t *testing.T) {
	// 80 complete bytes of a valid line, then 20 bytes of a torn second line.
	firstLine := `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","sessionId":"s","timestamp":"2026-01-01T00:00:00Z","cwd":"/"}`
	torn := `{"type":"user"`
	source := firstLine + "\n" + torn

	p := New(strings.NewReader(source), Strict, "")
	var results []Result
	for {
		res, ok := p.Next()
		if !ok {
			break
		}
		results = append(results, res)
	}
	if len(results) < 2 {
		t.Fatalf("results = %d, want at least 2", len(results))
	}
	last := results[len(results)-1]
	if last.Err == nil {
		t.Fatalf("expected terminal error for torn write")
	}
	diag, ok := last.Err.(Diagnostic)
	if !ok || diag.Kind != DiagUnexpectedEOF {
		t.Errorf("last error = %v, want DiagUnexpectedEOF", last.Err)
	}
}

func TestParseTornWriteLenient(t *testing.T) {
	firstLine := `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","sessionId":"s","timestamp":"2026-01-01T00:00:00Z","cwd":"/"}`
	torn := `{"type":"user"`
	source := firstLine + "\n" + torn

	p := New(strings.NewReader(source), Lenient, "")
	entries, stats := Collect(p)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if stats.BytesTorn != int64(len(torn)) {
		t.Errorf("BytesTorn = %d, want %d", stats.BytesTorn, len(torn))
	}
	if len(stats.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none (torn bytes are not an error entry)", stats.Diagnostics)
	}
}

func TestParseDuplicateUUIDLenientKeepsFirst(t *testing.T) {
	line := `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","sessionId":"s","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"first"}}`
	dup := `{"type":"user","uuid":"11111111-1111-1111-1111-111111111111","sessionId":"s","timestamp":"2026-01-01T00:00:01Z","cwd":"/","message":{"id":"m2","role":"user","content":"second"}}`
	source := line + "\n" + dup + "\n"

	p := New(strings.NewReader(source), Lenient, "")
	entries, stats := Collect(p)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Message.Content.String != "first" {
		t.Errorf("kept entry content = %q, want \"first\"", entries[0].Message.Content.String)
	}
	if len(stats.Diagnostics) != 1 {
		t.Errorf("diagnostics = %d, want 1", len(stats.Diagnostics))
	}
}

func TestParseEmptyFile(t *testing.T) {
	p := New(strings.NewReader(""), Lenient, "")
	entries, stats := Collect(p)
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
	if stats.SchemaDetected != "" {
		t.Errorf("schema = %v, want unknown/empty", stats.SchemaDetected)
	}
}

func TestDetectSchemaProfileBands(t *testing.T) {
	tests := []struct {
		version string
		want    SchemaProfile
	}{
		{"", ProfileLegacy},
		{"1.9.9", ProfileLegacy},
		{"2.0.0", ProfileBase},
		{"2.0.29", ProfileBase},
		{"2.0.30", ProfileMid},
		{"2.0.55", ProfileMid},
		{"2.0.56", ProfileAgents},
		{"2.0.63", ProfileAgents},
		{"2.0.64", ProfileUnified},
		{"2.0.71", ProfileUnified},
		{"2.0.72", ProfileLatest},
		{"3.1.0", ProfileLatest},
	}
	for _, tt := range tests {
		if got := DetectSchemaProfile(tt.version); got != tt.want {
			t.Errorf("DetectSchemaProfile(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}
