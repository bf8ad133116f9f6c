package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

func mustEntry(t *testing.T, line string) *model.Entry {
	t.Helper()
	var e model.Entry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	e.Raw = []byte(line)
	return &e
}

func sampleConversation(t *testing.T) *reconstruct.Conversation {
	u := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hello there"}}`)
	a := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:05Z","cwd":"/","message":{"id":"m2","role":"assistant","model":"claude-sonnet-4-20250514","content":[{"type":"text","text":"hi back"},{"type":"tool_use","id":"toolu_1","name":"Bash","input":{"command":"ls"}}]}}`)
	r := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000003","parentUuid":"00000000-0000-0000-0000-000000000002","sessionId":"s1","timestamp":"2026-01-01T00:00:06Z","cwd":"/","message":{"id":"m3","role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_1","content":"a.go\nb.go","is_error":false}]}}`)
	return reconstruct.Build([]*model.Entry{u, a, r})
}

func TestMarkdownExportIncludesRolesAndToolCall(t *testing.T) {
	conv := sampleConversation(t)
	var buf bytes.Buffer
	stats, err := MarkdownExporter{}.Export(conv, &buf, DefaultOptions())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "USER") || !strings.Contains(out, "ASSISTANT") {
		t.Errorf("missing role headers: %s", out)
	}
	if !strings.Contains(out, "Bash") {
		t.Errorf("missing tool call name: %s", out)
	}
	if stats.MessagesWritten != 3 {
		t.Errorf("MessagesWritten = %d, want 3", stats.MessagesWritten)
	}
}

func TestMarkdownExportOmitsToolsWhenDisabled(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.IncludeTools = false
	opts.IncludeToolResults = false
	var buf bytes.Buffer
	if _, err := (MarkdownExporter{}).Export(conv, &buf, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(buf.String(), "Bash") {
		t.Errorf("tool call leaked despite IncludeTools=false")
	}
}

func TestMarkdownExportMainThreadOnly(t *testing.T) {
	conv := sampleConversation(t)
	opts := DefaultOptions()
	opts.MainThreadOnly = true
	var buf bytes.Buffer
	stats, err := MarkdownExporter{}.Export(conv, &buf, opts)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if stats.MessagesWritten != len(conv.MainThread()) {
		t.Errorf("MessagesWritten = %d, want %d", stats.MessagesWritten, len(conv.MainThread()))
	}
}
