package search

import (
	"encoding/json"
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
	return &e
}

func buildConv(t *testing.T) *reconstruct.Conversation {
	u := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"please fix the retry logic in worker.go"}}`)
	a := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:05Z","cwd":"/","message":{"id":"m2","role":"assistant","content":[{"type":"text","text":"Sure, updating the backoff schedule."}]}}`)
	return reconstruct.Build([]*model.Entry{u, a})
}

func TestRunSubstringMatchIsCaseInsensitive(t *testing.T) {
	conv := buildConv(t)
	matches, err := Run(conv, Query{Pattern: "RETRY"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 || matches[0].Role != "user" {
		t.Fatalf("matches = %+v, want one user match", matches)
	}
}

func TestRunRegexMatch(t *testing.T) {
	conv := buildConv(t)
	matches, err := Run(conv, Query{Pattern: `backoff \w+`, Regex: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %+v, want one match", matches)
	}
}

func TestRunRoleFilter(t *testing.T) {
	conv := buildConv(t)
	matches, err := Run(conv, Query{Pattern: "", Role: "assistant"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 || matches[0].Role != "assistant" {
		t.Fatalf("matches = %+v, want one assistant match", matches)
	}
}

func TestRunInvalidRegexReturnsError(t *testing.T) {
	conv := buildConv(t)
	if _, err := Run(conv, Query{Pattern: "(", Regex: true}); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestStoreRejectsEmptyQuery(t *testing.T) {
	if _, err := Store(nil, "   ", 10); err == nil {
		t.Fatal("expected error for empty query")
	}
}
