package store

import (
	"encoding/json"
	"path/filepath"
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

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "clio.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRecordsSchemaVersion(t *testing.T) {
	s := openTestStore(t)
	var version string
	if err := s.conn.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version); err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema_version = %q, want %q", version, SchemaVersion)
	}
}

func TestWriteSessionSkipsEmptyConversation(t *testing.T) {
	s := openTestStore(t)
	conv := reconstruct.Build(nil)
	if err := s.WriteSession(SessionMeta{SessionID: "empty"}, conv); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}
	var count int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("sessions count = %d, want 0 for a zero-entry conversation", count)
	}
}

func TestWriteSessionPopulatesMessagesAndUsage(t *testing.T) {
	u := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hello"}}`)
	a := mustEntry(t, `{"type":"assistant","uuid":"00000000-0000-0000-0000-000000000002","parentUuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:05Z","cwd":"/","message":{"id":"m2","role":"assistant","model":"claude-sonnet-4-20250514","content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":10,"output_tokens":5,"cache_creation_input_tokens":0,"cache_read_input_tokens":0}}}`)
	conv := reconstruct.Build([]*model.Entry{u, a})

	s := openTestStore(t)
	meta := SessionMeta{SessionID: "s1", ProjectPath: "/home/user/project"}
	if err := s.WriteSession(meta, conv); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}

	var messageCount int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM messages WHERE session_id = ?`, "s1").Scan(&messageCount); err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if messageCount != 2 {
		t.Errorf("message count = %d, want 2", messageCount)
	}

	var inputTokens int64
	err := s.conn.QueryRow(`
		SELECT u.input_tokens FROM usage u
		JOIN messages m ON m.id = u.message_id
		WHERE m.uuid = ?
	`, a.UUID).Scan(&inputTokens)
	if err != nil {
		t.Fatalf("query usage: %v", err)
	}
	if inputTokens != 10 {
		t.Errorf("input_tokens = %d, want 10", inputTokens)
	}
}

func TestWriteSessionIsIdempotentOnReimport(t *testing.T) {
	u := mustEntry(t, `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hello"}}`)
	conv := reconstruct.Build([]*model.Entry{u})

	s := openTestStore(t)
	meta := SessionMeta{SessionID: "s1", ProjectPath: "/p"}
	if err := s.WriteSession(meta, conv); err != nil {
		t.Fatalf("first WriteSession: %v", err)
	}
	if err := s.WriteSession(meta, conv); err != nil {
		t.Fatalf("second WriteSession: %v", err)
	}

	var count int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM messages WHERE uuid = ?`, u.UUID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("message rows after reimport = %d, want 1 (ON CONFLICT DO NOTHING)", count)
	}
}
