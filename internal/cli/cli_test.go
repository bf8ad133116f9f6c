package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeSessionFile(t *testing.T, root, projectID, fileName string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(root, projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return path
}

func TestFindSessionLocatesByID(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "-home-user-proj", "s1.jsonl",
		`{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hello"}}`,
	)

	session, err := findSession(root, "s1")
	if err != nil {
		t.Fatalf("findSession: %v", err)
	}
	if session.ID != "s1" {
		t.Errorf("ID = %q, want s1", session.ID)
	}
}

func TestFindSessionReturnsErrorForUnknownID(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "-home-user-proj"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := findSession(root, "nope"); err == nil {
		t.Fatal("expected error for unknown session id")
	}
}

func TestParseStoreTimestampHandlesRFC3339Nano(t *testing.T) {
	got, err := parseStoreTimestamp("2026-01-01T00:00:00.000000001Z")
	if err != nil {
		t.Fatalf("parseStoreTimestamp: %v", err)
	}
	if got.Year() != 2026 {
		t.Errorf("Year() = %d, want 2026", got.Year())
	}
}

func TestRunListProjectsRendersDiscoveredProjects(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "-home-user-proj", "s1.jsonl", `{"type":"user","uuid":"00000000-0000-0000-0000-000000000001","sessionId":"s1","timestamp":"2026-01-01T00:00:00Z","cwd":"/","message":{"id":"m1","role":"user","content":"hi"}}`)

	rootFlag = root
	defer func() { rootFlag = "" }()

	var out bytes.Buffer
	cmd := listProjectsCmd
	cmd.SetOut(&out)
	if err := runListProjects(cmd, nil); err != nil {
		t.Fatalf("runListProjects: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected non-empty table output")
	}
}
