package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDetectActivityThresholds(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want ActivityState
	}{
		{"just written", 1 * time.Second, PossiblyActive},
		{"at 5s boundary", 5 * time.Second, PossiblyActive},
		{"at 30s", 30 * time.Second, RecentlyActive},
		{"at 60s boundary", 60 * time.Second, RecentlyActive},
		{"stale", 5 * time.Minute, Inactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectActivity(now.Add(-tt.age), now)
			if got != tt.want {
				t.Errorf("DetectActivity(age=%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestSubagentFilePatternDetection(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "11111111-1111-1111-1111-111111111111.jsonl")
	agentPath := filepath.Join(dir, "agent-3e5f.jsonl")

	if err := os.WriteFile(mainPath, []byte(`{"type":"user","agentId":"3e5f","timestamp":"2026-01-01T00:00:00Z"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(agentPath, []byte(`{"type":"user","agentId":"3e5f","timestamp":"2026-01-01T00:00:01Z"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sessions, err := ListSessions(Project{Dir: dir, ID: "-home-x"})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	var agentSession *Session
	for i := range sessions {
		if sessions[i].IsSubagent {
			agentSession = &sessions[i]
		}
	}
	if agentSession == nil {
		t.Fatal("no subagent session detected")
	}
	if agentSession.AgentHash != "3e5f" {
		t.Errorf("AgentHash = %q, want 3e5f", agentSession.AgentHash)
	}

	parents := ResolveSubagentParents(sessions)
	parentID, ok := parents["3e5f"]
	if !ok {
		t.Fatal("no parent resolved for agent 3e5f")
	}
	if parentID != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("parent = %q, want main session id", parentID)
	}
}
