package model

import (
	"encoding/json"
	"testing"
)

func TestUsageCacheCreationBreakdown(t *testing.T) {
	line := `{"input_tokens":100,"output_tokens":50,"cache_creation_input_tokens":20,"cache_read_input_tokens":5,"cache_creation":{"ephemeral_5m_input_tokens":15,"ephemeral_1h_input_tokens":5}}`
	var u Usage
	if err := json.Unmarshal([]byte(line), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.Ephemeral5mInputTokens == nil || *u.Ephemeral5mInputTokens != 15 {
		t.Errorf("Ephemeral5mInputTokens = %v, want 15", u.Ephemeral5mInputTokens)
	}
	if u.Ephemeral1hInputTokens == nil || *u.Ephemeral1hInputTokens != 5 {
		t.Errorf("Ephemeral1hInputTokens = %v, want 5", u.Ephemeral1hInputTokens)
	}

	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var u2 Usage
	if err := json.Unmarshal(out, &u2); err != nil {
		t.Fatalf("unmarshal round-trip: %v", err)
	}
	if *u2.Ephemeral5mInputTokens != 15 {
		t.Errorf("round-trip Ephemeral5mInputTokens = %v", u2.Ephemeral5mInputTokens)
	}
}

func TestMessageContentStringVsBlocks(t *testing.T) {
	var m Message
	if err := json.Unmarshal([]byte(`{"id":"m1","role":"user","content":"hi"}`), &m); err != nil {
		t.Fatalf("unmarshal string content: %v", err)
	}
	if !m.Content.IsString || m.Content.String != "hi" {
		t.Errorf("content = %+v", m.Content)
	}

	var m2 Message
	blockLine := `{"id":"m2","role":"assistant","content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn"}`
	if err := json.Unmarshal([]byte(blockLine), &m2); err != nil {
		t.Fatalf("unmarshal block content: %v", err)
	}
	if m2.Content.IsString || len(m2.Content.Blocks) != 1 {
		t.Errorf("content = %+v", m2.Content)
	}
	if m2.StopReason != StopEndTurn {
		t.Errorf("stop_reason = %q, want end_turn", m2.StopReason)
	}
}

func TestMessageContextManagementRoundTrip(t *testing.T) {
	line := `{"id":"m3","role":"assistant","content":[],"context_management":{"applied_edits":[{"type":"clear_tool_uses_20250919"}]}}`
	var m Message
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.ContextManagement == nil || len(m.ContextManagement.AppliedEdits) != 1 {
		t.Fatalf("context_management = %+v", m.ContextManagement)
	}
	if m.ContextManagement.AppliedEdits[0].Type != "clear_tool_uses_20250919" {
		t.Errorf("applied_edits[0].Type = %q", m.ContextManagement.AppliedEdits[0].Type)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m2 Message
	if err := json.Unmarshal(out, &m2); err != nil {
		t.Fatalf("unmarshal round-trip: %v", err)
	}
	if m2.ContextManagement.AppliedEdits[0].Type != "clear_tool_uses_20250919" {
		t.Errorf("round-trip applied_edits[0].Type = %q", m2.ContextManagement.AppliedEdits[0].Type)
	}
}
