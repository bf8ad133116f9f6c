package model

import (
	"encoding/json"
	"testing"
)

func TestContentBlockToolResultErrorState(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ErrorState
	}{
		{"explicit false", `{"type":"tool_result","tool_use_id":"toolu_A","content":"ok","is_error":false}`, ErrorFalse},
		{"explicit true", `{"type":"tool_result","tool_use_id":"toolu_A","content":"fail","is_error":true}`, ErrorTrue},
		{"absent", `{"type":"tool_result","tool_use_id":"toolu_A","content":"ok"}`, ErrorAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cb ContentBlock
			if err := json.Unmarshal([]byte(tt.line), &cb); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if cb.Kind != BlockToolResult {
				t.Fatalf("kind = %v, want tool_result", cb.Kind)
			}
			if cb.ToolResult.IsError != tt.want {
				t.Errorf("IsError = %v, want %v", cb.ToolResult.IsError, tt.want)
			}

			out, err := json.Marshal(cb)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var roundTrip ContentBlock
			if err := json.Unmarshal(out, &roundTrip); err != nil {
				t.Fatalf("unmarshal round-trip: %v", err)
			}
			if roundTrip.ToolResult.IsError != tt.want {
				t.Errorf("round-trip IsError = %v, want %v", roundTrip.ToolResult.IsError, tt.want)
			}
		})
	}
}

func TestContentBlockUnknownFieldsRoundTrip(t *testing.T) {
	line := `{"type":"text","text":"hello","futureField":{"nested":1}}`
	var cb ContentBlock
	if err := json.Unmarshal([]byte(line), &cb); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cb.Text.Extra.Len() != 1 {
		t.Fatalf("extra fields = %d, want 1", cb.Text.Extra.Len())
	}

	out, err := json.Marshal(cb)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(out, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if _, ok := generic["futureField"]; !ok {
		t.Errorf("futureField dropped on round-trip: %s", out)
	}
}

func TestToolUseMCPDecomposition(t *testing.T) {
	tu := &ToolUseBlock{Name: "mcp__github__create_issue"}
	server, ok := tu.MCPServer()
	if !ok || server != "github" {
		t.Errorf("MCPServer() = %q, %v, want \"github\", true", server, ok)
	}
	method, ok := tu.MCPMethod()
	if !ok || method != "create_issue" {
		t.Errorf("MCPMethod() = %q, %v, want \"create_issue\", true", method, ok)
	}

	plain := &ToolUseBlock{Name: "Read"}
	if plain.IsMCPTool() {
		t.Errorf("IsMCPTool() = true for plain tool name")
	}
}

func TestToolUseServerToolPrefix(t *testing.T) {
	server := &ToolUseBlock{ID: "srvtoolu_abc"}
	if !server.IsServerTool() {
		t.Errorf("IsServerTool() = false, want true")
	}
	client := &ToolUseBlock{ID: "toolu_abc"}
	if client.IsServerTool() {
		t.Errorf("IsServerTool() = true, want false")
	}
}

func TestToolResultContentStringVsBlocks(t *testing.T) {
	var cb ContentBlock
	if err := json.Unmarshal([]byte(`{"type":"tool_result","tool_use_id":"x","content":"plain"}`), &cb); err != nil {
		t.Fatalf("unmarshal string content: %v", err)
	}
	if cb.ToolResult.Content.Kind != ToolResultContentString || cb.ToolResult.Content.String != "plain" {
		t.Errorf("string content = %+v", cb.ToolResult.Content)
	}

	blockLine := `{"type":"tool_result","tool_use_id":"x","content":[{"type":"text","text":"a"}]}`
	var cb2 ContentBlock
	if err := json.Unmarshal([]byte(blockLine), &cb2); err != nil {
		t.Fatalf("unmarshal block content: %v", err)
	}
	if cb2.ToolResult.Content.Kind != ToolResultContentBlocks || len(cb2.ToolResult.Content.Blocks) != 1 {
		t.Errorf("block content = %+v", cb2.ToolResult.Content)
	}
}
