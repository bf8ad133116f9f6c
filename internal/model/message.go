package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StopReason is the assistant's reason for ending a turn.
type StopReason string

const (
	StopToolUse       StopReason = "tool_use"
	StopEndTurn       StopReason = "end_turn"
	StopMaxTokens     StopReason = "max_tokens"
	StopSequence      StopReason = "stop_sequence"
)

// Usage carries token accounting for one message, including cache
// breakdowns and the ephemeral cache-write windows the assistant bills
// separately (5 minute vs 1 hour retention).
type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64

	Ephemeral5mInputTokens *int64
	Ephemeral1hInputTokens *int64

	ServerToolUse *ServerToolUse
	ServiceTier   string

	Extra UnknownFields
}

// ServerToolUse counts server-executed tool invocations billed as part
// of usage (e.g. web search), distinct from client tool_use blocks.
type ServerToolUse struct {
	WebSearchRequests int64
	Extra             UnknownFields
}

func (u *Usage) UnmarshalJSON(data []byte) error {
	var raw struct {
		InputTokens              int64           `json:"input_tokens"`
		OutputTokens             int64           `json:"output_tokens"`
		CacheCreationInputTokens int64           `json:"cache_creation_input_tokens"`
		CacheReadInputTokens     int64           `json:"cache_read_input_tokens"`
		CacheCreation            json.RawMessage `json:"cache_creation"`
		ServerToolUse            json.RawMessage `json:"server_tool_use"`
		ServiceTier              string          `json:"service_tier"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("usage: %w", err)
	}

	*u = Usage{
		InputTokens:              raw.InputTokens,
		OutputTokens:             raw.OutputTokens,
		CacheCreationInputTokens: raw.CacheCreationInputTokens,
		CacheReadInputTokens:     raw.CacheReadInputTokens,
		ServiceTier:              raw.ServiceTier,
	}

	if len(raw.CacheCreation) > 0 && string(bytes.TrimSpace(raw.CacheCreation)) != "null" {
		var cc struct {
			Ephemeral5mInputTokens *int64 `json:"ephemeral_5m_input_tokens"`
			Ephemeral1hInputTokens *int64 `json:"ephemeral_1h_input_tokens"`
		}
		if err := json.Unmarshal(raw.CacheCreation, &cc); err != nil {
			return fmt.Errorf("usage.cache_creation: %w", err)
		}
		u.Ephemeral5mInputTokens = cc.Ephemeral5mInputTokens
		u.Ephemeral1hInputTokens = cc.Ephemeral1hInputTokens
	}

	if len(raw.ServerToolUse) > 0 && string(bytes.TrimSpace(raw.ServerToolUse)) != "null" {
		var stu struct {
			WebSearchRequests int64 `json:"web_search_requests"`
		}
		if err := json.Unmarshal(raw.ServerToolUse, &stu); err != nil {
			return fmt.Errorf("usage.server_tool_use: %w", err)
		}
		extra, err := collectUnknown(raw.ServerToolUse, map[string]bool{"web_search_requests": true})
		if err != nil {
			return err
		}
		u.ServerToolUse = &ServerToolUse{WebSearchRequests: stu.WebSearchRequests, Extra: extra}
	}

	extra, err := collectUnknown(data, map[string]bool{
		"input_tokens": true, "output_tokens": true, "cache_creation_input_tokens": true,
		"cache_read_input_tokens": true, "cache_creation": true, "server_tool_use": true,
		"service_tier": true,
	})
	if err != nil {
		return err
	}
	u.Extra = extra
	return nil
}

func (u Usage) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"input_tokens":%d,"output_tokens":%d,"cache_creation_input_tokens":%d,"cache_read_input_tokens":%d`,
		u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens)

	if u.Ephemeral5mInputTokens != nil || u.Ephemeral1hInputTokens != nil {
		cc, err := json.Marshal(struct {
			Ephemeral5mInputTokens *int64 `json:"ephemeral_5m_input_tokens,omitempty"`
			Ephemeral1hInputTokens *int64 `json:"ephemeral_1h_input_tokens,omitempty"`
		}{u.Ephemeral5mInputTokens, u.Ephemeral1hInputTokens})
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"cache_creation":`)
		buf.Write(cc)
	}

	if u.ServerToolUse != nil {
		buf.WriteString(`,"server_tool_use":{"web_search_requests":`)
		fmt.Fprintf(&buf, "%d", u.ServerToolUse.WebSearchRequests)
		if err := u.ServerToolUse.Extra.WriteJSON(&buf, map[string]bool{"web_search_requests": true}); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}

	if u.ServiceTier != "" {
		buf.WriteString(`,"service_tier":`)
		buf.Write(mustJSON(u.ServiceTier))
	}

	if err := u.Extra.WriteJSON(&buf, map[string]bool{
		"input_tokens": true, "output_tokens": true, "cache_creation_input_tokens": true,
		"cache_read_input_tokens": true, "cache_creation": true, "server_tool_use": true,
		"service_tier": true,
	}); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Container describes a code-execution sandbox attached to a message.
type Container struct {
	ID        string
	ExpiresAt string
	Extra     UnknownFields
}

// ContextEdit is one entry of a context_management edit list (e.g. a
// clear-tool-uses compaction performed mid-turn by the assistant).
type ContextEdit struct {
	Type  string
	Extra UnknownFields
}

// ContextManagement records context-window edits applied to a message.
type ContextManagement struct {
	AppliedEdits []ContextEdit
	Extra        UnknownFields
}

// MessageContent is the string-or-blocks union for message.content.
type MessageContent struct {
	IsString bool
	String   string
	Blocks   []ContentBlock
}

// Message is the `message` sub-object carried by user/assistant/system
// entries. Not every field applies to every role; assistant-only fields
// (StopReason, Container, ContextManagement) are zero-valued on user
// messages.
type Message struct {
	ID      string
	Model   string
	Role    string
	Content MessageContent

	StopReason   StopReason
	StopSequence string
	Usage        *Usage

	Container         *Container
	ContextManagement *ContextManagement

	Extra UnknownFields
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID                string          `json:"id"`
		Model             string          `json:"model"`
		Role              string          `json:"role"`
		Content           json.RawMessage `json:"content"`
		StopReason        *string         `json:"stop_reason"`
		StopSequence      string          `json:"stop_sequence"`
		Usage             *Usage          `json:"usage"`
		Container         json.RawMessage `json:"container"`
		ContextManagement json.RawMessage `json:"context_management"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("message: %w", err)
	}

	content, err := decodeMessageContent(raw.Content)
	if err != nil {
		return fmt.Errorf("message.content: %w", err)
	}

	*m = Message{
		ID:           raw.ID,
		Model:        raw.Model,
		Role:         raw.Role,
		Content:      content,
		StopSequence: raw.StopSequence,
		Usage:        raw.Usage,
	}
	if raw.StopReason != nil {
		m.StopReason = StopReason(*raw.StopReason)
	}

	if len(raw.Container) > 0 && string(bytes.TrimSpace(raw.Container)) != "null" {
		var c struct {
			ID        string `json:"id"`
			ExpiresAt string `json:"expires_at"`
		}
		if err := json.Unmarshal(raw.Container, &c); err != nil {
			return fmt.Errorf("message.container: %w", err)
		}
		extra, err := collectUnknown(raw.Container, map[string]bool{"id": true, "expires_at": true})
		if err != nil {
			return err
		}
		m.Container = &Container{ID: c.ID, ExpiresAt: c.ExpiresAt, Extra: extra}
	}

	if len(raw.ContextManagement) > 0 && string(bytes.TrimSpace(raw.ContextManagement)) != "null" {
		var cm struct {
			AppliedEdits []json.RawMessage `json:"applied_edits"`
		}
		if err := json.Unmarshal(raw.ContextManagement, &cm); err != nil {
			return fmt.Errorf("message.context_management: %w", err)
		}
		edits := make([]ContextEdit, 0, len(cm.AppliedEdits))
		for _, e := range cm.AppliedEdits {
			var head struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(e, &head); err != nil {
				return fmt.Errorf("message.context_management.applied_edits: %w", err)
			}
			extra, err := collectUnknown(e, map[string]bool{"type": true})
			if err != nil {
				return err
			}
			edits = append(edits, ContextEdit{Type: head.Type, Extra: extra})
		}
		extra, err := collectUnknown(raw.ContextManagement, map[string]bool{"applied_edits": true})
		if err != nil {
			return err
		}
		m.ContextManagement = &ContextManagement{AppliedEdits: edits, Extra: extra}
	}

	extra, err := collectUnknown(data, map[string]bool{
		"id": true, "model": true, "role": true, "content": true, "stop_reason": true,
		"stop_sequence": true, "usage": true, "container": true, "context_management": true,
	})
	if err != nil {
		return err
	}
	m.Extra = extra
	return nil
}

func decodeMessageContent(raw json.RawMessage) (MessageContent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return MessageContent{}, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return MessageContent{}, err
		}
		return MessageContent{IsString: true, String: s}, nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(trimmed, &blocks); err != nil {
		return MessageContent{}, err
	}
	return MessageContent{Blocks: blocks}, nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"id":%s,"model":%s,"role":%s`, mustJSON(m.ID), mustJSON(m.Model), mustJSON(m.Role))

	if m.Content.IsString {
		buf.WriteString(`,"content":`)
		buf.Write(mustJSON(m.Content.String))
	} else {
		blocks, err := json.Marshal(m.Content.Blocks)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"content":`)
		buf.Write(blocks)
	}

	if m.StopReason != "" {
		buf.WriteString(`,"stop_reason":`)
		buf.Write(mustJSON(string(m.StopReason)))
	}
	if m.StopSequence != "" {
		buf.WriteString(`,"stop_sequence":`)
		buf.Write(mustJSON(m.StopSequence))
	}
	if m.Usage != nil {
		usage, err := json.Marshal(*m.Usage)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"usage":`)
		buf.Write(usage)
	}
	if m.Container != nil {
		buf.WriteString(`,"container":{"id":`)
		buf.Write(mustJSON(m.Container.ID))
		buf.WriteString(`,"expires_at":`)
		buf.Write(mustJSON(m.Container.ExpiresAt))
		if err := m.Container.Extra.WriteJSON(&buf, map[string]bool{"id": true, "expires_at": true}); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}
	if m.ContextManagement != nil {
		buf.WriteString(`,"context_management":{"applied_edits":[`)
		for i, e := range m.ContextManagement.AppliedEdits {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"type":`)
			buf.Write(mustJSON(e.Type))
			if err := e.Extra.WriteJSON(&buf, map[string]bool{"type": true}); err != nil {
				return nil, err
			}
			buf.WriteByte('}')
		}
		buf.WriteByte(']')
		if err := m.ContextManagement.Extra.WriteJSON(&buf, map[string]bool{"applied_edits": true}); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}

	if err := m.Extra.WriteJSON(&buf, map[string]bool{
		"id": true, "model": true, "role": true, "content": true, "stop_reason": true,
		"stop_sequence": true, "usage": true, "container": true, "context_management": true,
	}); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
