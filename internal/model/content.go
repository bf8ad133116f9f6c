package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ContentBlockKind discriminates the content block tagged union.
type ContentBlockKind string

const (
	BlockText       ContentBlockKind = "text"
	BlockThinking    ContentBlockKind = "thinking"
	BlockToolUse     ContentBlockKind = "tool_use"
	BlockToolResult  ContentBlockKind = "tool_result"
	BlockImage       ContentBlockKind = "image"
)

// ErrorState is the three-state flag carried by tool_result blocks.
// A plain bool cannot distinguish "explicitly succeeded" from "no
// is_error key was present at all", which the SQLite projection and the
// round-trip laws in spec §8 both depend on.
type ErrorState int

const (
	// ErrorAbsent means the source JSON had no is_error key (implicit success).
	ErrorAbsent ErrorState = iota
	// ErrorFalse means is_error:false was present (explicit success).
	ErrorFalse
	// ErrorTrue means is_error:true was present (explicit failure).
	ErrorTrue
)

func (e ErrorState) String() string {
	switch e {
	case ErrorTrue:
		return "true"
	case ErrorFalse:
		return "false"
	default:
		return "absent"
	}
}

// IsError reports whether the tri-state flag indicates failure.
func (e ErrorState) IsError() bool {
	return e == ErrorTrue
}

func errorStateFromRaw(raw json.RawMessage) ErrorState {
	switch strings.TrimSpace(string(raw)) {
	case "":
		return ErrorAbsent
	case "true":
		return ErrorTrue
	case "false":
		return ErrorFalse
	default:
		return ErrorAbsent
	}
}

func (e ErrorState) rawJSON() (json.RawMessage, bool) {
	switch e {
	case ErrorTrue:
		return json.RawMessage("true"), true
	case ErrorFalse:
		return json.RawMessage("false"), true
	default:
		return nil, false
	}
}

// ContentBlock is one element of a message's content array. Exactly one
// of the typed fields below is populated, selected by Kind; this mirrors
// a tagged union without collapsing variant identity into a generic
// struct (see spec §9 on polymorphism over content blocks).
type ContentBlock struct {
	Kind ContentBlockKind

	Text       *TextBlock
	Thinking   *ThinkingBlock
	ToolUse    *ToolUseBlock
	ToolResult *ToolResultBlock
	Image      *ImageBlock
}

// TextBlock is natural-language text.
type TextBlock struct {
	Text  string
	Extra UnknownFields
}

// ThinkingMetadata describes the extended-reasoning trigger and level,
// present only under the "unified"/"latest" schema profiles.
type ThinkingMetadata struct {
	Level    string
	Disabled bool
	Triggers []string
}

// ThinkingBlock is opaque extended reasoning with a verification signature.
type ThinkingBlock struct {
	Thinking  string
	Signature string
	Metadata  *ThinkingMetadata
	Extra     UnknownFields
}

// ToolUseBlock is a tool invocation request.
//
// IDs are prefix-typed: "toolu_" for client-executed tools, "srvtoolu_"
// for server-executed tools; tool names prefixed "mcp__<server>__<method>"
// identify an external MCP tool.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
	Extra UnknownFields
}

// IsServerTool reports whether this tool ran server-side.
func (t *ToolUseBlock) IsServerTool() bool {
	return strings.HasPrefix(t.ID, "srvtoolu_")
}

// IsMCPTool reports whether this invokes an external MCP tool.
func (t *ToolUseBlock) IsMCPTool() bool {
	return strings.HasPrefix(t.Name, "mcp__")
}

// MCPServer returns the MCP server name, if this is an MCP tool call.
func (t *ToolUseBlock) MCPServer() (string, bool) {
	if !t.IsMCPTool() {
		return "", false
	}
	rest := strings.TrimPrefix(t.Name, "mcp__")
	parts := strings.SplitN(rest, "__", 2)
	if parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// MCPMethod returns the MCP method name, if this is an MCP tool call.
func (t *ToolUseBlock) MCPMethod() (string, bool) {
	if !t.IsMCPTool() {
		return "", false
	}
	rest := strings.TrimPrefix(t.Name, "mcp__")
	parts := strings.SplitN(rest, "__", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ToolResultContentKind distinguishes string vs block-array tool_result content.
type ToolResultContentKind int

const (
	ToolResultContentNone ToolResultContentKind = iota
	ToolResultContentString
	ToolResultContentBlocks
)

// ToolResultContent is the string-or-blocks union carried by tool_result.content.
type ToolResultContent struct {
	Kind   ToolResultContentKind
	String string
	Blocks []ContentBlock
}

// ToolResultBlock is a tool execution outcome.
type ToolResultBlock struct {
	ToolUseID string
	Content   ToolResultContent
	IsError   ErrorState
	Extra     UnknownFields
}

// ImageSourceKind distinguishes the three ways an image can be sourced.
type ImageSourceKind string

const (
	ImageSourceBase64 ImageSourceKind = "base64"
	ImageSourceURL    ImageSourceKind = "url"
	ImageSourceFile   ImageSourceKind = "file"
)

// ImageSource carries exactly one populated field, selected by Kind.
type ImageSource struct {
	Kind ImageSourceKind

	MediaType string // base64
	Data      string // base64
	URL       string // url
	FileID    string // file
}

// ImageBlock is visual input.
type ImageBlock struct {
	Source ImageSource
	Extra  UnknownFields
}

// --- decoding ---

type rawContentBlock struct {
	Type string `json:"type"`
}

// UnmarshalJSON dispatches on the "type" discriminator and decodes the
// matching variant, preserving unrecognized keys on that variant's Extra
// bag.
func (c *ContentBlock) UnmarshalJSON(data []byte) error {
	var head rawContentBlock
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("content block type: %w", err)
	}

	switch ContentBlockKind(head.Type) {
	case BlockText:
		var raw struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("text block: %w", err)
		}
		extra, err := collectUnknown(data, map[string]bool{"type": true, "text": true})
		if err != nil {
			return err
		}
		c.Kind = BlockText
		c.Text = &TextBlock{Text: raw.Text, Extra: extra}

	case BlockThinking:
		var raw struct {
			Thinking string `json:"thinking"`
			Signature string `json:"signature"`
			ThinkingMetadata *struct {
				Level    string   `json:"level"`
				Disabled bool     `json:"disabled"`
				Triggers []string `json:"triggers"`
			} `json:"thinkingMetadata"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("thinking block: %w", err)
		}
		extra, err := collectUnknown(data, map[string]bool{
			"type": true, "thinking": true, "signature": true, "thinkingMetadata": true,
		})
		if err != nil {
			return err
		}
		tb := &ThinkingBlock{Thinking: raw.Thinking, Signature: raw.Signature, Extra: extra}
		if raw.ThinkingMetadata != nil {
			tb.Metadata = &ThinkingMetadata{
				Level:    raw.ThinkingMetadata.Level,
				Disabled: raw.ThinkingMetadata.Disabled,
				Triggers: raw.ThinkingMetadata.Triggers,
			}
		}
		c.Kind = BlockThinking
		c.Thinking = tb

	case BlockToolUse:
		var raw struct {
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("tool_use block: %w", err)
		}
		extra, err := collectUnknown(data, map[string]bool{"type": true, "id": true, "name": true, "input": true})
		if err != nil {
			return err
		}
		c.Kind = BlockToolUse
		c.ToolUse = &ToolUseBlock{ID: raw.ID, Name: raw.Name, Input: raw.Input, Extra: extra}

	case BlockToolResult:
		var raw struct {
			ToolUseID string          `json:"tool_use_id"`
			Content   json.RawMessage `json:"content"`
			IsError   json.RawMessage `json:"is_error"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("tool_result block: %w", err)
		}
		extra, err := collectUnknown(data, map[string]bool{
			"type": true, "tool_use_id": true, "content": true, "is_error": true,
		})
		if err != nil {
			return err
		}
		content, err := decodeToolResultContent(raw.Content)
		if err != nil {
			return err
		}
		c.Kind = BlockToolResult
		c.ToolResult = &ToolResultBlock{
			ToolUseID: raw.ToolUseID,
			Content:   content,
			IsError:   errorStateFromRaw(raw.IsError),
			Extra:     extra,
		}

	case BlockImage:
		var raw struct {
			Source json.RawMessage `json:"source"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("image block: %w", err)
		}
		extra, err := collectUnknown(data, map[string]bool{"type": true, "source": true})
		if err != nil {
			return err
		}
		src, err := decodeImageSource(raw.Source)
		if err != nil {
			return err
		}
		c.Kind = BlockImage
		c.Image = &ImageBlock{Source: src, Extra: extra}

	default:
		return fmt.Errorf("unknown content block type %q", head.Type)
	}

	return nil
}

func decodeToolResultContent(raw json.RawMessage) (ToolResultContent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ToolResultContent{Kind: ToolResultContentNone}, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ToolResultContent{}, fmt.Errorf("tool_result.content string: %w", err)
		}
		return ToolResultContent{Kind: ToolResultContentString, String: s}, nil
	}
	if trimmed[0] == '[' {
		var blocks []ContentBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return ToolResultContent{}, fmt.Errorf("tool_result.content blocks: %w", err)
		}
		return ToolResultContent{Kind: ToolResultContentBlocks, Blocks: blocks}, nil
	}
	return ToolResultContent{}, fmt.Errorf("tool_result.content: unsupported shape %q", trimmed)
}

func decodeImageSource(raw json.RawMessage) (ImageSource, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ImageSource{}, fmt.Errorf("image source type: %w", err)
	}
	switch ImageSourceKind(head.Type) {
	case ImageSourceBase64:
		var b struct {
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		}
		if err := json.Unmarshal(raw, &b); err != nil {
			return ImageSource{}, fmt.Errorf("image base64 source: %w", err)
		}
		return ImageSource{Kind: ImageSourceBase64, MediaType: b.MediaType, Data: b.Data}, nil
	case ImageSourceURL:
		var u struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(raw, &u); err != nil {
			return ImageSource{}, fmt.Errorf("image url source: %w", err)
		}
		return ImageSource{Kind: ImageSourceURL, URL: u.URL}, nil
	case ImageSourceFile:
		var f struct {
			FileID string `json:"file_id"`
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			return ImageSource{}, fmt.Errorf("image file source: %w", err)
		}
		return ImageSource{Kind: ImageSourceFile, FileID: f.FileID}, nil
	default:
		return ImageSource{}, fmt.Errorf("unknown image source type %q", head.Type)
	}
}

// --- encoding ---

// MarshalJSON re-serializes the block, re-emitting unknown fields after
// known ones so lossless export round-trips.
func (c ContentBlock) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	switch c.Kind {
	case BlockText:
		fmt.Fprintf(&buf, `"type":"text","text":%s`, mustJSON(c.Text.Text))
		if err := c.Text.Extra.WriteJSON(&buf, map[string]bool{"type": true, "text": true}); err != nil {
			return nil, err
		}

	case BlockThinking:
		fmt.Fprintf(&buf, `"type":"thinking","thinking":%s,"signature":%s`,
			mustJSON(c.Thinking.Thinking), mustJSON(c.Thinking.Signature))
		if m := c.Thinking.Metadata; m != nil {
			meta, err := json.Marshal(struct {
				Level    string   `json:"level"`
				Disabled bool     `json:"disabled"`
				Triggers []string `json:"triggers,omitempty"`
			}{m.Level, m.Disabled, m.Triggers})
			if err != nil {
				return nil, err
			}
			buf.WriteString(`,"thinkingMetadata":`)
			buf.Write(meta)
		}
		if err := c.Thinking.Extra.WriteJSON(&buf, map[string]bool{
			"type": true, "thinking": true, "signature": true, "thinkingMetadata": true,
		}); err != nil {
			return nil, err
		}

	case BlockToolUse:
		input := c.ToolUse.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		fmt.Fprintf(&buf, `"type":"tool_use","id":%s,"name":%s,"input":%s`,
			mustJSON(c.ToolUse.ID), mustJSON(c.ToolUse.Name), input)
		if err := c.ToolUse.Extra.WriteJSON(&buf, map[string]bool{
			"type": true, "id": true, "name": true, "input": true,
		}); err != nil {
			return nil, err
		}

	case BlockToolResult:
		fmt.Fprintf(&buf, `"type":"tool_result","tool_use_id":%s`, mustJSON(c.ToolResult.ToolUseID))
		switch c.ToolResult.Content.Kind {
		case ToolResultContentString:
			buf.WriteString(`,"content":`)
			buf.Write(mustJSON(c.ToolResult.Content.String))
		case ToolResultContentBlocks:
			blocks, err := json.Marshal(c.ToolResult.Content.Blocks)
			if err != nil {
				return nil, err
			}
			buf.WriteString(`,"content":`)
			buf.Write(blocks)
		}
		if raw, ok := c.ToolResult.IsError.rawJSON(); ok {
			buf.WriteString(`,"is_error":`)
			buf.Write(raw)
		}
		if err := c.ToolResult.Extra.WriteJSON(&buf, map[string]bool{
			"type": true, "tool_use_id": true, "content": true, "is_error": true,
		}); err != nil {
			return nil, err
		}

	case BlockImage:
		src, err := marshalImageSource(c.Image.Source)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"type":"image","source":`)
		buf.Write(src)
		if err := c.Image.Extra.WriteJSON(&buf, map[string]bool{"type": true, "source": true}); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("marshal content block: unset kind")
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalImageSource(src ImageSource) ([]byte, error) {
	switch src.Kind {
	case ImageSourceBase64:
		return json.Marshal(struct {
			Type      string `json:"type"`
			MediaType string `json:"media_type"`
			Data      string `json:"data"`
		}{"base64", src.MediaType, src.Data})
	case ImageSourceURL:
		return json.Marshal(struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		}{"url", src.URL})
	case ImageSourceFile:
		return json.Marshal(struct {
			Type   string `json:"type"`
			FileID string `json:"file_id"`
		}{"file", src.FileID})
	default:
		return nil, fmt.Errorf("marshal image source: unset kind")
	}
}

func mustJSON(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
