package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/clio-cli/clio/internal/analytics"
	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// jsonMessage is the structured-mode projection of one entry: role,
// timestamp, and content blocks, matching spec §4.5's
// {metadata, analytics, messages[]} shape.
type jsonMessage struct {
	UUID      string               `json:"uuid"`
	Role      string               `json:"role"`
	Timestamp *string              `json:"timestamp,omitempty"`
	Content   []model.ContentBlock `json:"content,omitempty"`
	Text      string               `json:"text,omitempty"`
	Usage     *model.Usage         `json:"usage,omitempty"`
}

type jsonMetadata struct {
	EntryCount int `json:"entry_count"`
}

type jsonDocument struct {
	Metadata jsonMetadata           `json:"metadata"`
	Analytics *analytics.SessionReport `json:"analytics,omitempty"`
	Messages []jsonMessage          `json:"messages"`
}

// JSONExporter implements both the structured `{metadata, analytics,
// messages[]}` projection and, when Options.Lossless is set, a verbatim
// re-emission of the original entry stream as a JSON array (spec
// §4.5/§6). Content blocks are marshaled through their own custom
// MarshalJSON methods (internal/model/content.go), so encoding/json is
// used directly rather than go-json-experiment/json, whose handling of
// types with custom Marshaler methods was not grep-confirmed against
// this module's usage pattern (see DESIGN.md).
type JSONExporter struct{}

func (JSONExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	if opts.Lossless {
		return exportJSONLossless(conv, w, opts)
	}
	return exportJSONStructured(conv, w, opts)
}

func exportJSONLossless(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	stats := Stats{}
	for i, idx := range selectIndices(conv, opts) {
		if i > 0 {
			buf.WriteByte(',')
		}
		e := conv.Entry(idx)
		buf.Write(bytes.TrimSpace(e.Raw))
		stats.MessagesWritten++
	}
	buf.WriteByte(']')

	out := buf.Bytes()
	if opts.Pretty {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", "  "); err == nil {
			out = pretty.Bytes()
		}
	}

	n, err := w.Write(out)
	stats.BytesWritten = int64(n)
	return stats, err
}

func exportJSONStructured(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	doc := jsonDocument{Metadata: jsonMetadata{EntryCount: conv.Len()}}
	stats := Stats{}

	for _, idx := range selectIndices(conv, opts) {
		e := conv.Entry(idx)
		if e.Kind == model.EntrySystem && !opts.IncludeSystem {
			continue
		}
		role := roleOf(e)
		if role == "" {
			continue
		}

		msg := jsonMessage{UUID: e.UUID, Role: role}
		if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
			ts := e.Timestamp.Format("2006-01-02T15:04:05.000Z")
			msg.Timestamp = &ts
		}
		if opts.IncludeUsage && e.Message != nil {
			msg.Usage = e.Message.Usage
		}

		if s := plainStringContent(e); s != "" {
			text, n := redactText(s, opts.RedactionPolicy)
			stats.RedactedCount += n
			msg.Text = text
		} else {
			blocks := filterBlocksForExport(contentBlocksOf(e), opts, &stats)
			msg.Content = blocks
		}
		doc.Messages = append(doc.Messages, msg)
		stats.MessagesWritten++
	}

	var out []byte
	var err error
	if opts.Pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return stats, err
	}

	n, werr := w.Write(out)
	stats.BytesWritten = int64(n)
	if werr != nil {
		return stats, werr
	}
	return stats, nil
}

// filterBlocksForExport drops block kinds the caller opted out of and
// applies redaction to text-bearing blocks, returning a new slice
// (never mutating the conversation's own blocks).
func filterBlocksForExport(blocks []model.ContentBlock, opts Options, stats *Stats) []model.ContentBlock {
	out := make([]model.ContentBlock, 0, len(blocks))
	for _, block := range blocks {
		switch block.Kind {
		case model.BlockThinking:
			if !opts.IncludeThinking {
				continue
			}
			text, n := redactText(block.Thinking.Thinking, opts.RedactionPolicy)
			stats.RedactedCount += n
			redacted := *block.Thinking
			redacted.Thinking = text
			block.Thinking = &redacted
		case model.BlockToolUse:
			if !opts.IncludeTools {
				continue
			}
		case model.BlockToolResult:
			if !opts.IncludeToolResults {
				continue
			}
		case model.BlockText:
			text, n := redactText(block.Text.Text, opts.RedactionPolicy)
			stats.RedactedCount += n
			redacted := *block.Text
			redacted.Text = text
			block.Text = &redacted
		}
		out = append(out, block)
	}
	return out
}
