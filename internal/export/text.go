package export

import (
	"io"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// TextExporter renders word-wrapped plain text with 7-bit ASCII role
// separators, in the same register as MarkdownExporter but without
// Markdown markup.
type TextExporter struct{}

const textSeparator = "----------------------------------------"

func (TextExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	width := opts.LineWidth
	if width <= 0 {
		width = 100
	}

	var b strings.Builder
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

		header := strings.ToUpper(role)
		if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
			header += " (" + e.Timestamp.Format("2006-01-02 15:04:05") + ")"
		}
		b.WriteString(header)
		b.WriteString("\n")

		wrote := false
		if s := plainStringContent(e); s != "" {
			text, n := redactText(s, opts.RedactionPolicy)
			stats.RedactedCount += n
			b.WriteString(wrapText(text, width))
			b.WriteString("\n")
			wrote = true
		}
		for _, block := range contentBlocksOf(e) {
			switch block.Kind {
			case model.BlockText:
				text, n := redactText(block.Text.Text, opts.RedactionPolicy)
				stats.RedactedCount += n
				b.WriteString(wrapText(text, width))
				b.WriteString("\n")
				wrote = true
			case model.BlockThinking:
				if !opts.IncludeThinking {
					continue
				}
				text, n := redactText(block.Thinking.Thinking, opts.RedactionPolicy)
				stats.RedactedCount += n
				b.WriteString("[thinking] ")
				b.WriteString(wrapText(text, width))
				b.WriteString("\n")
				wrote = true
			case model.BlockToolUse:
				if !opts.IncludeTools {
					continue
				}
				b.WriteString("[tool call: ")
				b.WriteString(block.ToolUse.Name)
				b.WriteString("]\n")
				wrote = true
			case model.BlockToolResult:
				if !opts.IncludeToolResults {
					continue
				}
				text, n := redactText(toolResultText(block.ToolResult.Content), opts.RedactionPolicy)
				stats.RedactedCount += n
				b.WriteString("[tool result] ")
				b.WriteString(wrapText(text, width))
				b.WriteString("\n")
				wrote = true
			}
		}
		if !wrote {
			continue
		}
		stats.MessagesWritten++
		b.WriteString(textSeparator)
		b.WriteString("\n")
	}

	n, err := io.WriteString(w, b.String())
	stats.BytesWritten = int64(n)
	return stats, err
}
