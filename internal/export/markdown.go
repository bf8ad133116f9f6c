package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// MarkdownExporter renders a chronological, role-tagged Markdown
// document, grounded on ccrider's internal/interface/cli/export.go
// strings.Builder approach, generalized from its flat message table to
// the full content-block union.
type MarkdownExporter struct{}

func (MarkdownExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	var b strings.Builder
	stats := Stats{}

	if opts.IncludeMetadata {
		b.WriteString("# Session Export\n\n")
		b.WriteString(fmt.Sprintf("**Entries:** %d\n\n", conv.Len()))
		b.WriteString("---\n\n")
	}

	for _, idx := range selectIndices(conv, opts) {
		e := conv.Entry(idx)
		if e.Kind == model.EntrySystem && !opts.IncludeSystem {
			continue
		}
		role := roleOf(e)
		if role == "" {
			continue
		}

		b.WriteString("**")
		b.WriteString(strings.ToUpper(role))
		b.WriteString("**")
		if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
			b.WriteString(" _")
			b.WriteString(e.Timestamp.Format("2006-01-02 15:04:05"))
			b.WriteString("_")
		}
		b.WriteString("\n\n")

		wrote := writeMarkdownBody(&b, e, opts, &stats)
		if !wrote {
			continue
		}
		stats.MessagesWritten++
		b.WriteString("\n---\n\n")
	}

	n, err := io.WriteString(w, b.String())
	stats.BytesWritten = int64(n)
	return stats, err
}

func writeMarkdownBody(b *strings.Builder, e *model.Entry, opts Options, stats *Stats) bool {
	if s := plainStringContent(e); s != "" {
		text, n := redactText(s, opts.RedactionPolicy)
		stats.RedactedCount += n
		b.WriteString(text)
		b.WriteString("\n")
		return true
	}

	wrote := false
	for _, block := range contentBlocksOf(e) {
		switch block.Kind {
		case model.BlockText:
			text, n := redactText(block.Text.Text, opts.RedactionPolicy)
			stats.RedactedCount += n
			b.WriteString(text)
			b.WriteString("\n\n")
			wrote = true

		case model.BlockThinking:
			if !opts.IncludeThinking {
				continue
			}
			text, n := redactText(block.Thinking.Thinking, opts.RedactionPolicy)
			stats.RedactedCount += n
			b.WriteString("<details><summary>Thinking</summary>\n\n")
			b.WriteString(text)
			b.WriteString("\n\n</details>\n\n")
			wrote = true

		case model.BlockToolUse:
			if !opts.IncludeTools {
				continue
			}
			lang := languageHint(string(block.ToolUse.Input))
			b.WriteString("<details><summary>Tool call: ")
			b.WriteString(block.ToolUse.Name)
			b.WriteString("</summary>\n\n```")
			b.WriteString(lang)
			b.WriteString("\n")
			b.WriteString(string(block.ToolUse.Input))
			b.WriteString("\n```\n\n</details>\n\n")
			wrote = true

		case model.BlockToolResult:
			if !opts.IncludeToolResults {
				continue
			}
			text, n := redactText(toolResultText(block.ToolResult.Content), opts.RedactionPolicy)
			stats.RedactedCount += n
			label := "Tool result"
			if block.ToolResult.IsError.IsError() {
				label = "Tool result (error)"
			}
			b.WriteString("<details><summary>")
			b.WriteString(label)
			b.WriteString("</summary>\n\n```\n")
			b.WriteString(text)
			b.WriteString("\n```\n\n</details>\n\n")
			wrote = true

		case model.BlockImage:
			b.WriteString("_[image omitted]_\n\n")
			wrote = true
		}
	}
	return wrote
}
