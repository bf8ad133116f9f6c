package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// HTMLExporter renders a self-contained HTML document: inline CSS, no
// external fetches, an optional table of contents, and light/dark
// themes (spec §4.5). Images are embedded as base64 only when the
// source image was itself base64-encoded.
type HTMLExporter struct{}

const htmlLightCSS = `body{font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:860px;margin:2rem auto;padding:0 1rem;color:#1a1a1a;background:#fff}
.msg{border-left:3px solid #ddd;padding:0.5rem 1rem;margin-bottom:1rem}
.msg.user{border-color:#4a90d9}
.msg.assistant{border-color:#2f9e44}
.msg.system{border-color:#999}
.role{font-weight:600;text-transform:uppercase;font-size:0.8rem;letter-spacing:0.05em}
.ts{color:#777;font-size:0.8rem;margin-left:0.5rem}
pre{background:#f5f5f5;padding:0.75rem;overflow-x:auto;border-radius:4px}
details{margin:0.5rem 0}
summary{cursor:pointer;color:#555}`

const htmlDarkCSS = `body{font-family:-apple-system,Helvetica,Arial,sans-serif;max-width:860px;margin:2rem auto;padding:0 1rem;color:#e6e6e6;background:#1a1a1a}
.msg{border-left:3px solid #444;padding:0.5rem 1rem;margin-bottom:1rem}
.msg.user{border-color:#6fa8dc}
.msg.assistant{border-color:#57c785}
.msg.system{border-color:#777}
.role{font-weight:600;text-transform:uppercase;font-size:0.8rem;letter-spacing:0.05em}
.ts{color:#999;font-size:0.8rem;margin-left:0.5rem}
pre{background:#262626;padding:0.75rem;overflow-x:auto;border-radius:4px;color:#ddd}
details{margin:0.5rem 0}
summary{cursor:pointer;color:#aaa}`

func (HTMLExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	var b strings.Builder
	stats := Stats{}

	css := htmlLightCSS
	if opts.Theme == "dark" {
		css = htmlDarkCSS
	}

	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Session Export</title><style>\n")
	b.WriteString(css)
	b.WriteString("\n</style></head><body>\n")

	if opts.IncludeMetadata {
		b.WriteString("<h1>Session Export</h1>\n")
	}

	type tocEntry struct{ id, label string }
	var toc []tocEntry

	var body strings.Builder
	for i, idx := range selectIndices(conv, opts) {
		e := conv.Entry(idx)
		if e.Kind == model.EntrySystem && !opts.IncludeSystem {
			continue
		}
		role := roleOf(e)
		if role == "" {
			continue
		}

		anchorID := fmt.Sprintf("msg-%d", i)
		body.WriteString(fmt.Sprintf(`<div class="msg %s" id="%s">`, html.EscapeString(role), anchorID))
		body.WriteString(fmt.Sprintf(`<span class="role">%s</span>`, html.EscapeString(strings.ToUpper(role))))
		if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
			body.WriteString(fmt.Sprintf(`<span class="ts">%s</span>`, e.Timestamp.Format("2006-01-02 15:04:05")))
		}
		body.WriteString("\n")

		wrote := writeHTMLBody(&body, e, opts, &stats)
		body.WriteString("</div>\n")
		if wrote {
			stats.MessagesWritten++
			toc = append(toc, tocEntry{id: anchorID, label: fmt.Sprintf("%d. %s", i, role)})
		}
	}

	if opts.TOC {
		b.WriteString("<nav><ul>\n")
		for _, t := range toc {
			b.WriteString(fmt.Sprintf(`<li><a href="#%s">%s</a></li>`, t.id, html.EscapeString(t.label)))
			b.WriteString("\n")
		}
		b.WriteString("</ul></nav>\n")
	}

	b.WriteString(body.String())
	b.WriteString("</body></html>\n")

	n, err := io.WriteString(w, b.String())
	stats.BytesWritten = int64(n)
	return stats, err
}

func writeHTMLBody(b *strings.Builder, e *model.Entry, opts Options, stats *Stats) bool {
	if s := plainStringContent(e); s != "" {
		text, n := redactText(s, opts.RedactionPolicy)
		stats.RedactedCount += n
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(text))
		b.WriteString("</p>\n")
		return true
	}

	wrote := false
	for _, block := range contentBlocksOf(e) {
		switch block.Kind {
		case model.BlockText:
			text, n := redactText(block.Text.Text, opts.RedactionPolicy)
			stats.RedactedCount += n
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(text))
			b.WriteString("</p>\n")
			wrote = true

		case model.BlockThinking:
			if !opts.IncludeThinking {
				continue
			}
			text, n := redactText(block.Thinking.Thinking, opts.RedactionPolicy)
			stats.RedactedCount += n
			b.WriteString("<details><summary>Thinking</summary><pre>")
			b.WriteString(html.EscapeString(text))
			b.WriteString("</pre></details>\n")
			wrote = true

		case model.BlockToolUse:
			if !opts.IncludeTools {
				continue
			}
			b.WriteString("<details><summary>Tool call: ")
			b.WriteString(html.EscapeString(block.ToolUse.Name))
			b.WriteString("</summary><pre>")
			b.WriteString(html.EscapeString(string(block.ToolUse.Input)))
			b.WriteString("</pre></details>\n")
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
			b.WriteString("</summary><pre>")
			b.WriteString(html.EscapeString(text))
			b.WriteString("</pre></details>\n")
			wrote = true

		case model.BlockImage:
			if block.Image.Source.Kind == model.ImageSourceBase64 {
				b.WriteString(fmt.Sprintf(`<img src="data:%s;base64,%s" alt="image"/>`,
					html.EscapeString(block.Image.Source.MediaType), block.Image.Source.Data))
				b.WriteString("\n")
			} else {
				b.WriteString("<p><em>[image omitted]</em></p>\n")
			}
			wrote = true
		}
	}
	return wrote
}
