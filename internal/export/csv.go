package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// CSVExporter writes a flattened row-per-record projection, RFC-4180
// quoted via the standard library's encoding/csv writer. Options.Dialect
// selects the row granularity: "messages" (default), "tool_calls", or
// "usage".
type CSVExporter struct{}

func (CSVExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	stats := Stats{}

	switch opts.Dialect {
	case "tool_calls":
		writer.Write([]string{"uuid", "tool_use_id", "tool_name", "is_error", "input"})
		for _, pair := range conv.ToolPairs() {
			row := []string{
				conv.Entry(pair.Use.EntryIdx).UUID,
				pair.Use.Block.ID,
				pair.Use.Block.Name,
				"absent",
				string(pair.Use.Block.Input),
			}
			if pair.Result != nil {
				row[3] = pair.Result.Block.IsError.String()
			}
			writer.Write(row)
			stats.MessagesWritten++
		}
	case "usage":
		writer.Write([]string{"uuid", "model", "input_tokens", "output_tokens", "cache_creation", "cache_read"})
		for _, idx := range selectIndices(conv, opts) {
			e := conv.Entry(idx)
			if e.Message == nil || e.Message.Usage == nil {
				continue
			}
			u := e.Message.Usage
			writer.Write([]string{
				e.UUID, e.Message.Model,
				strconv.FormatInt(u.InputTokens, 10),
				strconv.FormatInt(u.OutputTokens, 10),
				strconv.FormatInt(u.CacheCreationInputTokens, 10),
				strconv.FormatInt(u.CacheReadInputTokens, 10),
			})
			stats.MessagesWritten++
		}
	default:
		writer.Write([]string{"uuid", "role", "timestamp", "text"})
		for _, idx := range selectIndices(conv, opts) {
			e := conv.Entry(idx)
			if e.Kind == model.EntrySystem && !opts.IncludeSystem {
				continue
			}
			role := roleOf(e)
			if role == "" {
				continue
			}
			text, n := redactText(flattenText(e), opts.RedactionPolicy)
			stats.RedactedCount += n
			ts := ""
			if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
				ts = e.Timestamp.Format("2006-01-02T15:04:05Z")
			}
			writer.Write([]string{e.UUID, role, ts, text})
			stats.MessagesWritten++
		}
	}

	writer.Flush()
	stats.BytesWritten = cw.n
	return stats, writer.Error()
}

// flattenText concatenates a message's text-bearing content into one
// string for row-per-message projections; non-text blocks are summarized.
func flattenText(e *model.Entry) string {
	if s := plainStringContent(e); s != "" {
		return s
	}
	var out string
	for _, block := range contentBlocksOf(e) {
		switch block.Kind {
		case model.BlockText:
			out += block.Text.Text
		case model.BlockToolUse:
			out += "[tool:" + block.ToolUse.Name + "]"
		}
	}
	return out
}
