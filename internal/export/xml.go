package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// XMLExporter writes a flattened row-per-message projection with
// message bodies wrapped in CDATA sections (spec §4.5). Hand-rolled
// rather than encoding/xml because the message body needs CDATA, which
// encoding/xml's struct-tag encoder has no way to request.
type XMLExporter struct{}

func (XMLExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	var b strings.Builder
	stats := Stats{}

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<session>\n")

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

		b.WriteString(fmt.Sprintf(`  <message uuid=%q role=%q`, e.UUID, role))
		if opts.IncludeTimestamps && !e.Timestamp.IsZero() {
			b.WriteString(fmt.Sprintf(` timestamp=%q`, e.Timestamp.Format("2006-01-02T15:04:05Z")))
		}
		b.WriteString(">")
		b.WriteString("<![CDATA[")
		b.WriteString(escapeCDATA(text))
		b.WriteString("]]></message>\n")
		stats.MessagesWritten++
	}

	b.WriteString("</session>\n")

	n, err := io.WriteString(w, b.String())
	stats.BytesWritten = int64(n)
	return stats, err
}

// escapeCDATA splits any literal "]]>" sequence so it cannot
// prematurely close the CDATA section.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
