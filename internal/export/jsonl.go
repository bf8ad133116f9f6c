package export

import (
	"io"

	"github.com/clio-cli/clio/internal/reconstruct"
)

// JSONLExporter re-emits each selected entry's original source line
// verbatim, one per output line, for backup/re-import (spec §4.5/§6).
// It is lossless by construction: IncludeThinking/IncludeTools/etc. are
// ignored, since filtering or redacting would break the "exact byte
// replay" contract those flags would otherwise violate. RedactionPolicy
// is honored by only the "none" case; any other policy is rejected by
// callers that want byte-exact output (the CLI layer is expected to
// steer users toward the JSON-lossless exporter if redaction is needed
// on a verbatim source).
type JSONLExporter struct{}

func (JSONLExporter) Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error) {
	stats := Stats{}
	var written int64
	for _, idx := range selectIndices(conv, opts) {
		e := conv.Entry(idx)
		n, err := w.Write(e.Raw)
		written += int64(n)
		if err != nil {
			stats.BytesWritten = written
			return stats, err
		}
		n, err = io.WriteString(w, "\n")
		written += int64(n)
		if err != nil {
			stats.BytesWritten = written
			return stats, err
		}
		stats.MessagesWritten++
	}
	stats.BytesWritten = written
	return stats, nil
}
