package export

import (
	"io"

	"github.com/clio-cli/clio/internal/reconstruct"
)

// Stats is the result of one export call (spec §4.5's ExportStats).
type Stats struct {
	MessagesWritten int
	BytesWritten    int64
	RedactedCount   int
	Truncated       bool
}

// Exporter renders a conversation to a sink in one output format.
type Exporter interface {
	// Export writes conv to w according to opts and returns stats
	// about what was written. Implementations must not mutate conv.
	Export(conv *reconstruct.Conversation, w io.Writer, opts Options) (Stats, error)
}

// countingWriter tracks bytes written through it without requiring
// every exporter to do its own bookkeeping.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// selectIndices returns the arena indices an exporter should walk,
// honoring MainThreadOnly.
func selectIndices(conv *reconstruct.Conversation, opts Options) []int {
	if opts.MainThreadOnly {
		return conv.MainThread()
	}
	return conv.AllIndices()
}
