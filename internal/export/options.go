// Package export renders a reconstructed conversation to one of several
// output formats: Markdown, plain text, JSON (structured or lossless),
// JSONL, HTML, CSV, and XML. Every format implements the same Exporter
// contract over a byte sink, so callers (tests, the CLI) can swap
// formats without touching call sites.
package export

// RedactionPolicy controls the pre-serialization redaction traversal.
type RedactionPolicy string

const (
	RedactionNone     RedactionPolicy = "none"
	RedactionSecurity RedactionPolicy = "security"
	RedactionAll      RedactionPolicy = "all"
)

// Options is the shared knob set every exporter accepts (spec §4.5).
// Not every format consults every field; formats ignore knobs that
// don't apply to them rather than erroring.
type Options struct {
	IncludeThinking    bool
	IncludeTools       bool
	IncludeToolResults bool
	IncludeSystem      bool
	IncludeTimestamps  bool
	IncludeUsage       bool
	IncludeMetadata    bool
	MainThreadOnly     bool
	Lossless           bool
	Pretty             bool
	RedactionPolicy    RedactionPolicy

	// Format-specific knobs.
	LineWidth int    // plain text word-wrap column
	Theme     string // html: "light" or "dark"
	TOC       bool   // html: emit a table of contents
	Dialect   string // csv/xml: row granularity — "messages", "tool_calls", or "usage"
}

// DefaultOptions mirrors config.Default().Export's values so that a
// caller with no configuration still gets sensible output.
func DefaultOptions() Options {
	return Options{
		IncludeThinking:    true,
		IncludeTools:       true,
		IncludeToolResults: true,
		IncludeSystem:      false,
		IncludeTimestamps:  true,
		IncludeUsage:       true,
		IncludeMetadata:    true,
		RedactionPolicy:    RedactionNone,
		LineWidth:          100,
		Theme:              "light",
		Dialect:            "messages",
	}
}
