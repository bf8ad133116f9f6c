package export

// Format names a registered exporter.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatJSONL    Format = "jsonl"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatXML      Format = "xml"
)

// ByFormat resolves a registered Exporter by name, for CLI flag
// dispatch. The bool return reports whether the name was recognized.
func ByFormat(f Format) (Exporter, bool) {
	switch f {
	case FormatMarkdown:
		return MarkdownExporter{}, true
	case FormatText:
		return TextExporter{}, true
	case FormatJSON:
		return JSONExporter{}, true
	case FormatJSONL:
		return JSONLExporter{}, true
	case FormatHTML:
		return HTMLExporter{}, true
	case FormatCSV:
		return CSVExporter{}, true
	case FormatXML:
		return XMLExporter{}, true
	default:
		return nil, false
	}
}
