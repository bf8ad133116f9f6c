package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"

	"github.com/clio-cli/clio/internal/model"
)

// Mode selects strict or lenient error handling.
type Mode int

const (
	// Strict terminates iteration at the first malformed line.
	Strict Mode = iota
	// Lenient reports malformed lines as diagnostics and continues.
	Lenient
)

// Result is one item yielded by a streaming parse: exactly one of Entry
// or Err is set.
type Result struct {
	Entry *model.Entry
	Err   error
}

// Parser streams entries out of a session log source one line at a time.
type Parser struct {
	r        *bufio.Reader
	mode     Mode
	hint     SchemaProfile
	stats    Stats
	offset   int64
	detected bool
	done     bool
	seenUUID map[string]bool
}

// New constructs a Parser over r. schemaHint, if non-empty, seeds the
// detected profile before the first line is read; an empty hint defers
// detection to the first line's "version" field.
func New(r io.Reader, mode Mode, schemaHint SchemaProfile) *Parser {
	return &Parser{
		r:        bufio.NewReaderSize(r, 64*1024),
		mode:     mode,
		hint:     schemaHint,
		seenUUID: make(map[string]bool),
	}
}

// Next returns the next entry (or diagnostic, in lenient mode) and true,
// or a zero Result and false when the stream is exhausted. In strict
// mode, the first malformed line is returned as a Result carrying Err
// and subsequent calls return false.
func (p *Parser) Next() (Result, bool) {
	if p.done {
		return Result{}, false
	}

	for {
		lineStart := p.offset
		line, err := p.r.ReadBytes('\n')
		p.offset += int64(len(line))

		if err == io.EOF {
			p.done = true
			trimmed := bytes.TrimRight(line, "\r\n")
			if len(trimmed) == 0 {
				return Result{}, false
			}
			// Final bytes are not newline-terminated: torn write. Not parsed.
			p.stats.BytesTorn = int64(len(line))
			p.stats.TornRange = &ByteRange{Start: lineStart, End: p.offset}
			if p.mode == Strict {
				diag := Diagnostic{
					Kind:      DiagUnexpectedEOF,
					ByteRange: ByteRange{Start: lineStart, End: p.offset},
				}
				return Result{Err: diag}, true
			}
			return Result{}, false
		}
		if err != nil {
			p.done = true
			return Result{Err: fmt.Errorf("read: %w", err)}, true
		}

		p.stats.LinesRead++
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) == 0 {
			p.stats.BytesParsed += int64(len(line))
			continue
		}

		if !p.detected {
			p.detected = true
			if p.hint == "" {
				p.stats.SchemaDetected = detectFromLine(trimmed)
			} else {
				p.stats.SchemaDetected = p.hint
			}
		}

		entry, perr := decodeLine(trimmed)
		if perr == nil {
			if p.seenUUID[entry.UUID] {
				dupDiag := Diagnostic{
					Kind: DiagFieldType,
					Line: p.stats.LinesRead,
					ByteRange: ByteRange{Start: lineStart, End: p.offset},
					FieldPath: "uuid",
					Expected:  "unique",
					Found:     entry.UUID,
					Msg:       fmt.Sprintf("duplicate uuid %q", entry.UUID),
				}
				if p.mode == Strict {
					p.done = true
					return Result{Err: dupDiag}, true
				}
				p.stats.LinesSkipped++
				p.stats.BytesSkipped += int64(len(line))
				p.stats.Diagnostics = append(p.stats.Diagnostics, dupDiag)
				return Result{Err: dupDiag}, true
			}
			p.seenUUID[entry.UUID] = true
			p.stats.BytesParsed += int64(len(line))
			entry.Raw = append([]byte(nil), trimmed...)
			return Result{Entry: entry}, true
		}

		diag := classifyError(perr, p.stats.LinesRead, lineStart, p.offset)
		if p.mode == Strict {
			p.done = true
			return Result{Err: diag}, true
		}

		p.stats.LinesSkipped++
		p.stats.BytesSkipped += int64(len(line))
		p.stats.Diagnostics = append(p.stats.Diagnostics, diag)
		return Result{Err: diag}, true
	}
}

// Stats returns the running totals. Safe to call after iteration ends
// for a final summary.
func (p *Parser) Stats() Stats {
	return p.stats
}

type versionHead struct {
	Version string `json:"version"`
}

func detectFromLine(line []byte) SchemaProfile {
	var head versionHead
	if err := json.Unmarshal(line, &head); err != nil {
		return ProfileLegacy
	}
	return DetectSchemaProfile(head.Version)
}

func decodeLine(line []byte) (*model.Entry, error) {
	var entry model.Entry
	if err := entry.UnmarshalJSON(line); err != nil {
		return nil, err
	}
	if err := entry.ValidateShape(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func classifyError(err error, lineNum int, start, end int64) Diagnostic {
	return Diagnostic{
		Kind:      DiagSyntax,
		Line:      lineNum,
		ByteRange: ByteRange{Start: start, End: end},
		Msg:       err.Error(),
	}
}

// Collect drains the parser into a slice of successfully parsed
// entries, discarding diagnostics (available afterward via Stats). This
// is a convenience for callers that don't need incremental iteration;
// large-file streaming callers should use Next directly.
func Collect(p *Parser) ([]*model.Entry, Stats) {
	var entries []*model.Entry
	for {
		res, ok := p.Next()
		if !ok {
			break
		}
		if res.Entry != nil {
			entries = append(entries, res.Entry)
		}
	}
	return entries, p.Stats()
}
