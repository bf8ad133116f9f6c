// Package search implements both structured in-memory queries over a
// single reconstructed conversation and FTS5-backed search against the
// internal/store projection for multi-session lookups.
package search

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// Query is a structured in-memory search request (spec §5's
// "search over N files" and exit code 7's "search error").
type Query struct {
	// Pattern is matched against message text. If Regex is set, it is
	// compiled and matched as a regular expression; otherwise it is a
	// case-insensitive substring match.
	Pattern string
	Regex   bool

	Role           string // "", "user", "assistant", "system"
	IncludeSidechains bool
}

// Match is one hit within a conversation.
type Match struct {
	EntryIdx int
	UUID     string
	Role     string
	Snippet  string
}

// Run executes q against conv in memory, without touching a store.
func Run(conv *reconstruct.Conversation, q Query) ([]Match, error) {
	var re *regexp.Regexp
	if q.Regex {
		compiled, err := regexp.Compile(q.Pattern)
		if err != nil {
			return nil, fmt.Errorf("search: invalid regex %q: %w", q.Pattern, err)
		}
		re = compiled
	}

	var matches []Match
	indices := conv.AllIndices()
	if !q.IncludeSidechains {
		indices = conv.MainThread()
	}

	for _, idx := range indices {
		e := conv.Entry(idx)
		role := roleOf(e)
		if role == "" {
			continue
		}
		if q.Role != "" && q.Role != role {
			continue
		}

		text := flattenText(e)
		if text == "" {
			continue
		}

		var hit bool
		if re != nil {
			hit = re.MatchString(text)
		} else if q.Pattern != "" {
			hit = strings.Contains(strings.ToLower(text), strings.ToLower(q.Pattern))
		} else {
			hit = true
		}
		if !hit {
			continue
		}

		matches = append(matches, Match{
			EntryIdx: idx,
			UUID:     e.UUID,
			Role:     role,
			Snippet:  snippet(text, 160),
		})
	}
	return matches, nil
}

func roleOf(e *model.Entry) string {
	switch e.Kind {
	case model.EntryUser:
		return "user"
	case model.EntryAssistant:
		return "assistant"
	case model.EntrySystem:
		return "system"
	default:
		return ""
	}
}

func flattenText(e *model.Entry) string {
	if e.Message == nil {
		return ""
	}
	if e.Message.Content.IsString {
		return e.Message.Content.String
	}
	var out strings.Builder
	for _, block := range e.Message.Content.Blocks {
		if block.Kind == model.BlockText {
			out.WriteString(block.Text.Text)
		}
	}
	return out.String()
}

func snippet(text string, maxLen int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// StoreResult is one FTS5-backed hit against the canonical SQLite
// projection, spanning sessions.
type StoreResult struct {
	MessageUUID string
	SessionID   string
	ProjectPath string
	Snippet     string
	Timestamp   string
}

// conn is the minimal subset of *sql.DB the store-backed search needs;
// internal/store.Store exposes its *sql.DB via this same shape so
// search doesn't need to import database/sql types from store directly.
type conn interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

const defaultOrderBy = "m.timestamp DESC"

// Store performs a full-text search over the fts_messages virtual
// table. Queries containing FTS5-unfriendly special characters fall
// back to a LIKE substring scan, mirroring the same split the in-tree
// reference search implementation makes for punctuation-heavy queries
// (identifiers, flags, issue IDs).
func Store(db conn, query string, limit int) ([]StoreResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: query cannot be empty")
	}
	if limit <= 0 {
		limit = 1000
	}

	var rows *sql.Rows
	var err error

	if strings.ContainsAny(query, "-_@#$%&") {
		rows, err = db.Query(fmt.Sprintf(`
			SELECT m.uuid, s.session_id, s.project_path, m.body_text, m.timestamp
			FROM messages m
			JOIN sessions s ON s.session_id = m.session_id
			WHERE m.body_text LIKE '%%' || ? || '%%'
			ORDER BY %s
			LIMIT ?
		`, defaultOrderBy), query, limit)
	} else {
		rows, err = db.Query(fmt.Sprintf(`
			SELECT m.uuid, s.session_id, s.project_path,
			       snippet(fts_messages, -1, '', '', '...', 64), m.timestamp
			FROM fts_messages
			JOIN messages m ON fts_messages.rowid = m.rowid
			JOIN sessions s ON s.session_id = m.session_id
			WHERE fts_messages MATCH ?
			ORDER BY %s
			LIMIT ?
		`, defaultOrderBy), query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []StoreResult
	for rows.Next() {
		var r StoreResult
		if err := rows.Scan(&r.MessageUUID, &r.SessionID, &r.ProjectPath, &r.Snippet, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
