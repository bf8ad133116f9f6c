// Package store implements the SQLite canonical relational projection
// (spec §4.5): sessions, messages, content blocks, tool results, usage,
// file backups, and an FTS5 index over message bodies.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const SchemaVersion = "1"

// Store wraps a SQLite connection opened for the canonical projection.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates (or reuses) a SQLite database at path with WAL
// journaling and foreign keys enabled, and ensures the schema exists.
// A second concurrent writer to the same path is rejected by the
// caller via ExportBusy (spec §5's "concurrent export to the same
// database file is rejected").
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1) // SQLite supports exactly one writer
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn, path: path}
	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

// Query exposes the underlying connection's read path for
// internal/search's FTS-backed queries without leaking write access.
func (s *Store) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return s.conn.Query(query, args...)
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		project_path TEXT NOT NULL,
		slug TEXT,
		is_subagent BOOLEAN NOT NULL DEFAULT 0,
		agent_hash TEXT,
		file_size INTEGER,
		git_branch TEXT,
		git_commit TEXT
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		uuid TEXT UNIQUE NOT NULL,
		parent_uuid TEXT,
		logical_parent_uuid TEXT,
		type TEXT NOT NULL,
		role TEXT,
		timestamp DATETIME,
		stop_reason TEXT,
		is_sidechain BOOLEAN NOT NULL DEFAULT 0,
		is_api_error BOOLEAN NOT NULL DEFAULT 0,
		retry_attempt INTEGER,
		thinking_level TEXT,
		thinking_disabled BOOLEAN,
		thinking_triggers_json TEXT,
		body_text TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_messages_parent_uuid ON messages(parent_uuid);
	CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);

	CREATE TABLE IF NOT EXISTS content_blocks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		kind TEXT NOT NULL,
		text TEXT,
		tool_use_id TEXT,
		tool_name TEXT,
		tool_input_json TEXT,
		is_error TEXT,
		FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_content_blocks_message_id ON content_blocks(message_id);
	CREATE INDEX IF NOT EXISTS idx_content_blocks_tool_use_id ON content_blocks(tool_use_id);

	CREATE TABLE IF NOT EXISTS tool_results (
		tool_use_id TEXT PRIMARY KEY,
		content TEXT,
		is_error_state TEXT NOT NULL CHECK(is_error_state IN ('true','false','absent'))
	);

	CREATE TABLE IF NOT EXISTS usage (
		message_id INTEGER NOT NULL,
		input_tokens INTEGER,
		output_tokens INTEGER,
		cache_creation_tokens INTEGER,
		cache_read_tokens INTEGER,
		ephemeral_5m INTEGER,
		ephemeral_1h INTEGER,
		FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_usage_message_id ON usage(message_id);

	CREATE TABLE IF NOT EXISTS file_backups (
		session_id TEXT NOT NULL,
		backup_file_name TEXT NOT NULL,
		version INTEGER,
		backup_time DATETIME,
		original_path TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_file_backups_session_id ON file_backups(session_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS fts_messages USING fts5(
		body_text,
		content=messages,
		content_rowid=rowid,
		tokenize='porter unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
		INSERT INTO fts_messages(rowid, body_text) VALUES (new.rowid, new.body_text);
	END;
	CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
		DELETE FROM fts_messages WHERE rowid = old.rowid;
	END;
	CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
		UPDATE fts_messages SET body_text = new.body_text WHERE rowid = new.rowid;
	END;
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO meta(key, value) VALUES ('schema_version', ?)`, SchemaVersion)
	return err
}
