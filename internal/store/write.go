package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// SessionMeta carries the discovery-time facts about a session that
// don't live on any individual entry (spec §4.5's sessions table).
type SessionMeta struct {
	SessionID   string
	ProjectPath string
	Slug        string
	IsSubagent  bool
	AgentHash   string
	FileSize    int64
	GitBranch   string
	GitCommit   string
}

// WriteSession projects one reconstructed conversation into the store
// inside a single transaction (spec §4.5's "writes wrapped in a single
// transaction per session"). Sessions with zero entries are skipped
// entirely, per spec's "must NOT emit rows for sessions that contain
// zero parseable entries" — checked here so every caller, single- or
// multi-session, gets the rule for free.
func (s *Store) WriteSession(meta SessionMeta, conv *reconstruct.Conversation) error {
	if conv.Len() == 0 {
		return nil
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeSessionRow(tx, meta); err != nil {
		return err
	}
	if err := writeMessages(tx, meta.SessionID, conv); err != nil {
		return err
	}
	if err := writeToolResults(tx, conv); err != nil {
		return err
	}

	return tx.Commit()
}

func writeSessionRow(tx *sql.Tx, meta SessionMeta) error {
	_, err := tx.Exec(`
		INSERT INTO sessions (session_id, project_path, slug, is_subagent, agent_hash, file_size, git_branch, git_commit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			project_path = excluded.project_path,
			slug = excluded.slug,
			is_subagent = excluded.is_subagent,
			agent_hash = excluded.agent_hash,
			file_size = excluded.file_size,
			git_branch = excluded.git_branch,
			git_commit = excluded.git_commit
	`, meta.SessionID, meta.ProjectPath, meta.Slug, meta.IsSubagent, meta.AgentHash, meta.FileSize, meta.GitBranch, meta.GitCommit)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func writeMessages(tx *sql.Tx, sessionID string, conv *reconstruct.Conversation) error {
	for _, idx := range conv.AllIndices() {
		e := conv.Entry(idx)

		var role, stopReason, thinkingLevel, triggersJSON string
		var thinkingDisabled sql.NullBool
		var bodyText string
		isAPIError := e.Kind == model.EntrySystem && e.System != nil && e.System.Subtype == model.SubtypeAPIError

		if e.Message != nil {
			role = e.Message.Role
			stopReason = string(e.Message.StopReason)
			bodyText = flattenMessageText(e)
			for _, block := range contentBlocksOf(e) {
				if block.Kind == model.BlockThinking && block.Thinking.Metadata != nil {
					thinkingLevel = block.Thinking.Metadata.Level
					thinkingDisabled = sql.NullBool{Bool: block.Thinking.Metadata.Disabled, Valid: true}
					if b, err := json.Marshal(block.Thinking.Metadata.Triggers); err == nil {
						triggersJSON = string(b)
					}
				}
			}
		}

		res, err := tx.Exec(`
			INSERT INTO messages (
				session_id, uuid, parent_uuid, logical_parent_uuid, type, role, timestamp,
				stop_reason, is_sidechain, is_api_error, thinking_level, thinking_disabled,
				thinking_triggers_json, body_text
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uuid) DO NOTHING
		`, sessionID, e.UUID, nullableString(e.ParentUUID), nullableString(e.LogicalParentUUID),
			string(e.Kind), nullableString(role), e.Timestamp, nullableString(stopReason),
			e.IsSidechain, isAPIError, nullableString(thinkingLevel), thinkingDisabled,
			nullableString(triggersJSON), bodyText)
		if err != nil {
			return fmt.Errorf("insert message %s: %w", e.UUID, err)
		}
		messageID, err := res.LastInsertId()
		if err != nil || messageID == 0 {
			// ON CONFLICT DO NOTHING path: look the row up instead of
			// trusting LastInsertId, which SQLite leaves unchanged then.
			if err := tx.QueryRow(`SELECT id FROM messages WHERE uuid = ?`, e.UUID).Scan(&messageID); err != nil {
				return fmt.Errorf("resolve message id for %s: %w", e.UUID, err)
			}
		}

		if err := writeContentBlocks(tx, messageID, e); err != nil {
			return err
		}
		if e.Message != nil && e.Message.Usage != nil {
			if err := writeUsage(tx, messageID, e.Message.Usage); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeContentBlocks(tx *sql.Tx, messageID int64, e *model.Entry) error {
	if s := plainStringContent(e); s != "" {
		_, err := tx.Exec(`
			INSERT INTO content_blocks (message_id, ordinal, kind, text) VALUES (?, 0, 'text', ?)
		`, messageID, s)
		return err
	}

	for ordinal, block := range contentBlocksOf(e) {
		var text, toolUseID, toolName, toolInputJSON, isError sql.NullString
		switch block.Kind {
		case model.BlockText:
			text = sql.NullString{String: block.Text.Text, Valid: true}
		case model.BlockThinking:
			text = sql.NullString{String: block.Thinking.Thinking, Valid: true}
		case model.BlockToolUse:
			toolUseID = sql.NullString{String: block.ToolUse.ID, Valid: true}
			toolName = sql.NullString{String: block.ToolUse.Name, Valid: true}
			toolInputJSON = sql.NullString{String: string(block.ToolUse.Input), Valid: true}
		case model.BlockToolResult:
			toolUseID = sql.NullString{String: block.ToolResult.ToolUseID, Valid: true}
			text = sql.NullString{String: toolResultFlatten(block.ToolResult.Content), Valid: true}
			isError = sql.NullString{String: block.ToolResult.IsError.String(), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO content_blocks (message_id, ordinal, kind, text, tool_use_id, tool_name, tool_input_json, is_error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, messageID, ordinal, string(block.Kind), text, toolUseID, toolName, toolInputJSON, isError)
		if err != nil {
			return fmt.Errorf("insert content block %d for message %d: %w", ordinal, messageID, err)
		}
	}
	return nil
}

// writeToolResults populates the tool_results table from the
// reconstructed tool_use/tool_result correlation rather than
// re-scanning raw entries, so the PK (tool_use_id) always reflects a
// tool_use that the reconstruction step actually recognized.
func writeToolResults(tx *sql.Tx, conv *reconstruct.Conversation) error {
	for _, pair := range conv.ToolPairs() {
		if pair.Result == nil {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO tool_results (tool_use_id, content, is_error_state)
			VALUES (?, ?, ?)
			ON CONFLICT(tool_use_id) DO UPDATE SET content = excluded.content, is_error_state = excluded.is_error_state
		`, pair.Use.Block.ID, toolResultFlatten(pair.Result.Block.Content), pair.Result.Block.IsError.String())
		if err != nil {
			return fmt.Errorf("insert tool result %s: %w", pair.Use.Block.ID, err)
		}
	}
	return nil
}

// writeUsage populates the usage table from the message's own usage
// block, never from any session-level total (spec §4.5's "per-message
// token columns must be populated from the message's own usage block").
func writeUsage(tx *sql.Tx, messageID int64, u *model.Usage) error {
	_, err := tx.Exec(`
		INSERT INTO usage (message_id, input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens, ephemeral_5m, ephemeral_1h)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, messageID, u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens,
		nullableInt64(u.Ephemeral5mInputTokens), nullableInt64(u.Ephemeral1hInputTokens))
	if err != nil {
		return fmt.Errorf("insert usage for message %d: %w", messageID, err)
	}
	return nil
}

// WriteFileBackups inserts the snapshot-entry file backups recorded for
// a session (spec §4.5's file_backups table).
func (s *Store) WriteFileBackups(sessionID string, backups []model.FileBackup) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, b := range backups {
		_, err := tx.Exec(`
			INSERT INTO file_backups (session_id, backup_file_name, version, backup_time, original_path)
			VALUES (?, ?, ?, ?, ?)
		`, sessionID, b.BackupFileName, b.Version, b.BackupTime, b.OriginalPath)
		if err != nil {
			return fmt.Errorf("insert file backup %s: %w", b.BackupFileName, err)
		}
	}
	return tx.Commit()
}

// WriteAllFileBackups walks every snapshot entry in conv and persists
// its tracked file backups.
func (s *Store) WriteAllFileBackups(sessionID string, conv *reconstruct.Conversation) error {
	for _, idx := range conv.AllIndices() {
		e := conv.Entry(idx)
		if e.Kind != model.EntrySnapshot || e.Snapshot == nil {
			continue
		}
		if err := s.WriteFileBackups(sessionID, e.Snapshot.TrackedFileBackups); err != nil {
			return err
		}
	}
	return nil
}

func contentBlocksOf(e *model.Entry) []model.ContentBlock {
	if e.Message == nil || e.Message.Content.IsString {
		return nil
	}
	return e.Message.Content.Blocks
}

func plainStringContent(e *model.Entry) string {
	if e.Message == nil || !e.Message.Content.IsString {
		return ""
	}
	return e.Message.Content.String
}

func flattenMessageText(e *model.Entry) string {
	if s := plainStringContent(e); s != "" {
		return s
	}
	var out string
	for _, block := range contentBlocksOf(e) {
		if block.Kind == model.BlockText {
			out += block.Text.Text
		}
	}
	return out
}

func toolResultFlatten(c model.ToolResultContent) string {
	switch c.Kind {
	case model.ToolResultContentString:
		return c.String
	case model.ToolResultContentBlocks:
		var out string
		for _, block := range c.Blocks {
			if block.Kind == model.BlockText {
				out += block.Text.Text
			}
		}
		return out
	default:
		return ""
	}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
