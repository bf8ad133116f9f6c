package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// EntryKind discriminates the top-level entry tagged union.
type EntryKind string

const (
	EntryUser           EntryKind = "user"
	EntryAssistant      EntryKind = "assistant"
	EntrySystem         EntryKind = "system"
	EntrySummary        EntryKind = "summary"
	EntrySnapshot       EntryKind = "snapshot"
	EntryQueueOperation EntryKind = "queue-operation"
	EntryTurnEnd        EntryKind = "turn_end"
)

// SystemSubtype further tags system entries.
type SystemSubtype string

const (
	SubtypeCompactBoundary  SystemSubtype = "compact_boundary"
	SubtypeStopHookSummary  SystemSubtype = "stop_hook_summary"
	SubtypeAPIError         SystemSubtype = "api_error"
	SubtypeLocalCommand     SystemSubtype = "local_command"
)

// QueueOp names a queue-operation entry's action.
type QueueOp string

const (
	QueueEnqueue QueueOp = "enqueue"
	QueueDequeue QueueOp = "dequeue"
	QueueRemove  QueueOp = "remove"
	QueuePopAll  QueueOp = "popAll"
)

// Common carries the fields every entry variant shares, regardless of
// Kind. ParentUUID, LogicalParentUUID, AgentID, and Slug are optional
// and represented as pointers/empty strings to distinguish "absent"
// from "present but empty" where the distinction matters for linking.
type Common struct {
	UUID              string
	ParentUUID        string
	LogicalParentUUID string
	SessionID         string
	Timestamp         time.Time
	Cwd               string
	GitBranch         string
	Version           string
	UserType          string
	IsSidechain       bool
	IsTeammate        bool
	AgentID           string
	Slug              string
}

// Entry is one parsed line of a session log file. Exactly one of the
// payload fields below is non-nil, selected by Kind.
type Entry struct {
	Kind EntryKind
	Common

	Message *Message

	Summary        *SummaryPayload
	Snapshot       *SnapshotPayload
	QueueOperation *QueueOperationPayload
	System         *SystemPayload

	// Extra holds top-level keys not captured by Common or the active
	// payload. It does not include keys consumed by the payload itself
	// (those live on the payload's own Extra bag).
	Extra UnknownFields

	// Raw is the original source line, sans trailing newline, retained
	// for lossless JSONL replay. Populated by the parser, not by
	// UnmarshalJSON, since a single line may be handed here without its
	// terminator.
	Raw []byte
}

var commonKnownKeys = map[string]bool{
	"type": true, "uuid": true, "parentUuid": true, "logicalParentUuid": true,
	"sessionId": true, "timestamp": true, "cwd": true, "gitBranch": true,
	"version": true, "userType": true, "isSidechain": true, "isTeammate": true,
	"agentId": true, "slug": true, "message": true,
}

type rawEntryHead struct {
	Type              string  `json:"type"`
	UUID              string  `json:"uuid"`
	ParentUUID        *string `json:"parentUuid"`
	LogicalParentUUID *string `json:"logicalParentUuid"`
	SessionID         string  `json:"sessionId"`
	Timestamp         string  `json:"timestamp"`
	Cwd               string  `json:"cwd"`
	GitBranch         string  `json:"gitBranch"`
	Version           string  `json:"version"`
	UserType          string  `json:"userType"`
	IsSidechain       bool    `json:"isSidechain"`
	IsTeammate        bool    `json:"isTeammate"`
	AgentID           string  `json:"agentId"`
	Slug              string  `json:"slug"`
}

// UnmarshalJSON decodes the common envelope, then dispatches to the
// payload matching the "type" discriminator.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var head rawEntryHead
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("entry envelope: %w", err)
	}

	ts, err := parseTimestamp(head.Timestamp)
	if err != nil {
		return fmt.Errorf("entry %s: timestamp: %w", head.UUID, err)
	}

	e.Kind = EntryKind(head.Type)
	e.Common = Common{
		UUID:        head.UUID,
		SessionID:   head.SessionID,
		Timestamp:   ts,
		Cwd:         head.Cwd,
		GitBranch:   head.GitBranch,
		Version:     head.Version,
		UserType:    head.UserType,
		IsSidechain: head.IsSidechain,
		IsTeammate:  head.IsTeammate,
		AgentID:     head.AgentID,
		Slug:        head.Slug,
	}
	if head.ParentUUID != nil {
		e.Common.ParentUUID = *head.ParentUUID
	}
	if head.LogicalParentUUID != nil {
		e.Common.LogicalParentUUID = *head.LogicalParentUUID
	}

	known := commonKnownKeys
	switch e.Kind {
	case EntryUser, EntryAssistant:
		var withMsg struct {
			Message *Message `json:"message"`
		}
		if err := json.Unmarshal(data, &withMsg); err != nil {
			return fmt.Errorf("entry %s: message: %w", head.UUID, err)
		}
		e.Message = withMsg.Message

	case EntrySystem:
		var withMsg struct {
			Message *Message `json:"message"`
		}
		if err := json.Unmarshal(data, &withMsg); err != nil {
			return fmt.Errorf("entry %s: message: %w", head.UUID, err)
		}
		e.Message = withMsg.Message
		sys, sysKnown, err := decodeSystemPayload(data)
		if err != nil {
			return fmt.Errorf("entry %s: %w", head.UUID, err)
		}
		e.System = sys
		known = mergeKnown(commonKnownKeys, sysKnown)

	case EntrySummary:
		var raw struct {
			Summary  string `json:"summary"`
			LeafUUID string `json:"leafUuid"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("entry %s: summary: %w", head.UUID, err)
		}
		e.Summary = &SummaryPayload{Summary: raw.Summary, LeafUUID: raw.LeafUUID}
		known = mergeKnown(commonKnownKeys, map[string]bool{"summary": true, "leafUuid": true})

	case EntrySnapshot:
		snap, err := decodeSnapshotPayload(data)
		if err != nil {
			return fmt.Errorf("entry %s: %w", head.UUID, err)
		}
		e.Snapshot = snap
		known = mergeKnown(commonKnownKeys, map[string]bool{"trackedFileBackups": true})

	case EntryQueueOperation:
		var raw struct {
			Operation string          `json:"operation"`
			Payload   json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("entry %s: queue-operation: %w", head.UUID, err)
		}
		e.QueueOperation = &QueueOperationPayload{Operation: QueueOp(raw.Operation), Payload: raw.Payload}
		known = mergeKnown(commonKnownKeys, map[string]bool{"operation": true, "payload": true})

	case EntryTurnEnd:
		// no payload beyond the common envelope

	default:
		return fmt.Errorf("entry %s: unknown type %q", head.UUID, head.Type)
	}

	extra, err := collectUnknown(data, known)
	if err != nil {
		return fmt.Errorf("entry %s: %w", head.UUID, err)
	}
	e.Extra = extra
	return nil
}

func mergeKnown(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// SummaryPayload anchors a post-compaction segment to its pre-compaction leaf.
type SummaryPayload struct {
	Summary  string
	LeafUUID string
}

// FileBackup is one element of a snapshot entry's trackedFileBackups list.
type FileBackup struct {
	BackupFileName string
	Version        int
	BackupTime     time.Time
	OriginalPath   string
}

// SnapshotPayload carries a file-history checkpoint.
type SnapshotPayload struct {
	TrackedFileBackups []FileBackup
}

func decodeSnapshotPayload(data []byte) (*SnapshotPayload, error) {
	var raw struct {
		TrackedFileBackups []struct {
			BackupFileName string `json:"backupFileName"`
			Version        int    `json:"version"`
			BackupTime     string `json:"backupTime"`
			OriginalPath   string `json:"originalPath"`
		} `json:"trackedFileBackups"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	backups := make([]FileBackup, 0, len(raw.TrackedFileBackups))
	for _, b := range raw.TrackedFileBackups {
		t, err := parseTimestamp(b.BackupTime)
		if err != nil {
			return nil, fmt.Errorf("snapshot.trackedFileBackups[].backupTime: %w", err)
		}
		backups = append(backups, FileBackup{
			BackupFileName: b.BackupFileName,
			Version:        b.Version,
			BackupTime:     t,
			OriginalPath:   b.OriginalPath,
		})
	}
	return &SnapshotPayload{TrackedFileBackups: backups}, nil
}

// QueueOperationPayload carries a queued-message management action.
type QueueOperationPayload struct {
	Operation QueueOp
	Payload   json.RawMessage
}

// APIError is the payload of a system entry tagged subtype=api_error.
type APIError struct {
	Status       int
	Error        string
	RetryAttempt int
	MaxRetries   int
	RetryInMs    int64
	Cause        string
}

// SystemPayload carries the subtype tag and, for api_error, structured detail.
type SystemPayload struct {
	Subtype  SystemSubtype
	APIError *APIError
}

func decodeSystemPayload(data []byte) (*SystemPayload, map[string]bool, error) {
	var head struct {
		Subtype string `json:"subtype"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, nil, fmt.Errorf("system: %w", err)
	}
	payload := &SystemPayload{Subtype: SystemSubtype(head.Subtype)}
	known := map[string]bool{"subtype": true}

	if payload.Subtype == SubtypeAPIError {
		var raw struct {
			Status       int     `json:"status"`
			Error        string  `json:"error"`
			RetryAttempt int     `json:"retryAttempt"`
			MaxRetries   int     `json:"maxRetries"`
			RetryInMs    int64   `json:"retryInMs"`
			Cause        *string `json:"cause"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("system.api_error: %w", err)
		}
		ae := &APIError{
			Status:       raw.Status,
			Error:        raw.Error,
			RetryAttempt: raw.RetryAttempt,
			MaxRetries:   raw.MaxRetries,
			RetryInMs:    raw.RetryInMs,
		}
		if raw.Cause != nil {
			ae.Cause = *raw.Cause
		}
		payload.APIError = ae
		known["status"] = true
		known["error"] = true
		known["retryAttempt"] = true
		known["maxRetries"] = true
		known["retryInMs"] = true
		known["cause"] = true
	}

	return payload, known, nil
}

// MarshalJSON re-serializes the entry, re-emitting unknown fields after
// known envelope and payload fields so lossless export round-trips.
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"type":%s,"uuid":%s`, mustJSON(string(e.Kind)), mustJSON(e.UUID))

	if e.ParentUUID != "" {
		buf.WriteString(`,"parentUuid":`)
		buf.Write(mustJSON(e.ParentUUID))
	} else {
		buf.WriteString(`,"parentUuid":null`)
	}
	if e.LogicalParentUUID != "" {
		buf.WriteString(`,"logicalParentUuid":`)
		buf.Write(mustJSON(e.LogicalParentUUID))
	}
	fmt.Fprintf(&buf, `,"sessionId":%s`, mustJSON(e.SessionID))
	if !e.Timestamp.IsZero() {
		buf.WriteString(`,"timestamp":`)
		buf.Write(mustJSON(e.Timestamp.UTC().Format(time.RFC3339Nano)))
	}
	fmt.Fprintf(&buf, `,"cwd":%s`, mustJSON(e.Cwd))
	if e.GitBranch != "" {
		buf.WriteString(`,"gitBranch":`)
		buf.Write(mustJSON(e.GitBranch))
	}
	fmt.Fprintf(&buf, `,"version":%s`, mustJSON(e.Version))
	if e.UserType != "" {
		buf.WriteString(`,"userType":`)
		buf.Write(mustJSON(e.UserType))
	}
	fmt.Fprintf(&buf, `,"isSidechain":%t,"isTeammate":%t`, e.IsSidechain, e.IsTeammate)
	if e.AgentID != "" {
		buf.WriteString(`,"agentId":`)
		buf.Write(mustJSON(e.AgentID))
	}
	if e.Slug != "" {
		buf.WriteString(`,"slug":`)
		buf.Write(mustJSON(e.Slug))
	}

	if e.Message != nil {
		msg, err := json.Marshal(*e.Message)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"message":`)
		buf.Write(msg)
	}

	switch e.Kind {
	case EntrySummary:
		if e.Summary != nil {
			fmt.Fprintf(&buf, `,"summary":%s,"leafUuid":%s`, mustJSON(e.Summary.Summary), mustJSON(e.Summary.LeafUUID))
		}
	case EntrySnapshot:
		if e.Snapshot != nil {
			buf.WriteString(`,"trackedFileBackups":[`)
			for i, b := range e.Snapshot.TrackedFileBackups {
				if i > 0 {
					buf.WriteByte(',')
				}
				fmt.Fprintf(&buf, `{"backupFileName":%s,"version":%d,"backupTime":%s,"originalPath":%s}`,
					mustJSON(b.BackupFileName), b.Version, mustJSON(b.BackupTime.UTC().Format(time.RFC3339Nano)), mustJSON(b.OriginalPath))
			}
			buf.WriteByte(']')
		}
	case EntryQueueOperation:
		if e.QueueOperation != nil {
			buf.WriteString(`,"operation":`)
			buf.Write(mustJSON(string(e.QueueOperation.Operation)))
			if len(e.QueueOperation.Payload) > 0 {
				buf.WriteString(`,"payload":`)
				buf.Write(e.QueueOperation.Payload)
			}
		}
	case EntrySystem:
		if e.System != nil {
			buf.WriteString(`,"subtype":`)
			buf.Write(mustJSON(string(e.System.Subtype)))
			if e.System.APIError != nil {
				ae := e.System.APIError
				fmt.Fprintf(&buf, `,"status":%d,"error":%s,"retryAttempt":%d,"maxRetries":%d,"retryInMs":%d`,
					ae.Status, mustJSON(ae.Error), ae.RetryAttempt, ae.MaxRetries, ae.RetryInMs)
				if ae.Cause != "" {
					buf.WriteString(`,"cause":`)
					buf.Write(mustJSON(ae.Cause))
				}
			}
		}
	}

	if err := e.Extra.WriteJSON(&buf, nil); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
