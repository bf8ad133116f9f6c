package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateShape checks that identity fields required by §3's invariants
// are present and, where they claim to be UUIDs, parse as one. Session
// logs from older schema profiles sometimes carry non-UUID agentId
// values (short hashes), so AgentID is exempted from strict UUID
// parsing and only checked for non-emptiness when present.
func (e *Entry) ValidateShape() error {
	if e.UUID == "" {
		return fmt.Errorf("entry: missing uuid")
	}
	if _, err := uuid.Parse(e.UUID); err != nil {
		return fmt.Errorf("entry: uuid %q: %w", e.UUID, err)
	}
	if e.ParentUUID != "" {
		if _, err := uuid.Parse(e.ParentUUID); err != nil {
			return fmt.Errorf("entry %s: parentUuid %q: %w", e.UUID, e.ParentUUID, err)
		}
	}
	if e.LogicalParentUUID != "" {
		if _, err := uuid.Parse(e.LogicalParentUUID); err != nil {
			return fmt.Errorf("entry %s: logicalParentUuid %q: %w", e.UUID, e.LogicalParentUUID, err)
		}
	}
	if e.SessionID == "" {
		return fmt.Errorf("entry %s: missing sessionId", e.UUID)
	}
	return nil
}
