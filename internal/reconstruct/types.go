// Package reconstruct assembles a stream of parsed entries into a
// conversation DAG: main thread plus sidechains, streaming-chunk
// groupings, tool_use/tool_result correlation, and subagent stitching.
package reconstruct

import (
	"github.com/clio-cli/clio/internal/model"
)

// ToolUseRef locates one tool_use content block within the arena.
type ToolUseRef struct {
	EntryIdx     int
	BlockOrdinal int
	Block        *model.ToolUseBlock
}

// ToolResultRef locates one tool_result content block within the arena.
type ToolResultRef struct {
	EntryIdx     int
	BlockOrdinal int
	Block        *model.ToolResultBlock
}

// ToolPair is a matched (or unmatched) tool_use/tool_result correlation.
type ToolPair struct {
	Use    ToolUseRef
	Result *ToolResultRef // nil if unmatched (e.g. a user-denied tool call)
}

// IntegrityKind names a reconstruction-time data-quality finding (spec §7's Integrity kind).
type IntegrityKind int

const (
	IntegrityDuplicateUUID IntegrityKind = iota
	IntegrityCycleInParents
	IntegrityUnresolvedParent
)

// IntegrityDiagnostic is a recorded, non-fatal integrity finding.
type IntegrityDiagnostic struct {
	Kind   IntegrityKind
	UUID   string
	Detail string
}

// Conversation is the reconstructed tree over one session's entries,
// built as a contiguous arena plus index-keyed side tables rather than
// entries holding raw pointers to one another (spec §9's "reconstruction
// graph" design note).
type Conversation struct {
	entries []*model.Entry
	index   map[string]int // uuid -> arena index

	parent   map[int]int   // child idx -> parent idx, only where resolved
	children map[int][]int // parent idx -> ordered child idxs (file order)

	rootIdxs   []int
	orphanIdxs []int

	mainThread []int // arena idxs, in thread order

	groupOrder []string   // message.id values, first-seen order
	groups     map[string][]int

	toolPairs        []ToolPair
	unmatchedToolUse []ToolUseRef

	subagents map[string]*Conversation // keyed by agentId

	diagnostics []IntegrityDiagnostic
}

// Entry returns the entry at arena index i.
func (c *Conversation) Entry(i int) *model.Entry { return c.entries[i] }

// Len returns the number of entries in the arena.
func (c *Conversation) Len() int { return len(c.entries) }

// AllIndices returns every arena index in file order (the arena's
// append order mirrors the input stream, minus duplicates dropped at
// index time).
func (c *Conversation) AllIndices() []int {
	idxs := make([]int, len(c.entries))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// IndexOf returns the arena index for a uuid, or -1 if not present.
func (c *Conversation) IndexOf(uuid string) int {
	if i, ok := c.index[uuid]; ok {
		return i
	}
	return -1
}

// Roots returns arena indices of entries with no parent reference at all.
func (c *Conversation) Roots() []int { return c.rootIdxs }

// Orphans returns arena indices of entries whose parent reference did
// not resolve to any indexed entry.
func (c *Conversation) Orphans() []int { return c.orphanIdxs }

// MainThread returns the arena indices comprising the main (non-sidechain) path.
func (c *Conversation) MainThread() []int { return c.mainThread }

// Children returns the ordered child indices of the entry at idx.
func (c *Conversation) Children(idx int) []int { return c.children[idx] }

// Parent returns the parent arena index and whether one was resolved.
func (c *Conversation) Parent(idx int) (int, bool) {
	p, ok := c.parent[idx]
	return p, ok
}

// Diagnostics returns integrity findings recorded during the build.
func (c *Conversation) Diagnostics() []IntegrityDiagnostic { return c.diagnostics }

// UnmatchedToolUse returns tool_use blocks with no correlated tool_result.
func (c *Conversation) UnmatchedToolUse() []ToolUseRef { return c.unmatchedToolUse }
