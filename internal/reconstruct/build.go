package reconstruct

import (
	"fmt"
	"sort"

	"github.com/clio-cli/clio/internal/model"
)

// Build runs the single-pass reconstruction algorithm (spec §4.3) over
// entries, which must already be in file order. Duplicate UUIDs should
// normally have been filtered by the parser; any that slip through are
// recorded as IntegrityDuplicateUUID and the later occurrence is dropped.
func Build(entries []*model.Entry) *Conversation {
	c := &Conversation{
		index:     make(map[string]int, len(entries)),
		parent:    make(map[int]int),
		children:  make(map[int][]int),
		groups:    make(map[string][]int),
		subagents: make(map[string]*Conversation),
	}

	// 1. Index.
	for _, e := range entries {
		if _, dup := c.index[e.UUID]; dup {
			c.diagnostics = append(c.diagnostics, IntegrityDiagnostic{
				Kind: IntegrityDuplicateUUID, UUID: e.UUID,
				Detail: "duplicate uuid dropped during reconstruction",
			})
			continue
		}
		idx := len(c.entries)
		c.entries = append(c.entries, e)
		c.index[e.UUID] = idx
	}

	// 2. Link + 3. Orphan.
	for idx, e := range c.entries {
		var parentUUID string
		switch {
		case e.ParentUUID != "":
			parentUUID = e.ParentUUID
		case e.LogicalParentUUID != "":
			parentUUID = e.LogicalParentUUID
		default:
			c.rootIdxs = append(c.rootIdxs, idx)
			continue
		}

		parentIdx, ok := c.index[parentUUID]
		if !ok {
			c.orphanIdxs = append(c.orphanIdxs, idx)
			continue
		}
		if introducesCycle(c, idx, parentIdx) {
			c.diagnostics = append(c.diagnostics, IntegrityDiagnostic{
				Kind: IntegrityCycleInParents, UUID: e.UUID,
				Detail: fmt.Sprintf("parent edge to %s dropped to break cycle", parentUUID),
			})
			c.orphanIdxs = append(c.orphanIdxs, idx)
			continue
		}
		c.parent[idx] = parentIdx
		c.children[parentIdx] = append(c.children[parentIdx], idx)
	}

	// 4. Branch classification is implicit: IsSidechain is read directly
	// off each entry by MainThread and Branch, rather than materialized
	// into a separate side table.

	// 5. Main thread.
	c.mainThread = computeMainThread(c)

	// 6. Streaming groups.
	c.buildGroups()

	// 7. Tool pairing.
	c.buildToolPairs()

	return c
}

// introducesCycle reports whether adding an edge child->parent would
// create a cycle, by walking parent links from parentIdx back toward
// the root looking for child.
func introducesCycle(c *Conversation, child, parent int) bool {
	seen := map[int]bool{child: true}
	cur := parent
	for {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		next, ok := c.parent[cur]
		if !ok {
			return false
		}
		cur = next
	}
}

func computeMainThread(c *Conversation) []int {
	if len(c.rootIdxs) == 0 {
		return nil
	}

	roots := append([]int(nil), c.rootIdxs...)
	sort.Slice(roots, func(i, j int) bool {
		a, b := c.entries[roots[i]], c.entries[roots[j]]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.UUID < b.UUID
	})
	start := roots[0]

	var thread []int
	cur := start
	for {
		thread = append(thread, cur)
		next := bestNonSidechainChild(c, cur)
		if next < 0 {
			break
		}
		cur = next
	}
	return thread
}

// bestNonSidechainChild returns the non-sidechain child of idx with the
// highest timestamp (ties broken by uuid), or -1 if none exists.
func bestNonSidechainChild(c *Conversation, idx int) int {
	best := -1
	for _, child := range c.children[idx] {
		if c.entries[child].IsSidechain {
			continue
		}
		if best < 0 {
			best = child
			continue
		}
		a, b := c.entries[best], c.entries[child]
		if b.Timestamp.After(a.Timestamp) || (b.Timestamp.Equal(a.Timestamp) && b.UUID > a.UUID) {
			best = child
		}
	}
	return best
}

// Branch returns the arena indices of the sidechain subtree rooted at
// the entry with the given uuid, in file order. If the entry is not a
// sidechain root (its own parent is also a sidechain, or it doesn't
// exist), Branch returns nil.
func (c *Conversation) Branch(uuid string) []int {
	idx, ok := c.index[uuid]
	if !ok || !c.entries[idx].IsSidechain {
		return nil
	}
	if p, ok := c.parent[idx]; ok && c.entries[p].IsSidechain {
		return nil
	}

	var out []int
	var walk func(int)
	walk = func(i int) {
		out = append(out, i)
		for _, ch := range c.children[i] {
			walk(ch)
		}
	}
	walk(idx)
	return out
}
