package reconstruct

// StreamingGroup is one logical assistant turn assembled from JSONL
// chunks sharing the same message.id. This is a derived view only: it
// never coalesces entries in the arena (spec §9, "streaming groups are
// a derived view, not a mutation").
type StreamingGroup struct {
	MessageID string
	EntryIdxs []int // arena indices, file order
}

func (c *Conversation) buildGroups() {
	for idx, e := range c.entries {
		if e.Message == nil || e.Message.ID == "" {
			continue
		}
		id := e.Message.ID
		if _, seen := c.groups[id]; !seen {
			c.groupOrder = append(c.groupOrder, id)
		}
		c.groups[id] = append(c.groups[id], idx)
	}
}

// Groups returns all streaming groups, in order of first appearance.
func (c *Conversation) Groups() []StreamingGroup {
	out := make([]StreamingGroup, 0, len(c.groupOrder))
	for _, id := range c.groupOrder {
		out = append(out, StreamingGroup{MessageID: id, EntryIdxs: c.groups[id]})
	}
	return out
}

// Group returns the streaming group for a given message.id, if any.
func (c *Conversation) Group(messageID string) (StreamingGroup, bool) {
	idxs, ok := c.groups[messageID]
	if !ok {
		return StreamingGroup{}, false
	}
	return StreamingGroup{MessageID: messageID, EntryIdxs: idxs}, true
}
