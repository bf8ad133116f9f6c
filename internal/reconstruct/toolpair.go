package reconstruct

import "github.com/clio-cli/clio/internal/model"

// buildToolPairs indexes every tool_use block by id, then scans forward
// in file order for the first tool_result whose tool_use_id matches.
// Subagent stitching (AttachSubagent) extends the search into attached
// subagent conversations for tool_use blocks that spawned them.
func (c *Conversation) buildToolPairs() {
	uses := make(map[string]ToolUseRef)
	var useOrder []string

	for idx, e := range c.entries {
		blocks := contentBlocks(e)
		for ord, b := range blocks {
			if b.Kind == model.BlockToolUse {
				ref := ToolUseRef{EntryIdx: idx, BlockOrdinal: ord, Block: b.ToolUse}
				if _, exists := uses[b.ToolUse.ID]; !exists {
					useOrder = append(useOrder, b.ToolUse.ID)
				}
				uses[b.ToolUse.ID] = ref
			}
		}
	}

	results := make(map[string]ToolResultRef)
	for idx, e := range c.entries {
		blocks := contentBlocks(e)
		for ord, b := range blocks {
			if b.Kind == model.BlockToolResult {
				if _, exists := results[b.ToolResult.ToolUseID]; !exists {
					results[b.ToolResult.ToolUseID] = ToolResultRef{EntryIdx: idx, BlockOrdinal: ord, Block: b.ToolResult}
				}
			}
		}
	}

	for _, id := range useOrder {
		use := uses[id]
		if res, ok := results[id]; ok {
			r := res
			c.toolPairs = append(c.toolPairs, ToolPair{Use: use, Result: &r})
		} else {
			c.toolPairs = append(c.toolPairs, ToolPair{Use: use})
			c.unmatchedToolUse = append(c.unmatchedToolUse, use)
		}
	}
}

// ToolPairs returns every tool_use/tool_result correlation, matched or not.
func (c *Conversation) ToolPairs() []ToolPair { return c.toolPairs }

// contentBlocks extracts the content block slice from an entry's
// message, if any, tolerating string-shorthand content (which has none).
func contentBlocks(e *model.Entry) []model.ContentBlock {
	if e.Message == nil || e.Message.Content.IsString {
		return nil
	}
	return e.Message.Content.Blocks
}
