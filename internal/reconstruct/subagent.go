package reconstruct

import (
	"bytes"
	"encoding/json"
)

// taskSpawningToolNames lists tool_use names whose input designates a
// subagent to attach as a child subtree. "Task" is the name the
// assistant uses for its general-purpose subagent dispatcher.
var taskSpawningToolNames = map[string]bool{
	"Task": true,
}

// IsTaskSpawning reports whether a tool_use name spawns a subagent.
func IsTaskSpawning(toolName string) bool {
	return taskSpawningToolNames[toolName]
}

// AgentIDFromInput extracts the agentId a task-spawning tool_use's input
// designates, if present.
func AgentIDFromInput(input []byte) (string, bool) {
	if len(bytes.TrimSpace(input)) == 0 {
		return "", false
	}
	var head struct {
		AgentID string `json:"agentId"`
	}
	if err := json.Unmarshal(input, &head); err != nil {
		return "", false
	}
	if head.AgentID == "" {
		return "", false
	}
	return head.AgentID, true
}

// AttachSubagent attaches sub as the child conversation spawned by the
// tool_use at (entryIdx, blockOrdinal), and folds any of sub's tool
// results into this conversation's unmatched tool_use pairings (step 8,
// spec §4.3: tool pairing also scans descendant subagent sessions).
func (c *Conversation) AttachSubagent(agentID string, sub *Conversation) {
	c.subagents[agentID] = sub

	if sub == nil {
		return
	}
	var stillUnmatched []ToolUseRef
	for _, use := range c.unmatchedToolUse {
		matched := false
		for _, pair := range sub.toolPairs {
			if pair.Use.Block.ID == use.Block.ID && pair.Result != nil {
				for i := range c.toolPairs {
					if c.toolPairs[i].Use.Block == use.Block {
						r := *pair.Result
						c.toolPairs[i].Result = &r
						matched = true
						break
					}
				}
			}
		}
		if !matched {
			stillUnmatched = append(stillUnmatched, use)
		}
	}
	c.unmatchedToolUse = stillUnmatched
}

// Subagent returns the attached subagent conversation for an agentId, if any.
func (c *Conversation) Subagent(agentID string) (*Conversation, bool) {
	sub, ok := c.subagents[agentID]
	return sub, ok
}

// SubagentAgentIDs returns the agentIds of all attached subagent conversations.
func (c *Conversation) SubagentAgentIDs() []string {
	ids := make([]string, 0, len(c.subagents))
	for id := range c.subagents {
		ids = append(ids, id)
	}
	return ids
}
