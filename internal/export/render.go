package export

import (
	"strings"

	"github.com/clio-cli/clio/internal/model"
)

// roleOf labels an entry the way every renderer needs to tag it.
func roleOf(e *model.Entry) string {
	switch e.Kind {
	case model.EntryUser:
		return "user"
	case model.EntryAssistant:
		return "assistant"
	case model.EntrySystem:
		return "system"
	case model.EntrySummary:
		return "summary"
	default:
		return string(e.Kind)
	}
}

func contentBlocksOf(e *model.Entry) []model.ContentBlock {
	if e.Message == nil || e.Message.Content.IsString {
		return nil
	}
	return e.Message.Content.Blocks
}

// plainStringContent returns a message's content when it is a plain
// string (not a block array), or "" otherwise.
func plainStringContent(e *model.Entry) string {
	if e.Message == nil || !e.Message.Content.IsString {
		return ""
	}
	return e.Message.Content.String
}

// languageHints maps a handful of common shebang/keyword cues to a
// fenced-code-block language tag. It's a heuristic, not a parser.
func languageHint(code string) string {
	trimmed := strings.TrimSpace(code)
	switch {
	case strings.HasPrefix(trimmed, "#!/bin/bash"), strings.HasPrefix(trimmed, "#!/bin/sh"):
		return "bash"
	case strings.HasPrefix(trimmed, "#!/usr/bin/env python"):
		return "python"
	case strings.HasPrefix(trimmed, "package "):
		return "go"
	case strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "import "):
		return "python"
	case strings.HasPrefix(trimmed, "function ") || strings.HasPrefix(trimmed, "const ") || strings.HasPrefix(trimmed, "let "):
		return "javascript"
	case strings.HasPrefix(trimmed, "<?php"):
		return "php"
	case strings.HasPrefix(trimmed, "SELECT ") || strings.HasPrefix(trimmed, "select "):
		return "sql"
	default:
		return ""
	}
}

// toolResultText flattens a tool_result's string-or-blocks content to
// a single string for rendering.
func toolResultText(c model.ToolResultContent) string {
	switch c.Kind {
	case model.ToolResultContentString:
		return c.String
	case model.ToolResultContentBlocks:
		var b strings.Builder
		for i, block := range c.Blocks {
			if i > 0 {
				b.WriteString("\n")
			}
			if block.Kind == model.BlockText && block.Text != nil {
				b.WriteString(block.Text.Text)
			}
		}
		return b.String()
	default:
		return ""
	}
}

// wrapText wraps s to at most width columns, breaking on whitespace;
// width <= 0 disables wrapping.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out strings.Builder
	for _, paragraph := range strings.Split(s, "\n") {
		out.WriteString(wrapLine(paragraph, width))
		out.WriteString("\n")
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func wrapLine(line string, width int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	var out strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				out.WriteString("\n")
				lineLen = 0
			} else {
				out.WriteString(" ")
				lineLen++
			}
		}
		out.WriteString(w)
		lineLen += len(w)
	}
	return out.String()
}
