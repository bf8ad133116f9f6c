// Package analytics derives aggregate statistics over a reconstructed
// conversation: message counts, token usage with cache breakdowns, cost
// estimates, tool frequencies, and thinking-block approximations.
package analytics

import (
	"time"

	"github.com/clio-cli/clio/internal/model"
	"github.com/clio-cli/clio/internal/reconstruct"
)

// ModelTokenTotals partitions token usage into the four buckets spec
// §4.4 names.
type ModelTokenTotals struct {
	Input       int64
	Output      int64
	CacheCreate int64
	CacheRead   int64
}

// SessionReport is the output of Analyze.
type SessionReport struct {
	MessageCountsByRole map[string]int
	TurnCount           int

	Start, End time.Time
	Duration   time.Duration

	TokenTotalsByModel map[string]ModelTokenTotals
	CostEstimateByModel map[string]float64
	TotalCostEstimate   float64

	ToolFrequency       map[string]int
	ToolSuccessCount    int
	ToolFailureCount    int
	ToolImplicitCount   int

	ThinkingBlockCount    int
	ThinkingTokenApproxed int64

	Mentions *ExtractedMentions
}

// Analyze computes a SessionReport deterministically from conv; it is
// pure with respect to its input (spec §4.4).
func Analyze(conv *reconstruct.Conversation, rates RateTable) SessionReport {
	r := SessionReport{
		MessageCountsByRole: make(map[string]int),
		TokenTotalsByModel:  make(map[string]ModelTokenTotals),
		CostEstimateByModel: make(map[string]float64),
		ToolFrequency:       make(map[string]int),
	}

	for i := 0; i < conv.Len(); i++ {
		e := conv.Entry(i)
		role := roleOf(e)
		if role != "" {
			r.MessageCountsByRole[role]++
		}

		if !e.Timestamp.IsZero() {
			if r.Start.IsZero() || e.Timestamp.Before(r.Start) {
				r.Start = e.Timestamp
			}
			if e.Timestamp.After(r.End) {
				r.End = e.Timestamp
			}
		}

		if e.Message == nil {
			continue
		}
		if e.Kind == model.EntryAssistant {
			r.TurnCount++
		}

		if e.Message.Usage != nil {
			accumulateUsage(r.TokenTotalsByModel, e.Message.Model, e.Message.Usage)
		}

		for _, block := range contentBlocksOf(e) {
			switch block.Kind {
			case model.BlockToolUse:
				r.ToolFrequency[block.ToolUse.Name]++
			case model.BlockThinking:
				r.ThinkingBlockCount++
				r.ThinkingTokenApproxed += approxThinkingTokens(block.Thinking.Thinking)
			}
		}
	}

	for _, pair := range conv.ToolPairs() {
		if pair.Result == nil {
			r.ToolImplicitCount++
			continue
		}
		switch pair.Result.Block.IsError {
		case model.ErrorTrue:
			r.ToolFailureCount++
		case model.ErrorFalse:
			r.ToolSuccessCount++
		default:
			r.ToolImplicitCount++
		}
	}

	if !r.Start.IsZero() && !r.End.IsZero() {
		r.Duration = r.End.Sub(r.Start)
	}

	for modelName, totals := range r.TokenTotalsByModel {
		cost := rates.Cost(modelName, totals)
		r.CostEstimateByModel[modelName] = cost
		r.TotalCostEstimate += cost
	}

	return r
}

func roleOf(e *model.Entry) string {
	switch e.Kind {
	case model.EntryUser:
		return "user"
	case model.EntryAssistant:
		return "assistant"
	case model.EntrySystem:
		return "system"
	default:
		return ""
	}
}

func contentBlocksOf(e *model.Entry) []model.ContentBlock {
	if e.Message == nil || e.Message.Content.IsString {
		return nil
	}
	return e.Message.Content.Blocks
}

func accumulateUsage(totals map[string]ModelTokenTotals, modelName string, u *model.Usage) {
	t := totals[modelName]
	t.Input += u.InputTokens
	t.Output += u.OutputTokens
	t.CacheCreate += u.CacheCreationInputTokens
	t.CacheRead += u.CacheReadInputTokens
	totals[modelName] = t
}

// approxThinkingTokens estimates token count from character length using
// the conventional ~4 characters-per-token heuristic; spec §9 treats
// exact thinking-token accounting as out of reach (the assistant doesn't
// report it directly), so this is explicitly an approximation.
func approxThinkingTokens(text string) int64 {
	return int64(len(text)) / 4
}
