package analytics

import "strings"

// longContextInputThreshold is the input-token count above which a
// request bills at the long-context rate, where one is configured.
const longContextInputThreshold = 200_000

// ModelRate is the per-million-token price for one model, with optional
// long-context overrides applied above longContextInputThreshold input
// tokens in a single request (supplemented feature #4, grounded on
// theirongolddev/cburn's ModelPricing).
type ModelRate struct {
	InputPerMTok         float64
	OutputPerMTok        float64
	CacheWrite5mPerMTok  float64
	CacheWrite1hPerMTok  float64
	CacheReadPerMTok     float64
	LongInputPerMTok     *float64
	LongOutputPerMTok    *float64
}

// RateTable maps a normalized model name to its rate. Rates are
// configuration, not canon (spec §9's explicit open-question
// resolution): the table is overridable and the defaults here are a
// starting point, not an authority on current pricing.
type RateTable map[string]ModelRate

// DefaultRateTable returns built-in rates for the model families this
// log format is known to record. Callers override via internal/config's
// PricingOverrides.
func DefaultRateTable() RateTable {
	return RateTable{
		"claude-opus-4": {
			InputPerMTok: 15, OutputPerMTok: 75,
			CacheWrite5mPerMTok: 18.75, CacheWrite1hPerMTok: 30,
			CacheReadPerMTok: 1.5,
		},
		"claude-sonnet-4": {
			InputPerMTok: 3, OutputPerMTok: 15,
			CacheWrite5mPerMTok: 3.75, CacheWrite1hPerMTok: 6,
			CacheReadPerMTok: 0.3,
			LongInputPerMTok:  floatPtr(6),
			LongOutputPerMTok: floatPtr(22.5),
		},
		"claude-haiku-4": {
			InputPerMTok: 0.8, OutputPerMTok: 4,
			CacheWrite5mPerMTok: 1, CacheWrite1hPerMTok: 1.6,
			CacheReadPerMTok: 0.08,
		},
	}
}

func floatPtr(f float64) *float64 { return &f }

// NormalizeModelName strips date suffixes and vendor prefixes so a
// model string like "claude-sonnet-4-20250514" maps to the "claude-sonnet-4"
// rate family.
func NormalizeModelName(name string) string {
	name = strings.TrimPrefix(name, "anthropic/")
	parts := strings.Split(name, "-")
	// Drop a trailing numeric date component (e.g. "20250514").
	if n := len(parts); n > 0 && len(parts[n-1]) == 8 && isAllDigits(parts[n-1]) {
		parts = parts[:n-1]
	}
	return strings.Join(parts, "-")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cost computes Σ tokens × rate_for(model, bucket) for one model's
// accumulated totals, applying the long-context override when the
// model's input total exceeds the threshold and an override is
// configured (spec §4.4's cost formula).
func (rt RateTable) Cost(modelName string, totals ModelTokenTotals) float64 {
	rate, ok := rt[NormalizeModelName(modelName)]
	if !ok {
		return 0
	}

	inputRate, outputRate := rate.InputPerMTok, rate.OutputPerMTok
	if totals.Input > longContextInputThreshold {
		if rate.LongInputPerMTok != nil {
			inputRate = *rate.LongInputPerMTok
		}
		if rate.LongOutputPerMTok != nil {
			outputRate = *rate.LongOutputPerMTok
		}
	}

	const perMillion = 1_000_000
	cost := float64(totals.Input)*inputRate/perMillion +
		float64(totals.Output)*outputRate/perMillion +
		float64(totals.CacheCreate)*rate.CacheWrite5mPerMTok/perMillion +
		float64(totals.CacheRead)*rate.CacheReadPerMTok/perMillion
	return cost
}
