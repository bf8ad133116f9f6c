package config

import "github.com/clio-cli/clio/internal/analytics"

// ResolveRates overlays PricingOverrides on top of the built-in default
// rate table; an override with all-nil fields is equivalent to no entry.
func (p PricingOverrides) ResolveRates(base analytics.RateTable) analytics.RateTable {
	out := make(analytics.RateTable, len(base))
	for name, rate := range base {
		out[name] = rate
	}

	for name, override := range p {
		rate := out[name]
		if override.InputPerMTok != nil {
			rate.InputPerMTok = *override.InputPerMTok
		}
		if override.OutputPerMTok != nil {
			rate.OutputPerMTok = *override.OutputPerMTok
		}
		if override.CacheWrite5mPerMTok != nil {
			rate.CacheWrite5mPerMTok = *override.CacheWrite5mPerMTok
		}
		if override.CacheWrite1hPerMTok != nil {
			rate.CacheWrite1hPerMTok = *override.CacheWrite1hPerMTok
		}
		if override.CacheReadPerMTok != nil {
			rate.CacheReadPerMTok = *override.CacheReadPerMTok
		}
		if override.LongInputPerMTok != nil {
			rate.LongInputPerMTok = override.LongInputPerMTok
		}
		if override.LongOutputPerMTok != nil {
			rate.LongOutputPerMTok = override.LongOutputPerMTok
		}
		out[name] = rate
	}
	return out
}
