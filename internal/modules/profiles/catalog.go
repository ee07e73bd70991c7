// Package profiles holds the static risk-profile catalog and the
// deterministic profile inference used when a caller does not name a tier.
package profiles

import "github.com/quantfolio/allocengine/internal/domain"

// catalog is the process-wide, read-only table of the five canonical tiers.
// Base allocations intentionally sum to <= 1.0; the remainder is an
// unallocated buffer resolved by the downstream normalization step.
var catalog = map[domain.RiskProfile]domain.RiskProfileDefinition{
	domain.Conservative: {
		Profile: domain.Conservative,
		BaseAllocations: domain.Weights{
			domain.ETF:      0.50,
			domain.Equities: 0.20,
			domain.Forex:    0.15,
			domain.Options:  0.05,
			domain.Futures:  0.00,
			domain.Crypto:   0.00,
		},
		RiskScore:     20,
		TargetReturn:  5.0,
		MaxVolatility: 8.0,
		Description:   "Capital preservation first: broad ETF core, no leveraged or speculative instruments.",
	},
	domain.ModerateConservative: {
		Profile: domain.ModerateConservative,
		BaseAllocations: domain.Weights{
			domain.ETF:      0.42,
			domain.Equities: 0.30,
			domain.Forex:    0.12,
			domain.Options:  0.06,
			domain.Futures:  0.03,
			domain.Crypto:   0.02,
		},
		RiskScore:     35,
		TargetReturn:  7.0,
		MaxVolatility: 12.0,
		Description:   "Defensive tilt with a modest equity sleeve and token alternative exposure.",
	},
	domain.Moderate: {
		Profile: domain.Moderate,
		BaseAllocations: domain.Weights{
			domain.ETF:      0.35,
			domain.Equities: 0.38,
			domain.Forex:    0.08,
			domain.Options:  0.08,
			domain.Futures:  0.05,
			domain.Crypto:   0.04,
		},
		RiskScore:     50,
		TargetReturn:  9.0,
		MaxVolatility: 16.0,
		Description:   "Balanced growth: equities and ETFs split the core, alternatives stay minor.",
	},
	domain.ModerateAggressive: {
		Profile: domain.ModerateAggressive,
		BaseAllocations: domain.Weights{
			domain.ETF:      0.25,
			domain.Equities: 0.45,
			domain.Forex:    0.06,
			domain.Options:  0.10,
			domain.Futures:  0.07,
			domain.Crypto:   0.07,
		},
		RiskScore:     65,
		TargetReturn:  12.0,
		MaxVolatility: 22.0,
		Description:   "Growth oriented: equity-led with meaningful option and futures overlays.",
	},
	domain.Aggressive: {
		Profile: domain.Aggressive,
		BaseAllocations: domain.Weights{
			domain.ETF:      0.15,
			domain.Equities: 0.50,
			domain.Forex:    0.05,
			domain.Options:  0.12,
			domain.Futures:  0.08,
			domain.Crypto:   0.10,
		},
		RiskScore:     80,
		TargetReturn:  16.0,
		MaxVolatility: 30.0,
		Description:   "Maximum growth: the largest equity weight of all tiers plus full alternative exposure.",
	},
}

// Get returns the catalog definition for profile. The second return value is
// false for unrecognized input; the lookup never fails with an error. The
// returned definition is a copy, so callers cannot mutate the catalog.
func Get(profile domain.RiskProfile) (domain.RiskProfileDefinition, bool) {
	def, ok := catalog[profile]
	if !ok {
		return domain.RiskProfileDefinition{}, false
	}
	def.BaseAllocations = def.BaseAllocations.Clone()
	return def, true
}

// Definitions returns all five tier definitions in ascending risk order.
func Definitions() []domain.RiskProfileDefinition {
	out := make([]domain.RiskProfileDefinition, 0, len(domain.AllRiskProfiles))
	for _, profile := range domain.AllRiskProfiles {
		def, _ := Get(profile)
		out = append(out, def)
	}
	return out
}
