// Package market applies condition-driven tilts to baseline allocations.
// All tilts are multiplicative and composable; none of them normalizes, so
// the output is a raw, non-negative weight vector for the optimizer.
package market

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
)

// Crisis regime thresholds. All three must hold simultaneously.
const (
	CrisisVolatilityIndex = 30.0
	CrisisSentimentScore  = 25.0
	CrisisCreditSpread    = 400.0 // bps
)

// Tilt magnitudes. Documented in SPEC_FULL.md; chosen for the directional
// properties the engine guarantees, not calibrated against history.
const (
	crisisDefensiveBoost = 1.6
	crisisSpeculativeCut = 0.35
	trendTiltStrength    = 0.25
	inflationKnee        = 3.0 // percent; tilts start above this
	inflationSlope       = 0.04
	rateCutHigh          = 0.75
	rateCutMedium        = 0.92
)

// IsCrisis reports whether the snapshot qualifies as a crisis regime:
// elevated volatility, depressed sentiment and stressed credit at once.
func IsCrisis(m domain.MarketMetrics) bool {
	return m.VolatilityIndex >= CrisisVolatilityIndex &&
		m.SentimentScore <= CrisisSentimentScore &&
		m.CreditSpread >= CrisisCreditSpread
}

// Adjuster converts baseline weights into condition-tilted weights.
type Adjuster struct {
	log zerolog.Logger
}

// NewAdjuster creates a new market condition adjuster.
func NewAdjuster(log zerolog.Logger) *Adjuster {
	return &Adjuster{
		log: log.With().Str("component", "market_adjuster").Logger(),
	}
}

// Apply returns a tilted copy of weights. Tilts never produce negative
// weights and never renormalize; that happens after the optimizer runs.
func (a *Adjuster) Apply(weights domain.Weights, m domain.MarketMetrics) domain.Weights {
	tilted := weights.Clone()
	crisis := IsCrisis(m)

	for class := range tilted {
		factor := 1.0

		if crisis {
			switch class {
			case domain.ETF:
				factor *= crisisDefensiveBoost
			case domain.Options, domain.Futures, domain.Crypto:
				factor *= crisisSpeculativeCut
			}
		}

		if class == domain.Crypto {
			factor *= cryptoVolatilityMultiplier(m.VolatilityIndex)
		}

		if class == domain.Equities || class == domain.Options {
			factor *= trendMultiplier(m)
		}

		if class == domain.Futures || class == domain.Options {
			factor *= ratesInflationMultiplier(m)
		}

		factor *= phaseMultiplier(class, m.EconomicPhase)

		tilted[class] = math.Max(0, tilted[class]*factor)
	}

	a.log.Debug().
		Bool("crisis", crisis).
		Float64("volatility_index", m.VolatilityIndex).
		Str("trend", string(m.TrendDirection)).
		Msg("Applied market condition tilts")

	return tilted
}

// cryptoVolatilityMultiplier decays continuously as the volatility index
// rises, so two otherwise-identical inputs can never give the higher-vol one
// a larger CRYPTO weight. This is deliberately not a step function.
func cryptoVolatilityMultiplier(volatilityIndex float64) float64 {
	factor := 1.25 - volatilityIndex/40.0
	return math.Min(1.25, math.Max(0.15, factor))
}

// trendMultiplier raises growth classes in a strong up-trend and lowers them
// symmetrically in a down-trend, scaled by market strength.
func trendMultiplier(m domain.MarketMetrics) float64 {
	strength := math.Min(100, math.Max(0, m.MarketStrength)) / 100.0
	switch m.TrendDirection {
	case domain.TrendUp:
		return 1.0 + trendTiltStrength*strength
	case domain.TrendDown:
		return 1.0 - trendTiltStrength*strength
	default:
		return 1.0
	}
}

// ratesInflationMultiplier trims leveraged and duration-sensitive classes as
// rates and inflation rise.
func ratesInflationMultiplier(m domain.MarketMetrics) float64 {
	factor := 1.0
	switch m.InterestRateLevel {
	case domain.RatesHigh:
		factor *= rateCutHigh
	case domain.RatesMedium:
		factor *= rateCutMedium
	}
	if m.InflationRate > inflationKnee {
		factor *= math.Max(0.5, 1.0-inflationSlope*(m.InflationRate-inflationKnee))
	}
	return factor
}

// phaseMultiplier applies mild business-cycle tilts.
func phaseMultiplier(class domain.AssetClass, phase domain.EconomicPhase) float64 {
	switch phase {
	case domain.PhaseExpansion:
		if class == domain.Equities {
			return 1.05
		}
	case domain.PhasePeak:
		if class == domain.Equities || class == domain.Options {
			return 0.95
		}
	case domain.PhaseContraction:
		switch class {
		case domain.ETF:
			return 1.10
		case domain.Equities:
			return 0.90
		}
	case domain.PhaseTrough:
		if class == domain.Equities {
			return 1.05
		}
	}
	return 1.0
}
