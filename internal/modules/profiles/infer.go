package profiles

import (
	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/market"
)

// Inference thresholds. A high return target or a loose drawdown limit pushes
// the tier up; tight drawdown limits and crisis conditions push it down.
const (
	aggressiveReturnTarget = 14.0 // percent
	growthReturnTarget     = 10.0
	tightDrawdownLimit     = 10.0 // percent
	looseDrawdownLimit     = 20.0
	strongMarketStrength   = 60.0
)

// Infer derives a risk profile from market conditions and any explicit
// preferences. It is total and deterministic: absent stronger signal the
// result is MODERATE, so an allocation can always be produced.
func Infer(m domain.MarketMetrics, prefs *domain.Preferences) domain.RiskProfile {
	rank := domain.Moderate.Rank()

	if prefs != nil {
		if prefs.TargetReturn != nil {
			switch {
			case *prefs.TargetReturn >= aggressiveReturnTarget:
				rank += 2
			case *prefs.TargetReturn >= growthReturnTarget:
				rank++
			}
		}
		if prefs.MaxDrawdown != nil {
			switch {
			case *prefs.MaxDrawdown <= tightDrawdownLimit:
				rank -= 2
			case *prefs.MaxDrawdown <= looseDrawdownLimit:
				rank--
			}
		}
	}

	if market.IsCrisis(m) {
		rank--
	} else if m.EconomicPhase == domain.PhaseExpansion &&
		m.TrendDirection == domain.TrendUp &&
		m.MarketStrength >= strongMarketStrength {
		rank++
	}

	return domain.ProfileForRank(rank)
}
