package risk

import (
	"math"

	"github.com/quantfolio/allocengine/internal/domain"
)

// Risk-level cut points on the 0-100 risk score.
const (
	riskLevelMediumCut  = 25.0
	riskLevelHighCut    = 50.0
	riskLevelExtremeCut = 75.0
)

// RiskAnalysis is the normalized risk view of an allocation.
type RiskAnalysis struct {
	RiskScore         float64                        `json:"risk_score"` // 0-100
	RiskLevel         domain.RiskLevel               `json:"risk_level"`
	RiskDecomposition map[domain.AssetClass]float64  `json:"risk_decomposition"` // percent of variance
}

// AnalyzeRisk scores the allocation against the resolved profile's volatility
// budget and decomposes total variance into per-class contributions.
//
// The score is a clipped linear transform: a portfolio running exactly at the
// profile's maxVolatility scores 50, twice the budget saturates at 100.
func AnalyzeRisk(
	w domain.Weights,
	model *CovarianceModel,
	def domain.RiskProfileDefinition,
) RiskAnalysis {
	volatility := math.Sqrt(model.Variance(w))

	score := 0.0
	if def.MaxVolatility > 0 {
		score = 100 * volatility / (2 * def.MaxVolatility)
	} else if volatility > 0 {
		score = 100
	}
	score = math.Min(100, math.Max(0, score))

	return RiskAnalysis{
		RiskScore:         score,
		RiskLevel:         bucketRiskScore(score),
		RiskDecomposition: decomposeVariance(w, model),
	}
}

func bucketRiskScore(score float64) domain.RiskLevel {
	switch {
	case score < riskLevelMediumCut:
		return domain.RiskLevelLow
	case score < riskLevelHighCut:
		return domain.RiskLevelMedium
	case score < riskLevelExtremeCut:
		return domain.RiskLevelHigh
	default:
		return domain.RiskLevelExtreme
	}
}

// decomposeVariance normalizes the marginal variance contributions to sum to
// 100. Negative marginals (possible with negative correlation) are floored at
// zero before normalizing.
func decomposeVariance(w domain.Weights, model *CovarianceModel) map[domain.AssetClass]float64 {
	marginals := model.MarginalContributions(w)

	total := 0.0
	for class, mc := range marginals {
		if mc < 0 {
			mc = 0
			marginals[class] = 0
		}
		total += mc
	}

	out := make(map[domain.AssetClass]float64, len(marginals))
	if total <= 0 {
		// Degenerate covariance: attribute risk in proportion to weight.
		weightSum := 0.0
		for _, class := range model.Classes() {
			weightSum += w[class]
		}
		for _, class := range model.Classes() {
			if weightSum > 0 {
				out[class] = 100 * w[class] / weightSum
			} else {
				out[class] = 0
			}
		}
		return out
	}

	for class, mc := range marginals {
		out[class] = 100 * mc / total
	}
	return out
}
