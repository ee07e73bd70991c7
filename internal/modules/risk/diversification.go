package risk

import (
	"math"

	"github.com/quantfolio/allocengine/internal/domain"
)

// meaningfulAllocation is the weight above which a class counts toward the
// asset-class diversity fraction.
const meaningfulAllocation = 0.01

// DiversificationMetrics quantify how spread out an allocation is.
type DiversificationMetrics struct {
	HerfindahlIndex         float64 `json:"herfindahl_index"`
	EffectiveNumberOfAssets float64 `json:"effective_number_of_assets"`
	DiversificationRatio    float64 `json:"diversification_ratio"`
	AverageCorrelation      float64 `json:"average_correlation"`
	AssetClassDiversity     float64 `json:"asset_class_diversity"`
}

// AnalyzeDiversification computes concentration and correlation measures for
// the given weights over the eligible class universe.
func AnalyzeDiversification(
	w domain.Weights,
	model *CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
) DiversificationMetrics {
	classes := model.Classes()

	hhi := 0.0
	weightedVolatility := 0.0
	heldClasses := 0
	for _, class := range classes {
		weight := w[class]
		hhi += weight * weight
		weightedVolatility += weight * chars[class].Volatility
		if weight > meaningfulAllocation {
			heldClasses++
		}
	}

	effective := 0.0
	if hhi > 0 {
		effective = 1.0 / hhi
	}

	portfolioVolatility := math.Sqrt(model.Variance(w))
	ratio := 1.0
	if portfolioVolatility > 0 {
		ratio = weightedVolatility / portfolioVolatility
	}
	if ratio < 1 {
		ratio = 1 // equality holds only under full correlation
	}

	// Weight-weighted mean of off-diagonal correlations.
	corrSum := 0.0
	corrWeight := 0.0
	for i, classI := range classes {
		for j, classJ := range classes {
			if i == j {
				continue
			}
			pairWeight := w[classI] * w[classJ]
			if pairWeight <= 0 {
				continue
			}
			corrSum += pairWeight * model.Correlation(classI, classJ)
			corrWeight += pairWeight
		}
	}
	avgCorrelation := 0.0
	if corrWeight > 0 {
		avgCorrelation = corrSum / corrWeight
	}

	diversity := 0.0
	if len(classes) > 0 {
		diversity = float64(heldClasses) / float64(len(classes))
	}

	return DiversificationMetrics{
		HerfindahlIndex:         hhi,
		EffectiveNumberOfAssets: effective,
		DiversificationRatio:    ratio,
		AverageCorrelation:      avgCorrelation,
		AssetClassDiversity:     diversity,
	}
}
