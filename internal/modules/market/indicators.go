package market

import (
	"math"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/pkg/formulas"
)

// strengthSMAPeriod is the moving-average window used to gauge how far the
// latest price sits above or below its recent regime.
const strengthSMAPeriod = 50

// TrendFromPrices converts an index price series into the trend inputs of
// MarketMetrics. Callers with a live market feed can use this to fill the
// snapshot instead of supplying the trend by hand.
func TrendFromPrices(closes []float64) (domain.TrendDirection, float64) {
	signal := formulas.CalculateTrend(closes)
	switch signal.Direction {
	case 1:
		return domain.TrendUp, signal.Strength
	case -1:
		return domain.TrendDown, signal.Strength
	default:
		return domain.TrendNeutral, signal.Strength
	}
}

// VolatilityIndexFromPrices approximates a volatility index reading from an
// index price series: annualized volatility of daily returns, in percent.
func VolatilityIndexFromPrices(closes []float64) float64 {
	returns := formulas.CalculateReturns(closes)
	return formulas.AnnualizedVolatility(returns) * 100
}

// MarketStrengthFromPrices scores the latest price against its 50-period
// simple moving average on the 0-100 MarketStrength scale; 50 means the price
// sits exactly on the average. Too little history reads as neutral.
func MarketStrengthFromPrices(closes []float64) float64 {
	sma := formulas.CalculateSMA(closes, strengthSMAPeriod)
	if sma == nil || *sma <= 0 {
		return 50
	}
	deviation := (closes[len(closes)-1] - *sma) / *sma * 100
	return math.Max(0, math.Min(100, 50+deviation*5))
}

// CharacteristicsFromPrices derives the statistical profile of one asset
// class from its price history, with correlations computed against the other
// classes' histories. Series are aligned on their most recent overlap, so
// histories of different lengths still produce a coefficient.
func CharacteristicsFromPrices(
	closes []float64,
	peers map[domain.AssetClass][]float64,
) domain.AssetClassCharacteristics {
	returns := formulas.CalculateReturns(closes)

	chars := domain.AssetClassCharacteristics{
		Volatility:     formulas.AnnualizedVolatility(returns) * 100,
		ExpectedReturn: formulas.CalculateAnnualReturn(returns) * 100,
		MaxDrawdown:    maxDrawdownFromPrices(closes) * 100,
		Correlations:   make(map[domain.AssetClass]float64, len(peers)),
	}

	for class, peerCloses := range peers {
		peerReturns := formulas.CalculateReturns(peerCloses)
		n := len(returns)
		if len(peerReturns) < n {
			n = len(peerReturns)
		}
		if n < 2 {
			continue
		}
		chars.Correlations[class] = formulas.Correlation(
			returns[len(returns)-n:],
			peerReturns[len(peerReturns)-n:],
		)
	}
	return chars
}

// maxDrawdownFromPrices measures the deepest peak-to-trough decline as a
// fraction of the peak.
func maxDrawdownFromPrices(closes []float64) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, price := range closes {
		if price > peak {
			peak = price
		}
		if peak > 0 {
			if dd := (peak - price) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
