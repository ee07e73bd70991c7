package risk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
)

// zScore95 is the one-tailed 95% quantile of the standard normal.
const zScore95 = 1.645

// downsideDrawdownScale converts a weighted max-drawdown figure into a
// downside-deviation proxy for the Sortino denominator.
const downsideDrawdownScale = 0.5

// PortfolioMetrics are the headline statistics of a candidate allocation.
// Return and volatility figures are percent points.
type PortfolioMetrics struct {
	ExpectedReturn     float64 `json:"expected_return"`
	ExpectedVolatility float64 `json:"expected_volatility"`
	SharpeRatio        float64 `json:"sharpe_ratio"`
	SortinoRatio       float64 `json:"sortino_ratio"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	ValueAtRisk95      float64 `json:"value_at_risk_95"`
}

// Calculator computes portfolio metrics from weights and the covariance model.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new portfolio metrics calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "portfolio_metrics").Logger(),
	}
}

// Compute derives the full metric set for the given weights.
func (c *Calculator) Compute(
	w domain.Weights,
	model *CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	riskFreeRate float64,
) PortfolioMetrics {
	expectedReturn := 0.0
	weightedVolatility := 0.0
	weightedDrawdown := 0.0
	for _, class := range model.Classes() {
		weight := w[class]
		if weight == 0 {
			continue
		}
		expectedReturn += weight * chars[class].ExpectedReturn
		weightedVolatility += weight * chars[class].Volatility
		weightedDrawdown += weight * chars[class].MaxDrawdown
	}

	expectedVolatility := math.Sqrt(model.Variance(w))

	sharpe := 0.0
	if expectedVolatility > 0 {
		sharpe = (expectedReturn - riskFreeRate) / expectedVolatility
	}

	sortino := 0.0
	if downside := weightedDrawdown * downsideDrawdownScale; downside > 0 {
		sortino = (expectedReturn - riskFreeRate) / downside
	}

	// Imperfect correlation tempers the blended drawdown; the diversification
	// ratio is >= 1, so the result never exceeds the weighted average.
	maxDrawdown := weightedDrawdown
	if expectedVolatility > 0 && weightedVolatility > 0 {
		ratio := weightedVolatility / expectedVolatility
		if ratio > 1 {
			maxDrawdown = weightedDrawdown / ratio
		}
	}

	metrics := PortfolioMetrics{
		ExpectedReturn:     expectedReturn,
		ExpectedVolatility: expectedVolatility,
		SharpeRatio:        sharpe,
		SortinoRatio:       sortino,
		MaxDrawdown:        maxDrawdown,
		ValueAtRisk95:      expectedReturn - zScore95*expectedVolatility,
	}

	c.log.Debug().
		Float64("expected_return", expectedReturn).
		Float64("expected_volatility", expectedVolatility).
		Float64("sharpe", sharpe).
		Msg("Computed portfolio metrics")

	return metrics
}
