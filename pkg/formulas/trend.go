package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Trend signal EMA periods and RSI settings.
const (
	trendFastPeriod = 20
	trendSlowPeriod = 50
	trendRSIPeriod  = 14
)

// TrendSignal summarizes the direction and conviction of a price series.
// Direction is -1 (down), 0 (sideways) or 1 (up); Strength is 0-100.
type TrendSignal struct {
	Direction int
	Strength  float64
}

// CalculateTrend derives a trend signal from closing prices using an EMA
// crossover confirmed by RSI. Too little history yields a sideways signal.
func CalculateTrend(closes []float64) TrendSignal {
	if len(closes) < trendSlowPeriod {
		return TrendSignal{}
	}

	fast := CalculateEMA(closes, trendFastPeriod)
	slow := CalculateEMA(closes, trendSlowPeriod)
	rsi := lastValid(talib.Rsi(closes, trendRSIPeriod))
	if fast == nil || slow == nil || *slow == 0 {
		return TrendSignal{}
	}

	// Percent separation of the fast EMA from the slow one.
	spread := (*fast - *slow) / *slow * 100

	direction := 0
	switch {
	case spread > 0.5:
		direction = 1
	case spread < -0.5:
		direction = -1
	}

	// Spread drives strength; RSI conviction away from 50 adds to it.
	strength := math.Min(math.Abs(spread)*10, 70)
	if rsi != nil {
		strength += math.Min(math.Abs(*rsi-50)*0.6, 30)
	}
	if direction == 0 {
		strength = math.Min(strength, 20)
	}

	return TrendSignal{Direction: direction, Strength: math.Min(strength, 100)}
}

// CalculateEMA returns the latest exponential moving average, falling back to
// a simple mean when there is not enough history for the requested period.
func CalculateEMA(closes []float64, period int) *float64 {
	if len(closes) == 0 {
		return nil
	}
	if len(closes) < period {
		sma := Mean(closes)
		return &sma
	}
	if v := lastValid(talib.Ema(closes, period)); v != nil {
		return v
	}
	sma := Mean(closes[len(closes)-period:])
	return &sma
}

// CalculateSMA returns the latest simple moving average, or nil when the
// series is shorter than the period.
func CalculateSMA(closes []float64, period int) *float64 {
	if len(closes) < period {
		return nil
	}
	return lastValid(talib.Sma(closes, period))
}

func lastValid(series []float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			v := series[i]
			return &v
		}
	}
	return nil
}
