package domain

// TrendDirection is the prevailing market trend.
type TrendDirection string

const (
	TrendUp      TrendDirection = "UP"
	TrendDown    TrendDirection = "DOWN"
	TrendNeutral TrendDirection = "NEUTRAL"
)

// InterestRateLevel is a coarse classification of the prevailing rate regime.
type InterestRateLevel string

const (
	RatesLow    InterestRateLevel = "LOW"
	RatesMedium InterestRateLevel = "MEDIUM"
	RatesHigh   InterestRateLevel = "HIGH"
)

// EconomicPhase is the position in the business cycle.
type EconomicPhase string

const (
	PhaseExpansion   EconomicPhase = "EXPANSION"
	PhasePeak        EconomicPhase = "PEAK"
	PhaseContraction EconomicPhase = "CONTRACTION"
	PhaseTrough      EconomicPhase = "TROUGH"
)

// MarketMetrics is a snapshot of current market conditions, supplied by an
// external market-data collaborator at the caller's cadence.
type MarketMetrics struct {
	VolatilityIndex   float64           `json:"volatility_index"`
	TrendDirection    TrendDirection    `json:"trend_direction"`
	MarketStrength    float64           `json:"market_strength"`  // 0-100
	SentimentScore    float64           `json:"sentiment_score"`  // 0-100
	InterestRateLevel InterestRateLevel `json:"interest_rate_level"`
	InflationRate     float64           `json:"inflation_rate"` // percent
	CreditSpread      float64           `json:"credit_spread"`  // basis points
	EconomicPhase     EconomicPhase     `json:"economic_phase"`
}

// AssetClassCharacteristics holds the statistical profile of one asset class,
// supplied by an external analytics collaborator. Volatility, expected return
// and max drawdown are percent points; correlations map the other classes to
// coefficients in [-1, 1] (self-correlation is implicit at 1).
type AssetClassCharacteristics struct {
	Volatility        float64                    `json:"volatility"`
	ExpectedReturn    float64                    `json:"expected_return"`
	SharpeRatio       float64                    `json:"sharpe_ratio"`
	MaxDrawdown       float64                    `json:"max_drawdown"`
	LiquidityScore    float64                    `json:"liquidity_score"` // 0-100
	Correlations      map[AssetClass]float64     `json:"correlations"`
	MarketSize        float64                    `json:"market_size"`
	TransactionCost   float64                    `json:"transaction_cost"` // fraction of trade value
	MinimumInvestment float64                    `json:"minimum_investment"`
}

// Preferences are optional caller constraints on the allocation.
type Preferences struct {
	ExcludedAssetClasses     []AssetClass `json:"excluded_asset_classes,omitempty"`
	PreferredAssetClasses    []AssetClass `json:"preferred_asset_classes,omitempty"`
	MinAllocationPerClass    float64      `json:"min_allocation_per_class,omitempty"`
	MaxDrawdown              *float64     `json:"max_drawdown,omitempty"`
	TargetReturn             *float64     `json:"target_return,omitempty"`
	RebalancingFrequencyDays int          `json:"rebalancing_frequency_days,omitempty"`
}
