// Package allocation is the engine façade: it orchestrates the risk-profile
// catalog, market tilts, the constraints-and-objective optimizer, metric
// calculators and the rebalancing planner into a single recommendation call.
package allocation

import (
	"errors"
	"time"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/rebalancing"
	"github.com/quantfolio/allocengine/internal/modules/risk"
)

// Input validation failures, the only user-visible error category.
var (
	ErrInvalidAccountSize     = errors.New("account size must be positive")
	ErrNoAssetCharacteristics = errors.New("at least one asset class characteristic is required")
	ErrUnknownRiskProfile     = errors.New("requested risk profile is not a canonical tier")
)

// AllocationInput is the full request for one recommendation.
type AllocationInput struct {
	// RiskProfile is optional; when nil a profile is inferred from market
	// conditions and preferences.
	RiskProfile          *domain.RiskProfile                                      `json:"risk_profile,omitempty"`
	MarketConditions     domain.MarketMetrics                                     `json:"market_conditions"`
	AccountSize          float64                                                  `json:"account_size"`
	AssetCharacteristics map[domain.AssetClass]domain.AssetClassCharacteristics   `json:"asset_characteristics"`
	CurrentPositions     map[domain.AssetClass]float64                            `json:"current_positions,omitempty"`
	Preferences          *domain.Preferences                                      `json:"preferences,omitempty"`
}

// EngineConfig tunes the engine. Zero values are replaced by the documented
// defaults in withDefaults.
type EngineConfig struct {
	Objective            domain.Objective            `json:"objective"`
	RiskFreeRate         float64                     `json:"risk_free_rate"`        // percent
	RebalancingThreshold float64                     `json:"rebalancing_threshold"` // fractional drift
	TransactionCostModel domain.TransactionCostModel `json:"transaction_cost_model"`
	TimeHorizonYears     int                         `json:"time_horizon_years"`
	AllowLeverage        bool                        `json:"allow_leverage"`
	IncludeAlternatives  bool                        `json:"include_alternatives"`
}

// Engine defaults.
const (
	DefaultRiskFreeRate         = 2.0
	DefaultRebalancingThreshold = 0.05
	DefaultTimeHorizonYears     = 5
	DefaultRebalancingDays      = 90
	DefaultFixedFee             = 2.00
	DefaultPercentageRate       = 0.001
)

// DefaultEngineConfig returns the balanced default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Objective:            domain.ObjectiveMaxDiversification,
		RiskFreeRate:         DefaultRiskFreeRate,
		RebalancingThreshold: DefaultRebalancingThreshold,
		TransactionCostModel: domain.CostModelPercentage,
		TimeHorizonYears:     DefaultTimeHorizonYears,
		IncludeAlternatives:  true,
	}
}

// withDefaults fills unset fields. Booleans keep their explicit values; a
// caller who wants alternatives gated must construct the config through
// DefaultEngineConfig and flip the flag.
func (c EngineConfig) withDefaults() EngineConfig {
	if !c.Objective.Valid() {
		c.Objective = domain.ObjectiveMaxDiversification
	}
	if c.RiskFreeRate == 0 {
		c.RiskFreeRate = DefaultRiskFreeRate
	}
	if c.RebalancingThreshold <= 0 {
		c.RebalancingThreshold = DefaultRebalancingThreshold
	}
	if c.TransactionCostModel != domain.CostModelFixed && c.TransactionCostModel != domain.CostModelPercentage {
		c.TransactionCostModel = domain.CostModelPercentage
	}
	if c.TimeHorizonYears <= 0 {
		c.TimeHorizonYears = DefaultTimeHorizonYears
	}
	return c
}

// AllocationEntry is the per-class slice of the recommendation.
type AllocationEntry struct {
	AssetClass         domain.AssetClass `json:"asset_class"`
	Allocation         float64           `json:"allocation"` // fraction of portfolio
	Amount             float64           `json:"amount"`     // dollars
	RiskContribution   float64           `json:"risk_contribution"`   // fraction of variance
	ReturnContribution float64           `json:"return_contribution"` // percent points
	Rationale          string            `json:"rationale"`
	Confidence         float64           `json:"confidence"` // (0, 1]
}

// AllocationRecommendation is the engine's complete answer. A fresh instance
// is constructed per call; only id, timestamp and nextRebalancingDate differ
// between identical inputs.
type AllocationRecommendation struct {
	ID                  string                      `json:"id"`
	Timestamp           time.Time                   `json:"timestamp"`
	NextRebalancingDate time.Time                   `json:"next_rebalancing_date"`
	Methodology         string                      `json:"methodology"`
	RiskProfile         domain.RiskProfile          `json:"risk_profile"`
	Objective           domain.Objective            `json:"objective"`
	Allocations         []AllocationEntry           `json:"allocations"`
	PortfolioMetrics    risk.PortfolioMetrics       `json:"portfolio_metrics"`
	RiskAnalysis        risk.RiskAnalysis           `json:"risk_analysis"`
	Diversification     risk.DiversificationMetrics `json:"diversification"`
	Warnings            []string                    `json:"warnings"`
	Rebalancing         []rebalancing.PlannedTrade  `json:"rebalancing,omitempty"`
}
