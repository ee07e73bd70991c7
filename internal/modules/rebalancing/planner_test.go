package rebalancing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/allocengine/internal/domain"
)

func percentageCost() CostModel {
	return CostModel{Model: domain.CostModelPercentage, FixedFee: 2.00, DefaultRate: 0.001}
}

func fixedCost() CostModel {
	return CostModel{Model: domain.CostModelFixed, FixedFee: 2.00, DefaultRate: 0.001}
}

func findTrade(t *testing.T, trades []PlannedTrade, class domain.AssetClass) PlannedTrade {
	t.Helper()
	for _, trade := range trades {
		if trade.AssetClass == class {
			return trade
		}
	}
	t.Fatalf("no trade for class %s", class)
	return PlannedTrade{}
}

func TestPlan_BuySellHold(t *testing.T) {
	planner := NewPlanner(0.05, percentageCost(), zerolog.Nop())

	positions := map[domain.AssetClass]float64{
		domain.Equities: 30_000, // 30% vs 45% target: buy
		domain.ETF:      55_000, // 55% vs 40% target: sell
		domain.Forex:    15_000, // 15% vs 15% target: hold
	}
	targets := domain.Weights{
		domain.Equities: 0.45,
		domain.ETF:      0.40,
		domain.Forex:    0.15,
	}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 3)

	buy := findTrade(t, trades, domain.Equities)
	assert.Equal(t, ActionBuy, buy.Action)
	assert.InDelta(t, 0.15, buy.Drift, 1e-9)
	assert.InDelta(t, 15_000, buy.TradeAmount, 1e-6)
	assert.Contains(t, buy.Reason, "exceeds the 5.0% threshold")

	sell := findTrade(t, trades, domain.ETF)
	assert.Equal(t, ActionSell, sell.Action)
	assert.InDelta(t, 15_000, sell.TradeAmount, 1e-6)

	hold := findTrade(t, trades, domain.Forex)
	assert.Equal(t, ActionHold, hold.Action)
	assert.Zero(t, hold.TradeAmount)
	assert.Zero(t, hold.EstimatedCost)
	assert.Contains(t, hold.Reason, "within the 5.0% threshold")
}

func TestPlan_DriftAtThresholdTriggersTrade(t *testing.T) {
	planner := NewPlanner(0.05, percentageCost(), zerolog.Nop())

	positions := map[domain.AssetClass]float64{domain.Equities: 45_000}
	targets := domain.Weights{domain.Equities: 0.50}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 1)
	assert.Equal(t, ActionBuy, trades[0].Action, "drift equal to the threshold is actionable")
}

func TestPlan_PriorityFollowsDrift(t *testing.T) {
	planner := NewPlanner(0.02, percentageCost(), zerolog.Nop())

	positions := map[domain.AssetClass]float64{
		domain.Equities: 20_000, // drift 0.30
		domain.ETF:      45_000, // drift 0.05
		domain.Crypto:   35_000, // drift 0.25
	}
	targets := domain.Weights{
		domain.Equities: 0.50,
		domain.ETF:      0.40,
		domain.Crypto:   0.10,
	}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 3)

	assert.Equal(t, domain.Equities, trades[0].AssetClass)
	assert.Equal(t, 1, trades[0].Priority)
	assert.Equal(t, domain.Crypto, trades[1].AssetClass)
	assert.Equal(t, 2, trades[1].Priority)
	assert.Equal(t, domain.ETF, trades[2].AssetClass)
	assert.Equal(t, 3, trades[2].Priority)
}

func TestPlan_TieBreaksOnCanonicalOrder(t *testing.T) {
	planner := NewPlanner(0.50, fixedCost(), zerolog.Nop())

	// Equal drift, equal (zero) cost for holds: canonical rank decides.
	positions := map[domain.AssetClass]float64{
		domain.Crypto:   30_000,
		domain.Equities: 30_000,
	}
	targets := domain.Weights{
		domain.Crypto:   0.40,
		domain.Equities: 0.40,
	}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 2)
	assert.Equal(t, domain.Equities, trades[0].AssetClass)
	assert.Equal(t, domain.Crypto, trades[1].AssetClass)
}

func TestPlan_FixedCostModel(t *testing.T) {
	planner := NewPlanner(0.05, fixedCost(), zerolog.Nop())

	positions := map[domain.AssetClass]float64{domain.Equities: 20_000}
	targets := domain.Weights{domain.Equities: 0.50}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 1)
	assert.Equal(t, 2.00, trades[0].EstimatedCost, "fixed fee regardless of trade size")
}

func TestPlan_PercentageCostUsesClassRate(t *testing.T) {
	planner := NewPlanner(0.05, percentageCost(), zerolog.Nop())

	chars := map[domain.AssetClass]domain.AssetClassCharacteristics{
		domain.Crypto: {TransactionCost: 0.005},
	}
	positions := map[domain.AssetClass]float64{
		domain.Crypto:   0,
		domain.Equities: 0,
	}
	targets := domain.Weights{
		domain.Crypto:   0.10,
		domain.Equities: 0.10,
	}

	trades := planner.Plan(positions, targets, 100_000, chars)

	crypto := findTrade(t, trades, domain.Crypto)
	assert.InDelta(t, 10_000*0.005, crypto.EstimatedCost, 1e-9, "class-specific rate")

	equities := findTrade(t, trades, domain.Equities)
	assert.InDelta(t, 10_000*0.001, equities.EstimatedCost, 1e-9, "default rate")
}

func TestPlan_UnionOfPositionsAndTargets(t *testing.T) {
	planner := NewPlanner(0.05, percentageCost(), zerolog.Nop())

	// Forex is held but has no target; Crypto is targeted but not held.
	positions := map[domain.AssetClass]float64{
		domain.Forex: 10_000,
	}
	targets := domain.Weights{
		domain.Crypto: 0.10,
	}

	trades := planner.Plan(positions, targets, 100_000, nil)
	require.Len(t, trades, 2)

	exit := findTrade(t, trades, domain.Forex)
	assert.Equal(t, ActionSell, exit.Action)

	entry := findTrade(t, trades, domain.Crypto)
	assert.Equal(t, ActionBuy, entry.Action)
}

func TestPlan_NonPositiveAccountSize(t *testing.T) {
	planner := NewPlanner(0.05, percentageCost(), zerolog.Nop())

	targets := domain.Weights{domain.Equities: 1.0}
	assert.Nil(t, planner.Plan(nil, targets, 0, nil))
	assert.Nil(t, planner.Plan(nil, targets, -5_000, nil))
}
