package rebalancing

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
)

// Planner turns allocation drift into a prioritized trade list.
type Planner struct {
	threshold float64 // fractional drift that triggers action
	cost      CostModel
	log       zerolog.Logger
}

// NewPlanner creates a new rebalancing planner. threshold is the fractional
// drift below which a class is held rather than traded.
func NewPlanner(threshold float64, cost CostModel, log zerolog.Logger) *Planner {
	return &Planner{
		threshold: threshold,
		cost:      cost,
		log:       log.With().Str("component", "rebalancing_planner").Logger(),
	}
}

// Plan compares current dollar positions against target weights. Every class
// appearing in either side gets an entry. Priorities are assigned by
// descending drift; ties break on higher estimated cost, then on the
// canonical class ordering.
func (p *Planner) Plan(
	positions map[domain.AssetClass]float64,
	targets domain.Weights,
	accountSize float64,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
) []PlannedTrade {
	if accountSize <= 0 {
		return nil
	}

	seen := make(map[domain.AssetClass]bool)
	var classes []domain.AssetClass
	for _, class := range domain.AllAssetClasses {
		_, inPositions := positions[class]
		_, inTargets := targets[class]
		if (inPositions || inTargets) && !seen[class] {
			seen[class] = true
			classes = append(classes, class)
		}
	}

	trades := make([]PlannedTrade, 0, len(classes))
	for _, class := range classes {
		current := positions[class] / accountSize
		target := targets[class]
		drift := math.Abs(current - target)
		amount := drift * accountSize

		action := ActionHold
		reason := fmt.Sprintf("drift %.1f%% is within the %.1f%% threshold", drift*100, p.threshold*100)
		if drift >= p.threshold {
			if target > current {
				action = ActionBuy
			} else {
				action = ActionSell
			}
			reason = fmt.Sprintf("drift %.1f%% exceeds the %.1f%% threshold", drift*100, p.threshold*100)
		}

		trades = append(trades, PlannedTrade{
			AssetClass:        class,
			CurrentAllocation: current,
			TargetAllocation:  target,
			Drift:             drift,
			Action:            action,
			TradeAmount:       amount,
			EstimatedCost:     p.estimateCost(class, action, amount, chars),
			Reason:            reason,
		})
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Drift != trades[j].Drift {
			return trades[i].Drift > trades[j].Drift
		}
		if trades[i].EstimatedCost != trades[j].EstimatedCost {
			return trades[i].EstimatedCost > trades[j].EstimatedCost
		}
		return trades[i].AssetClass.Rank() < trades[j].AssetClass.Rank()
	})
	for i := range trades {
		trades[i].Priority = i + 1
	}

	actionable := 0
	for _, trade := range trades {
		if trade.Action != ActionHold {
			actionable++
		}
	}
	p.log.Info().
		Int("classes", len(trades)).
		Int("actionable", actionable).
		Msg("Planned rebalancing trades")

	return trades
}

// estimateCost prices a trade under the configured cost model. Holds cost
// nothing because no order is placed.
func (p *Planner) estimateCost(
	class domain.AssetClass,
	action Action,
	amount float64,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
) float64 {
	if action == ActionHold || amount <= 0 {
		return 0
	}
	if p.cost.Model == domain.CostModelFixed {
		return p.cost.FixedFee
	}
	rate := p.cost.DefaultRate
	if c, ok := chars[class]; ok && c.TransactionCost > 0 {
		rate = c.TransactionCost
	}
	return amount * rate
}
