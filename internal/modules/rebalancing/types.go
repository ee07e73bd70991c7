// Package rebalancing compares current dollar positions to target weights
// and emits prioritized trade actions. It plans only; order placement belongs
// to an external execution collaborator.
package rebalancing

import "github.com/quantfolio/allocengine/internal/domain"

// Action is the recommended move for one asset class.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PlannedTrade is one prioritized rebalancing step.
type PlannedTrade struct {
	AssetClass        domain.AssetClass `json:"asset_class"`
	CurrentAllocation float64           `json:"current_allocation"`
	TargetAllocation  float64           `json:"target_allocation"`
	Drift             float64           `json:"drift"`
	Action            Action            `json:"action"`
	TradeAmount       float64           `json:"trade_amount"`
	EstimatedCost     float64           `json:"estimated_cost"`
	Priority          int               `json:"priority"` // 1 = largest drift
	Reason            string            `json:"reason"`
}

// CostModel configures trade cost estimation.
type CostModel struct {
	Model domain.TransactionCostModel
	// FixedFee is charged per executed trade under the FIXED model.
	FixedFee float64
	// DefaultRate is the fraction of trade value used under the PERCENTAGE
	// model when a class carries no transactionCost of its own.
	DefaultRate float64
}
