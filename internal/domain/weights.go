package domain

// Weights maps asset classes to allocation fractions. Using the closed
// AssetClass key type keeps typos out of allocation and correlation tables.
type Weights map[AssetClass]float64

// Clone returns an independent copy of w.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for class, weight := range w {
		out[class] = weight
	}
	return out
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, weight := range w {
		total += weight
	}
	return total
}

// Normalized returns a copy of w scaled to sum to 1.0. When the sum is not
// positive it falls back to an equal split across the existing keys, so a
// degenerate input still yields a usable allocation.
func (w Weights) Normalized() Weights {
	out := w.Clone()
	sum := out.Sum()
	if sum <= 0 {
		if len(out) == 0 {
			return out
		}
		equal := 1.0 / float64(len(out))
		for class := range out {
			out[class] = equal
		}
		return out
	}
	for class := range out {
		out[class] /= sum
	}
	return out
}

// Objective selects the optimization goal for the weight reshaping step.
type Objective string

const (
	ObjectiveMinRisk            Objective = "MIN_RISK"
	ObjectiveMaxReturn          Objective = "MAX_RETURN"
	ObjectiveMaxDiversification Objective = "MAX_DIVERSIFICATION"
	ObjectiveRiskParity         Objective = "RISK_PARITY"
)

// AllObjectives lists the supported objectives.
var AllObjectives = []Objective{
	ObjectiveMinRisk,
	ObjectiveMaxReturn,
	ObjectiveMaxDiversification,
	ObjectiveRiskParity,
}

// Valid reports whether o is a known objective.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveMinRisk, ObjectiveMaxReturn, ObjectiveMaxDiversification, ObjectiveRiskParity:
		return true
	}
	return false
}

// TransactionCostModel selects how trade costs are estimated.
type TransactionCostModel string

const (
	CostModelFixed      TransactionCostModel = "FIXED"
	CostModelPercentage TransactionCostModel = "PERCENTAGE"
)
