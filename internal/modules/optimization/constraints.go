// Package optimization applies allocation constraints and reshapes weights
// toward one of four objectives: minimum risk, maximum return per unit risk,
// risk parity, or maximum diversification. Objective non-convergence is never
// an error; the optimizer falls back to the constraint-respecting weights and
// reports the fallback so the caller can attach a warning.
package optimization

import (
	"math"

	"github.com/quantfolio/allocengine/internal/domain"
)

// preferredFloor is the minimum weight granted to a preferred class before
// normalization.
const preferredFloor = 0.08

// Constraints capture the hard and soft allocation restrictions derived from
// caller preferences and engine configuration.
type Constraints struct {
	Excluded            map[domain.AssetClass]bool
	Preferred           map[domain.AssetClass]bool
	MinAllocation       float64
	IncludeAlternatives bool
}

// BuildConstraints assembles constraints from optional preferences.
func BuildConstraints(prefs *domain.Preferences, includeAlternatives bool) Constraints {
	cons := Constraints{
		Excluded:            make(map[domain.AssetClass]bool),
		Preferred:           make(map[domain.AssetClass]bool),
		IncludeAlternatives: includeAlternatives,
	}
	if prefs == nil {
		return cons
	}
	for _, class := range prefs.ExcludedAssetClasses {
		cons.Excluded[class] = true
	}
	for _, class := range prefs.PreferredAssetClasses {
		if !cons.Excluded[class] {
			cons.Preferred[class] = true
		}
	}
	cons.MinAllocation = math.Max(0, prefs.MinAllocationPerClass)
	return cons
}

// isExcluded reports whether class is barred by exclusion or the
// alternatives gate.
func (c Constraints) isExcluded(class domain.AssetClass) bool {
	if c.Excluded[class] {
		return true
	}
	if !c.IncludeAlternatives && class.IsAlternative() {
		return true
	}
	return false
}

// Apply enforces the pre-objective constraint pipeline over the eligible
// classes: exclusions with pro-rata redistribution, the alternatives gate,
// preferred-class floors, and the per-class minimum. The result is not yet
// normalized.
func (c Constraints) Apply(weights domain.Weights, eligible []domain.AssetClass) domain.Weights {
	out := make(domain.Weights, len(eligible))
	for _, class := range eligible {
		out[class] = math.Max(0, weights[class])
	}

	// Zero out excluded classes and redistribute the freed weight pro-rata
	// across the survivors.
	freed := 0.0
	remaining := 0.0
	for _, class := range eligible {
		if c.isExcluded(class) {
			freed += out[class]
			out[class] = 0
		} else {
			remaining += out[class]
		}
	}
	if freed > 0 {
		if remaining > 0 {
			for _, class := range eligible {
				if !c.isExcluded(class) {
					out[class] += freed * out[class] / remaining
				}
			}
		} else {
			// Nothing survived with weight; spread equally instead of
			// returning an all-zero vector.
			var survivors []domain.AssetClass
			for _, class := range eligible {
				if !c.isExcluded(class) {
					survivors = append(survivors, class)
				}
			}
			for _, class := range survivors {
				out[class] = freed / float64(len(survivors))
			}
		}
	}

	// Raised floor for preferred classes, then the global per-class minimum.
	for _, class := range eligible {
		if c.isExcluded(class) {
			continue
		}
		if c.Preferred[class] && out[class] < preferredFloor {
			out[class] = preferredFloor
		}
		if out[class] < c.MinAllocation {
			out[class] = c.MinAllocation
		}
	}

	return out
}

// equalSplit spreads weight evenly over the classes the constraints permit.
// When every class is barred it covers all of them, the only total answer
// left; the residual warnings downstream flag the conflict.
func (c Constraints) equalSplit(eligible []domain.AssetClass) domain.Weights {
	var allowed []domain.AssetClass
	for _, class := range eligible {
		if !c.isExcluded(class) {
			allowed = append(allowed, class)
		}
	}
	if len(allowed) == 0 {
		allowed = eligible
	}

	out := make(domain.Weights, len(allowed))
	share := 1.0 / float64(len(allowed))
	for _, class := range allowed {
		out[class] = share
	}
	return out
}

// enforce re-applies exclusions and floors after objective reshaping so the
// objective step cannot undo the constraint pipeline.
func (c Constraints) enforce(weights domain.Weights) domain.Weights {
	for class := range weights {
		if c.isExcluded(class) {
			weights[class] = 0
			continue
		}
		if c.Preferred[class] && weights[class] < preferredFloor {
			weights[class] = preferredFloor
		}
		if weights[class] < c.MinAllocation {
			weights[class] = c.MinAllocation
		}
	}
	return weights
}
