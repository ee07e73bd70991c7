package optimization

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/risk"
)

// objectiveBlend is how far weights move toward the objective target; the
// remainder preserves the constraint-respecting, market-tilted shape.
const objectiveBlend = 0.6

// activeWeightEpsilon separates held classes from ones zeroed by constraints.
const activeWeightEpsilon = 1e-9

// normalizationTolerance is the accepted deviation of the final weight sum
// from 1.0.
const normalizationTolerance = 1e-6

// Result carries the optimized weights and whether the objective step fell
// back to the pre-objective weights because it could not converge.
type Result struct {
	Weights  domain.Weights
	Fallback bool
}

// Optimizer runs the constraint pipeline and the objective reshaping.
type Optimizer struct {
	log zerolog.Logger
}

// NewOptimizer creates a new constraints-and-objective optimizer.
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// Run applies constraints to the tilted weights, reshapes toward the
// objective, re-applies constraints, and renormalizes to sum 1.0. It never
// returns an error for valid input: objective non-convergence falls back to
// the constraint-respecting weights and is reported via Result.Fallback.
func (o *Optimizer) Run(
	tilted domain.Weights,
	model *risk.CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	cons Constraints,
	objective domain.Objective,
	riskFreeRate float64,
) Result {
	constrained := cons.Apply(tilted, model.Classes())
	if constrained.Sum() <= 0 {
		// Constraints zeroed everything; split over whatever they still allow
		// instead of letting normalization resurrect excluded classes.
		constrained = cons.equalSplit(model.Classes())
	}
	constrained = constrained.Normalized()

	var active []domain.AssetClass
	for _, class := range model.Classes() {
		if constrained[class] > activeWeightEpsilon {
			active = append(active, class)
		}
	}

	target, err := o.objectiveTarget(objective, model, chars, constrained, active, riskFreeRate)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("objective", string(objective)).
			Msg("Objective reshaping fell back to constraint-adjusted weights")
		return Result{Weights: normalize(constrained), Fallback: true}
	}

	blended := constrained.Clone()
	for _, class := range active {
		blended[class] = (1-objectiveBlend)*constrained[class] + objectiveBlend*target[class]
	}

	final := normalize(cons.enforce(blended))

	o.log.Debug().
		Str("objective", string(objective)).
		Int("active_classes", len(active)).
		Msg("Optimized allocation weights")

	return Result{Weights: final}
}

func (o *Optimizer) objectiveTarget(
	objective domain.Objective,
	model *risk.CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	constrained domain.Weights,
	active []domain.AssetClass,
	riskFreeRate float64,
) (domain.Weights, error) {
	switch objective {
	case domain.ObjectiveMinRisk:
		return minRiskTarget(model, active)
	case domain.ObjectiveMaxReturn:
		return maxReturnTarget(model, chars, active, riskFreeRate), nil
	case domain.ObjectiveRiskParity:
		return riskParityTarget(model, constrained, active)
	default: // MAX_DIVERSIFICATION, also the engine default
		return maxDiversificationTarget(model, chars, active)
	}
}

// normalize scales weights to sum to 1.0 within normalizationTolerance.
func normalize(w domain.Weights) domain.Weights {
	out := w.Normalized()
	if sum := out.Sum(); sum > 0 && math.Abs(sum-1) > normalizationTolerance {
		for class := range out {
			out[class] /= sum
		}
	}
	return out
}
