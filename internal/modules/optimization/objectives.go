package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/risk"
)

const (
	// Risk-parity iteration controls.
	riskParityMaxIterations = 200
	riskParityTolerance     = 1e-3
	riskParityStep          = 0.5

	// Penalty weight for the sum-to-one constraint in the numerical search.
	penaltyWeight = 1000.0
)

// minRiskTarget returns the minimum-variance combination for the active
// classes: w proportional to Σ⁻¹·1, solved via Cholesky. A covariance matrix
// that is not positive definite falls back to inverse-variance weighting;
// zero variances everywhere are reported as non-convergence.
func minRiskTarget(model *risk.CovarianceModel, active []domain.AssetClass) (domain.Weights, error) {
	n := len(active)
	if n == 0 {
		return nil, fmt.Errorf("no active classes")
	}
	if n == 1 {
		return domain.Weights{active[0]: 1.0}, nil
	}

	sigma := model.SubMatrix(active)

	var chol mat.Cholesky
	if chol.Factorize(sigma) {
		ones := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			ones.SetVec(i, 1)
		}
		var solution mat.VecDense
		if err := chol.SolveVecTo(&solution, ones); err == nil {
			weights := make(domain.Weights, n)
			sum := 0.0
			for i, class := range active {
				w := math.Max(0, solution.AtVec(i))
				weights[class] = w
				sum += w
			}
			if sum > 0 {
				for class := range weights {
					weights[class] /= sum
				}
				return weights, nil
			}
		}
	}

	return inverseVarianceWeights(model, active)
}

// inverseVarianceWeights allocates proportionally to 1/variance, the
// simplified risk-parity scheme used when the full solve is unavailable.
func inverseVarianceWeights(model *risk.CovarianceModel, active []domain.AssetClass) (domain.Weights, error) {
	totalInverse := 0.0
	for _, class := range active {
		if v := model.At(class, class); v > 0 {
			totalInverse += 1.0 / v
		}
	}
	if totalInverse <= 0 {
		return nil, fmt.Errorf("degenerate covariance: all variances are zero")
	}
	weights := make(domain.Weights, len(active))
	for _, class := range active {
		if v := model.At(class, class); v > 0 {
			weights[class] = (1.0 / v) / totalInverse
		}
	}
	return weights, nil
}

// maxReturnTarget tilts toward the classes with the best expected return per
// unit of risk. It is total: when no class clears the risk-free rate it
// degrades to inverse-volatility, then to an equal split.
func maxReturnTarget(
	model *risk.CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	active []domain.AssetClass,
	riskFreeRate float64,
) domain.Weights {
	weights := make(domain.Weights, len(active))

	total := 0.0
	for _, class := range active {
		vol := math.Max(chars[class].Volatility, 1e-9)
		score := math.Max(0, chars[class].ExpectedReturn-riskFreeRate) / vol
		weights[class] = score
		total += score
	}

	if total <= 0 {
		total = 0
		for _, class := range active {
			score := 1.0 / math.Max(chars[class].Volatility, 1e-9)
			weights[class] = score
			total += score
		}
	}

	if total <= 0 {
		equal := 1.0 / float64(len(active))
		for _, class := range active {
			weights[class] = equal
		}
		return weights
	}

	for class := range weights {
		weights[class] /= total
	}
	return weights
}

// riskParityTarget iterates multiplicatively until every active class
// contributes approximately equally to total variance.
func riskParityTarget(
	model *risk.CovarianceModel,
	start domain.Weights,
	active []domain.AssetClass,
) (domain.Weights, error) {
	n := len(active)
	if n == 0 {
		return nil, fmt.Errorf("no active classes")
	}
	if n == 1 {
		return domain.Weights{active[0]: 1.0}, nil
	}

	weights := make(domain.Weights, n)
	sum := 0.0
	for _, class := range active {
		weights[class] = math.Max(start[class], 1e-6)
		sum += weights[class]
	}
	for class := range weights {
		weights[class] /= sum
	}

	target := 1.0 / float64(n)
	for iter := 0; iter < riskParityMaxIterations; iter++ {
		variance := model.Variance(weights)
		if variance <= 0 {
			return nil, fmt.Errorf("degenerate covariance: zero portfolio variance")
		}

		marginals := model.MarginalContributions(weights)
		maxDeviation := 0.0
		for _, class := range active {
			fraction := marginals[class] / variance
			if d := math.Abs(fraction - target); d > maxDeviation {
				maxDeviation = d
			}
		}
		if maxDeviation < riskParityTolerance {
			return weights, nil
		}

		sum = 0.0
		for _, class := range active {
			fraction := marginals[class] / variance
			if fraction <= 0 {
				fraction = riskParityTolerance
			}
			weights[class] *= math.Pow(target/fraction, riskParityStep)
			sum += weights[class]
		}
		if sum <= 0 {
			return nil, fmt.Errorf("risk parity iteration collapsed")
		}
		for class := range weights {
			weights[class] /= sum
		}
	}

	return nil, fmt.Errorf("risk parity did not converge within %d iterations", riskParityMaxIterations)
}

// maxDiversificationTarget maximizes the diversification ratio
// (Σ w_i·σ_i) / sqrt(w'Σw) with a penalty-method Nelder-Mead search.
func maxDiversificationTarget(
	model *risk.CovarianceModel,
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	active []domain.AssetClass,
) (domain.Weights, error) {
	n := len(active)
	if n == 0 {
		return nil, fmt.Errorf("no active classes")
	}
	if n == 1 {
		return domain.Weights{active[0]: 1.0}, nil
	}

	sigma := model.SubMatrix(active)
	vols := make([]float64, n)
	allZero := true
	for i, class := range active {
		vols[i] = chars[class].Volatility
		if vols[i] > 0 {
			allZero = false
		}
	}
	if allZero {
		return nil, fmt.Errorf("degenerate covariance: all volatilities are zero")
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			proj := projectToUnitBox(x)

			weightedVol := 0.0
			variance := 0.0
			for i := 0; i < n; i++ {
				weightedVol += proj[i] * vols[i]
				for j := 0; j < n; j++ {
					variance += proj[i] * proj[j] * sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			obj := -weightedVol / stdDev
			sum := floats.Sum(proj)
			obj += penaltyWeight * (sum - 1.0) * (sum - 1.0)
			return obj
		},
	}

	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("diversification search failed: %w", err)
	}
	switch result.Status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
	default:
		return nil, fmt.Errorf("diversification search did not converge: status=%v", result.Status)
	}

	final := projectToUnitBox(result.X)
	sum := floats.Sum(final)
	if sum <= 0 {
		return nil, fmt.Errorf("diversification search produced empty weights")
	}

	weights := make(domain.Weights, n)
	for i, class := range active {
		weights[class] = final[i] / sum
	}
	return weights, nil
}

// projectToUnitBox clamps each coordinate to [0, 1].
func projectToUnitBox(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(0, math.Min(1, x[i]))
	}
	return proj
}
