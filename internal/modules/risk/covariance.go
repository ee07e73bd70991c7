// Package risk builds the covariance structure of the asset-class universe
// and derives portfolio-level metrics from it: expected return and
// volatility, risk-adjusted ratios, parametric VaR, diversification measures
// and per-class risk decomposition.
package risk

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/quantfolio/allocengine/internal/domain"
)

// CovarianceModel is the variance-covariance structure built from per-class
// volatility and pairwise correlation. Entries are in percent-squared.
type CovarianceModel struct {
	classes []domain.AssetClass
	index   map[domain.AssetClass]int
	sigma   *mat.SymDense
}

// NewCovarianceModel builds the model from the supplied characteristics.
// Only classes present in chars participate; a class missing from the list
// is ineligible and simply absent from the matrix. Asymmetric correlation
// pairs are reconciled rather than rejected: when both sides are present but
// disagree they are averaged, when only one side is present it wins, and a
// fully absent pair defaults to zero.
func NewCovarianceModel(chars map[domain.AssetClass]domain.AssetClassCharacteristics) *CovarianceModel {
	classes := make([]domain.AssetClass, 0, len(chars))
	for _, class := range domain.AllAssetClasses {
		if _, ok := chars[class]; ok {
			classes = append(classes, class)
		}
	}

	index := make(map[domain.AssetClass]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	n := len(classes)
	sigma := mat.NewSymDense(maxInt(n, 1), nil)
	for i := 0; i < n; i++ {
		volI := chars[classes[i]].Volatility
		sigma.SetSym(i, i, volI*volI)
		for j := i + 1; j < n; j++ {
			volJ := chars[classes[j]].Volatility
			rho := reconcileCorrelation(chars, classes[i], classes[j])
			sigma.SetSym(i, j, volI*volJ*rho)
		}
	}

	return &CovarianceModel{classes: classes, index: index, sigma: sigma}
}

// reconcileCorrelation resolves the pairwise coefficient between a and b.
func reconcileCorrelation(
	chars map[domain.AssetClass]domain.AssetClassCharacteristics,
	a, b domain.AssetClass,
) float64 {
	ab, okAB := chars[a].Correlations[b]
	ba, okBA := chars[b].Correlations[a]

	var rho float64
	switch {
	case okAB && okBA:
		if ab != ba {
			rho = (ab + ba) / 2
		} else {
			rho = ab
		}
	case okAB:
		rho = ab
	case okBA:
		rho = ba
	default:
		rho = 0
	}

	return math.Max(-1, math.Min(1, rho))
}

// Classes returns the eligible classes in canonical order.
func (m *CovarianceModel) Classes() []domain.AssetClass {
	return m.classes
}

// Size returns the number of eligible classes.
func (m *CovarianceModel) Size() int {
	return len(m.classes)
}

// At returns the covariance entry for the given classes, or 0 when either
// class is not part of the model.
func (m *CovarianceModel) At(a, b domain.AssetClass) float64 {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if !okA || !okB {
		return 0
	}
	return m.sigma.At(i, j)
}

// Correlation returns the reconciled pairwise correlation, 1 on the diagonal.
func (m *CovarianceModel) Correlation(a, b domain.AssetClass) float64 {
	if a == b {
		return 1
	}
	varA := m.At(a, a)
	varB := m.At(b, b)
	if varA <= 0 || varB <= 0 {
		return 0
	}
	return m.At(a, b) / math.Sqrt(varA*varB)
}

// Variance computes w'Σw, clamped to zero to guard against negative
// rounding artifacts before downstream square roots.
func (m *CovarianceModel) Variance(w domain.Weights) float64 {
	variance := 0.0
	for i, classI := range m.classes {
		wi := w[classI]
		if wi == 0 {
			continue
		}
		for j, classJ := range m.classes {
			wj := w[classJ]
			if wj == 0 {
				continue
			}
			variance += wi * wj * m.sigma.At(i, j)
		}
	}
	return math.Max(0, variance)
}

// MarginalContributions returns w_i·(Σw)_i per class, the building block of
// both risk-parity optimization and the risk decomposition.
func (m *CovarianceModel) MarginalContributions(w domain.Weights) map[domain.AssetClass]float64 {
	out := make(map[domain.AssetClass]float64, len(m.classes))
	for i, classI := range m.classes {
		row := 0.0
		for j, classJ := range m.classes {
			row += m.sigma.At(i, j) * w[classJ]
		}
		out[classI] = w[classI] * row
	}
	return out
}

// SubMatrix extracts the covariance rows/columns for the given classes, in
// the given order. Classes outside the model contribute zero rows.
func (m *CovarianceModel) SubMatrix(classes []domain.AssetClass) *mat.SymDense {
	n := len(classes)
	sub := mat.NewSymDense(maxInt(n, 1), nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sub.SetSym(i, j, m.At(classes[i], classes[j]))
		}
	}
	return sub
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
