package allocation

import (
	"fmt"

	"github.com/quantfolio/allocengine/internal/domain"
)

// Warning thresholds.
const (
	smallAccountThreshold = 10000.0 // dollars
	highVolatilityIndex   = 30.0
	concentrationLimit    = 0.40 // fraction in a single class
	exclusionResidual     = 0.005
)

// buildWarnings produces the advisory warning list in a fixed order: account
// size, market volatility, concentration, exclusion residuals, objective
// fallback, missing characteristics. Within a category, classes follow the
// canonical ordering so identical inputs yield identical warnings.
func buildWarnings(input AllocationInput, weights domain.Weights, missing []domain.AssetClass, fallback bool) []string {
	warnings := make([]string, 0, 4)

	if input.AccountSize < smallAccountThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"Small account: $%.2f is below $%.0f; transaction costs and minimum position sizes may distort the target allocation.",
			input.AccountSize, smallAccountThreshold))
	}

	if input.MarketConditions.VolatilityIndex > highVolatilityIndex {
		warnings = append(warnings, fmt.Sprintf(
			"Elevated market volatility: index at %.1f exceeds %.0f; expect wider drawdowns than the headline metrics suggest.",
			input.MarketConditions.VolatilityIndex, highVolatilityIndex))
	}

	for _, class := range domain.AllAssetClasses {
		if w := weights[class]; w > concentrationLimit {
			warnings = append(warnings, fmt.Sprintf(
				"Concentration: %.1f%% in %s exceeds the %.0f%% single-class guideline.",
				w*100, class, concentrationLimit*100))
		}
	}

	if input.Preferences != nil {
		excluded := make(map[domain.AssetClass]bool, len(input.Preferences.ExcludedAssetClasses))
		for _, class := range input.Preferences.ExcludedAssetClasses {
			excluded[class] = true
		}
		for _, class := range domain.AllAssetClasses {
			if excluded[class] && weights[class] > exclusionResidual {
				warnings = append(warnings, fmt.Sprintf(
					"Excluded class %s retains a residual %.2f%% allocation after renormalization.",
					class, weights[class]*100))
			}
		}
	}

	if fallback {
		warnings = append(warnings,
			"Objective optimization did not converge; the recommendation uses the constraint-adjusted baseline weights instead.")
	}

	for _, class := range missing {
		warnings = append(warnings, fmt.Sprintf(
			"No characteristics supplied for %s; it was left out of the optimization universe.",
			class))
	}

	return warnings
}
