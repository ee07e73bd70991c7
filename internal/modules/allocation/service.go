package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfolio/allocengine/internal/domain"
	"github.com/quantfolio/allocengine/internal/modules/market"
	"github.com/quantfolio/allocengine/internal/modules/optimization"
	"github.com/quantfolio/allocengine/internal/modules/profiles"
	"github.com/quantfolio/allocengine/internal/modules/rebalancing"
	"github.com/quantfolio/allocengine/internal/modules/risk"
)

// Service is the asset allocation engine façade. It is stateless beyond its
// immutable configuration, so concurrent calls never interfere.
type Service struct {
	cfg        EngineConfig
	adjuster   *market.Adjuster
	optimizer  *optimization.Optimizer
	calculator *risk.Calculator
	planner    *rebalancing.Planner
	log        zerolog.Logger
}

// NewService creates an allocation engine with the given configuration.
// Zero-valued config fields take the documented defaults.
func NewService(cfg EngineConfig, log zerolog.Logger) *Service {
	cfg = cfg.withDefaults()

	cost := rebalancing.CostModel{
		Model:       cfg.TransactionCostModel,
		FixedFee:    DefaultFixedFee,
		DefaultRate: DefaultPercentageRate,
	}

	return &Service{
		cfg:        cfg,
		adjuster:   market.NewAdjuster(log),
		optimizer:  optimization.NewOptimizer(log),
		calculator: risk.NewCalculator(log),
		planner:    rebalancing.NewPlanner(cfg.RebalancingThreshold, cost, log),
		log:        log.With().Str("service", "allocation").Logger(),
	}
}

// Config returns the resolved engine configuration.
func (s *Service) Config() EngineConfig {
	return s.cfg
}

// GenerateAllocation produces a recommendation for the given input. It is the
// sole orchestration entry point: resolve the profile, tilt the baseline for
// market conditions, optimize under constraints, measure the result, and plan
// rebalancing when current positions were supplied.
func (s *Service) GenerateAllocation(ctx context.Context, input AllocationInput) (*AllocationRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.AccountSize <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidAccountSize, input.AccountSize)
	}
	if len(input.AssetCharacteristics) == 0 {
		return nil, ErrNoAssetCharacteristics
	}
	if input.RiskProfile != nil && !input.RiskProfile.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRiskProfile, *input.RiskProfile)
	}

	profile := profiles.Infer(input.MarketConditions, input.Preferences)
	if input.RiskProfile != nil {
		profile = *input.RiskProfile
	}
	def, ok := profiles.Get(profile)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRiskProfile, profile)
	}

	missing := missingCharacteristics(input)

	// Baseline weights over the eligible universe only; a class without
	// characteristics is ineligible and enters at zero weight implicitly.
	baseline := make(domain.Weights, len(input.AssetCharacteristics))
	for class := range input.AssetCharacteristics {
		baseline[class] = def.BaseAllocations[class]
	}

	tilted := s.adjuster.Apply(baseline, input.MarketConditions)

	model := risk.NewCovarianceModel(input.AssetCharacteristics)
	cons := optimization.BuildConstraints(input.Preferences, s.cfg.IncludeAlternatives)
	result := s.optimizer.Run(tilted, model, input.AssetCharacteristics, cons, s.cfg.Objective, s.cfg.RiskFreeRate)
	weights := result.Weights

	metrics := s.calculator.Compute(weights, model, input.AssetCharacteristics, s.cfg.RiskFreeRate)
	diversification := risk.AnalyzeDiversification(weights, model, input.AssetCharacteristics)
	analysis := risk.AnalyzeRisk(weights, model, def)

	entries := s.buildEntries(input, model, weights, analysis, result.Fallback, cons)
	warnings := buildWarnings(input, weights, missing, result.Fallback)

	now := time.Now().UTC()
	frequencyDays := DefaultRebalancingDays
	if input.Preferences != nil && input.Preferences.RebalancingFrequencyDays > 0 {
		frequencyDays = input.Preferences.RebalancingFrequencyDays
	}

	rec := &AllocationRecommendation{
		ID:                  uuid.New().String(),
		Timestamp:           now,
		NextRebalancingDate: now.AddDate(0, 0, frequencyDays),
		Methodology:         fmt.Sprintf("%s optimization over a %s baseline with market-condition tilts", s.cfg.Objective, profile),
		RiskProfile:         profile,
		Objective:           s.cfg.Objective,
		Allocations:         entries,
		PortfolioMetrics:    metrics,
		RiskAnalysis:        analysis,
		Diversification:     diversification,
		Warnings:            warnings,
	}

	if input.CurrentPositions != nil {
		rec.Rebalancing = s.planner.Plan(input.CurrentPositions, weights, input.AccountSize, input.AssetCharacteristics)
	}

	s.log.Info().
		Str("id", rec.ID).
		Str("risk_profile", string(profile)).
		Str("objective", string(s.cfg.Objective)).
		Float64("expected_return", metrics.ExpectedReturn).
		Float64("expected_volatility", metrics.ExpectedVolatility).
		Int("warnings", len(warnings)).
		Msg("Generated allocation recommendation")

	return rec, nil
}

// missingCharacteristics lists classes referenced by positions or preferences
// that lack characteristics data, in canonical order.
func missingCharacteristics(input AllocationInput) []domain.AssetClass {
	referenced := make(map[domain.AssetClass]bool)
	for class := range input.CurrentPositions {
		referenced[class] = true
	}
	if input.Preferences != nil {
		for _, class := range input.Preferences.PreferredAssetClasses {
			referenced[class] = true
		}
	}

	var missing []domain.AssetClass
	for _, class := range domain.AllAssetClasses {
		if !referenced[class] {
			continue
		}
		if _, ok := input.AssetCharacteristics[class]; !ok {
			missing = append(missing, class)
		}
	}
	return missing
}

// buildEntries assembles per-class allocation entries in canonical order,
// attaching rationale and confidence.
func (s *Service) buildEntries(
	input AllocationInput,
	model *risk.CovarianceModel,
	weights domain.Weights,
	analysis risk.RiskAnalysis,
	fallback bool,
	cons optimization.Constraints,
) []AllocationEntry {
	crisis := market.IsCrisis(input.MarketConditions)
	classCount := model.Size()

	entries := make([]AllocationEntry, 0, classCount)
	for _, class := range model.Classes() {
		weight := weights[class]
		chars := input.AssetCharacteristics[class]

		confidence := 0.90
		if fallback {
			confidence -= 0.15
		}
		if len(chars.Correlations) < classCount-1 {
			confidence -= 0.10
		}
		if crisis {
			confidence -= 0.05
		}
		if confidence < 0.05 {
			confidence = 0.05
		}

		entries = append(entries, AllocationEntry{
			AssetClass:         class,
			Allocation:         weight,
			Amount:             weight * input.AccountSize,
			RiskContribution:   analysis.RiskDecomposition[class] / 100,
			ReturnContribution: weight * chars.ExpectedReturn,
			Rationale:          s.rationale(class, weight, crisis, cons),
			Confidence:         confidence,
		})
	}
	return entries
}

// rationale produces a short, deterministic justification for one class.
func (s *Service) rationale(class domain.AssetClass, weight float64, crisis bool, cons optimization.Constraints) string {
	roles := map[domain.AssetClass]string{
		domain.Equities: "core growth engine",
		domain.Options:  "tactical convexity overlay",
		domain.Futures:  "leveraged directional exposure",
		domain.ETF:      "diversified defensive core",
		domain.Forex:    "currency diversification sleeve",
		domain.Crypto:   "high-volatility satellite position",
	}

	if weight < 1e-9 {
		if cons.Excluded[class] {
			return fmt.Sprintf("%s is excluded by caller preference.", class)
		}
		if !cons.IncludeAlternatives && class.IsAlternative() {
			return fmt.Sprintf("%s is gated out because alternatives are disabled.", class)
		}
		return fmt.Sprintf("%s carries no weight under the current constraints and market tilts.", class)
	}

	text := fmt.Sprintf("%.1f%% to %s as the portfolio's %s under the %s objective", weight*100, class, roles[class], s.cfg.Objective)
	if crisis {
		text += "; crisis conditions shifted weight toward defensive classes"
	}
	return text + "."
}
