package allocation

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/allocengine/internal/domain"
)

func calmMarket() domain.MarketMetrics {
	return domain.MarketMetrics{
		VolatilityIndex:   15,
		TrendDirection:    domain.TrendNeutral,
		MarketStrength:    50,
		SentimentScore:    55,
		InterestRateLevel: domain.RatesMedium,
		InflationRate:     2.5,
		CreditSpread:      150,
		EconomicPhase:     domain.PhaseExpansion,
	}
}

func fullChars() map[domain.AssetClass]domain.AssetClassCharacteristics {
	return map[domain.AssetClass]domain.AssetClassCharacteristics{
		domain.Equities: {
			Volatility:     16,
			ExpectedReturn: 8,
			MaxDrawdown:    35,
			Correlations: map[domain.AssetClass]float64{
				domain.ETF:    0.85,
				domain.Forex:  0.20,
				domain.Crypto: 0.40,
			},
		},
		domain.ETF: {
			Volatility:     12,
			ExpectedReturn: 6,
			MaxDrawdown:    25,
			Correlations: map[domain.AssetClass]float64{
				domain.Equities: 0.85,
				domain.Forex:    0.15,
				domain.Crypto:   0.35,
			},
		},
		domain.Forex: {
			Volatility:     8,
			ExpectedReturn: 3,
			MaxDrawdown:    15,
			Correlations: map[domain.AssetClass]float64{
				domain.Equities: 0.20,
				domain.ETF:      0.15,
				domain.Crypto:   0.10,
			},
		},
		domain.Crypto: {
			Volatility:      60,
			ExpectedReturn:  15,
			MaxDrawdown:     80,
			TransactionCost: 0.005,
			Correlations: map[domain.AssetClass]float64{
				domain.Equities: 0.40,
				domain.ETF:      0.35,
				domain.Forex:    0.10,
			},
		},
	}
}

func baseInput() AllocationInput {
	return AllocationInput{
		MarketConditions:     calmMarket(),
		AccountSize:          100_000,
		AssetCharacteristics: fullChars(),
	}
}

func newTestService() *Service {
	return NewService(DefaultEngineConfig(), zerolog.Nop())
}

func profilePtr(p domain.RiskProfile) *domain.RiskProfile { return &p }

func TestGenerateAllocation_RejectsNonPositiveAccountSize(t *testing.T) {
	svc := newTestService()

	for _, size := range []float64{0, -1000} {
		input := baseInput()
		input.AccountSize = size
		_, err := svc.GenerateAllocation(context.Background(), input)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidAccountSize)
	}
}

func TestGenerateAllocation_RejectsEmptyCharacteristics(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.AssetCharacteristics = nil

	_, err := svc.GenerateAllocation(context.Background(), input)
	assert.ErrorIs(t, err, ErrNoAssetCharacteristics)
}

func TestGenerateAllocation_RejectsUnknownProfile(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.RiskProfile = profilePtr(domain.RiskProfile("YOLO"))

	_, err := svc.GenerateAllocation(context.Background(), input)
	assert.ErrorIs(t, err, ErrUnknownRiskProfile)
}

func TestGenerateAllocation_HonorsCanceledContext(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateAllocation(ctx, baseInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAllocation_AllocationsSumToOne(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)
	require.Len(t, rec.Allocations, 4)

	weightSum := 0.0
	amountSum := 0.0
	for _, entry := range rec.Allocations {
		assert.GreaterOrEqual(t, entry.Allocation, 0.0, "class %s", entry.AssetClass)
		weightSum += entry.Allocation
		amountSum += entry.Amount
	}
	assert.InDelta(t, 1.0, weightSum, 1e-6)
	assert.InDelta(t, 100_000, amountSum, 1.0)
}

func TestGenerateAllocation_EntriesInCanonicalOrder(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)

	for i := 1; i < len(rec.Allocations); i++ {
		assert.Less(t,
			rec.Allocations[i-1].AssetClass.Rank(),
			rec.Allocations[i].AssetClass.Rank())
	}
}

func TestGenerateAllocation_ExplicitProfileOverridesInference(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.RiskProfile = profilePtr(domain.Aggressive)

	rec, err := svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggressive, rec.RiskProfile)
	assert.Contains(t, rec.Methodology, string(domain.Aggressive))
}

func TestGenerateAllocation_CalmMarketInfersModerate(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, domain.Moderate, rec.RiskProfile)
}

func TestGenerateAllocation_ExcludedClassGetsZero(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.Preferences = &domain.Preferences{
		ExcludedAssetClasses: []domain.AssetClass{domain.Crypto},
	}

	rec, err := svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)

	for _, entry := range rec.Allocations {
		if entry.AssetClass == domain.Crypto {
			assert.Zero(t, entry.Allocation)
			assert.Zero(t, entry.Amount)
			assert.Contains(t, entry.Rationale, "excluded by caller preference")
			return
		}
	}
	t.Fatal("no entry for the excluded class")
}

func TestGenerateAllocation_AllClassesExcludedWarnsResiduals(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.Preferences = &domain.Preferences{
		ExcludedAssetClasses: []domain.AssetClass{
			domain.Equities, domain.ETF, domain.Forex, domain.Crypto,
		},
	}

	rec, err := svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)

	// No feasible portfolio exists; the engine still answers with a full
	// allocation and flags every residual.
	sum := 0.0
	for _, entry := range rec.Allocations {
		sum += entry.Allocation
	}
	assert.InDelta(t, 1.0, sum, 1e-6)

	residuals := 0
	for _, w := range rec.Warnings {
		if strings.Contains(w, "retains a residual") {
			residuals++
		}
	}
	assert.Equal(t, 4, residuals, "warnings: %v", rec.Warnings)
}

func TestGenerateAllocation_AlternativesGate(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.IncludeAlternatives = false
	svc := NewService(cfg, zerolog.Nop())

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)

	for _, entry := range rec.Allocations {
		if entry.AssetClass == domain.Crypto {
			assert.Zero(t, entry.Allocation)
			assert.Contains(t, entry.Rationale, "alternatives are disabled")
		}
	}
}

func TestGenerateAllocation_Deterministic(t *testing.T) {
	svc := newTestService()

	first, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)
	second, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "each call mints its own id")
	require.Len(t, second.Allocations, len(first.Allocations))
	for i := range first.Allocations {
		assert.Equal(t, first.Allocations[i].AssetClass, second.Allocations[i].AssetClass)
		assert.InDelta(t, first.Allocations[i].Allocation, second.Allocations[i].Allocation, 1e-12)
		assert.Equal(t, first.Allocations[i].Rationale, second.Allocations[i].Rationale)
	}
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestGenerateAllocation_SmallAccountAndVolatilityWarnings(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.AccountSize = 5_000
	input.MarketConditions.VolatilityIndex = 42

	rec, err := svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)

	joined := ""
	for _, w := range rec.Warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "Small account")
	assert.Contains(t, joined, "Elevated market volatility")
}

func TestGenerateAllocation_MissingCharacteristicsWarning(t *testing.T) {
	svc := newTestService()
	input := baseInput()
	input.CurrentPositions = map[domain.AssetClass]float64{
		domain.Equities: 50_000,
		domain.Options:  10_000, // no characteristics supplied
	}

	rec, err := svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)

	found := false
	for _, w := range rec.Warnings {
		if w == "No characteristics supplied for OPTIONS; it was left out of the optimization universe." {
			found = true
		}
	}
	assert.True(t, found, "warnings: %v", rec.Warnings)

	for _, entry := range rec.Allocations {
		assert.NotEqual(t, domain.Options, entry.AssetClass,
			"classes without characteristics stay out of the universe")
	}
}

func TestGenerateAllocation_RebalancingOnlyWithPositions(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Nil(t, rec.Rebalancing)

	input := baseInput()
	input.CurrentPositions = map[domain.AssetClass]float64{domain.Equities: 100_000}
	rec, err = svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Rebalancing)
}

func TestGenerateAllocation_NextRebalancingDate(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)
	assert.Equal(t, rec.Timestamp.AddDate(0, 0, DefaultRebalancingDays), rec.NextRebalancingDate)

	input := baseInput()
	input.Preferences = &domain.Preferences{RebalancingFrequencyDays: 30}
	rec, err = svc.GenerateAllocation(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, rec.Timestamp.AddDate(0, 0, 30), rec.NextRebalancingDate)
}

func allocationFor(t *testing.T, rec *AllocationRecommendation, class domain.AssetClass) float64 {
	t.Helper()
	for _, entry := range rec.Allocations {
		if entry.AssetClass == class {
			return entry.Allocation
		}
	}
	t.Fatalf("no allocation entry for %s", class)
	return 0
}

func TestGenerateAllocation_CrisisRaisesDefensiveAllocation(t *testing.T) {
	svc := newTestService()

	// Same profile and characteristics; only the market regime differs.
	neutral := baseInput()
	neutral.RiskProfile = profilePtr(domain.Moderate)
	neutral.MarketConditions.VolatilityIndex = 18
	neutral.MarketConditions.SentimentScore = 50
	neutral.MarketConditions.CreditSpread = 150

	crisis := baseInput()
	crisis.RiskProfile = profilePtr(domain.Moderate)
	crisis.MarketConditions.VolatilityIndex = 45
	crisis.MarketConditions.SentimentScore = 15
	crisis.MarketConditions.CreditSpread = 600

	neutralRec, err := svc.GenerateAllocation(context.Background(), neutral)
	require.NoError(t, err)
	crisisRec, err := svc.GenerateAllocation(context.Background(), crisis)
	require.NoError(t, err)

	assert.GreaterOrEqual(t,
		allocationFor(t, crisisRec, domain.ETF),
		allocationFor(t, neutralRec, domain.ETF),
		"crisis conditions shift the final recommendation toward ETF")
	assert.LessOrEqual(t,
		allocationFor(t, crisisRec, domain.Crypto),
		allocationFor(t, neutralRec, domain.Crypto))
}

func TestGenerateAllocation_CryptoNeverRisesWithVolatility(t *testing.T) {
	svc := newTestService()

	previous := 1.0
	for _, vix := range []float64{10, 20, 30, 35} {
		input := baseInput()
		input.RiskProfile = profilePtr(domain.Moderate)
		input.MarketConditions.VolatilityIndex = vix

		rec, err := svc.GenerateAllocation(context.Background(), input)
		require.NoError(t, err)

		crypto := allocationFor(t, rec, domain.Crypto)
		assert.LessOrEqual(t, crypto, previous+1e-9,
			"final CRYPTO allocation at volatility index %.0f", vix)
		previous = crypto
	}
}

func TestGenerateAllocation_ConfidenceAndContributions(t *testing.T) {
	svc := newTestService()

	rec, err := svc.GenerateAllocation(context.Background(), baseInput())
	require.NoError(t, err)

	riskTotal := 0.0
	for _, entry := range rec.Allocations {
		assert.Greater(t, entry.Confidence, 0.0)
		assert.LessOrEqual(t, entry.Confidence, 1.0)
		assert.NotEmpty(t, entry.Rationale)
		assert.GreaterOrEqual(t, entry.RiskContribution, 0.0)
		riskTotal += entry.RiskContribution
	}
	assert.InDelta(t, 1.0, riskTotal, 1e-6, "risk contributions are variance fractions")
	assert.Greater(t, rec.PortfolioMetrics.ExpectedReturn, 0.0)
	assert.Greater(t, rec.PortfolioMetrics.ExpectedVolatility, 0.0)
	assert.GreaterOrEqual(t, rec.Diversification.DiversificationRatio, 1.0)
}
