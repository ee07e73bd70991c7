package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/allocengine/internal/domain"
)

func eligibleClasses() []domain.AssetClass {
	return []domain.AssetClass{domain.Equities, domain.ETF, domain.Forex, domain.Crypto}
}

func startingWeights() domain.Weights {
	return domain.Weights{
		domain.Equities: 0.40,
		domain.ETF:      0.35,
		domain.Forex:    0.15,
		domain.Crypto:   0.10,
	}
}

func TestBuildConstraints_NilPreferences(t *testing.T) {
	cons := BuildConstraints(nil, true)
	assert.Empty(t, cons.Excluded)
	assert.Empty(t, cons.Preferred)
	assert.Zero(t, cons.MinAllocation)
	assert.True(t, cons.IncludeAlternatives)
}

func TestBuildConstraints_ExclusionBeatsPreference(t *testing.T) {
	prefs := &domain.Preferences{
		ExcludedAssetClasses:  []domain.AssetClass{domain.Crypto},
		PreferredAssetClasses: []domain.AssetClass{domain.Crypto, domain.ETF},
	}
	cons := BuildConstraints(prefs, true)
	assert.True(t, cons.Excluded[domain.Crypto])
	assert.False(t, cons.Preferred[domain.Crypto], "a class cannot be both excluded and preferred")
	assert.True(t, cons.Preferred[domain.ETF])
}

func TestApply_ExclusionRedistributesProRata(t *testing.T) {
	prefs := &domain.Preferences{ExcludedAssetClasses: []domain.AssetClass{domain.Crypto}}
	cons := BuildConstraints(prefs, true)

	out := cons.Apply(startingWeights(), eligibleClasses())

	assert.Zero(t, out[domain.Crypto])

	// The freed 0.10 is spread proportionally over the remaining 0.90.
	assert.InDelta(t, 0.40+0.10*0.40/0.90, out[domain.Equities], 1e-9)
	assert.InDelta(t, 0.35+0.10*0.35/0.90, out[domain.ETF], 1e-9)
	assert.InDelta(t, 0.15+0.10*0.15/0.90, out[domain.Forex], 1e-9)
	assert.InDelta(t, 1.0, out.Sum(), 1e-9, "redistribution preserves the total")
}

func TestApply_AlternativesGate(t *testing.T) {
	cons := BuildConstraints(nil, false)

	weights := domain.Weights{
		domain.Equities: 0.30,
		domain.ETF:      0.30,
		domain.Options:  0.15,
		domain.Futures:  0.10,
		domain.Crypto:   0.15,
	}
	classes := []domain.AssetClass{domain.Equities, domain.Options, domain.Futures, domain.ETF, domain.Crypto}

	out := cons.Apply(weights, classes)
	assert.Zero(t, out[domain.Options])
	assert.Zero(t, out[domain.Futures])
	assert.Zero(t, out[domain.Crypto])
	assert.Greater(t, out[domain.Equities], 0.30, "gated weight flows to traditional classes")
	assert.Greater(t, out[domain.ETF], 0.30)
}

func TestApply_PreferredFloor(t *testing.T) {
	prefs := &domain.Preferences{PreferredAssetClasses: []domain.AssetClass{domain.Forex}}
	cons := BuildConstraints(prefs, true)

	weights := startingWeights()
	weights[domain.Forex] = 0.01

	out := cons.Apply(weights, eligibleClasses())
	assert.GreaterOrEqual(t, out[domain.Forex], 0.08, "preferred classes get the floor")
}

func TestApply_MinAllocationFloor(t *testing.T) {
	prefs := &domain.Preferences{MinAllocationPerClass: 0.05}
	cons := BuildConstraints(prefs, true)

	weights := startingWeights()
	weights[domain.Crypto] = 0.001

	out := cons.Apply(weights, eligibleClasses())
	assert.GreaterOrEqual(t, out[domain.Crypto], 0.05)
}

func TestApply_MinAllocationSkipsExcluded(t *testing.T) {
	prefs := &domain.Preferences{
		ExcludedAssetClasses:  []domain.AssetClass{domain.Crypto},
		MinAllocationPerClass: 0.05,
	}
	cons := BuildConstraints(prefs, true)

	out := cons.Apply(startingWeights(), eligibleClasses())
	assert.Zero(t, out[domain.Crypto], "the floor never resurrects an excluded class")
}

func TestApply_AllWeightExcludedFallsBackToEqualSplit(t *testing.T) {
	prefs := &domain.Preferences{ExcludedAssetClasses: []domain.AssetClass{domain.Equities, domain.ETF}}
	cons := BuildConstraints(prefs, true)

	weights := domain.Weights{domain.Equities: 0.6, domain.ETF: 0.4, domain.Forex: 0, domain.Crypto: 0}

	out := cons.Apply(weights, eligibleClasses())
	require.Zero(t, out[domain.Equities])
	require.Zero(t, out[domain.ETF])
	assert.InDelta(t, 0.5, out[domain.Forex], 1e-9)
	assert.InDelta(t, 0.5, out[domain.Crypto], 1e-9)
}

func TestEnforce_ReappliesAfterObjective(t *testing.T) {
	prefs := &domain.Preferences{
		ExcludedAssetClasses:  []domain.AssetClass{domain.Crypto},
		PreferredAssetClasses: []domain.AssetClass{domain.Forex},
	}
	cons := BuildConstraints(prefs, true)

	reshaped := domain.Weights{
		domain.Equities: 0.50,
		domain.ETF:      0.40,
		domain.Forex:    0.02,
		domain.Crypto:   0.08,
	}

	out := cons.enforce(reshaped)
	assert.Zero(t, out[domain.Crypto])
	assert.GreaterOrEqual(t, out[domain.Forex], 0.08)
}
