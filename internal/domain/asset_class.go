// Package domain holds the shared types of the allocation engine: the closed
// asset-class and risk-profile universes, market condition snapshots, and the
// per-class statistical characteristics everything downstream consumes.
package domain

// AssetClass identifies one of the six tradable instrument categories.
type AssetClass string

const (
	Equities AssetClass = "EQUITIES"
	Options  AssetClass = "OPTIONS"
	Futures  AssetClass = "FUTURES"
	ETF      AssetClass = "ETF"
	Forex    AssetClass = "FOREX"
	Crypto   AssetClass = "CRYPTO"
)

// AllAssetClasses is the closed asset-class universe in canonical order.
// The order is also the deterministic tie-break used when ranking trades.
var AllAssetClasses = []AssetClass{Equities, Options, Futures, ETF, Forex, Crypto}

// AlternativeAssetClasses are gated by EngineConfig.IncludeAlternatives.
var AlternativeAssetClasses = []AssetClass{Options, Futures, Crypto}

// Valid reports whether c is one of the six canonical classes.
func (c AssetClass) Valid() bool {
	for _, known := range AllAssetClasses {
		if c == known {
			return true
		}
	}
	return false
}

// Rank returns the canonical position of c. Unknown classes sort last.
func (c AssetClass) Rank() int {
	for i, known := range AllAssetClasses {
		if c == known {
			return i
		}
	}
	return len(AllAssetClasses)
}

// IsAlternative reports whether c is an alternative instrument category.
func (c AssetClass) IsAlternative() bool {
	for _, alt := range AlternativeAssetClasses {
		if c == alt {
			return true
		}
	}
	return false
}
