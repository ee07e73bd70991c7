package domain

// RiskProfile is a named risk-tolerance tier. The five tiers are strictly
// ordered from most defensive to most aggressive.
type RiskProfile string

const (
	Conservative         RiskProfile = "CONSERVATIVE"
	ModerateConservative RiskProfile = "MODERATE_CONSERVATIVE"
	Moderate             RiskProfile = "MODERATE"
	ModerateAggressive   RiskProfile = "MODERATE_AGGRESSIVE"
	Aggressive           RiskProfile = "AGGRESSIVE"
)

// AllRiskProfiles lists the five canonical tiers in ascending risk order.
var AllRiskProfiles = []RiskProfile{
	Conservative,
	ModerateConservative,
	Moderate,
	ModerateAggressive,
	Aggressive,
}

// Valid reports whether p is one of the five canonical tiers.
func (p RiskProfile) Valid() bool {
	for _, known := range AllRiskProfiles {
		if p == known {
			return true
		}
	}
	return false
}

// Rank returns the tier index (0 = CONSERVATIVE, 4 = AGGRESSIVE), or -1 for
// unknown profiles.
func (p RiskProfile) Rank() int {
	for i, known := range AllRiskProfiles {
		if p == known {
			return i
		}
	}
	return -1
}

// ProfileForRank maps a tier index back to a profile, clamping out-of-range
// values to the nearest tier.
func ProfileForRank(rank int) RiskProfile {
	if rank < 0 {
		rank = 0
	}
	if rank >= len(AllRiskProfiles) {
		rank = len(AllRiskProfiles) - 1
	}
	return AllRiskProfiles[rank]
}

// RiskProfileDefinition describes a tier's baseline allocation and targets.
// BaseAllocations may sum to less than 1.0; the remainder is an unallocated
// buffer resolved by the final normalization step downstream.
type RiskProfileDefinition struct {
	Profile         RiskProfile `json:"profile"`
	BaseAllocations Weights     `json:"base_allocations"`
	RiskScore       float64     `json:"risk_score"`
	TargetReturn    float64     `json:"target_return"`
	MaxVolatility   float64     `json:"max_volatility"`
	Description     string      `json:"description"`
}

// RiskLevel buckets a normalized risk score.
type RiskLevel string

const (
	RiskLevelLow     RiskLevel = "LOW"
	RiskLevelMedium  RiskLevel = "MEDIUM"
	RiskLevelHigh    RiskLevel = "HIGH"
	RiskLevelExtreme RiskLevel = "EXTREME"
)
