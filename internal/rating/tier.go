package rating

import "strings"

// Tier classifies tournament importance from S (major international
// events) down to C (qualifiers and smaller tournaments).
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Coefficient returns the K-factor multiplier applied to matches played
// at this tier.
func (t Tier) Coefficient() float64 {
	switch t {
	case TierS:
		return 2.0
	case TierA:
		return 1.5
	case TierB:
		return 1.2
	default:
		return 1.0
	}
}

// TierFromTournamentName derives a tier from a tournament's display
// name. Matching is case-insensitive and rules are checked in priority
// order; anything unmatched falls through to C.
func TierFromTournamentName(name string) Tier {
	n := strings.ToLower(name)

	switch {
	case strings.Contains(n, "champions") || strings.Contains(n, "masters"):
		return TierS
	case strings.Contains(n, "playoffs") || strings.Contains(n, "final"):
		return TierA
	// "game changers ... final" is already caught by the rule above;
	// only the main-stage form needs its own rule.
	case strings.Contains(n, "game changers") && strings.Contains(n, "main stage"):
		return TierA
	case strings.Contains(n, "challengers"):
		return TierB
	case strings.Contains(n, "game changers"):
		return TierC
	default:
		return TierC
	}
}
