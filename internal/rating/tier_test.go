package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFromTournamentName(t *testing.T) {
	tests := []struct {
		name     string
		expected Tier
	}{
		{"Valorant Champions 2025", TierS},
		{"VCT 2025: Masters Toronto", TierS},
		{"champions tour lock-in", TierS},
		{"VCT 2025: Americas Stage 2 Playoffs", TierA},
		{"VCT 2025: Pacific Stage 1 - Grand Final", TierA},
		{"Game Changers Championship Final", TierS},
		{"Game Changers 2025 EMEA Main Stage", TierA},
		{"Challengers League 2025 France", TierB},
		{"VCT 2025: Game Changers EMEA Stage 1", TierC},
		{"Premier Invitational", TierC},
		{"", TierC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TierFromTournamentName(tt.name))
		})
	}
}

func TestTierPriorityOrder(t *testing.T) {
	// A name matching several rules takes the highest tier: Masters
	// beats Playoffs, Playoffs beats Challengers.
	assert.Equal(t, TierS, TierFromTournamentName("Masters Playoffs"))
	assert.Equal(t, TierA, TierFromTournamentName("Challengers League Playoffs"))
	// "championship" carries the champions substring, so it outranks
	// every lower rule.
	assert.Equal(t, TierS, TierFromTournamentName("Game Changers Championship Final"))
}

func TestTierCoefficients(t *testing.T) {
	assert.Equal(t, 2.0, TierS.Coefficient())
	assert.Equal(t, 1.5, TierA.Coefficient())
	assert.Equal(t, 1.2, TierB.Coefficient())
	assert.Equal(t, 1.0, TierC.Coefficient())
	assert.Equal(t, 1.0, Tier("unknown").Coefficient(), "Unknown tiers fall back to the base coefficient")
}
