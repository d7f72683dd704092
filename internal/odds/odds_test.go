package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_EqualRatings(t *testing.T) {
	line, err := Derive(1000, 1000)
	require.NoError(t, err)

	assert.Equal(t, 0.5, line.ProbA, "Equal ratings imply a coin flip")
	assert.Equal(t, 0.5, line.ProbB)
	assert.Equal(t, 2.0, line.OddsA, "A 50% probability is even money")
	assert.Equal(t, 2.0, line.OddsB)
}

func TestDerive_Favorite(t *testing.T) {
	line, err := Derive(1200, 1000)
	require.NoError(t, err)

	assert.Greater(t, line.ProbA, 0.5, "The higher-rated side must be the favorite")
	assert.Less(t, line.OddsA, line.OddsB, "The favorite pays less")
	assert.InDelta(t, 1.0, line.ProbA+line.ProbB, 1e-12, "Probabilities must sum to one")
	assert.InDelta(t, 0.7597, line.ProbA, 1e-4)
}

func TestDerive_Symmetry(t *testing.T) {
	ab, err := Derive(1350, 980)
	require.NoError(t, err)
	ba, err := Derive(980, 1350)
	require.NoError(t, err)

	assert.InDelta(t, ab.ProbA, ba.ProbB, 1e-12, "Swapping sides must swap the line")
	assert.InDelta(t, ab.OddsB, ba.OddsA, 1e-12)
}

func TestDerive_DegenerateGap(t *testing.T) {
	_, err := Derive(0, 1e6)
	assert.Error(t, err, "An underflowing probability must be rejected, not published")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.33, Round(2.333333))
	assert.Equal(t, 1.9, Round(1.8999))
	assert.Equal(t, 2.0, Round(2.0))
}
