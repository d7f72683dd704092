package repository

import (
	"context"
	"testing"
	"time"

	"valodds/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertFixtureMatch(t *testing.T, db *Database, ctx context.Context) *models.Match {
	teamA := &models.Team{Game: models.GameValorant, Name: uniqueName("TeamA"), ExternalID: uniqueName("a"), Rating: 1000}
	teamB := &models.Team{Game: models.GameValorant, Name: uniqueName("TeamB"), ExternalID: uniqueName("b"), Rating: 1000}
	require.NoError(t, db.Teams.Create(ctx, teamA))
	require.NoError(t, db.Teams.Create(ctx, teamB))

	tournament := &models.Tournament{
		Game:        models.GameValorant,
		Name:        uniqueName("Challengers League"),
		Tier:        "B",
		Coefficient: 1.2,
	}
	require.NoError(t, db.Tournaments.Create(ctx, tournament))

	match := &models.Match{
		Game:         models.GameValorant,
		ExternalID:   uniqueName("match"),
		TeamAID:      teamA.ID,
		TeamBID:      teamB.ID,
		TournamentID: tournament.ID,
		Status:       models.StatusUpcoming,
		StartsAt:     time.Now().Add(24 * time.Hour).UTC(),
	}

	inserted, err := db.Matches.Insert(ctx, match)
	require.NoError(t, err, "Should insert match")
	require.True(t, inserted, "First insert must write a row")

	return match
}

func TestMatchRepository_InsertDeduplicates(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := insertFixtureMatch(t, db, ctx)

	duplicate := *match
	duplicate.ID = 0
	inserted, err := db.Matches.Insert(ctx, &duplicate)
	require.NoError(t, err, "A duplicate external id is not an error")
	assert.False(t, inserted, "Second insert with the same external id must be a no-op")

	exists, err := db.Matches.Exists(ctx, models.GameValorant, match.ExternalID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMatchRepository_StatusTransitions(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := insertFixtureMatch(t, db, ctx)

	require.NoError(t, db.Matches.MarkLive(ctx, match.ID))

	winner := match.TeamAID
	require.NoError(t, db.Matches.MarkFinished(ctx, match.ID, 2, 1, &winner))

	// A finished match must stay finished
	require.NoError(t, db.Matches.MarkLive(ctx, match.ID))

	due, err := db.Matches.ListDue(ctx, models.GameValorant, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	for _, m := range due {
		assert.NotEqual(t, match.ID, m.ID, "Finished matches are not due for promotion")
	}
}

func TestMatchRepository_OddsOnlyWhileUpcoming(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := insertFixtureMatch(t, db, ctx)

	require.NoError(t, db.Matches.UpdateOdds(ctx, match.ID, 1.85, 1.95))

	require.NoError(t, db.Matches.MarkLive(ctx, match.ID))
	require.NoError(t, db.Matches.UpdateOdds(ctx, match.ID, 1.10, 7.50), "Writing odds to a live match is a silent no-op")
}

func TestMatchRepository_ListExternalIDsByStatus(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	match := insertFixtureMatch(t, db, ctx)

	ids, err := db.Matches.ListExternalIDsByStatus(ctx, models.GameValorant, models.StatusUpcoming)
	require.NoError(t, err)
	assert.Contains(t, ids, match.ExternalID)
}
