package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"valodds/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestTeamRepository_CreateAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{
		Game:       models.GameValorant,
		Name:       uniqueName("Sentinels"),
		ExternalID: uniqueName("ext"),
		Rating:     1000,
		Region:     sql.NullString{String: "NA", Valid: true},
	}

	err := db.Teams.Create(ctx, team)
	require.NoError(t, err, "Should successfully insert team")
	assert.NotZero(t, team.ID, "Create should backfill the generated id")

	retrieved, err := db.Teams.GetByName(ctx, models.GameValorant, team.Name)
	require.NoError(t, err, "Should retrieve inserted team")
	assert.Equal(t, team.ID, retrieved.ID)
	assert.Equal(t, 1000.0, retrieved.Rating)
	assert.Equal(t, "NA", retrieved.Region.String)
}

func TestTeamRepository_UpdateRating(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{
		Game:       models.GameValorant,
		Name:       uniqueName("LOUD"),
		ExternalID: uniqueName("ext"),
		Rating:     1000,
	}
	require.NoError(t, db.Teams.Create(ctx, team))

	err := db.Teams.UpdateRating(ctx, team.ID, 1042.7)
	require.NoError(t, err, "Should update rating")

	updated, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1042.7, updated.Rating, 1e-9)
}

func TestTeamRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, err := db.Teams.GetByName(ctx, models.GameValorant, uniqueName("nobody"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound, "A miss must be distinguishable from a store failure")
}
