package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://vlrggapi.vercel.app", cfg.VlrBaseURL)
	assert.Equal(t, "0 * * * *", cfg.SyncUpcomingCron)
	assert.Equal(t, 32.0, cfg.RatingKBase)
	assert.Equal(t, 1000.0, cfg.RatingInitial)
	assert.True(t, cfg.EnableScheduler)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingPassword(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err, "DATABASE_PASSWORD has no sane default")
}

func TestValidate_RejectsBadTunables(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("RATING_K_BASE", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RATING_K_BASE", "32")
	t.Setenv("RATING_MAX_MARGIN_BONUS", "0.5")
	_, err = Load()
	assert.Error(t, err, "A margin bonus below 1 would shrink wins")
}

func TestConnectionStrings(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=valodds_user password=secret dbname=valodds sslmode=disable",
		cfg.DatabaseDSN())
	assert.Equal(t, "localhost:6380", cfg.RedisAddr())
}

func TestRatingConfig(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("RATING_DECAY_LAMBDA", "0.01")

	cfg, err := Load()
	require.NoError(t, err)

	rc := cfg.RatingConfig()
	assert.Equal(t, 0.01, rc.DecayLambda)
	assert.Equal(t, 32.0, rc.KBase)
	assert.Equal(t, 1000.0, rc.InitialRating)
}
