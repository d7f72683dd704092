package repository

import (
	"context"
	"errors"
	"fmt"

	"valodds/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TournamentRepository handles tournament database operations
type TournamentRepository struct {
	db *Database
}

// Create inserts a new tournament with its classified tier
func (r *TournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (game, name, tier, coefficient, series)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		tournament.Game, tournament.Name, tournament.Tier,
		tournament.Coefficient, tournament.Series,
	).Scan(&tournament.ID, &tournament.CreatedAt, &tournament.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	log.Debug().
		Int("id", tournament.ID).
		Str("name", tournament.Name).
		Str("tier", tournament.Tier).
		Msg("Tournament created")

	return nil
}

// GetByName retrieves a tournament by its display name within a game
func (r *TournamentRepository) GetByName(ctx context.Context, game models.Game, name string) (*models.Tournament, error) {
	query := `
		SELECT id, game, name, tier, coefficient, series, created_at, updated_at
		FROM tournaments
		WHERE game = $1 AND name = $2
	`

	var tournament models.Tournament
	err := r.db.Pool.QueryRow(ctx, query, game, name).Scan(
		&tournament.ID, &tournament.Game, &tournament.Name, &tournament.Tier,
		&tournament.Coefficient, &tournament.Series, &tournament.CreatedAt, &tournament.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tournament %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	return &tournament, nil
}

// Count returns the total number of tournaments for a game
func (r *TournamentRepository) Count(ctx context.Context, game models.Game) (int, error) {
	query := `SELECT COUNT(*) FROM tournaments WHERE game = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, game).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}

	return count, nil
}
