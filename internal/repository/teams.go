package repository

import (
	"context"
	"errors"
	"fmt"

	"valodds/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Create inserts a new team seeded with its initial rating
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (game, name, external_id, rating, logo_url, region)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.Game, team.Name, team.ExternalID, team.Rating,
		team.LogoURL, team.Region,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	log.Debug().
		Int("id", team.ID).
		Str("name", team.Name).
		Str("external_id", team.ExternalID).
		Msg("Team created")

	return nil
}

// GetByName retrieves a team by its display name within a game
func (r *TeamRepository) GetByName(ctx context.Context, game models.Game, name string) (*models.Team, error) {
	query := `
		SELECT id, game, name, external_id, rating, logo_url, region, created_at, updated_at
		FROM teams
		WHERE game = $1 AND name = $2
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, game, name).Scan(
		&team.ID, &team.Game, &team.Name, &team.ExternalID, &team.Rating,
		&team.LogoURL, &team.Region, &team.CreatedAt, &team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByID retrieves a team by its database ID
func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, game, name, external_id, rating, logo_url, region, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Game, &team.Name, &team.ExternalID, &team.Rating,
		&team.LogoURL, &team.Region, &team.CreatedAt, &team.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team id=%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams for a game
func (r *TeamRepository) List(ctx context.Context, game models.Game) ([]*models.Team, error) {
	query := `
		SELECT id, game, name, external_id, rating, logo_url, region, created_at, updated_at
		FROM teams
		WHERE game = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, game)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.Game, &team.Name, &team.ExternalID, &team.Rating,
			&team.LogoURL, &team.Region, &team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// UpdateRating writes a recomputed rating for a team. Ratings are only
// ever fully recomputed, never incrementally patched.
func (r *TeamRepository) UpdateRating(ctx context.Context, id int, ratingValue float64) error {
	query := `
		UPDATE teams
		SET rating = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query, ratingValue, id)
	if err != nil {
		return fmt.Errorf("failed to update team rating: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("team id=%d: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the total number of teams for a game
func (r *TeamRepository) Count(ctx context.Context, game models.Game) (int, error) {
	query := `SELECT COUNT(*) FROM teams WHERE game = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, game).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}

	return count, nil
}
