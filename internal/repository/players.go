package repository

import (
	"context"
	"fmt"

	"valodds/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// CreateBatch inserts a team's roster
func (r *PlayerRepository) CreateBatch(ctx context.Context, players []*models.Player) error {
	query := `
		INSERT INTO players (game, name, team_id, real_name, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	for _, player := range players {
		err := r.db.Pool.QueryRow(
			ctx, query,
			player.Game, player.Name, player.TeamID, player.RealName, player.Country,
		).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create player %q: %w", player.Name, err)
		}
	}

	if len(players) > 0 {
		log.Debug().
			Int("count", len(players)).
			Int("team_id", players[0].TeamID).
			Msg("Players created")
	}

	return nil
}

// ListByTeam retrieves the roster of a team
func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	query := `
		SELECT id, game, name, team_id, real_name, country, created_at, updated_at
		FROM players
		WHERE team_id = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		err := rows.Scan(
			&player.ID, &player.Game, &player.Name, &player.TeamID,
			&player.RealName, &player.Country, &player.CreatedAt, &player.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, &player)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}

	return players, nil
}
