package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"valodds/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles match database operations
type MatchRepository struct {
	db *Database
}

// Insert persists a new match. The dedup check and the insert are one
// logical step: ON CONFLICT on (game, external_id) makes a concurrent
// duplicate a no-op, and the returned bool reports whether a row was
// actually written.
func (r *MatchRepository) Insert(ctx context.Context, match *models.Match) (bool, error) {
	query := `
		INSERT INTO matches (
			game, external_id, team_a_id, team_b_id, winner_team_id,
			tournament_id, status, starts_at, score_a, score_b,
			best_of, external_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game, external_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		match.Game, match.ExternalID, match.TeamAID, match.TeamBID, match.WinnerTeamID,
		match.TournamentID, match.Status, match.StartsAt, match.ScoreA, match.ScoreB,
		match.BestOf, match.ExternalURL,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict on the external id: the match already exists
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert match: %w", err)
	}

	log.Debug().
		Int("id", match.ID).
		Str("external_id", match.ExternalID).
		Str("status", string(match.Status)).
		Msg("Match created")

	return true, nil
}

// Exists reports whether a match with the given external id is stored
func (r *MatchRepository) Exists(ctx context.Context, game models.Game, externalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE game = $1 AND external_id = $2)`

	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, game, externalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}

	return exists, nil
}

// ListExternalIDsByStatus returns the external ids of all stored
// matches with the given status. Used to filter the source's upcoming
// listing down to records not yet known.
func (r *MatchRepository) ListExternalIDsByStatus(ctx context.Context, game models.Game, status models.MatchStatus) (map[string]struct{}, error) {
	query := `SELECT external_id FROM matches WHERE game = $1 AND status = $2`

	rows, err := r.db.Pool.Query(ctx, query, game, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list match external ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan external id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating external ids: %w", err)
	}

	return ids, nil
}

// ListFinished returns every finished match joined with team and
// tournament names, oldest first. This is the rating engine's input.
func (r *MatchRepository) ListFinished(ctx context.Context, game models.Game) ([]*models.FinishedMatch, error) {
	query := `
		SELECT m.id, m.starts_at, ta.name, tb.name, m.score_a, m.score_b, t.name
		FROM matches m
		JOIN teams ta ON ta.id = m.team_a_id
		JOIN teams tb ON tb.id = m.team_b_id
		JOIN tournaments t ON t.id = m.tournament_id
		WHERE m.game = $1 AND m.status = $2
		  AND m.score_a IS NOT NULL AND m.score_b IS NOT NULL
		ORDER BY m.starts_at
	`

	rows, err := r.db.Pool.Query(ctx, query, game, models.StatusFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to list finished matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.FinishedMatch
	for rows.Next() {
		var m models.FinishedMatch
		err := rows.Scan(
			&m.ID, &m.StartsAt, &m.TeamAName, &m.TeamBName,
			&m.ScoreA, &m.ScoreB, &m.TournamentName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finished match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finished matches: %w", err)
	}

	return matches, nil
}

// ListUpcomingWithTeams returns upcoming matches with both teams
// resolved, the odds derivation's input.
func (r *MatchRepository) ListUpcomingWithTeams(ctx context.Context, game models.Game) ([]*models.UpcomingOddsMatch, error) {
	query := `
		SELECT m.id, m.starts_at, ta.id, ta.name, tb.id, tb.name
		FROM matches m
		JOIN teams ta ON ta.id = m.team_a_id
		JOIN teams tb ON tb.id = m.team_b_id
		WHERE m.game = $1 AND m.status = $2
		ORDER BY m.starts_at
	`

	rows, err := r.db.Pool.Query(ctx, query, game, models.StatusUpcoming)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.UpcomingOddsMatch
	for rows.Next() {
		var m models.UpcomingOddsMatch
		err := rows.Scan(
			&m.ID, &m.StartsAt, &m.TeamAID, &m.TeamAName, &m.TeamBID, &m.TeamBName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upcoming match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upcoming matches: %w", err)
	}

	return matches, nil
}

// ListDue returns stored upcoming or live matches whose start time has
// passed, the candidates for a status promotion from newer source data.
func (r *MatchRepository) ListDue(ctx context.Context, game models.Game, now time.Time) ([]*models.TrackedMatch, error) {
	query := `
		SELECT id, external_id, team_a_id, team_b_id, status, starts_at
		FROM matches
		WHERE game = $1 AND status IN ($2, $3) AND starts_at <= $4
		ORDER BY starts_at
	`

	rows, err := r.db.Pool.Query(ctx, query, game, models.StatusUpcoming, models.StatusLive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.TrackedMatch
	for rows.Next() {
		var m models.TrackedMatch
		err := rows.Scan(&m.ID, &m.ExternalID, &m.TeamAID, &m.TeamBID, &m.Status, &m.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due match: %w", err)
		}
		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due matches: %w", err)
	}

	return matches, nil
}

// UpdateOdds writes derived odds for a match. The guard on status keeps
// odds writes confined to upcoming matches: a match that went live
// since the caller loaded it is silently left alone.
func (r *MatchRepository) UpdateOdds(ctx context.Context, id int, oddsA, oddsB float64) error {
	query := `
		UPDATE matches
		SET odds_a = $1, odds_b = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`

	_, err := r.db.Pool.Exec(ctx, query, oddsA, oddsB, id, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to update match odds: %w", err)
	}

	return nil
}

// MarkLive promotes an upcoming match to live. Never regresses other
// states.
func (r *MatchRepository) MarkLive(ctx context.Context, id int) error {
	query := `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	_, err := r.db.Pool.Exec(ctx, query, models.StatusLive, id, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to mark match live: %w", err)
	}

	return nil
}

// MarkFinished records the final result of a match and clears its
// published odds. Only upcoming or live matches are promoted; a
// finished match is never touched again.
func (r *MatchRepository) MarkFinished(ctx context.Context, id, scoreA, scoreB int, winnerTeamID *int) error {
	query := `
		UPDATE matches
		SET status = $1, score_a = $2, score_b = $3, winner_team_id = $4,
		    odds_a = NULL, odds_b = NULL, updated_at = NOW()
		WHERE id = $5 AND status IN ($6, $7)
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		models.StatusFinished, scoreA, scoreB, winnerTeamID,
		id, models.StatusUpcoming, models.StatusLive,
	)
	if err != nil {
		return fmt.Errorf("failed to mark match finished: %w", err)
	}

	return nil
}

// MarkCancelled cancels an upcoming match and clears its odds
func (r *MatchRepository) MarkCancelled(ctx context.Context, id int) error {
	query := `
		UPDATE matches
		SET status = $1, odds_a = NULL, odds_b = NULL, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	_, err := r.db.Pool.Exec(ctx, query, models.StatusCancelled, id, models.StatusUpcoming)
	if err != nil {
		return fmt.Errorf("failed to mark match cancelled: %w", err)
	}

	return nil
}

// Count returns the total number of matches for a game
func (r *MatchRepository) Count(ctx context.Context, game models.Game) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE game = $1`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, game).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}

	return count, nil
}
