package models

import (
	"database/sql"
	"time"
)

// Match represents a single series between two teams. ExternalID is the
// source system's identifier and is unique per game; it is the dedup key
// for reconciliation. Scores and the winner are present only once the
// match is finished, odds only while it is upcoming.
type Match struct {
	ID           int             `db:"id"`
	Game         Game            `db:"game"`
	ExternalID   string          `db:"external_id"`
	TeamAID      int             `db:"team_a_id"`
	TeamBID      int             `db:"team_b_id"`
	WinnerTeamID sql.NullInt32   `db:"winner_team_id"`
	TournamentID int             `db:"tournament_id"`
	Status       MatchStatus     `db:"status"`
	StartsAt     time.Time       `db:"starts_at"`
	ScoreA       sql.NullInt32   `db:"score_a"`
	ScoreB       sql.NullInt32   `db:"score_b"`
	OddsA        sql.NullFloat64 `db:"odds_a"`
	OddsB        sql.NullFloat64 `db:"odds_b"`
	BestOf       sql.NullString  `db:"best_of"`
	ExternalURL  sql.NullString  `db:"external_url"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// FinishedMatch is a finished match joined with the names the rating
// engine needs: both teams, scores and the tournament.
type FinishedMatch struct {
	ID             int
	StartsAt       time.Time
	TeamAName      string
	TeamBName      string
	ScoreA         int
	ScoreB         int
	TournamentName string
}

// UpcomingOddsMatch is an upcoming match joined with both resolved
// teams, used by the odds derivation step.
type UpcomingOddsMatch struct {
	ID        int
	StartsAt  time.Time
	TeamAID   int
	TeamAName string
	TeamBID   int
	TeamBName string
}

// TrackedMatch is a stored match that may need a status update from the
// source: an upcoming or live match whose start time has passed.
type TrackedMatch struct {
	ID         int
	ExternalID string
	TeamAID    int
	TeamBID    int
	Status     MatchStatus
	StartsAt   time.Time
}
