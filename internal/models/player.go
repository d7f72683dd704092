package models

import (
	"database/sql"
	"time"
)

// Player is a roster entry for a team, created when the team is first
// reconciled from the data source.
type Player struct {
	ID        int            `db:"id"`
	Game      Game           `db:"game"`
	Name      string         `db:"name"`
	TeamID    int            `db:"team_id"`
	RealName  sql.NullString `db:"real_name"`
	Country   sql.NullString `db:"country"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}
