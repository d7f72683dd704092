package models

import (
	"database/sql"
	"time"
)

// Tournament represents an event whose importance scales rating swings.
// Tier and coefficient are derived from the name on first sighting and
// immutable afterwards.
type Tournament struct {
	ID          int            `db:"id"`
	Game        Game           `db:"game"`
	Name        string         `db:"name"`
	Tier        string         `db:"tier"`
	Coefficient float64        `db:"coefficient"`
	Series      sql.NullString `db:"series"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
