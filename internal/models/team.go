package models

import (
	"database/sql"
	"time"
)

// Team represents a competitive team tracked by the rating engine.
// The name is unique within a game; the rating is mutated only by the
// recompute job and teams are never deleted.
type Team struct {
	ID         int            `db:"id"`
	Game       Game           `db:"game"`
	Name       string         `db:"name"`
	ExternalID string         `db:"external_id"`
	Rating     float64        `db:"rating"`
	LogoURL    sql.NullString `db:"logo_url"`
	Region     sql.NullString `db:"region"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
