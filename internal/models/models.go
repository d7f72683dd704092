package models

// Game identifies the title a record belongs to. All uniqueness
// constraints (team names, match external ids) are scoped per game.
type Game string

const (
	GameValorant Game = "valorant"
)

// MatchStatus is the lifecycle state of a match. Transitions are
// monotonic: upcoming -> live -> finished, or upcoming -> cancelled.
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
)
