// Package rating implements the Elo-style team rating engine. The
// engine is a pure function over a match history: it holds no state
// between invocations, performs no I/O, and its output depends only on
// the set of matches and the seed ratings it is given.
package rating

import (
	"math"
	"sort"
	"time"
)

// Config holds the engine tunables. Values are wired in from the
// application configuration; there are no package-level knobs.
type Config struct {
	// KBase is the base K-factor before tier, decay, form and margin
	// scaling.
	KBase float64
	// DecayLambda controls the exponential K-factor decay per day of
	// inactivity.
	DecayLambda float64
	// RecentWindowDays is the window within which a previous match
	// counts as recent form.
	RecentWindowDays float64
	// RecentFormBonus is the flat K-factor multiplier for a team whose
	// previous match falls inside the recent window.
	RecentFormBonus float64
	// MaxMarginBonus caps the margin-of-victory multiplier. A one-map
	// win yields the base multiplier; each extra map of margin adds
	// (MaxMarginBonus - 1).
	MaxMarginBonus float64
	// InitialRating seeds teams that have no persisted rating yet.
	InitialRating float64
}

// DefaultConfig returns the tunables the worker ships with.
func DefaultConfig() Config {
	return Config{
		KBase:            32,
		DecayLambda:      0.005,
		RecentWindowDays: 14,
		RecentFormBonus:  1.1,
		MaxMarginBonus:   1.5,
		InitialRating:    1000,
	}
}

// Match is a single decided series as the engine sees it.
type Match struct {
	Date  time.Time
	Tier  Tier
	TeamA string
	TeamB string
	MapsA int
	MapsB int
}

// Engine computes team ratings from a complete match history.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given tunables.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Calculate replays the given matches in chronological order on top of
// the seed ratings and returns the resulting ratings. The input slice
// is not modified; the engine sorts its own copy, so callers may pass
// matches in any order. Malformed matches (same team on both sides) and
// drawn scores are skipped: the model is binary win/loss and a draw
// carries no signal it can use.
func (e *Engine) Calculate(matches []Match, seed map[string]float64) map[string]float64 {
	ratings := make(map[string]float64, len(seed))
	for team, r := range seed {
		ratings[team] = r
	}
	lastPlayed := make(map[string]time.Time, len(seed))

	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	for _, m := range sorted {
		e.update(m, ratings, lastPlayed)
	}

	return ratings
}

// less is a total order on matches. Date is the primary key; the
// remaining fields only break ties so that the result is independent of
// the caller's ordering even when two matches share a timestamp.
func less(a, b Match) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.TeamA != b.TeamA {
		return a.TeamA < b.TeamA
	}
	if a.TeamB != b.TeamB {
		return a.TeamB < b.TeamB
	}
	return a.MapsA-a.MapsB < b.MapsA-b.MapsB
}

func (e *Engine) update(m Match, ratings map[string]float64, lastPlayed map[string]time.Time) {
	if m.TeamA == m.TeamB || m.MapsA == m.MapsB {
		return
	}

	ra := e.get(ratings, m.TeamA)
	rb := e.get(ratings, m.TeamB)

	var sa float64
	if m.MapsA > m.MapsB {
		sa = 1
	}
	sb := 1 - sa

	ea := 1 / (1 + math.Pow(10, (rb-ra)/400))
	eb := 1 - ea

	daysA := daysSince(lastPlayed, m.TeamA, m.Date)
	daysB := daysSince(lastPlayed, m.TeamB, m.Date)

	margin := math.Max(math.Abs(float64(m.MapsA-m.MapsB)), 1)
	marginCoef := 1 + (margin-1)*(e.cfg.MaxMarginBonus-1)

	ka := e.cfg.KBase * m.Tier.Coefficient() * e.decay(daysA) * e.formBonus(daysA) * marginCoef
	kb := e.cfg.KBase * m.Tier.Coefficient() * e.decay(daysB) * e.formBonus(daysB) * marginCoef

	ratings[m.TeamA] = ra + ka*(sa-ea)
	ratings[m.TeamB] = rb + kb*(sb-eb)
	lastPlayed[m.TeamA] = m.Date
	lastPlayed[m.TeamB] = m.Date
}

func (e *Engine) get(ratings map[string]float64, team string) float64 {
	if r, ok := ratings[team]; ok {
		return r
	}
	return e.cfg.InitialRating
}

func (e *Engine) decay(days float64) float64 {
	return math.Exp(-e.cfg.DecayLambda * days)
}

func (e *Engine) formBonus(days float64) float64 {
	if days <= e.cfg.RecentWindowDays {
		return e.cfg.RecentFormBonus
	}
	return 1
}

// daysSince returns fractional days between a team's previous match in
// this pass and the given date, or 0 when the team has none (no decay
// penalty for a first processed match).
func daysSince(lastPlayed map[string]time.Time, team string, date time.Time) float64 {
	last, ok := lastPlayed[team]
	if !ok {
		return 0
	}
	return date.Sub(last).Hours() / 24
}
