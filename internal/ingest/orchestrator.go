// Package ingest contains the scheduled entry points of the worker:
// syncing upcoming matches from the data source and recomputing
// ratings and odds over the refreshed data set.
package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"valodds/ingestion/internal/cache"
	"valodds/ingestion/internal/client"
	"valodds/ingestion/internal/metrics"
	"valodds/ingestion/internal/models"
	"valodds/ingestion/internal/odds"
	"valodds/ingestion/internal/rating"
	"valodds/ingestion/internal/reconciler"
)

// Adapter is the data source surface the orchestrator pulls from.
type Adapter interface {
	ListUpcomingMatches(ctx context.Context) ([]client.UpcomingMatch, error)
	GetMatchDetail(ctx context.Context, externalID string) (*client.MatchDetail, error)
}

// TeamStore is the slice of the store the recompute pass reads and
// writes team ratings through.
type TeamStore interface {
	List(ctx context.Context, game models.Game) ([]*models.Team, error)
	UpdateRating(ctx context.Context, id int, ratingValue float64) error
	Count(ctx context.Context, game models.Game) (int, error)
}

// MatchStore is the slice of the store the orchestrator reads match
// sets from and writes odds and status transitions to.
type MatchStore interface {
	ListExternalIDsByStatus(ctx context.Context, game models.Game, status models.MatchStatus) (map[string]struct{}, error)
	ListFinished(ctx context.Context, game models.Game) ([]*models.FinishedMatch, error)
	ListUpcomingWithTeams(ctx context.Context, game models.Game) ([]*models.UpcomingOddsMatch, error)
	ListDue(ctx context.Context, game models.Game, now time.Time) ([]*models.TrackedMatch, error)
	UpdateOdds(ctx context.Context, id int, oddsA, oddsB float64) error
	MarkLive(ctx context.Context, id int) error
	MarkFinished(ctx context.Context, id, scoreA, scoreB int, winnerTeamID *int) error
	MarkCancelled(ctx context.Context, id int) error
	Count(ctx context.Context, game models.Game) (int, error)
}

// Reconciler persists what is new from a batch of source records.
type Reconciler interface {
	Reconcile(ctx context.Context, records []client.MatchDetail) reconciler.Result
}

// Config holds the orchestrator's cache TTLs.
type Config struct {
	CacheTTLUpcoming    time.Duration
	CacheTTLMatchDetail time.Duration
}

// Orchestrator wires the adapter, the reconciler, the rating engine
// and the odds calculator into the two scheduled jobs.
type Orchestrator struct {
	game       models.Game
	adapter    Adapter
	cache      *cache.RedisCache
	teams      TeamStore
	matches    MatchStore
	reconciler Reconciler
	engine     *rating.Engine
	cfg        Config
}

// New creates an orchestrator. cache may be nil when redis is down;
// all reads then go straight to the adapter.
func New(
	game models.Game,
	adapter Adapter,
	redisCache *cache.RedisCache,
	teams TeamStore,
	matches MatchStore,
	rec Reconciler,
	engine *rating.Engine,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		game:       game,
		adapter:    adapter,
		cache:      redisCache,
		teams:      teams,
		matches:    matches,
		reconciler: rec,
		engine:     engine,
		cfg:        cfg,
	}
}

// SyncUpcoming pulls the source's upcoming match list, filters out
// matches already stored as upcoming, fetches full detail for the rest
// and reconciles them. Per-record failures are skipped; only a store or
// adapter outage aborts the run.
func (o *Orchestrator) SyncUpcoming(ctx context.Context) error {
	start := time.Now()
	log.Info().Msg("Sync upcoming: starting")

	upcoming, err := o.listUpcomingCached(ctx)
	if err != nil {
		metrics.SyncOperationsTotal.WithLabelValues("sync_upcoming", "error").Inc()
		return fmt.Errorf("failed to list upcoming matches: %w", err)
	}

	known, err := o.matches.ListExternalIDsByStatus(ctx, o.game, models.StatusUpcoming)
	if err != nil {
		metrics.SyncOperationsTotal.WithLabelValues("sync_upcoming", "error").Inc()
		return fmt.Errorf("failed to list stored upcoming matches: %w", err)
	}

	var details []client.MatchDetail
	for _, u := range upcoming {
		externalID := u.ExternalID()
		if externalID == "" {
			log.Warn().Str("match_page", u.MatchPage).Msg("Upcoming listing entry has no id, skipping")
			metrics.RecordsSkipped.WithLabelValues("missing_external_id").Inc()
			continue
		}
		if _, ok := known[externalID]; ok {
			continue
		}

		detail, err := o.getMatchDetailCached(ctx, externalID)
		if err != nil {
			log.Warn().Err(err).Str("external_id", externalID).Msg("Failed to fetch match detail, skipping")
			metrics.RecordsFailed.WithLabelValues("adapter").Inc()
			continue
		}
		details = append(details, *detail)
	}

	res := o.reconciler.Reconcile(ctx, details)

	o.updateStoreGauges(ctx)
	metrics.SyncOperationsTotal.WithLabelValues("sync_upcoming", "success").Inc()
	metrics.SyncDuration.WithLabelValues("sync_upcoming").Observe(time.Since(start).Seconds())
	metrics.LastSuccessfulSync.WithLabelValues("sync_upcoming").Set(float64(time.Now().Unix()))

	log.Info().
		Int("listed", len(upcoming)).
		Int("fetched", len(details)).
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Int("teams_created", res.TeamsCreated).
		Dur("duration", time.Since(start)).
		Msg("Sync upcoming: complete")

	return nil
}

// RecomputeRatings promotes due matches with fresh source data, replays
// the complete finished-match history through the rating engine seeded
// from persisted ratings, persists the new ratings, and republishes
// odds for every upcoming match from the freshly computed ratings.
func (o *Orchestrator) RecomputeRatings(ctx context.Context) error {
	start := time.Now()
	log.Info().Msg("Recompute: starting")

	// Status progression first so the replay below sees every result
	// the source already knows about.
	o.syncDueResults(ctx)

	teams, err := o.teams.List(ctx, o.game)
	if err != nil {
		metrics.SyncOperationsTotal.WithLabelValues("recompute", "error").Inc()
		return fmt.Errorf("failed to list teams: %w", err)
	}

	finished, err := o.matches.ListFinished(ctx, o.game)
	if err != nil {
		metrics.SyncOperationsTotal.WithLabelValues("recompute", "error").Inc()
		return fmt.Errorf("failed to list finished matches: %w", err)
	}

	seed := make(map[string]float64, len(teams))
	idByName := make(map[string]int, len(teams))
	for _, t := range teams {
		seed[t.Name] = t.Rating
		idByName[t.Name] = t.ID
	}

	history := make([]rating.Match, 0, len(finished))
	for _, m := range finished {
		history = append(history, rating.Match{
			Date:  m.StartsAt,
			Tier:  rating.TierFromTournamentName(m.TournamentName),
			TeamA: m.TeamAName,
			TeamB: m.TeamBName,
			MapsA: m.ScoreA,
			MapsB: m.ScoreB,
		})
	}

	updated := o.engine.Calculate(history, seed)

	persisted := 0
	for _, t := range teams {
		newRating, ok := updated[t.Name]
		if !ok || math.Abs(newRating-t.Rating) < 1e-9 {
			continue
		}
		if err := o.teams.UpdateRating(ctx, t.ID, newRating); err != nil {
			log.Error().Err(err).Str("team", t.Name).Msg("Failed to persist rating")
			metrics.RecordsFailed.WithLabelValues("store").Inc()
			continue
		}
		persisted++
		metrics.RatingsRecomputed.Inc()
	}

	published := o.publishOdds(ctx, updated)

	o.updateStoreGauges(ctx)
	metrics.SyncOperationsTotal.WithLabelValues("recompute", "success").Inc()
	metrics.SyncDuration.WithLabelValues("recompute").Observe(time.Since(start).Seconds())
	metrics.LastSuccessfulSync.WithLabelValues("recompute").Set(float64(time.Now().Unix()))

	log.Info().
		Int("teams", len(teams)).
		Int("finished_matches", len(finished)).
		Int("ratings_persisted", persisted).
		Int("odds_published", published).
		Dur("duration", time.Since(start)).
		Msg("Recompute: complete")

	return nil
}

// syncDueResults re-fetches detail for stored matches whose start time
// has passed and promotes their status from the newer source data.
// Transitions are monotonic; nothing ever regresses a finished match.
func (o *Orchestrator) syncDueResults(ctx context.Context) {
	due, err := o.matches.ListDue(ctx, o.game, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list due matches")
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		return
	}
	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("Checking due matches for results")

	for _, m := range due {
		detail, err := o.adapter.GetMatchDetail(ctx, m.ExternalID)
		if err != nil {
			log.Warn().Err(err).Str("external_id", m.ExternalID).Msg("Failed to fetch due match, skipping")
			metrics.RecordsFailed.WithLabelValues("adapter").Inc()
			continue
		}

		switch {
		case detail.IsFinal():
			if detail.Team1.Score == nil || detail.Team2.Score == nil {
				log.Warn().Str("external_id", m.ExternalID).Msg("Final match without scores, skipping")
				metrics.RecordsSkipped.WithLabelValues("missing_scores").Inc()
				continue
			}
			scoreA, scoreB := *detail.Team1.Score, *detail.Team2.Score
			var winner *int
			switch {
			case scoreA > scoreB:
				winner = &m.TeamAID
			case scoreB > scoreA:
				winner = &m.TeamBID
			}
			if err := o.matches.MarkFinished(ctx, m.ID, scoreA, scoreB, winner); err != nil {
				log.Error().Err(err).Str("external_id", m.ExternalID).Msg("Failed to finish match")
				metrics.RecordsFailed.WithLabelValues("store").Inc()
				continue
			}
			log.Info().
				Str("external_id", m.ExternalID).
				Int("score_a", scoreA).
				Int("score_b", scoreB).
				Msg("Match finished")

		case detail.IsLive():
			if m.Status != models.StatusUpcoming {
				continue
			}
			if err := o.matches.MarkLive(ctx, m.ID); err != nil {
				log.Error().Err(err).Str("external_id", m.ExternalID).Msg("Failed to mark match live")
				metrics.RecordsFailed.WithLabelValues("store").Inc()
			}

		case strings.EqualFold(detail.Status, "cancelled"):
			if err := o.matches.MarkCancelled(ctx, m.ID); err != nil {
				log.Error().Err(err).Str("external_id", m.ExternalID).Msg("Failed to cancel match")
				metrics.RecordsFailed.WithLabelValues("store").Inc()
			}
		}
	}
}

// publishOdds derives and persists odds for every upcoming match using
// the just-computed ratings. Matches with an unresolved side or a
// degenerate rating gap are skipped without failing the pass.
func (o *Orchestrator) publishOdds(ctx context.Context, ratings map[string]float64) int {
	upcoming, err := o.matches.ListUpcomingWithTeams(ctx, o.game)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list upcoming matches for odds")
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		return 0
	}

	published := 0
	for _, m := range upcoming {
		ra, okA := ratings[m.TeamAName]
		rb, okB := ratings[m.TeamBName]
		if !okA || !okB {
			log.Warn().
				Int("match_id", m.ID).
				Str("team_a", m.TeamAName).
				Str("team_b", m.TeamBName).
				Msg("Skipping odds for match with unrated team")
			metrics.RecordsSkipped.WithLabelValues("unrated_team").Inc()
			continue
		}

		line, err := odds.Derive(ra, rb)
		if err != nil {
			log.Warn().Err(err).Int("match_id", m.ID).Msg("Skipping odds for degenerate line")
			metrics.RecordsSkipped.WithLabelValues("degenerate_line").Inc()
			continue
		}

		if err := o.matches.UpdateOdds(ctx, m.ID, odds.Round(line.OddsA), odds.Round(line.OddsB)); err != nil {
			log.Error().Err(err).Int("match_id", m.ID).Msg("Failed to persist odds")
			metrics.RecordsFailed.WithLabelValues("store").Inc()
			continue
		}

		published++
		metrics.OddsPublished.Inc()
	}

	return published
}

// listUpcomingCached reads the upcoming listing through the cache.
func (o *Orchestrator) listUpcomingCached(ctx context.Context) ([]client.UpcomingMatch, error) {
	const key = "vlr:upcoming"

	var cached []client.UpcomingMatch
	if hit, err := o.cache.GetJSON(ctx, key, &cached); err != nil {
		log.Warn().Err(err).Msg("Cache read failed, going to the adapter")
	} else if hit {
		return cached, nil
	}

	upcoming, err := o.adapter.ListUpcomingMatches(ctx)
	if err != nil {
		return nil, err
	}

	if err := o.cache.SetJSON(ctx, key, upcoming, o.cfg.CacheTTLUpcoming); err != nil {
		log.Warn().Err(err).Msg("Cache write failed")
	}

	return upcoming, nil
}

// getMatchDetailCached reads a match detail through the cache.
func (o *Orchestrator) getMatchDetailCached(ctx context.Context, externalID string) (*client.MatchDetail, error) {
	key := "vlr:match:" + externalID

	var cached client.MatchDetail
	if hit, err := o.cache.GetJSON(ctx, key, &cached); err != nil {
		log.Warn().Err(err).Msg("Cache read failed, going to the adapter")
	} else if hit {
		return &cached, nil
	}

	detail, err := o.adapter.GetMatchDetail(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if err := o.cache.SetJSON(ctx, key, detail, o.cfg.CacheTTLMatchDetail); err != nil {
		log.Warn().Err(err).Msg("Cache write failed")
	}

	return detail, nil
}

func (o *Orchestrator) updateStoreGauges(ctx context.Context) {
	if count, err := o.teams.Count(ctx, o.game); err == nil {
		metrics.TeamsStored.Set(float64(count))
	}
	if count, err := o.matches.Count(ctx, o.game); err == nil {
		metrics.MatchesStored.Set(float64(count))
	}
}
