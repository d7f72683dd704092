// Package reconciler matches externally-sourced match records against
// the store and persists only what is new: teams with their rosters,
// tournaments with their classified tier, and matches deduplicated by
// their source external id. A failure on one record never aborts the
// batch.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"valodds/ingestion/internal/client"
	"valodds/ingestion/internal/metrics"
	"valodds/ingestion/internal/models"
	"valodds/ingestion/internal/rating"
	"valodds/ingestion/internal/repository"
)

// sentinelTeamName marks a side whose opponent is not yet decided. It
// must never be created as a real team.
const sentinelTeamName = "TBD"

// TeamStore is the slice of the store the reconciler needs for teams.
type TeamStore interface {
	GetByName(ctx context.Context, game models.Game, name string) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
}

// TournamentStore is the slice of the store for tournaments.
type TournamentStore interface {
	GetByName(ctx context.Context, game models.Game, name string) (*models.Tournament, error)
	Create(ctx context.Context, tournament *models.Tournament) error
}

// MatchStore is the slice of the store for match dedup and insertion.
type MatchStore interface {
	Exists(ctx context.Context, game models.Game, externalID string) (bool, error)
	Insert(ctx context.Context, match *models.Match) (bool, error)
}

// PlayerStore is the slice of the store for roster creation.
type PlayerStore interface {
	CreateBatch(ctx context.Context, players []*models.Player) error
}

// Adapter is the data source surface the reconciler pulls team detail
// and match history from.
type Adapter interface {
	GetTeamDetail(ctx context.Context, externalID string) (*client.TeamDetail, error)
	GetTeamMatchHistory(ctx context.Context, externalTeamID string) ([]client.MatchDetail, error)
}

// DetailCache caches team detail reads between runs. A nil cache is
// valid and reads then go straight to the adapter.
type DetailCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Stores bundles the store slices the reconciler writes through.
type Stores struct {
	Teams       TeamStore
	Tournaments TournamentStore
	Matches     MatchStore
	Players     PlayerStore
}

// Result summarizes one reconciliation run.
type Result struct {
	Created      int
	Skipped      int
	Failed       int
	TeamsCreated int
}

func (r *Result) merge(other Result) {
	r.Created += other.Created
	r.Skipped += other.Skipped
	r.Failed += other.Failed
	r.TeamsCreated += other.TeamsCreated
}

// Reconciler deduplicates and persists externally-sourced records.
type Reconciler struct {
	game                models.Game
	stores              Stores
	adapter             Adapter
	cache               DetailCache
	teamDetailTTL       time.Duration
	initialRating       float64
	backfillConcurrency int
}

// New creates a reconciler for one game. detailCache may be nil when
// redis is down; team detail reads then go straight to the adapter.
func New(game models.Game, stores Stores, adapter Adapter, detailCache DetailCache, teamDetailTTL time.Duration, initialRating float64, backfillConcurrency int) *Reconciler {
	if backfillConcurrency < 1 {
		backfillConcurrency = 1
	}
	return &Reconciler{
		game:                game,
		stores:              stores,
		adapter:             adapter,
		cache:               detailCache,
		teamDetailTTL:       teamDetailTTL,
		initialRating:       initialRating,
		backfillConcurrency: backfillConcurrency,
	}
}

// Reconcile persists what is new from the batch, then backfills the
// completed-match history of every team created along the way. The
// backfill is bounded to one level: opponents discovered inside a
// history are created as teams but their own histories are not fetched.
func (r *Reconciler) Reconcile(ctx context.Context, records []client.MatchDetail) Result {
	var res Result
	var newTeams []*models.Team

	for i := range records {
		res.merge(r.reconcileOne(ctx, &records[i], &newTeams))
	}

	if len(newTeams) > 0 {
		res.merge(r.backfill(ctx, newTeams))
	}

	return res
}

// reconcileOne persists a single match record. newTeams, when non-nil,
// collects teams created while resolving it; passing nil disables the
// collection, which is how backfill depth stays at one level.
func (r *Reconciler) reconcileOne(ctx context.Context, rec *client.MatchDetail, newTeams *[]*models.Team) Result {
	externalID := rec.ID
	if externalID == "" {
		externalID = client.ExtractIDFromURL(rec.MatchPage)
	}
	if externalID == "" {
		log.Warn().Str("match_page", rec.MatchPage).Msg("Source record has no external id, skipping")
		metrics.RecordsSkipped.WithLabelValues("missing_external_id").Inc()
		return Result{Skipped: 1}
	}

	// Dedup against committed state first: the common case is a record
	// we have already seen, and it needs no adapter calls.
	exists, err := r.stores.Matches.Exists(ctx, r.game, externalID)
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("Dedup check failed")
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		return Result{Failed: 1}
	}
	if exists {
		return Result{Skipped: 1}
	}

	startsAt, err := rec.StartTime()
	if err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("Skipping match with invalid start time")
		metrics.RecordsSkipped.WithLabelValues("invalid_timestamp").Inc()
		return Result{Skipped: 1}
	}

	teamA, res1, err := r.resolveTeam(ctx, rec.Team1, newTeams)
	if err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("Skipping match with unresolvable team")
		return res1
	}
	teamB, res2, err := r.resolveTeam(ctx, rec.Team2, newTeams)
	if err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("Skipping match with unresolvable team")
		res2.merge(res1)
		return res2
	}

	tournament, err := r.resolveTournament(ctx, rec.Event)
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("Skipping match with unresolvable tournament")
		metrics.RecordsFailed.WithLabelValues("tournament").Inc()
		out := Result{Failed: 1}
		out.merge(res1)
		out.merge(res2)
		return out
	}

	match := &models.Match{
		Game:         r.game,
		ExternalID:   externalID,
		TeamAID:      teamA.ID,
		TeamBID:      teamB.ID,
		TournamentID: tournament.ID,
		Status:       models.StatusUpcoming,
		StartsAt:     startsAt,
		BestOf:       nullString(rec.BestOf),
		ExternalURL:  nullString(rec.MatchPage),
	}

	if rec.IsFinal() {
		if rec.Team1.Score == nil || rec.Team2.Score == nil {
			log.Warn().Str("external_id", externalID).Msg("Skipping final match without scores")
			metrics.RecordsSkipped.WithLabelValues("missing_scores").Inc()
			out := Result{Skipped: 1}
			out.merge(res1)
			out.merge(res2)
			return out
		}
		match.Status = models.StatusFinished
		match.ScoreA = nullInt32(*rec.Team1.Score)
		match.ScoreB = nullInt32(*rec.Team2.Score)
		switch {
		case *rec.Team1.Score > *rec.Team2.Score:
			match.WinnerTeamID = nullInt32(teamA.ID)
		case *rec.Team2.Score > *rec.Team1.Score:
			match.WinnerTeamID = nullInt32(teamB.ID)
		}
	} else if rec.IsLive() {
		match.Status = models.StatusLive
	}

	inserted, err := r.stores.Matches.Insert(ctx, match)
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("Failed to insert match")
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		out := Result{Failed: 1}
		out.merge(res1)
		out.merge(res2)
		return out
	}

	out := Result{}
	if inserted {
		out.Created = 1
		metrics.MatchesCreated.Inc()
		log.Info().
			Str("external_id", externalID).
			Str("team_a", teamA.Name).
			Str("team_b", teamB.Name).
			Str("status", string(match.Status)).
			Msg("New match persisted")
	} else {
		// Lost the race to a concurrent run; the store's unique
		// constraint already holds the row we wanted.
		out.Skipped = 1
	}
	out.merge(res1)
	out.merge(res2)
	return out
}

// resolveTeam finds a team by display name or creates it from adapter
// detail, roster included. The TBD sentinel is never materialized.
func (r *Reconciler) resolveTeam(ctx context.Context, mt client.MatchTeam, newTeams *[]*models.Team) (*models.Team, Result, error) {
	name := strings.TrimSpace(mt.Name)
	if name == "" || strings.EqualFold(name, sentinelTeamName) {
		metrics.RecordsSkipped.WithLabelValues("undecided_team").Inc()
		return nil, Result{Skipped: 1}, fmt.Errorf("team side is not decided yet")
	}

	team, err := r.stores.Teams.GetByName(ctx, r.game, name)
	if err == nil {
		return team, Result{}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		return nil, Result{Failed: 1}, fmt.Errorf("failed to look up team %q: %w", name, err)
	}

	externalID := client.ExtractIDFromURL(mt.Link)
	created := &models.Team{
		Game:       r.game,
		Name:       name,
		ExternalID: externalID,
		Rating:     r.initialRating,
		LogoURL:    nullString(mt.LogoURL),
	}

	var roster []client.RosterPlayer
	if externalID != "" {
		detail, err := r.teamDetail(ctx, externalID)
		if err != nil {
			metrics.RecordsFailed.WithLabelValues("adapter").Inc()
			return nil, Result{Failed: 1}, fmt.Errorf("failed to fetch detail for team %q: %w", name, err)
		}
		if detail.LogoURL != "" {
			created.LogoURL = nullString(detail.LogoURL)
		}
		created.Region = nullString(detail.Region)
		roster = detail.Roster
	}

	if err := r.stores.Teams.Create(ctx, created); err != nil {
		// A concurrent run may have created the same team between our
		// lookup and the insert; re-read before giving up.
		if existing, lookupErr := r.stores.Teams.GetByName(ctx, r.game, name); lookupErr == nil {
			return existing, Result{}, nil
		}
		metrics.RecordsFailed.WithLabelValues("store").Inc()
		return nil, Result{Failed: 1}, fmt.Errorf("failed to create team %q: %w", name, err)
	}

	metrics.TeamsCreated.Inc()
	log.Info().
		Str("name", created.Name).
		Str("external_id", created.ExternalID).
		Msg("New team persisted")

	if len(roster) > 0 {
		players := make([]*models.Player, 0, len(roster))
		for _, p := range roster {
			players = append(players, &models.Player{
				Game:     r.game,
				Name:     p.Name,
				TeamID:   created.ID,
				RealName: nullString(p.RealName),
				Country:  nullString(p.Country),
			})
		}
		if err := r.stores.Players.CreateBatch(ctx, players); err != nil {
			// The team itself is usable; a roster failure is logged
			// and the batch moves on.
			log.Error().Err(err).Str("team", created.Name).Msg("Failed to persist roster")
			metrics.RecordsFailed.WithLabelValues("store").Inc()
		}
	}

	if newTeams != nil {
		*newTeams = append(*newTeams, created)
	}

	return created, Result{TeamsCreated: 1}, nil
}

// teamDetail reads a team's extended record through the cache. Rosters
// and regions change rarely, so cached entries live a long time.
func (r *Reconciler) teamDetail(ctx context.Context, externalID string) (*client.TeamDetail, error) {
	key := "vlr:team:" + externalID

	var cached client.TeamDetail
	if r.cache != nil {
		if hit, err := r.cache.GetJSON(ctx, key, &cached); err != nil {
			log.Warn().Err(err).Msg("Cache read failed, going to the adapter")
		} else if hit {
			return &cached, nil
		}
	}

	detail, err := r.adapter.GetTeamDetail(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, key, detail, r.teamDetailTTL); err != nil {
			log.Warn().Err(err).Msg("Cache write failed")
		}
	}

	return detail, nil
}

// resolveTournament finds a tournament by name or creates it with the
// tier classification derived from its name.
func (r *Reconciler) resolveTournament(ctx context.Context, event client.MatchEvent) (*models.Tournament, error) {
	name := strings.TrimSpace(event.Name)
	if name == "" {
		return nil, fmt.Errorf("record has no tournament name")
	}

	tournament, err := r.stores.Tournaments.GetByName(ctx, r.game, name)
	if err == nil {
		return tournament, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up tournament %q: %w", name, err)
	}

	tier := rating.TierFromTournamentName(name)
	created := &models.Tournament{
		Game:        r.game,
		Name:        name,
		Tier:        string(tier),
		Coefficient: tier.Coefficient(),
		Series:      nullString(event.Series),
	}

	if err := r.stores.Tournaments.Create(ctx, created); err != nil {
		if existing, lookupErr := r.stores.Tournaments.GetByName(ctx, r.game, name); lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create tournament %q: %w", name, err)
	}

	log.Info().
		Str("name", created.Name).
		Str("tier", created.Tier).
		Msg("New tournament persisted")

	return created, nil
}

// backfill fetches the completed-match history of every newly created
// team and runs it through the same dedup-and-persist path. Per-team
// fetches run concurrently with a bounded fan-out; each history is
// reconciled with team collection disabled, so discovered opponents do
// not trigger further history fetches.
func (r *Reconciler) backfill(ctx context.Context, teams []*models.Team) Result {
	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)

	sem := make(chan struct{}, r.backfillConcurrency)
	seen := make(map[string]struct{}, len(teams))

	for _, team := range teams {
		if team.ExternalID == "" {
			continue
		}
		if _, dup := seen[team.ExternalID]; dup {
			continue
		}
		seen[team.ExternalID] = struct{}{}

		wg.Add(1)
		go func(team *models.Team) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			history, err := r.adapter.GetTeamMatchHistory(ctx, team.ExternalID)
			if err != nil {
				log.Error().Err(err).Str("team", team.Name).Msg("Failed to fetch team match history")
				metrics.RecordsFailed.WithLabelValues("adapter").Inc()
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return
			}

			var local Result
			for i := range history {
				local.merge(r.reconcileOne(ctx, &history[i], nil))
			}

			log.Info().
				Str("team", team.Name).
				Int("history", len(history)).
				Int("created", local.Created).
				Msg("Team history backfilled")

			mu.Lock()
			res.merge(local)
			mu.Unlock()
		}(team)
	}

	wg.Wait()
	return res
}
