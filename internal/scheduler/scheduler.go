package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"valodds/ingestion/internal/config"
	"valodds/ingestion/internal/ingest"
)

// Scheduler runs the two background jobs on their cron schedules:
// the hourly upcoming-match sync and the periodic rating recompute.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *ingest.Orchestrator
	cron         *cron.Cron
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, orchestrator *ingest.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.SyncUpcomingCron, func() {
		if err := s.orchestrator.SyncUpcoming(ctx); err != nil {
			log.Error().Err(err).Msg("Upcoming sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule upcoming sync: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.RecomputeCron, func() {
		if err := s.orchestrator.RecomputeRatings(ctx); err != nil {
			log.Error().Err(err).Msg("Rating recompute failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule rating recompute: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("sync_upcoming", s.cfg.SyncUpcomingCron).
		Str("recompute", s.cfg.RecomputeCron).
		Msg("Jobs scheduled")

	return nil
}

// Stop stops the cron loop. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}
