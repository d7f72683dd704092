// Command manualsync runs the ingestion pipeline once from the command
// line: sync upcoming matches, then recompute ratings and odds. Useful
// for operators who need a refresh outside the schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"valodds/ingestion/internal/cache"
	"valodds/ingestion/internal/client"
	"valodds/ingestion/internal/config"
	"valodds/ingestion/internal/ingest"
	"valodds/ingestion/internal/models"
	"valodds/ingestion/internal/rating"
	"valodds/ingestion/internal/reconciler"
	"valodds/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	syncOnly := flag.Bool("sync-only", false, "only sync upcoming matches, skip the recompute")
	recomputeOnly := flag.Bool("recompute-only", false, "only recompute ratings and odds, skip the sync")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     fmt.Sprintf("%d", cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	vlrClient := client.NewClient(cfg.VlrBaseURL, cfg.VlrTimeout, cfg.VlrRateLimit)

	rec := reconciler.New(
		models.GameValorant,
		reconciler.Stores{
			Teams:       db.Teams,
			Tournaments: db.Tournaments,
			Matches:     db.Matches,
			Players:     db.Players,
		},
		vlrClient,
		redisCache,
		time.Duration(cfg.CacheTTLTeamDetail)*time.Second,
		cfg.RatingInitial,
		cfg.BackfillConcurrency,
	)

	orchestrator := ingest.New(
		models.GameValorant,
		vlrClient,
		redisCache,
		db.Teams,
		db.Matches,
		rec,
		rating.NewEngine(cfg.RatingConfig()),
		ingest.Config{
			CacheTTLUpcoming:    time.Duration(cfg.CacheTTLUpcoming) * time.Second,
			CacheTTLMatchDetail: time.Duration(cfg.CacheTTLMatchDetail) * time.Second,
		},
	)

	if !*recomputeOnly {
		if err := orchestrator.SyncUpcoming(ctx); err != nil {
			log.Fatal().Err(err).Msg("Upcoming sync failed")
		}
	}

	if !*syncOnly {
		if err := orchestrator.RecomputeRatings(ctx); err != nil {
			log.Fatal().Err(err).Msg("Rating recompute failed")
		}
	}

	log.Info().Msg("Manual sync complete.")
}
