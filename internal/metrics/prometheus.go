package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the rating/odds ingestion worker

var (
	// Sync job metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valodds_sync_operations_total",
			Help: "Total number of sync job runs",
		},
		[]string{"job", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "valodds_sync_duration_seconds",
			Help:    "Duration of sync job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	LastSuccessfulSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "valodds_last_successful_sync_timestamp",
			Help: "Timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	// Reconciliation metrics
	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_matches_created_total",
			Help: "Total number of new matches persisted",
		},
	)

	TeamsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_teams_created_total",
			Help: "Total number of new teams persisted",
		},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valodds_records_skipped_total",
			Help: "Total number of source records skipped",
		},
		[]string{"reason"},
	)

	RecordsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "valodds_records_failed_total",
			Help: "Total number of source records that failed to reconcile",
		},
		[]string{"component"},
	)

	// Rating/odds metrics
	RatingsRecomputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_ratings_recomputed_total",
			Help: "Total number of per-team rating updates persisted",
		},
	)

	OddsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_odds_published_total",
			Help: "Total number of upcoming matches with odds written",
		},
	)

	// Store gauges
	TeamsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "valodds_teams_stored",
			Help: "Number of teams in the store",
		},
	)

	MatchesStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "valodds_matches_stored",
			Help: "Number of matches in the store",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "valodds_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "valodds_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}
