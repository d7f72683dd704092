package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"valodds/ingestion/internal/rating"
)

// Config holds all application configuration
type Config struct {
	// vlr API (data source adapter)
	VlrBaseURL   string        `envconfig:"VLR_BASE_URL" default:"https://vlrggapi.vercel.app"`
	VlrTimeout   time.Duration `envconfig:"VLR_TIMEOUT" default:"30s"`
	VlrRateLimit float64       `envconfig:"VLR_RATE_LIMIT" default:"5"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"valodds"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"valodds_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	SyncUpcomingCron   string `envconfig:"SYNC_UPCOMING_CRON" default:"0 * * * *"`
	RecomputeCron      string `envconfig:"RECOMPUTE_CRON" default:"0 */2 * * *"`

	// Reconciler
	BackfillConcurrency int `envconfig:"BACKFILL_CONCURRENCY" default:"4"`

	// Rating engine tunables
	RatingKBase            float64 `envconfig:"RATING_K_BASE" default:"32"`
	RatingDecayLambda      float64 `envconfig:"RATING_DECAY_LAMBDA" default:"0.005"`
	RatingRecentWindowDays float64 `envconfig:"RATING_RECENT_WINDOW_DAYS" default:"14"`
	RatingRecentFormBonus  float64 `envconfig:"RATING_RECENT_FORM_BONUS" default:"1.1"`
	RatingMaxMarginBonus   float64 `envconfig:"RATING_MAX_MARGIN_BONUS" default:"1.5"`
	RatingInitial          float64 `envconfig:"RATING_INITIAL" default:"1000"`

	// Caching TTL (in seconds)
	CacheTTLUpcoming    int `envconfig:"CACHE_TTL_UPCOMING" default:"300"`      // 5 minutes
	CacheTTLTeamDetail  int `envconfig:"CACHE_TTL_TEAM_DETAIL" default:"86400"` // 24 hours
	CacheTTLMatchDetail int `envconfig:"CACHE_TTL_MATCH_DETAIL" default:"600"`  // 10 minutes

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.RatingKBase <= 0 {
		return fmt.Errorf("RATING_K_BASE must be positive")
	}

	if c.RatingMaxMarginBonus < 1 {
		return fmt.Errorf("RATING_MAX_MARGIN_BONUS must be >= 1")
	}

	if c.VlrRateLimit <= 0 {
		return fmt.Errorf("VLR_RATE_LIMIT must be positive")
	}

	return nil
}

// RatingConfig returns the rating engine tunables
func (c *Config) RatingConfig() rating.Config {
	return rating.Config{
		KBase:            c.RatingKBase,
		DecayLambda:      c.RatingDecayLambda,
		RecentWindowDays: c.RatingRecentWindowDays,
		RecentFormBonus:  c.RatingRecentFormBonus,
		MaxMarginBonus:   c.RatingMaxMarginBonus,
		InitialRating:    c.RatingInitial,
	}
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
