package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// College football data provider API
	CFBDAPIKey  string        `envconfig:"CFBD_API_KEY" required:"true"`
	CFBDBaseURL string        `envconfig:"CFBD_BASE_URL" default:"https://api.collegefootballdata.com"`
	CFBDTimeout time.Duration `envconfig:"CFBD_TIMEOUT" default:"30s"`

	// Weather provider API. An empty key degrades weather enrichment to
	// the deterministic estimator.
	WeatherAPIKey  string        `envconfig:"WEATHER_API_KEY" default:""`
	WeatherBaseURL string        `envconfig:"WEATHER_BASE_URL" default:"https://api.openweathermap.org"`
	WeatherTimeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"15s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"cfb_core"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"cfb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional; worker continues without cache if unreachable)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler bool `envconfig:"ENABLE_SCHEDULER" default:"true"`

	// Ingestion
	CurrentSeason    int           `envconfig:"CURRENT_SEASON" default:"2025"`
	BackfillFrom     int           `envconfig:"BACKFILL_FROM" default:"0"`
	BackfillTo       int           `envconfig:"BACKFILL_TO" default:"0"`
	IngestBatchSize  int           `envconfig:"INGEST_BATCH_SIZE" default:"50"`
	SeasonPauseDelay time.Duration `envconfig:"SEASON_PAUSE_DELAY" default:"2s"`
	ProviderPacing   time.Duration `envconfig:"PROVIDER_PACING" default:"250ms"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
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
	if c.CFBDAPIKey == "" {
		return fmt.Errorf("CFBD_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be positive")
	}

	if c.BackfillFrom > 0 && c.BackfillTo > 0 && c.BackfillTo < c.BackfillFrom {
		return fmt.Errorf("BACKFILL_TO must not precede BACKFILL_FROM")
	}

	return nil
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

// WeatherEnabled reports whether a weather API key is configured.
func (c *Config) WeatherEnabled() bool {
	return c.WeatherAPIKey != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
