package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/analytics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/cache"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/client"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/config"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/ingest"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/metrics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/rating"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/repository"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/resolver"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/scheduler"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/weather"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/weatherapi"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting college football data core worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("season", cfg.CurrentSeason).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize data provider client
	cfbd := client.NewClient(cfg.CFBDBaseURL, cfg.CFBDAPIKey, cfg.CFBDTimeout)
	log.Info().Msg("Provider client initialized")

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize cache. A missing Redis degrades to the in-process level.
	store, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing with in-process cache")
	} else {
		log.Info().Msg("Redis cache connected")
	}

	// Weather provider. An empty key means every game gets estimated
	// conditions instead of observed ones.
	weatherClient := weatherapi.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.WeatherTimeout)
	if !cfg.WeatherEnabled() {
		log.Warn().Msg("WEATHER_API_KEY not set - weather enrichment will use estimated conditions only")
	}

	// Assemble the domain components
	teamResolver := resolver.New(db.Teams)
	pipeline := ingest.New(cfbd, teamResolver, db.Games).
		WithBatchSize(cfg.IngestBatchSize).
		WithSeasonPause(cfg.SeasonPauseDelay)
	applier := rating.NewApplier(db.Games, db.Teams)
	weatherSvc := weather.NewService(weatherClient, cfbd, store)
	refresher := analytics.NewRefresher(cfbd, db.Teams)

	sched := scheduler.New(scheduler.Deps{
		Pipeline:  pipeline,
		Ratings:   applier,
		Weather:   weatherSvc,
		Games:     db.Games,
		Analytics: refresher,
		Runs:      db.SyncRuns,
		Resolver:  teamResolver,
		Season:    cfg.CurrentSeason,
	})

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	// Update system uptime metric and ingestion gauges
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		gauges := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		defer gauges.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-gauges.C:
				updateIngestionGauges(ctx, db)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Historical backfill over a season range, oldest first so ratings
	// evolve in chronological order.
	if cfg.BackfillFrom > 0 && cfg.BackfillTo > 0 {
		log.Info().
			Int("from", cfg.BackfillFrom).
			Int("to", cfg.BackfillTo).
			Msg("Running historical backfill...")
		if _, err := pipeline.SyncSeasons(ctx, cfg.BackfillFrom, cfg.BackfillTo); err != nil {
			log.Error().Err(err).Msg("Historical backfill failed, continuing anyway...")
		} else if applied, err := applier.Apply(ctx); err != nil {
			log.Error().Err(err).Msg("Rating sweep after backfill failed, continuing anyway...")
		} else {
			log.Info().Int("rated", applied).Msg("Historical backfill completed successfully")
		}
	}

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// updateIngestionGauges refreshes the teams/games totals exposed on /metrics.
func updateIngestionGauges(ctx context.Context, db *repository.Database) {
	teams, err := db.Teams.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count teams for metrics")
		return
	}
	games, err := db.Games.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count games for metrics")
		return
	}
	metrics.UpdateIngestionStats(int64(teams), int64(games))
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *repository.Database) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","error":%q}`, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
