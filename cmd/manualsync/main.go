// Command manualsync runs one of the weekly sync day sequences on demand.
// It exits non-zero when any step in the sequence fails, so operators and
// CI jobs can gate on the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/analytics"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/cache"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/client"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/config"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/ingest"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/rating"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/repository"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/resolver"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/scheduler"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/weather"
	"github.com/PDKCbus/CollegeForecastPro-sub003/internal/weatherapi"

	"github.com/rs/zerolog/log"
)

func main() {
	day := flag.String("day", "", "day sequence to run: monday, thursday, friday, saturday or sunday")
	season := flag.Int("season", 0, "override the configured season year")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	if *season > 0 {
		cfg.CurrentSeason = *season
	}

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

	store, err := cache.New(ctx, cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing with in-process cache")
	}

	cfbd := client.NewClient(cfg.CFBDBaseURL, cfg.CFBDAPIKey, cfg.CFBDTimeout)
	weatherClient := weatherapi.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.WeatherTimeout)

	teamResolver := resolver.New(db.Teams)
	pipeline := ingest.New(cfbd, teamResolver, db.Games).
		WithBatchSize(cfg.IngestBatchSize).
		WithSeasonPause(cfg.SeasonPauseDelay)

	sched := scheduler.New(scheduler.Deps{
		Pipeline:  pipeline,
		Ratings:   rating.NewApplier(db.Games, db.Teams),
		Weather:   weather.NewService(weatherClient, cfbd, store),
		Games:     db.Games,
		Analytics: analytics.NewRefresher(cfbd, db.Teams),
		Runs:      db.SyncRuns,
		Resolver:  teamResolver,
		Season:    cfg.CurrentSeason,
	})

	handlers := map[string]func(context.Context) error{
		"monday":   sched.RunMonday,
		"thursday": sched.RunThursday,
		"friday":   sched.RunFriday,
		"saturday": sched.RunSaturday,
		"sunday":   sched.RunSunday,
	}

	handler, ok := handlers[strings.ToLower(*day)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -day %q: want monday, thursday, friday, saturday or sunday\n", *day)
		os.Exit(2)
	}

	log.Info().
		Str("day_slot", strings.ToLower(*day)).
		Int("season", cfg.CurrentSeason).
		Msg("Running manual sync")

	if err := handler(ctx); err != nil {
		log.Error().Err(err).Msg("Manual sync finished with failures")
		os.Exit(1)
	}

	log.Info().Msg("Manual sync complete")
}
