package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/config"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/db"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/service"
)

// seed creates the reference tables and loads a calibration CSV and the
// built-in comparable sales into Postgres.
func main() {
	calibrationPath := flag.String("calibration", "data/rate_calibration.csv", "calibration CSV to load into rate_calibration")
	withComparables := flag.Bool("comparables", true, "upsert the built-in comparable sales")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "crane-seed").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("create schema")
	}

	table, report := calibration.Load(ctx, calibration.CSVSource{Path: *calibrationPath}, calibration.LoadOptions{MaxAttempts: 1}, logger)
	if report.FallbackUsed {
		logger.Fatal().Str("error", report.Error).Msg("calibration file unusable, nothing seeded")
	}
	n, err := store.ReplaceRateCalibration(ctx, table.Entries())
	if err != nil {
		logger.Fatal().Err(err).Msg("write rate_calibration")
	}
	logger.Info().Int64("rows", n).Int("skipped", report.Skipped).Msg("rate_calibration seeded")

	if *withComparables {
		comps := service.DefaultComparables()
		if err := store.UpsertComparables(ctx, comps); err != nil {
			logger.Fatal().Err(err).Msg("write comparable_sales")
		}
		logger.Info().Int("rows", len(comps)).Msg("comparable_sales seeded")
	}
}
