package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/calibration"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/config"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/db"
	httpapi "github.com/phin-cmd/Crane-Intelligence-sub001/internal/http"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/http/handlers"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/models"
	"github.com/phin-cmd/Crane-Intelligence-sub001/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := log.Level(level).With().Str("service", "crane-valuation").Logger()

	ctx := context.Background()
	var store *db.Store
	if cfg.DatabaseURL != "" {
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
	}

	loader := engineLoader(cfg, store, logger)
	engine, report := loader(ctx)

	var pinger handlers.Pinger
	if store != nil {
		pinger = store
	}
	h := handlers.New(engine, report, loader, pinger, logger)
	router := httpapi.Router(cfg, h, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("calibration", report.Source).Bool("fallback_used", report.FallbackUsed).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func calibrationSource(cfg config.Config, store *db.Store) calibration.Source {
	switch cfg.CalibrationSource {
	case config.CalibrationFromDB:
		return calibration.StoreSource{Store: store}
	case config.CalibrationFromBuiltin:
		return calibration.BuiltinSource{}
	default:
		return calibration.CSVSource{Path: cfg.CalibrationPath}
	}
}

// engineLoader returns the function used at startup and on every admin
// reload. Each call builds an independent engine.
func engineLoader(cfg config.Config, store *db.Store, logger zerolog.Logger) handlers.EngineLoader {
	opts := calibration.LoadOptions{
		MaxAttempts:     cfg.CalibrationMaxAttempts,
		InitialInterval: cfg.CalibrationRetryDelay,
		MaxElapsed:      cfg.CalibrationMaxElapsed,
	}
	return func(ctx context.Context) (*service.Engine, calibration.LoadReport) {
		table, report := calibration.Load(ctx, calibrationSource(cfg, store), opts, logger)

		var comps []models.Comparable
		if store != nil {
			rows, err := store.ListComparables(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to load comparable sales, using built-in set")
			} else if len(rows) > 0 {
				comps = rows
			}
		}

		engine := service.NewEngine(table, service.Options{
			EvalYear:            cfg.EvalYear,
			MarketAdjustment:    cfg.MarketAdjustment,
			BaseRatePerTon:      cfg.BaseRatePerTon,
			DefaultOperatorCost: cfg.DefaultOperatorCost,
			BatchWorkers:        cfg.BatchWorkers,
			ComparablesLimit:    cfg.ComparablesLimit,
			Comparables:         comps,
		}, logger)
		return engine, report
	}
}
