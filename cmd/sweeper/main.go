package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"bookaway/internal/adapters/observability"
	"bookaway/internal/app"
	"bookaway/internal/shared"
	mysqlrepo "bookaway/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("hour", cfg.SweepHour).
		Int("workers", cfg.SweepWorkers).
		Msg("expiry sweeper starting")

	observability.Serve()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := app.NewSweeper(mysqlrepo.New(db), cfg.SweepWorkers)

	sweeper.Run(ctx, cfg.SweepHour, func(expired int, dur time.Duration, err error) {
		if err != nil {
			observability.ObserveSweep("error", dur, expired)
			log.Error().Err(err).Int("expired", expired).Msg("sweep failed")
			return
		}
		observability.ObserveSweep("ok", dur, expired)
		log.Info().Int("expired", expired).Dur("duration", dur).Msg("sweep completed")
	})

	log.Info().Msg("sweeper stopped")
}
