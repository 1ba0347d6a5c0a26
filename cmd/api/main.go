package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"bookaway/internal/adapters/auth"
	server "bookaway/internal/adapters/http_server"
	"bookaway/internal/adapters/observability"
	redisad "bookaway/internal/adapters/redis"
	"bookaway/internal/app"
	"bookaway/internal/shared"
	mysqlrepo "bookaway/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens, err := auth.NewJWT(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("jwt init failed")
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	b := app.NewBookingService(repo, repo, repo)
	u := app.NewUserService(repo, auth.Bcrypt{}, tokens, cfg.TokenTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, B: b, U: u, Verify: tokens, AuthRPS: cfg.AuthRPS, PageLimit: cfg.PageLimit})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
