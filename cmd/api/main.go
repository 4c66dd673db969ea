package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flexreviews/internal/adapters/approvals"
	"flexreviews/internal/adapters/google"
	"flexreviews/internal/adapters/hostaway"
	server "flexreviews/internal/adapters/http_server"
	"flexreviews/internal/adapters/observability"
	redisad "flexreviews/internal/adapters/redis"
	"flexreviews/internal/app"
	"flexreviews/internal/domain"
	"flexreviews/internal/shared"
	mysqlrepo "flexreviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	store := newApprovalStore(cfg)

	var client *hostaway.Client
	if cfg.HostawayAccountID != "" && cfg.HostawaySecret != "" {
		var err error
		client, err = hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawaySecret, cfg.HostawayRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
	}
	src := hostaway.NewSource(client)

	var gcl *google.Client
	if cfg.GoogleKey != "" {
		var err error
		gcl, err = google.New(cfg.GoogleBase, cfg.GoogleKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Google client")
		}
	}

	// deps
	q := app.NewReviewService(src, store, cache, cfg.CacheTTLSeconds)
	a := app.NewApprovalService(store, cache)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, A: a, G: gcl})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func newApprovalStore(cfg shared.Config) domain.ApprovalStore {
	if cfg.ApprovalsBackend != "mysql" {
		log.Info().Str("path", cfg.ApprovalsFile).Msg("using file approval store")
		return approvals.NewFileStore(cfg.ApprovalsFile)
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	repo := mysqlrepo.New(db)
	if err := repo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("approvals migration failed")
	}
	log.Info().Msg("using mysql approval store")
	return repo
}
