package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"fedreg/internal/agency/importer"
	agencystore "fedreg/internal/agency/store"
	"fedreg/internal/catalog"
	"fedreg/internal/ecfr"
	"fedreg/internal/platform/config"
	"fedreg/internal/platform/database"
	"fedreg/internal/platform/httpserver"
	"fedreg/internal/platform/logger"
	"fedreg/internal/platform/metrics"
	platformredis "fedreg/internal/platform/redis"
	"fedreg/internal/regsync"
	regulationstore "fedreg/internal/regulation/store"
	httptransport "fedreg/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cache, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	m := metrics.New()
	client := ecfr.NewClient(cfg.ECFRBaseURL, cfg.UpstreamTimeout)

	agencies := agencystore.NewPostgres(db)
	regulations := regulationstore.NewPostgres(db)

	imp := importer.New(client, agencies, log, m)
	fetcher := ecfr.NewFetcher(client, log)
	synchronizer := regsync.New(fetcher, regulations, log, m)

	svc := catalog.New(agencies, regulations, imp, synchronizer,
		cache, cfg.CacheTTL, cfg.EarliestYear, log, m)

	if err := svc.EnsureReady(ctx); err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	health := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if cache != nil {
			return cache.Health(ctx)
		}
		return nil
	}

	handler := httptransport.NewHandler(svc, log)
	router := httptransport.NewRouter(handler, log, m, health)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting fedreg", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
