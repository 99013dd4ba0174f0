// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Command server runs the event ingestion and discovery service: source
// adapters behind circuit breakers, the deduplicating orchestrator, the
// platform health monitor, and the HTTP API, all under one supervision
// tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/api"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/config"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/dedup"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/health"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/ingest"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/ratelimit"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/robots"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/sources"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/storage"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/supervisor"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Service terminated")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Strs("sources", cfg.EnabledSources()).
		Strs("cities", cfg.Ingest.Cities).
		Msg("Starting event discovery service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	queue := ratelimit.New(ratelimit.Config{
		Spacing: cfg.Scraping.Spacing,
		Workers: cfg.Scraping.Workers,
	})
	defer queue.Close()

	checker := robots.NewChecker(robots.Config{
		UserAgent: cfg.Scraping.UserAgent,
		TTL:       cfg.Scraping.RobotsTTL,
	})

	fetchers := sources.Build(cfg.Sources, sources.Deps{
		Robots:    checker,
		Queue:     queue,
		UserAgent: cfg.Scraping.UserAgent,
	})
	if len(fetchers) == 0 {
		return errors.New("no sources enabled")
	}

	orch := ingest.NewOrchestrator(fetchers, store, dedup.New(dedup.Config{
		TitleSimilarity: cfg.Dedup.TitleSimilarity,
		DateSkew:        cfg.Dedup.DateSkew,
	}))
	monitor := health.NewMonitor(health.Config{ProbeCity: probeCity(cfg)}, fetchers)

	router := api.NewRouter(api.RouterConfig{
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	}, orch, monitor, store)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))
	tree.AddIngestService(ingest.NewManager(ingest.ManagerConfig{
		Cities:   cfg.Ingest.Cities,
		Interval: cfg.Ingest.Interval,
		Limit:    cfg.Ingest.Limit,
	}, orch))

	logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}

// openStore selects the event catalog backend: Postgres when configured,
// an in-memory catalog otherwise.
func openStore(ctx context.Context, cfg *config.Config) (storage.EventStore, func(), error) {
	if !cfg.Database.Enabled {
		logging.Warn().Msg("Database disabled, using in-memory event catalog")
		return storage.NewMemoryStore(), func() {}, nil
	}
	pg, err := storage.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("open event catalog: %w", err)
	}
	return pg, pg.Close, nil
}

func probeCity(cfg *config.Config) string {
	if len(cfg.Ingest.Cities) > 0 {
		return cfg.Ingest.Cities[0]
	}
	return ""
}
