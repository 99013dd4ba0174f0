// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package api exposes the ingestion pipeline over HTTP using Chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/health"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/ingest"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/storage"
)

// RouterConfig tunes the HTTP surface.
type RouterConfig struct {
	// RateLimitRequests/RateLimitWindow throttle API callers by IP.
	// Zero requests disables throttling (tests).
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Router wires handlers and middleware into one http.Handler.
type Router struct {
	cfg     RouterConfig
	handler *Handler
}

// NewRouter creates the HTTP surface over the pipeline's collaborators.
func NewRouter(cfg RouterConfig, orch *ingest.Orchestrator, monitor *health.Monitor, store storage.EventStore) *Router {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	return &Router{
		cfg:     cfg,
		handler: NewHandler(orch, monitor, store),
	}
}

// Setup builds the route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogging)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health/live", rt.handler.HealthLive)
	r.Get("/health/ready", rt.handler.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(rt.cfg.RateLimitRequests, rt.cfg.RateLimitWindow))
		}
		r.Use(prometheusMetrics)

		r.Get("/events", rt.handler.ListEvents)
		r.Get("/events/{externalID}", rt.handler.GetEvent)
		r.Post("/ingest", rt.handler.Ingest)
		r.Get("/platforms/health", rt.handler.PlatformHealth)
		r.Post("/admin/dedup/cleanup", rt.handler.DedupCleanup)
	})

	return r
}
