// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package ingest

import (
	"context"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// ManagerConfig controls the background ingestion schedule.
type ManagerConfig struct {
	// Cities are ingested each cycle, in order.
	Cities []string

	// Interval between cycles. Zero disables the loop entirely.
	Interval time.Duration

	// Limit is the per-source event cap for scheduled passes. Default 20.
	Limit int

	// PassTimeout bounds one full cycle over all cities. Default is the
	// interval, capped at 30m.
	PassTimeout time.Duration
}

func (c *ManagerConfig) applyDefaults() {
	if c.Limit <= 0 {
		c.Limit = 20
	}
	if c.PassTimeout <= 0 {
		c.PassTimeout = c.Interval
		if c.PassTimeout <= 0 || c.PassTimeout > 30*time.Minute {
			c.PassTimeout = 30 * time.Minute
		}
	}
}

// Manager runs the periodic ingestion loop. It implements suture.Service
// via Serve and is supervised alongside the HTTP server.
type Manager struct {
	cfg  ManagerConfig
	orch *Orchestrator
}

// NewManager creates a Manager over the orchestrator.
func NewManager(cfg ManagerConfig, orch *Orchestrator) *Manager {
	cfg.applyDefaults()
	return &Manager{cfg: cfg, orch: orch}
}

// Serve runs one cycle immediately, then ticks until ctx is canceled.
func (m *Manager) Serve(ctx context.Context) error {
	if m.cfg.Interval <= 0 || len(m.cfg.Cities) == 0 {
		logging.Info().Msg("Scheduled ingestion disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Strs("cities", m.cfg.Cities).
		Dur("interval", m.cfg.Interval).
		Msg("Scheduled ingestion started")

	m.runCycle(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Scheduled ingestion stopped")
			return ctx.Err()
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (m *Manager) String() string { return "ingest.Manager" }

// runCycle ingests every configured city once. A failing city is logged
// and skipped; the cycle always visits the rest.
func (m *Manager) runCycle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PassTimeout)
	defer cancel()

	for _, city := range m.cfg.Cities {
		if ctx.Err() != nil {
			return
		}
		metrics.IngestPassesTotal.WithLabelValues("scheduled").Inc()
		res, err := m.orch.IngestCity(ctx, events.FetchRequest{City: city, Limit: m.cfg.Limit})
		if err != nil {
			logging.Error().Err(err).Str("city", city).Msg("Scheduled ingestion pass failed")
			continue
		}
		logging.Debug().
			Str("city", city).
			Int("events", len(res.Events)).
			Msg("Scheduled ingestion pass finished")
	}
}
