// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package ingest coordinates one ingestion pass: fan out to every source
// adapter in parallel, merge the envelopes with the persisted catalog,
// deduplicate, and reconcile storage.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/dedup"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/sources"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/storage"
)

// Orchestrator runs ingestion and cleanup passes. Safe for concurrent use;
// all state lives in its collaborators.
type Orchestrator struct {
	fetchers []sources.Fetcher
	store    storage.EventStore
	engine   *dedup.Engine
}

// NewOrchestrator wires the adapter set, the catalog, and the dedup engine.
func NewOrchestrator(fetchers []sources.Fetcher, store storage.EventStore, engine *dedup.Engine) *Orchestrator {
	return &Orchestrator{fetchers: fetchers, store: store, engine: engine}
}

// IngestCity runs one full ingestion pass for the request's city.
//
// Every adapter runs concurrently; each failure is isolated in its own
// envelope and the pass always waits for all outcomes before proceeding.
// The merged batch (persisted catalog entries for the city plus the fresh
// fetch) is deduplicated, winners are upserted, and persisted losers are
// deleted. Only storage failures surface as errors.
func (o *Orchestrator) IngestCity(ctx context.Context, req events.FetchRequest) (events.IngestResult, error) {
	started := time.Now()
	result := events.IngestResult{StartedAt: started.UTC()}

	envelopes := make([]events.FetchResult, len(o.fetchers))
	var wg sync.WaitGroup
	for i, f := range o.fetchers {
		wg.Add(1)
		go func(i int, f sources.Fetcher) {
			defer wg.Done()
			envelopes[i] = f.Fetch(ctx, req)
		}(i, f)
	}
	wg.Wait()

	var fresh []events.CanonicalEvent
	for _, env := range envelopes {
		result.Sources = append(result.Sources, events.SourceBreakdown{
			Platform: env.Platform,
			Success:  env.Success,
			Fetched:  len(env.Events),
			Error:    env.Error,
		})
		fresh = append(fresh, env.Events...)
	}

	// Merge against the persisted snapshot for this city so an already
	// stored richer record beats a sparse re-fetch, and vice versa.
	persisted, err := o.store.List(ctx, storage.ListFilter{City: req.City})
	if err != nil {
		return result, fmt.Errorf("load persisted events: %w", err)
	}

	merged := make([]events.CanonicalEvent, 0, len(persisted)+len(fresh))
	merged = append(merged, persisted...)
	merged = append(merged, fresh...)

	report := o.engine.Run(merged)
	result.Deduped = len(report.Removed)

	if _, err := o.store.Upsert(ctx, report.Retained); err != nil {
		return result, fmt.Errorf("upsert retained events: %w", err)
	}
	if ids := staleExternalIDs(report); len(ids) > 0 {
		if _, err := o.store.DeleteByExternalIDs(ctx, ids); err != nil {
			return result, fmt.Errorf("delete duplicate events: %w", err)
		}
	}

	result.Events = report.Retained
	result.Duration = time.Since(started)

	metrics.IngestPassDuration.Observe(result.Duration.Seconds())
	logging.Info().
		Str("city", req.City).
		Int("fetched", len(fresh)).
		Int("retained", len(result.Events)).
		Int("deduped", result.Deduped).
		Dur("elapsed", result.Duration).
		Msg("Ingestion pass complete")
	return result, nil
}

// CleanupResult summarizes one full-catalog dedup pass.
type CleanupResult struct {
	Examined   int           `json:"examined"`
	Groups     int           `json:"groups"`
	Deleted    int           `json:"deleted"`
	DeletedIDs []string      `json:"deleted_ids,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Cleanup deduplicates the entire persisted catalog.
func (o *Orchestrator) Cleanup(ctx context.Context) (CleanupResult, error) {
	started := time.Now()

	catalog, err := o.store.All(ctx)
	if err != nil {
		return CleanupResult{}, fmt.Errorf("load catalog: %w", err)
	}

	report := o.engine.Run(catalog)
	res := CleanupResult{
		Examined: report.Examined,
		Groups:   len(report.Groups),
	}
	if ids := staleExternalIDs(report); len(ids) > 0 {
		deleted, err := o.store.DeleteByExternalIDs(ctx, ids)
		if err != nil {
			return res, fmt.Errorf("delete duplicate events: %w", err)
		}
		res.Deleted = deleted
		res.DeletedIDs = ids
	}
	res.Duration = time.Since(started)

	logging.Info().
		Int("examined", res.Examined).
		Int("groups", res.Groups).
		Int("deleted", res.Deleted).
		Dur("elapsed", res.Duration).
		Msg("Catalog cleanup complete")
	return res, nil
}

// staleExternalIDs collects the external ids of removed events whose rows
// should be deleted: persisted losers whose identity no winner claims.
// Fresh duplicates that were never persisted have nothing to delete, and
// when a re-fetch of the same listing wins its group, the loser shares the
// winner's external id and the upsert has already replaced that row.
func staleExternalIDs(report dedup.Report) []string {
	kept := make(map[string]struct{}, len(report.Retained))
	for i := range report.Retained {
		kept[report.Retained[i].ExternalID] = struct{}{}
	}
	var ids []string
	for _, e := range report.Removed {
		if e.ID == "" {
			continue
		}
		if _, claimed := kept[e.ExternalID]; claimed {
			continue
		}
		ids = append(ids, e.ExternalID)
	}
	return ids
}
