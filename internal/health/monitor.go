// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package health probes every registered source adapter and classifies
// each platform as healthy, degraded, or down.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/sources"
)

// Config controls how platforms are probed.
type Config struct {
	// ProbeCity is the city used for probe fetches. Default "mumbai".
	ProbeCity string

	// ProbeTimeout bounds each individual probe. Default 15s.
	ProbeTimeout time.Duration

	// SlowThreshold flags platforms whose probe exceeds it. Default 5s.
	SlowThreshold time.Duration
}

func (c *Config) applyDefaults() {
	if c.ProbeCity == "" {
		c.ProbeCity = "mumbai"
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 15 * time.Second
	}
	if c.SlowThreshold <= 0 {
		c.SlowThreshold = 5 * time.Second
	}
}

// Monitor runs health-check passes over a fixed adapter set.
type Monitor struct {
	cfg      Config
	fetchers []sources.Fetcher
}

// NewMonitor creates a Monitor over the given adapters.
func NewMonitor(cfg Config, fetchers []sources.Fetcher) *Monitor {
	cfg.applyDefaults()
	return &Monitor{cfg: cfg, fetchers: fetchers}
}

// Check probes every platform concurrently and aggregates the outcome.
// One slow or failing adapter never blocks or fails the others; each probe
// gets its own timeout.
func (m *Monitor) Check(ctx context.Context) events.HealthReport {
	report := events.HealthReport{
		CheckedAt: time.Now().UTC(),
		Total:     len(m.fetchers),
	}

	results := make([]events.PlatformHealth, len(m.fetchers))
	var wg sync.WaitGroup
	for i, f := range m.fetchers {
		wg.Add(1)
		go func(i int, f sources.Fetcher) {
			defer wg.Done()
			results[i] = m.probe(ctx, f)
		}(i, f)
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool {
		return results[a].Platform < results[b].Platform
	})

	for _, ph := range results {
		switch ph.Status {
		case events.StatusHealthy:
			report.Healthy++
		case events.StatusDegraded:
			report.Degraded++
		default:
			report.Down++
		}
		metrics.SetPlatformHealth(ph.Platform, string(ph.Status))
		report.Recommendations = append(report.Recommendations, recommend(ph, m.cfg.SlowThreshold)...)
	}
	report.Platforms = results
	report.Overall = overall(report)

	logging.Info().
		Str("overall", string(report.Overall)).
		Int("healthy", report.Healthy).
		Int("degraded", report.Degraded).
		Int("down", report.Down).
		Msg("Platform health check complete")
	return report
}

// probe issues one bounded single-event fetch against a platform.
func (m *Monitor) probe(ctx context.Context, f sources.Fetcher) events.PlatformHealth {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	start := time.Now()
	res := f.Fetch(ctx, events.FetchRequest{City: m.cfg.ProbeCity, Limit: 1})
	elapsed := time.Since(start)

	ph := events.PlatformHealth{
		Platform:       f.Platform(),
		EventCount:     len(res.Events),
		ResponseTimeMs: elapsed.Milliseconds(),
		Error:          res.Error,
		CheckedAt:      time.Now().UTC(),
	}
	switch {
	case !res.Success:
		ph.Status = events.StatusDown
	case len(res.Events) == 0:
		ph.Status = events.StatusDegraded
	default:
		ph.Status = events.StatusHealthy
	}
	return ph
}

// overall aggregates: healthy iff every platform is healthy, down iff
// every platform is down, degraded otherwise. A degraded-but-reachable
// source still counts as signal, so it never drags the overall to down.
func overall(r events.HealthReport) events.HealthStatus {
	switch {
	case r.Total == 0:
		return events.StatusDown
	case r.Healthy == r.Total:
		return events.StatusHealthy
	case r.Down == r.Total:
		return events.StatusDown
	default:
		return events.StatusDegraded
	}
}

// recommend emits free-text operator guidance for one platform's state.
func recommend(ph events.PlatformHealth, slow time.Duration) []string {
	var out []string
	switch ph.Status {
	case events.StatusDown:
		out = append(out, fmt.Sprintf("%s: fetch failed (%s); verify the source is reachable and its markup unchanged", ph.Platform, ph.Error))
	case events.StatusDegraded:
		out = append(out, fmt.Sprintf("%s: reachable but returned no events; the source may be blocking scrapers or its listing selectors need updating", ph.Platform))
	}
	if ph.ResponseTimeMs >= slow.Milliseconds() {
		out = append(out, fmt.Sprintf("%s: slow response (%dms); consider raising its request spacing", ph.Platform, ph.ResponseTimeMs))
	}
	return out
}
