// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the ingestion pipeline:
// - Source adapter fetch latency and outcomes
// - Robots checker decisions and cache efficiency
// - Per-source rate limiter queue depth
// - Circuit breaker state
// - Deduplication outcomes
// - API endpoint latency and throughput

var (
	// Source Adapter Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_fetch_duration_seconds",
			Help:    "Duration of source adapter fetches in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"platform", "path"}, // path: "api" or "scrape"
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_fetches_total",
			Help: "Total number of source adapter fetches",
		},
		[]string{"platform", "outcome"}, // outcome: "success", "failure"
	)

	EventsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_fetched_total",
			Help: "Total number of canonical events produced by adapters",
		},
		[]string{"platform"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_skipped_total",
			Help: "Total number of malformed source records skipped during parsing",
		},
		[]string{"platform", "reason"},
	)

	EventsDateEstimated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_date_estimated_total",
			Help: "Total number of events kept with a substituted placeholder date",
		},
		[]string{"platform"},
	)

	// Robots Checker Metrics
	RobotsDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robots_decisions_total",
			Help: "Total number of robots policy decisions",
		},
		[]string{"origin", "decision"}, // decision: "allowed", "denied"
	)

	RobotsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "robots_cache_hits_total",
			Help: "Total number of robots policy cache hits",
		},
	)

	RobotsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "robots_cache_misses_total",
			Help: "Total number of robots policy cache misses",
		},
	)

	// Rate Limiter Metrics
	RateLimitQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ratelimit_queue_depth",
			Help: "Current number of queued requests per source",
		},
		[]string{"source"},
	)

	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_requests_total",
			Help: "Total number of requests released by the per-source rate limiter",
		},
		[]string{"source"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"platform"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers by result",
		},
		[]string{"platform", "result"}, // result: "success", "failure", "rejected"
	)

	// Deduplication Metrics
	DedupGroupsFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_groups_found_total",
			Help: "Total number of duplicate groups identified",
		},
	)

	DedupEventsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_events_removed_total",
			Help: "Total number of duplicate events marked for deletion",
		},
	)

	DedupBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dedup_batch_duration_seconds",
			Help:    "Duration of deduplication batch computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Ingestion Pass Metrics
	IngestPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_pass_duration_seconds",
			Help:    "Duration of full ingestion passes in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	IngestPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_passes_total",
			Help: "Total number of ingestion passes",
		},
		[]string{"trigger"}, // trigger: "api", "scheduled"
	)

	// Platform Health Metrics
	PlatformHealthStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "platform_health_status",
			Help: "Latest platform health classification (0=down, 1=degraded, 2=healthy)",
		},
		[]string{"platform"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordFetch observes one adapter fetch outcome.
func RecordFetch(platform, path string, success bool, elapsed time.Duration) {
	FetchDuration.WithLabelValues(platform, path).Observe(elapsed.Seconds())
	outcome := "failure"
	if success {
		outcome = "success"
	}
	FetchesTotal.WithLabelValues(platform, outcome).Inc()
}

// RecordAPIRequest observes one HTTP API request.
func RecordAPIRequest(method, endpoint string, status int, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// SetPlatformHealth records the latest health classification for a platform.
func SetPlatformHealth(platform, status string) {
	var v float64
	switch status {
	case "healthy":
		v = 2
	case "degraded":
		v = 1
	default:
		v = 0
	}
	PlatformHealthStatus.WithLabelValues(platform).Set(v)
}
