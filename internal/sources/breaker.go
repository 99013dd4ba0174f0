// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// errFetchFailed feeds failed envelopes into the breaker's failure counts.
var errFetchFailed = errors.New("fetch returned failure envelope")

// BreakerFetcher wraps a Fetcher with a circuit breaker so a platform that
// is hard down stops consuming its rate-limit budget on every cycle.
//
// The adapter contract is preserved: a rejected call still yields a normal
// failure envelope, never an error. Failure for breaker purposes is an
// envelope with Success=false; the breaker opens after a 60% failure rate
// with at least 5 observed requests, and probes recovery after 2 minutes.
type BreakerFetcher struct {
	inner Fetcher
	cb    *gobreaker.CircuitBreaker[events.FetchResult]
}

// WithBreaker wraps fetcher in a circuit breaker.
func WithBreaker(fetcher Fetcher) *BreakerFetcher {
	platform := fetcher.Platform()
	metrics.CircuitBreakerState.WithLabelValues(platform).Set(0)

	cb := gobreaker.NewCircuitBreaker[events.FetchResult](gobreaker.Settings{
		Name:        platform,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("platform", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
		},
	})

	return &BreakerFetcher{inner: fetcher, cb: cb}
}

// Platform returns the wrapped adapter's source tag.
func (b *BreakerFetcher) Platform() string { return b.inner.Platform() }

// Fetch executes the wrapped adapter under breaker protection.
func (b *BreakerFetcher) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	platform := b.inner.Platform()

	res, err := b.cb.Execute(func() (events.FetchResult, error) {
		res := b.inner.Fetch(ctx, req)
		if !res.Success {
			return res, errFetchFailed
		}
		return res, nil
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(platform, "success").Inc()
		return res
	case errors.Is(err, errFetchFailed):
		metrics.CircuitBreakerRequests.WithLabelValues(platform, "failure").Inc()
		return res
	default:
		// Open state or half-open saturation: the adapter never ran.
		metrics.CircuitBreakerRequests.WithLabelValues(platform, "rejected").Inc()
		logging.Warn().Err(err).Str("platform", platform).Msg("Fetch rejected by circuit breaker")
		return events.Failure(platform, err)
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
