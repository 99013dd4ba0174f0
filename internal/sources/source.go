// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package sources implements the per-platform event adapters.
//
// Every adapter satisfies the same contract: given a fetch request it
// returns a result envelope, never an error; failure is data. Adapters
// with a configured API credential try the structured API first and fall
// back to HTML extraction; scrape-only adapters go straight to HTML. All
// scrape traffic consults the robots checker and flows through the
// per-source rate limiter.
package sources

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/ratelimit"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/robots"
)

// RequestTimeout bounds every outbound call an adapter makes.
const RequestTimeout = 10 * time.Second

// DefaultLimit applies when a fetch request does not specify one.
const DefaultLimit = 20

// Sentinel errors for expected failure modes. These travel inside result
// envelopes as text; they are never raised past an adapter boundary.
var (
	// ErrScrapingDisallowed means the source's robots policy denies the
	// target path. Terminal for that fetch, never retried in-cycle.
	ErrScrapingDisallowed = errors.New("scraping disallowed by robots policy")

	// ErrNoSelectorMatched means every parser strategy came up empty,
	// usually a sign the source's markup changed.
	ErrNoSelectorMatched = errors.New("no selector strategy matched any records")
)

// Fetcher is the uniform adapter contract.
type Fetcher interface {
	// Platform returns the stable source tag ("eventbrite", "meetup", ...).
	Platform() string

	// Fetch discovers events matching the request. The envelope is always
	// populated; Success=false with zero events means this source
	// contributed nothing this cycle.
	Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult
}

// Deps bundles the shared collaborators injected into every adapter.
// Explicit injection (no package globals) keeps test instances isolated.
type Deps struct {
	Robots *robots.Checker
	Queue  *ratelimit.Queue

	// Client is the shared HTTP client. A zero value gets a client with
	// RequestTimeout applied.
	Client *http.Client

	// UserAgent identifies us to the sources. Defaults to the robots
	// checker's agent string.
	UserAgent string
}

func (d *Deps) applyDefaults() {
	if d.Client == nil {
		d.Client = &http.Client{Timeout: RequestTimeout}
	}
	if d.UserAgent == "" {
		d.UserAgent = robots.DefaultUserAgent
	}
}

// timeNow is a seam for tests that need a fixed clock for relative-date
// resolution.
var timeNow = time.Now

// successResult builds a successful envelope and records the fetch metrics.
func successResult(platform, path string, evts []events.CanonicalEvent, start time.Time) events.FetchResult {
	metrics.RecordFetch(platform, path, true, time.Since(start))
	metrics.EventsFetched.WithLabelValues(platform).Add(float64(len(evts)))
	return events.FetchResult{
		Platform:  platform,
		Success:   true,
		Events:    evts,
		FetchedAt: time.Now().UTC(),
	}
}

// failureResult builds a failed envelope and records the fetch metrics.
func failureResult(platform, path string, err error, start time.Time) events.FetchResult {
	metrics.RecordFetch(platform, path, false, time.Since(start))
	return events.Failure(platform, err)
}

// normalizeRequest fills request defaults without mutating the caller's copy.
func normalizeRequest(req events.FetchRequest) events.FetchRequest {
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	return req
}

// withinWindow reports whether an event falls inside the request's
// optional date range.
func withinWindow(e *events.CanonicalEvent, req events.FetchRequest) bool {
	if req.DateFrom != nil && e.EventDate.Before(*req.DateFrom) {
		return false
	}
	if req.DateTo != nil && e.EventDate.After(*req.DateTo) {
		return false
	}
	return true
}
