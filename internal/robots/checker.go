// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package robots enforces a source's crawling policy before any scrape
// request is issued.
//
// Policies are fetched per origin, cached with a TTL so policy changes are
// eventually observed, and evaluated with temoto/robotstxt. The cache is
// explicit injectable state scoped to process lifetime; nothing persists
// across restarts.
//
// Failure policy: when the robots.txt document itself
// is unreachable (network error or 5xx), the checker fails OPEN and does
// not cache the outcome, so the next check retries the fetch. A 401 or 403
// response is read as the host restricting crawler access and fails
// CLOSED. Any other 4xx means "no policy" and allows everything, matching
// how the major crawlers treat missing robots files.
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// DefaultUserAgent identifies the scraper in robots evaluation and on the
// policy fetch itself.
const DefaultUserAgent = "theglocal-bot/1.0 (+https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005)"

// Config controls policy fetching and caching.
type Config struct {
	// UserAgent is matched against robots.txt group directives.
	UserAgent string

	// TTL is how long a fetched policy stays cached. Default 1h.
	TTL time.Duration

	// Timeout bounds the policy document fetch. Default 10s.
	Timeout time.Duration

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

type entry struct {
	group     *robotstxt.Group
	denyAll   bool
	fetchedAt time.Time
}

// Checker fetches, caches, and evaluates per-origin crawling policies.
// Safe for concurrent use.
type Checker struct {
	ua     string
	ttl    time.Duration
	client *http.Client

	mu    sync.RWMutex
	cache map[string]*entry // keyed by origin "scheme://host"
}

// NewChecker creates a Checker with its own isolated policy cache.
func NewChecker(cfg Config) *Checker {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Checker{
		ua:     cfg.UserAgent,
		ttl:    cfg.TTL,
		client: client,
		cache:  make(map[string]*entry),
	}
}

// CheckAccess reports whether the crawling policy of rawURL's origin allows
// fetching its path. The error is non-nil only for malformed input; policy
// fetch failures resolve through the documented fail-open default.
func (c *Checker) CheckAccess(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return false, fmt.Errorf("robots: invalid url %q", rawURL)
	}
	origin := u.Scheme + "://" + u.Host

	e := c.cached(origin)
	if e == nil {
		metrics.RobotsCacheMisses.Inc()
		e = c.fetch(ctx, origin)
		if e == nil {
			// Policy document unreachable: fail open, retry next check.
			logging.Warn().Str("origin", origin).Msg("robots.txt unreachable, failing open")
			metrics.RobotsDecisions.WithLabelValues(origin, "allowed").Inc()
			return true, nil
		}
		c.store(origin, e)
	} else {
		metrics.RobotsCacheHits.Inc()
	}

	allowed := c.evaluate(e, u.Path)
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	metrics.RobotsDecisions.WithLabelValues(origin, decision).Inc()
	return allowed, nil
}

func (c *Checker) evaluate(e *entry, path string) bool {
	if e.denyAll {
		return false
	}
	if e.group == nil {
		return true
	}
	if path == "" {
		path = "/"
	}
	return e.group.Test(path)
}

// cached returns a live cache entry or nil.
func (c *Checker) cached(origin string) *entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[origin]
	if !ok || time.Since(e.fetchedAt) > c.ttl {
		return nil
	}
	return e
}

func (c *Checker) store(origin string, e *entry) {
	c.mu.Lock()
	c.cache[origin] = e
	c.mu.Unlock()
}

// fetch retrieves and parses origin's robots.txt. A nil return means the
// document was unreachable and nothing should be cached. Concurrent misses
// for the same origin may fetch twice; last write wins, which is harmless
// for an idempotent policy document.
func (c *Checker) fetch(ctx context.Context, origin string) *entry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", http.NoBody)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.ua)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	now := time.Now()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Host is actively gating crawler access.
		return &entry{denyAll: true, fetchedAt: now}
	case resp.StatusCode >= 500:
		return nil
	case resp.StatusCode >= 400:
		// No robots file: everything allowed.
		return &entry{fetchedAt: now}
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		logging.Warn().Err(err).Str("origin", origin).Msg("robots.txt unparseable, treating as no policy")
		return &entry{fetchedAt: now}
	}
	return &entry{group: data.FindGroup(c.ua), fetchedAt: now}
}

// Invalidate drops a cached policy, forcing a refetch on next check.
func (c *Checker) Invalidate(origin string) {
	c.mu.Lock()
	delete(c.cache, origin)
	c.mu.Unlock()
}
