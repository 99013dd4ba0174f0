// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package ratelimit provides the per-source request queue that paces all
// outbound traffic to any one external platform.
//
// Each source gets one logical FIFO queue. Work submitted for a source is
// executed in submission order, with a minimum spacing between the starts
// of consecutive requests (golang.org/x/time/rate under the hood) and a
// bounded number of in-flight requests. A caller awaits exactly its own
// unit of work, not the whole queue.
//
// Queues are explicit injectable state, not process globals: tests and the
// health monitor instantiate their own isolated instances.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// ErrClosed is returned for work submitted after Close.
var ErrClosed = errors.New("ratelimit: queue closed")

// Config controls pacing for every source handled by one Queue.
type Config struct {
	// Spacing is the minimum interval between the starts of two requests
	// to the same source. Default 2s.
	Spacing time.Duration

	// Workers is the maximum number of in-flight requests per source.
	// Default 1 (fully serialized).
	Workers int

	// Backlog bounds the number of queued units of work per source.
	// Submissions beyond it block until the queue drains. Default 64.
	Backlog int
}

func (c *Config) applyDefaults() {
	if c.Spacing <= 0 {
		c.Spacing = 2 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Backlog <= 0 {
		c.Backlog = 64
	}
}

// Queue multiplexes per-source request queues. Safe for concurrent use.
type Queue struct {
	cfg     Config
	mu      sync.Mutex
	sources map[string]*sourceQueue
	closed  bool

	// submitters tracks callers between queue lookup and job send, so
	// Close never closes a jobs channel with a send still pending.
	submitters sync.WaitGroup
}

// New creates a Queue with the given pacing configuration.
func New(cfg Config) *Queue {
	cfg.applyDefaults()
	return &Queue{
		cfg:     cfg,
		sources: make(map[string]*sourceQueue),
	}
}

type unit struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

type sourceQueue struct {
	name    string
	jobs    chan unit
	limiter *rate.Limiter
}

// Do submits fn to the named source's queue and blocks until that unit of
// work completes (or ctx is canceled while it is still queued or rate
// waiting). The returned error is whatever fn returned.
func (q *Queue) Do(ctx context.Context, source string, fn func(context.Context) error) error {
	sq, err := q.queueFor(source)
	if err != nil {
		return err
	}
	u := unit{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case sq.jobs <- u:
		q.submitters.Done()
	case <-ctx.Done():
		q.submitters.Done()
		return ctx.Err()
	}
	metrics.RateLimitQueueDepth.WithLabelValues(source).Set(float64(len(sq.jobs)))

	select {
	case err := <-u.done:
		return err
	case <-ctx.Done():
		// The worker will observe the canceled context and skip the unit.
		return ctx.Err()
	}
}

// queueFor returns (lazily creating) the queue for a source.
func (q *Queue) queueFor(source string) (*sourceQueue, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}
	q.submitters.Add(1)
	sq, ok := q.sources[source]
	if !ok {
		sq = &sourceQueue{
			name: source,
			jobs: make(chan unit, q.cfg.Backlog),
			// Burst 1: tokens accrue one spacing interval apart, so two
			// starts can never be closer than cfg.Spacing.
			limiter: rate.NewLimiter(rate.Every(q.cfg.Spacing), 1),
		}
		for i := 0; i < q.cfg.Workers; i++ {
			go sq.run()
		}
		q.sources[source] = sq
	}
	return sq, nil
}

func (sq *sourceQueue) run() {
	for u := range sq.jobs {
		metrics.RateLimitQueueDepth.WithLabelValues(sq.name).Set(float64(len(sq.jobs)))

		// Caller may have given up while the unit sat in the queue.
		if err := u.ctx.Err(); err != nil {
			u.done <- err
			continue
		}
		if err := sq.limiter.Wait(u.ctx); err != nil {
			u.done <- err
			continue
		}
		metrics.RateLimitRequestsTotal.WithLabelValues(sq.name).Inc()
		u.done <- u.fn(u.ctx)
	}
}

// Depth reports the number of queued (not yet started) units for a source.
func (q *Queue) Depth(source string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if sq, ok := q.sources[source]; ok {
		return len(sq.jobs)
	}
	return 0
}

// Close stops accepting work and releases the per-source workers. In-flight
// and already-queued units still run to completion.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// New Do calls now fail with ErrClosed. Wait out callers that passed
	// the closed check before closing the channels their sends target.
	q.submitters.Wait()

	q.mu.Lock()
	for _, sq := range q.sources {
		close(sq.jobs)
	}
	q.mu.Unlock()
}
