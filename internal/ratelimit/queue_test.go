// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestQueue_SpacingBetweenStarts verifies no two requests to the same
// source start closer together than the configured spacing.
func TestQueue_SpacingBetweenStarts(t *testing.T) {
	const spacing = 50 * time.Millisecond
	q := New(Config{Spacing: spacing})
	defer q.Close()

	var mu sync.Mutex
	var starts []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), "meetup", func(context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if len(starts) != 4 {
		t.Fatalf("expected 4 executions, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < spacing-5*time.Millisecond {
			t.Errorf("starts %d and %d only %v apart, want >= %v", i-1, i, gap, spacing)
		}
	}
}

// TestQueue_FIFOOrder verifies queued work executes in submission order.
func TestQueue_FIFOOrder(t *testing.T) {
	q := New(Config{Spacing: time.Millisecond})
	defer q.Close()

	var mu sync.Mutex
	var order []int

	// Submit sequentially so submission order is well defined, but collect
	// completions concurrently.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		// Ensure the unit is enqueued before submitting the next one.
		enqueued := make(chan struct{})
		go func() {
			defer wg.Done()
			close(enqueued)
			_ = q.Do(context.Background(), "allevents", func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		<-enqueued
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("execution order %v, want ascending", order)
		}
	}
}

// TestQueue_CallerGetsOwnResult verifies a caller awaits exactly its own
// unit of work, receiving that unit's error and no other.
func TestQueue_CallerGetsOwnResult(t *testing.T) {
	q := New(Config{Spacing: time.Millisecond})
	defer q.Close()

	errBoom := errors.New("boom")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = q.Do(context.Background(), "district", func(context.Context) error {
				if i == 0 {
					return errBoom
				}
				return nil
			})
		}()
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	if !errors.Is(results[0], errBoom) {
		t.Errorf("first caller expected errBoom, got %v", results[0])
	}
	if results[1] != nil {
		t.Errorf("second caller expected nil, got %v", results[1])
	}
}

// TestQueue_IndependentSources verifies there is no shared limiter state
// across sources: a slow source must not delay another.
func TestQueue_IndependentSources(t *testing.T) {
	q := New(Config{Spacing: 200 * time.Millisecond})
	defer q.Close()

	// Consume source A's initial token.
	_ = q.Do(context.Background(), "slow-source", func(context.Context) error { return nil })

	start := time.Now()
	_ = q.Do(context.Background(), "fast-source", func(context.Context) error { return nil })
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("independent source delayed by %v", elapsed)
	}
}

func TestQueue_ContextCancelWhileQueued(t *testing.T) {
	q := New(Config{Spacing: 300 * time.Millisecond})
	defer q.Close()

	// Burn the token so the next unit must rate-wait.
	_ = q.Do(context.Background(), "bookmyshow", func(context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	executed := false
	err := q.Do(ctx, "bookmyshow", func(context.Context) error {
		executed = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
	// Give the worker a moment; the canceled unit must never run.
	time.Sleep(50 * time.Millisecond)
	if executed {
		t.Error("canceled unit of work must not execute")
	}
}

func TestQueue_DepthReflectsBacklog(t *testing.T) {
	q := New(Config{Spacing: time.Millisecond})
	defer q.Close()

	// Occupy the single worker so later units stay queued.
	release := make(chan struct{})
	running := make(chan struct{})
	go func() {
		_ = q.Do(context.Background(), "meetup", func(context.Context) error {
			close(running)
			<-release
			return nil
		})
	}()
	<-running

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), "meetup", func(context.Context) error { return nil })
		}()
	}

	deadline := time.Now().Add(time.Second)
	for q.Depth("meetup") < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Depth = %d, want 2 queued units", q.Depth("meetup"))
		}
		time.Sleep(time.Millisecond)
	}
	if got := q.Depth("unknown"); got != 0 {
		t.Errorf("Depth for unknown source = %d, want 0", got)
	}

	close(release)
	wg.Wait()
	if got := q.Depth("meetup"); got != 0 {
		t.Errorf("Depth after drain = %d, want 0", got)
	}
}

// TestQueue_CloseRacingSubmissions hammers Close against concurrent Do
// calls: every submission must resolve cleanly (result or ErrClosed),
// never panic on a closed channel.
func TestQueue_CloseRacingSubmissions(t *testing.T) {
	for iter := 0; iter < 50; iter++ {
		q := New(Config{Spacing: time.Microsecond})

		var wg sync.WaitGroup
		results := make([]error, 8)
		for i := range results {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = q.Do(context.Background(), "district", func(context.Context) error { return nil })
			}()
		}
		q.Close()
		wg.Wait()

		for i, err := range results {
			if err != nil && !errors.Is(err, ErrClosed) {
				t.Fatalf("iteration %d caller %d: %v", iter, i, err)
			}
		}
	}
}

func TestQueue_Closed(t *testing.T) {
	q := New(Config{})
	q.Close()

	err := q.Do(context.Background(), "meetup", func(context.Context) error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	// Close is idempotent.
	q.Close()
}
