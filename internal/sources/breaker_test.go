// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// scriptedFetcher returns canned envelopes and counts invocations.
type scriptedFetcher struct {
	platform string
	fail     bool
	calls    int
}

func (f *scriptedFetcher) Platform() string { return f.platform }

func (f *scriptedFetcher) Fetch(_ context.Context, _ events.FetchRequest) events.FetchResult {
	f.calls++
	if f.fail {
		return events.Failure(f.platform, errors.New("upstream unreachable"))
	}
	return events.FetchResult{
		Platform:  f.platform,
		Success:   true,
		Events:    []events.CanonicalEvent{{Title: "ok"}},
		FetchedAt: time.Now().UTC(),
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &scriptedFetcher{platform: "test-ok"}
	b := WithBreaker(inner)

	res := b.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if len(res.Events) != 1 {
		t.Errorf("expected inner events to pass through, got %d", len(res.Events))
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times", inner.calls)
	}
}

func TestBreakerPreservesFailureEnvelope(t *testing.T) {
	inner := &scriptedFetcher{platform: "test-fail", fail: true}
	b := WithBreaker(inner)

	res := b.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	if res.Success {
		t.Fatal("expected failure envelope")
	}
	if res.Error != "upstream unreachable" {
		t.Errorf("inner error should survive the breaker, got %q", res.Error)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &scriptedFetcher{platform: "test-trip", fail: true}
	b := WithBreaker(inner)

	for i := 0; i < 5; i++ {
		b.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	}
	if inner.calls != 5 {
		t.Fatalf("expected 5 inner calls before the trip, got %d", inner.calls)
	}

	// The breaker is now open; further fetches are rejected without
	// reaching the adapter, still as plain failure envelopes.
	res := b.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	if res.Success {
		t.Fatal("expected rejection envelope")
	}
	if inner.calls != 5 {
		t.Errorf("inner adapter ran while the breaker was open (%d calls)", inner.calls)
	}
	if res.Platform != "test-trip" {
		t.Errorf("rejection envelope platform = %q", res.Platform)
	}
	if res.Error == "" {
		t.Error("rejection should carry the breaker error text")
	}
}

func TestBreakerToleratesMixedOutcomes(t *testing.T) {
	inner := &scriptedFetcher{platform: "test-mixed"}
	b := WithBreaker(inner)

	// Alternate success and failure; 50% failure rate stays under the
	// 60% trip threshold, so the breaker must remain closed.
	for i := 0; i < 10; i++ {
		inner.fail = i%2 == 0
		b.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	}
	if inner.calls != 10 {
		t.Errorf("breaker tripped on a sub-threshold failure rate (%d calls)", inner.calls)
	}
}
