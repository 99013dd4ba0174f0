// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package storage persists the event catalog. The orchestrator and API
// depend only on the EventStore interface; the Postgres implementation is
// the production path and the in-memory one serves development and tests.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("storage: not found")

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	City     string
	Category events.Category
	From     *time.Time
	To       *time.Time
	Limit    int
}

// EventStore is the persisted event catalog.
type EventStore interface {
	// Upsert inserts or updates each event keyed by its external id.
	// Updates keep the original CreatedAt. Returns the number written.
	Upsert(ctx context.Context, batch []events.CanonicalEvent) (int, error)

	// List returns events matching the filter, soonest first.
	List(ctx context.Context, f ListFilter) ([]events.CanonicalEvent, error)

	// GetByExternalID returns one event or ErrNotFound.
	GetByExternalID(ctx context.Context, externalID string) (events.CanonicalEvent, error)

	// All returns the entire catalog, for cleanup passes.
	All(ctx context.Context) ([]events.CanonicalEvent, error)

	// DeleteByExternalIDs removes events by external id, returning the
	// number deleted. Unknown ids are ignored.
	DeleteByExternalIDs(ctx context.Context, externalIDs []string) (int, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
