// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// MemoryStore is an in-memory EventStore for development and tests.
// Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]events.CanonicalEvent // keyed by external id
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]events.CanonicalEvent)}
}

// Upsert implements EventStore.
func (s *MemoryStore) Upsert(_ context.Context, batch []events.CanonicalEvent) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range batch {
		if existing, ok := s.events[e.ExternalID]; ok {
			e.ID = existing.ID
			e.CreatedAt = existing.CreatedAt
		} else {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
		}
		s.events[e.ExternalID] = e
	}
	return len(batch), nil
}

// List implements EventStore.
func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]events.CanonicalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]events.CanonicalEvent, 0, len(s.events))
	for _, e := range s.events {
		if f.City != "" && !strings.EqualFold(e.City, f.City) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.From != nil && e.EventDate.Before(*f.From) {
			continue
		}
		if f.To != nil && e.EventDate.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].EventDate.Equal(out[b].EventDate) {
			return out[a].EventDate.Before(out[b].EventDate)
		}
		return out[a].ExternalID < out[b].ExternalID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// GetByExternalID implements EventStore.
func (s *MemoryStore) GetByExternalID(_ context.Context, externalID string) (events.CanonicalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[externalID]
	if !ok {
		return events.CanonicalEvent{}, ErrNotFound
	}
	return e, nil
}

// All implements EventStore.
func (s *MemoryStore) All(ctx context.Context) ([]events.CanonicalEvent, error) {
	return s.List(ctx, ListFilter{})
}

// DeleteByExternalIDs implements EventStore.
func (s *MemoryStore) DeleteByExternalIDs(_ context.Context, externalIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range externalIDs {
		if _, ok := s.events[id]; ok {
			delete(s.events, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping implements EventStore.
func (s *MemoryStore) Ping(context.Context) error { return nil }
