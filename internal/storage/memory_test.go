// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

func seedEvent(externalID, city string, date time.Time) events.CanonicalEvent {
	return events.CanonicalEvent{
		ExternalID:     externalID,
		Title:          "Event " + externalID,
		Category:       events.CategoryCommunity,
		City:           city,
		EventDate:      date,
		SourcePlatform: "allevents",
	}
}

func TestUpsertAssignsIDAndPreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

	n, err := s.Upsert(ctx, []events.CanonicalEvent{seedEvent("a-1", "mumbai", base)})
	if err != nil || n != 1 {
		t.Fatalf("Upsert = %d, %v", n, err)
	}

	first, err := s.GetByExternalID(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if first.ID == "" {
		t.Error("upsert should assign a record id")
	}
	if first.CreatedAt.IsZero() {
		t.Error("upsert should stamp CreatedAt")
	}

	// Re-upsert with changed content; identity fields survive.
	updated := seedEvent("a-1", "mumbai", base)
	updated.Title = "Renamed Event"
	if _, err := s.Upsert(ctx, []events.CanonicalEvent{updated}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	second, err := s.GetByExternalID(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetByExternalID after update: %v", err)
	}
	if second.Title != "Renamed Event" {
		t.Errorf("title not updated: %q", second.Title)
	}
	if second.ID != first.ID {
		t.Errorf("record id changed on update: %q vs %q", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	batch := []events.CanonicalEvent{
		seedEvent("m-late", "mumbai", base.AddDate(0, 0, 5)),
		seedEvent("m-soon", "mumbai", base.AddDate(0, 0, 1)),
		seedEvent("p-1", "pune", base.AddDate(0, 0, 2)),
	}
	batch[0].Category = events.CategoryMusic
	if _, err := s.Upsert(ctx, batch); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.List(ctx, ListFilter{City: "Mumbai"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("city filter returned %d events", len(got))
	}
	if got[0].ExternalID != "m-soon" {
		t.Errorf("expected soonest first, got %q", got[0].ExternalID)
	}

	got, err = s.List(ctx, ListFilter{Category: events.CategoryMusic})
	if err != nil || len(got) != 1 || got[0].ExternalID != "m-late" {
		t.Errorf("category filter = %+v, %v", got, err)
	}

	to := base.AddDate(0, 0, 3)
	got, err = s.List(ctx, ListFilter{From: &base, To: &to})
	if err != nil || len(got) != 2 {
		t.Errorf("date window returned %d events, %v", len(got), err)
	}

	got, err = s.List(ctx, ListFilter{Limit: 1})
	if err != nil || len(got) != 1 {
		t.Errorf("limit returned %d events, %v", len(got), err)
	}
}

func TestDeleteByExternalIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	s.Upsert(ctx, []events.CanonicalEvent{
		seedEvent("d-1", "mumbai", base),
		seedEvent("d-2", "mumbai", base),
	})

	n, err := s.DeleteByExternalIDs(ctx, []string{"d-1", "missing"})
	if err != nil {
		t.Fatalf("DeleteByExternalIDs: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1 (unknown ids ignored)", n)
	}
	if _, err := s.GetByExternalID(ctx, "d-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetByExternalID(ctx, "d-2"); err != nil {
		t.Errorf("unrelated event deleted: %v", err)
	}
}

func TestAllReturnsWholeCatalog(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	s.Upsert(ctx, []events.CanonicalEvent{
		seedEvent("a", "mumbai", base),
		seedEvent("b", "pune", base),
		seedEvent("c", "delhi", base),
	})
	all, err := s.All(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("All = %d events, %v", len(all), err)
	}
}
