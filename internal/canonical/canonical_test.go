// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package canonical

import (
	"strings"
	"testing"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// TestExternalID_Deterministic verifies the core identity invariant: for
// fixed input fields, identity generation is pure and stable across calls.
func TestExternalID_Deterministic(t *testing.T) {
	date := time.Date(2026, 9, 12, 20, 30, 0, 0, time.UTC)

	first := ExternalID("eventbrite", "https://eventbrite.com/e/jazz-night-123", "Summer Jazz Night", date, "Mumbai")
	second := ExternalID("eventbrite", "https://eventbrite.com/e/jazz-night-123", "Summer Jazz Night", date, "Mumbai")

	if first != second {
		t.Errorf("identity not stable: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "eventbrite-") {
		t.Errorf("identity should carry platform prefix, got %q", first)
	}
}

func TestExternalID_InsensitiveToVolatileInput(t *testing.T) {
	date := time.Date(2026, 9, 12, 20, 30, 0, 0, time.UTC)

	base := ExternalID("meetup", "https://meetup.com/go-mumbai/events/5", "Go Meetup", date, "Mumbai")

	tests := []struct {
		name  string
		url   string
		title string
		date  time.Time
		city  string
	}{
		{"tracking params stripped", "https://meetup.com/go-mumbai/events/5?utm_source=fb#about", "Go Meetup", date, "Mumbai"},
		{"title case and spacing", "https://meetup.com/go-mumbai/events/5", "  go   MEETUP ", date, "Mumbai"},
		{"time of day within same date", "https://meetup.com/go-mumbai/events/5", "Go Meetup", date.Add(2 * time.Hour), "Mumbai"},
		{"city casing", "https://meetup.com/go-mumbai/events/5", "Go Meetup", date, "MUMBAI"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExternalID("meetup", tt.url, tt.title, tt.date, tt.city)
			if got != base {
				t.Errorf("expected identical identity, got %q vs %q", got, base)
			}
		})
	}
}

func TestExternalID_DistinctForDistinctListings(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	a := ExternalID("district", "https://district.in/e/1", "Indie Night", date, "Pune")
	b := ExternalID("district", "https://district.in/e/2", "Indie Night", date, "Pune")
	c := ExternalID("district", "https://district.in/e/1", "Indie Night", date.AddDate(0, 0, 1), "Pune")

	if a == b {
		t.Error("different URLs must produce different identities")
	}
	if a == c {
		t.Error("different calendar days must produce different identities")
	}
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		source string
		want   events.Category
	}{
		{"Live Music & Concerts", events.CategoryMusic},
		{"Tech Talks", events.CategoryTech},
		{"Startup Networking Mixer", events.CategoryBusiness},
		{"Stand-up Comedy", events.CategoryArts},
		{"Sunday Marathon", events.CategorySports},
		{"Street Food Festival", events.CategoryFood},
		{"Morning Yoga", events.CategoryHealth},
		{"Photography Workshop", events.CategoryEducation},
		{"", events.CategoryCommunity},
		{"Miscellaneous", events.CategoryCommunity},
	}

	for _, tt := range tests {
		if got := MapCategory(tt.source); got != tt.want {
			t.Errorf("MapCategory(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestNormalize_Defaults(t *testing.T) {
	e := events.CanonicalEvent{Title: "  Open Mic  ", City: " Delhi "}
	Normalize(&e)

	if e.Title != "Open Mic" {
		t.Errorf("title not trimmed: %q", e.Title)
	}
	if e.Venue != events.PlaceholderVenue {
		t.Errorf("expected placeholder venue, got %q", e.Venue)
	}
	if e.Category != events.CategoryCommunity {
		t.Errorf("expected default category, got %q", e.Category)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
}

func TestNormalize_KeepsExistingFields(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := events.CanonicalEvent{
		Title:     "Gallery Walk",
		City:      "Mumbai",
		Venue:     "Kala Ghoda",
		Category:  events.CategoryArts,
		CreatedAt: created,
	}
	Normalize(&e)

	if e.Venue != "Kala Ghoda" || e.Category != events.CategoryArts || !e.CreatedAt.Equal(created) {
		t.Errorf("Normalize must not overwrite populated fields: %+v", e)
	}
}
