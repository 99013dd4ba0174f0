// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package events

import (
	"time"

	"github.com/goccy/go-json"
)

// Category is the fixed internal category vocabulary. Source-specific
// taxonomies are mapped onto these values during canonicalization.
type Category string

const (
	CategoryMusic     Category = "music"
	CategoryTech      Category = "tech"
	CategoryBusiness  Category = "business"
	CategoryArts      Category = "arts"
	CategorySports    Category = "sports"
	CategoryFood      Category = "food"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	// CategoryCommunity is the default when no source category matches.
	CategoryCommunity Category = "community"
)

// Categories lists every valid internal category.
func Categories() []Category {
	return []Category{
		CategoryMusic, CategoryTech, CategoryBusiness, CategoryArts,
		CategorySports, CategoryFood, CategoryHealth, CategoryEducation,
		CategoryCommunity,
	}
}

// PlaceholderVenue is substituted when a source record carries no venue.
const PlaceholderVenue = "Venue TBD"

// CanonicalEvent is the normalized, source-agnostic event record. Adapters
// emit these; everything downstream (dedup, storage, the API surface)
// operates on this shape only.
//
// ExternalID is a pure function of {source platform, canonical URL or API id,
// title, event date, city}, so re-fetching the same listing in a later
// cycle yields the same identity and upserts stay idempotent.
type CanonicalEvent struct {
	// ID is the persisted record id, empty for events fresh off an adapter.
	ID string `json:"id,omitempty"`

	ExternalID  string    `json:"external_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`
	Venue       string    `json:"venue,omitempty"`
	City        string    `json:"city"`
	EventDate   time.Time `json:"event_date"`

	ImageURL  string `json:"image_url,omitempty"`
	TicketURL string `json:"ticket_url,omitempty"`

	// Price is free text; sources use wildly inconsistent formats
	// ("Free", "₹499 onwards", "$10-$25").
	Price string `json:"price,omitempty"`

	SourcePlatform string `json:"source_platform"`

	// DateEstimated marks events whose date could not be parsed and was
	// substituted with a synthetic near-future placeholder.
	DateEstimated bool `json:"date_estimated,omitempty"`

	// IdentityFallback marks events whose external id was derived from the
	// listing page rather than a per-event URL or API id. Such identities
	// are less stable across re-fetches.
	IdentityFallback bool `json:"identity_fallback,omitempty"`

	// RawData carries the adapter's original payload for diagnostics.
	// Never used for equality or deduplication.
	RawData json.RawMessage `json:"raw_data,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// HasSpecificVenue reports whether the event names a real venue rather than
// the placeholder.
func (e *CanonicalEvent) HasSpecificVenue() bool {
	return e.Venue != "" && e.Venue != PlaceholderVenue
}

// FetchRequest describes one adapter fetch. Immutable input to every
// adapter call.
type FetchRequest struct {
	City     string     `json:"city"`
	Category Category   `json:"category,omitempty"`
	Limit    int        `json:"limit"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

// FetchResult is the envelope every adapter returns. Failure is data, not
// control flow: a total fetch failure yields Success=false with zero events
// and the error recorded as text.
type FetchResult struct {
	Platform  string           `json:"platform"`
	Success   bool             `json:"success"`
	Events    []CanonicalEvent `json:"events"`
	Error     string           `json:"error,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Failure builds a failed envelope for the given platform.
func Failure(platform string, err error) FetchResult {
	res := FetchResult{
		Platform:  platform,
		Success:   false,
		FetchedAt: time.Now().UTC(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// HealthStatus classifies a platform probe outcome.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
	StatusDown     HealthStatus = "down"
)

// PlatformHealth is the record produced for one platform by a health-check
// pass. Created fresh on every invocation, never persisted.
type PlatformHealth struct {
	Platform       string       `json:"platform"`
	Status         HealthStatus `json:"status"`
	EventCount     int          `json:"event_count"`
	ResponseTimeMs int64        `json:"response_time_ms"`
	Error          string       `json:"error,omitempty"`
	CheckedAt      time.Time    `json:"checked_at"`
}

// HealthReport aggregates one health-check pass across all platforms.
type HealthReport struct {
	Overall         HealthStatus     `json:"overall"`
	Total           int              `json:"total"`
	Healthy         int              `json:"healthy"`
	Degraded        int              `json:"degraded"`
	Down            int              `json:"down"`
	Platforms       []PlatformHealth `json:"platforms"`
	Recommendations []string         `json:"recommendations"`
	CheckedAt       time.Time        `json:"checked_at"`
}

// SourceBreakdown summarizes one source's contribution to an ingestion pass.
type SourceBreakdown struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	Fetched  int    `json:"fetched"`
	Error    string `json:"error,omitempty"`
}

// IngestResult is returned by one full ingestion pass: the merged,
// deduplicated event set plus per-source accounting.
type IngestResult struct {
	Events    []CanonicalEvent  `json:"events"`
	Sources   []SourceBreakdown `json:"sources"`
	Deduped   int               `json:"deduped"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}
