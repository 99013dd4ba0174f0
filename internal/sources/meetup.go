// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// PlatformMeetup is the source tag for Meetup.
const PlatformMeetup = "meetup"

// Meetup discovers events from the Meetup search pages. Scrape-only; the
// Meetup API requires OAuth consumer accounts out of scope here.
type Meetup struct {
	scraper
	baseURL string
}

// NewMeetup builds the Meetup adapter.
func NewMeetup(baseURL string, deps Deps) *Meetup {
	deps.applyDefaults()
	return &Meetup{
		scraper: scraper{platform: PlatformMeetup, deps: deps},
		baseURL: baseURL,
	}
}

func (m *Meetup) Platform() string { return PlatformMeetup }

var meetupStrategies = []selectorStrategy{
	{
		container: "div[data-testid=event-card]",
		title:     "h2",
		date:      "time",
		venue:     "p[data-testid=event-card-venue]",
		image:     "img",
		link:      "a[data-testid=event-card-link]",
	},
	{
		container: "div.eventCard",
		title:     "a.eventCard--link",
		date:      "time.eventTimeDisplay",
		venue:     "p.venueDisplay",
		image:     "img.eventCardHead--photo",
		link:      "a.eventCard--link",
	},
	{
		container: "li.event-listing",
		title:     "span.text--labelSecondary",
		date:      "time",
		venue:     "address",
		image:     "img",
		link:      "a",
	},
}

// Fetch scrapes the Meetup event search for the requested city.
func (m *Meetup) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	req = normalizeRequest(req)
	start := time.Now()

	pageURL := fmt.Sprintf("%s/find/?location=in--%s&source=EVENTS", m.baseURL, citySlug(req.City))
	if req.Category != "" {
		pageURL += "&keywords=" + string(req.Category)
	}

	evts, err := m.scrapeListing(ctx, pageURL, meetupStrategies, req)
	if err != nil {
		return failureResult(PlatformMeetup, "scrape", err, start)
	}
	return successResult(PlatformMeetup, "scrape", evts, start)
}
