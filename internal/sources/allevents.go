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

// PlatformAllEvents is the source tag for AllEvents.in.
const PlatformAllEvents = "allevents"

// AllEvents discovers events from the allevents.in city listing pages.
type AllEvents struct {
	scraper
	baseURL string
}

// NewAllEvents builds the AllEvents adapter.
func NewAllEvents(baseURL string, deps Deps) *AllEvents {
	deps.applyDefaults()
	return &AllEvents{
		scraper: scraper{platform: PlatformAllEvents, deps: deps},
		baseURL: baseURL,
	}
}

func (a *AllEvents) Platform() string { return PlatformAllEvents }

var alleventsStrategies = []selectorStrategy{
	{
		container: "li.event-card",
		title:     "div.title h3",
		date:      "div.date",
		venue:     "div.subtitle",
		image:     "div.banner img",
		price:     "div.price",
		category:  "div.category-name",
		link:      "a.event-link",
	},
	{
		container: "div.event-item",
		title:     "h3.event-title",
		date:      "span.event-date",
		venue:     "span.event-venue",
		image:     "img.event-thumb",
		price:     "span.event-price",
		link:      "a",
	},
	{
		container: "div[data-event-id]",
		title:     "h3",
		date:      "div.up-time",
		venue:     "div.up-venue",
		image:     "img",
		link:      "a",
	},
}

// Fetch scrapes the per-city listing, optionally narrowed to a category
// page since the site splits its catalog that way.
func (a *AllEvents) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	req = normalizeRequest(req)
	start := time.Now()

	pageURL := fmt.Sprintf("%s/%s/all", a.baseURL, citySlug(req.City))
	if req.Category != "" {
		pageURL = fmt.Sprintf("%s/%s/%s", a.baseURL, citySlug(req.City), req.Category)
	}

	evts, err := a.scrapeListing(ctx, pageURL, alleventsStrategies, req)
	if err != nil {
		return failureResult(PlatformAllEvents, "scrape", err, start)
	}
	return successResult(PlatformAllEvents, "scrape", evts, start)
}
