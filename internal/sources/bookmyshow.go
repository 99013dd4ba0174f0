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

// PlatformBookMyShow is the source tag for BookMyShow.
const PlatformBookMyShow = "bookmyshow"

// BookMyShow discovers events from the explore pages. The site renders
// much of its catalog client-side, so a sparse server-rendered listing is
// an expected degraded outcome, not an error.
type BookMyShow struct {
	scraper
	baseURL string
}

// NewBookMyShow builds the BookMyShow adapter.
func NewBookMyShow(baseURL string, deps Deps) *BookMyShow {
	deps.applyDefaults()
	return &BookMyShow{
		scraper: scraper{platform: PlatformBookMyShow, deps: deps},
		baseURL: baseURL,
	}
}

func (b *BookMyShow) Platform() string { return PlatformBookMyShow }

var bookmyshowStrategies = []selectorStrategy{
	{
		container: "div[data-id^=ET]",
		title:     "h3",
		date:      "h5:nth-of-type(1)",
		venue:     "h5:nth-of-type(2)",
		image:     "img",
		price:     "h6",
		link:      "a",
	},
	{
		container: "div.style__CardContainer",
		title:     "div.style__EventTitle",
		date:      "div.style__EventDate",
		venue:     "div.style__EventVenue",
		image:     "img",
		link:      "a",
	},
	{
		container: "a[href*='/events/']",
		title:     "h3",
		date:      "h5",
		image:     "img",
	},
}

// Fetch scrapes the explore listing for the requested city.
func (b *BookMyShow) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	req = normalizeRequest(req)
	start := time.Now()

	pageURL := fmt.Sprintf("%s/explore/events-%s", b.baseURL, citySlug(req.City))
	if req.Category != "" {
		pageURL += fmt.Sprintf("?categories=%s", req.Category)
	}

	evts, err := b.scrapeListing(ctx, pageURL, bookmyshowStrategies, req)
	if err != nil {
		return failureResult(PlatformBookMyShow, "scrape", err, start)
	}
	return successResult(PlatformBookMyShow, "scrape", evts, start)
}
