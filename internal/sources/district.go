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

// PlatformDistrict is the source tag for District (formerly insider.in).
const PlatformDistrict = "district"

// District discovers events from the district.in city pages.
type District struct {
	scraper
	baseURL string
}

// NewDistrict builds the District adapter.
func NewDistrict(baseURL string, deps Deps) *District {
	deps.applyDefaults()
	return &District{
		scraper: scraper{platform: PlatformDistrict, deps: deps},
		baseURL: baseURL,
	}
}

func (d *District) Platform() string { return PlatformDistrict }

var districtStrategies = []selectorStrategy{
	{
		container: "div[data-ref=event_card]",
		title:     "div[data-ref=event_card_title]",
		date:      "div[data-ref=event_card_date]",
		venue:     "div[data-ref=event_card_venue]",
		image:     "img",
		price:     "div[data-ref=event_card_price]",
		link:      "a",
	},
	{
		container: "article.card-list-item",
		title:     "h5.card-title",
		date:      "p.card-date",
		venue:     "p.card-venue",
		image:     "img.card-img",
		price:     "span.card-price",
		link:      "a.card-link",
	},
	{
		container: "div.css-event-card",
		title:     "h3",
		date:      "time",
		venue:     "p:nth-of-type(2)",
		image:     "img",
		link:      "a",
	},
}

// Fetch scrapes the city events page. Insider-era paths still redirect to
// the same listings, so only the current shape is targeted.
func (d *District) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	req = normalizeRequest(req)
	start := time.Now()

	pageURL := fmt.Sprintf("%s/%s/events", d.baseURL, citySlug(req.City))
	if req.Category != "" {
		pageURL = fmt.Sprintf("%s/%s/events/%s", d.baseURL, citySlug(req.City), req.Category)
	}

	evts, err := d.scrapeListing(ctx, pageURL, districtStrategies, req)
	if err != nil {
		return failureResult(PlatformDistrict, "scrape", err, start)
	}
	return successResult(PlatformDistrict, "scrape", evts, start)
}
