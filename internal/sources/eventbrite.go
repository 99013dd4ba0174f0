// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/canonical"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// PlatformEventbrite is the source tag for Eventbrite.
const PlatformEventbrite = "eventbrite"

// Eventbrite discovers events via the Eventbrite API when a token is
// configured, falling back to the public listing pages otherwise or when
// the API path fails.
type Eventbrite struct {
	scraper
	baseURL    string
	apiBaseURL string
	apiToken   string
}

// NewEventbrite builds the Eventbrite adapter. An empty apiToken means
// scrape-only mode.
func NewEventbrite(baseURL, apiBaseURL, apiToken string, deps Deps) *Eventbrite {
	deps.applyDefaults()
	return &Eventbrite{
		scraper:    scraper{platform: PlatformEventbrite, deps: deps},
		baseURL:    baseURL,
		apiBaseURL: apiBaseURL,
		apiToken:   apiToken,
	}
}

func (e *Eventbrite) Platform() string { return PlatformEventbrite }

// Fetch tries the structured API first, then the listing pages. Either
// path failing entirely yields a failure envelope.
func (e *Eventbrite) Fetch(ctx context.Context, req events.FetchRequest) events.FetchResult {
	req = normalizeRequest(req)
	start := time.Now()

	if e.apiToken != "" {
		evts, err := e.fetchAPI(ctx, req)
		if err == nil {
			return successResult(PlatformEventbrite, "api", evts, start)
		}
		logging.Warn().Err(err).
			Str("platform", PlatformEventbrite).
			Msg("API fetch failed, falling back to scraping")
	}

	evts, err := e.scrape(ctx, req)
	if err != nil {
		return failureResult(PlatformEventbrite, "scrape", err, start)
	}
	return successResult(PlatformEventbrite, "scrape", evts, start)
}

// eventbriteSearchResponse is the subset of the search payload we read.
type eventbriteSearchResponse struct {
	Events []eventbriteEvent `json:"events"`
}

type eventbriteEvent struct {
	ID   string `json:"id"`
	Name struct {
		Text string `json:"text"`
	} `json:"name"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
	URL   string `json:"url"`
	Start struct {
		UTC string `json:"utc"`
	} `json:"start"`
	Logo struct {
		URL string `json:"url"`
	} `json:"logo"`
	IsFree bool `json:"is_free"`
	Venue  struct {
		Name    string `json:"name"`
		Address struct {
			City string `json:"city"`
		} `json:"address"`
	} `json:"venue"`
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
}

func (e *Eventbrite) fetchAPI(ctx context.Context, req events.FetchRequest) ([]events.CanonicalEvent, error) {
	apiReq := newAPIRequest("/events/search/").
		addParam("location.address", req.City).
		addParam("expand", "venue,category").
		addParam("sort_by", "date").
		addIntParam("page_size", req.Limit)
	if req.Category != "" {
		apiReq.addParam("q", string(req.Category))
	}

	resp, err := executeAPIRequest[eventbriteSearchResponse](ctx, &e.scraper, apiReq, e.apiBaseURL, e.apiToken)
	if err != nil {
		return nil, fmt.Errorf("eventbrite api: %w", err)
	}

	out := make([]events.CanonicalEvent, 0, len(resp.Events))
	for i := range resp.Events {
		if len(out) >= req.Limit {
			break
		}
		ev, ok := e.convertAPIEvent(&resp.Events[i], req)
		if !ok {
			continue
		}
		if !withinWindow(&ev, req) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (e *Eventbrite) convertAPIEvent(src *eventbriteEvent, req events.FetchRequest) (events.CanonicalEvent, bool) {
	if src.Name.Text == "" {
		metrics.RecordsSkipped.WithLabelValues(PlatformEventbrite, "missing_title").Inc()
		return events.CanonicalEvent{}, false
	}

	date, estimated := canonical.ParseEventDate(src.Start.UTC, timeNow())
	if estimated {
		metrics.EventsDateEstimated.WithLabelValues(PlatformEventbrite).Inc()
	}

	city := src.Venue.Address.City
	if city == "" {
		city = req.City
	}
	price := ""
	if src.IsFree {
		price = "Free"
	}

	// Prefer the API id for identity; listing URLs carry campaign noise.
	idSource := src.ID
	if idSource == "" {
		idSource = src.URL
	}

	raw, _ := json.Marshal(src)
	ev := events.CanonicalEvent{
		ExternalID:     canonical.ExternalID(PlatformEventbrite, idSource, src.Name.Text, date, city),
		Title:          src.Name.Text,
		Description:    src.Description.Text,
		Category:       canonical.MapCategory(src.Category.Name),
		Venue:          src.Venue.Name,
		City:           city,
		EventDate:      date,
		ImageURL:       src.Logo.URL,
		TicketURL:      src.URL,
		Price:          price,
		SourcePlatform: PlatformEventbrite,
		DateEstimated:  estimated,
		RawData:        raw,
	}
	canonical.Normalize(&ev)
	return ev, true
}

// eventbriteStrategies covers the listing markup variants observed on the
// public city pages.
var eventbriteStrategies = []selectorStrategy{
	{
		container: "div.discover-search-desktop-card",
		title:     "h3",
		date:      "p.event-card__date",
		venue:     "p.event-card__venue",
		image:     "img.event-card-image",
		price:     "p.event-card__price",
		link:      "a.event-card-link",
	},
	{
		container: "article.eds-event-card",
		title:     "div.eds-event-card__formatted-name--is-clamped",
		date:      "div.eds-event-card-content__sub-title",
		venue:     "div.card-text--truncated__one",
		image:     "img.eds-event-card-content__image",
		link:      "a.eds-event-card-content__action-link",
	},
	{
		container: "li [data-testid=search-event]",
		title:     "h2",
		date:      "p:nth-of-type(1)",
		venue:     "p:nth-of-type(2)",
		image:     "img",
		link:      "a",
	},
}

func (e *Eventbrite) scrape(ctx context.Context, req events.FetchRequest) ([]events.CanonicalEvent, error) {
	pageURL := fmt.Sprintf("%s/d/india--%s/events/", e.baseURL, citySlug(req.City))
	if req.Category != "" {
		pageURL = fmt.Sprintf("%s/d/india--%s/%s--events/", e.baseURL, citySlug(req.City), req.Category)
	}
	return e.scrapeListing(ctx, pageURL, eventbriteStrategies, req)
}
