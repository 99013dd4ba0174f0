// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/canonical"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// scraper is the HTML-extraction half shared by every adapter: robots
// consult, rate-limited document fetch, and tolerant multi-selector
// parsing. Adapters embed it and supply their selector strategies.
type scraper struct {
	platform string
	deps     Deps
}

// selectorStrategy is one structural hypothesis about a source's listing
// markup. Strategies are tried in order and the first whose container
// selector yields at least one node wins. External markup changes without
// notice, so no single selector is trusted.
type selectorStrategy struct {
	container string
	title     string
	date      string
	venue     string
	image     string
	price     string
	category  string
	link      string
}

// getDocument fetches url through the politeness and pacing layers and
// parses it. A robots denial aborts with ErrScrapingDisallowed rather than
// degrading the request.
func (s *scraper) getDocument(ctx context.Context, url string) (*goquery.Document, error) {
	allowed, err := s.deps.Robots.CheckAccess(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrScrapingDisallowed, url)
	}

	var doc *goquery.Document
	err = s.deps.Queue.Do(ctx, s.platform, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", s.deps.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := s.deps.Client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// matchRecords applies the ordered strategy list to a parsed document and
// returns the container nodes of the first strategy that matched anything.
func (s *scraper) matchRecords(doc *goquery.Document, strategies []selectorStrategy) (*goquery.Selection, selectorStrategy, error) {
	for _, strat := range strategies {
		sel := doc.Find(strat.container)
		if sel.Length() > 0 {
			return sel, strat, nil
		}
	}
	return nil, selectorStrategy{}, ErrNoSelectorMatched
}

// rawRecord holds the fields pulled out of one listing node before
// canonicalization.
type rawRecord struct {
	title    string
	date     string
	venue    string
	image    string
	price    string
	category string
	link     string
}

// extractRecord pulls the strategy's fields from one container node.
func extractRecord(node *goquery.Selection, strat selectorStrategy, baseURL string) rawRecord {
	rec := rawRecord{
		title:    nodeText(node, strat.title),
		date:     nodeText(node, strat.date),
		venue:    nodeText(node, strat.venue),
		price:    nodeText(node, strat.price),
		category: nodeText(node, strat.category),
		image:    nodeAttr(node, strat.image, "src"),
		link:     nodeAttr(node, strat.link, "href"),
	}
	if rec.image == "" && strat.image != "" {
		rec.image = nodeAttr(node, strat.image, "data-src")
	}
	rec.link = absoluteURL(baseURL, rec.link)
	rec.image = absoluteURL(baseURL, rec.image)
	return rec
}

func nodeText(node *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(node.Find(selector).First().Text())
}

func nodeAttr(node *goquery.Selection, selector, attr string) string {
	if selector == "" {
		return ""
	}
	val, _ := node.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

// absoluteURL resolves href/src values that sources emit host-relative.
func absoluteURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}

// buildEvent canonicalizes one raw record. A missing title makes the
// record unusable and is reported as skipped; everything else defaults.
func (s *scraper) buildEvent(rec rawRecord, req events.FetchRequest, pageURL string) (events.CanonicalEvent, bool) {
	if rec.title == "" {
		metrics.RecordsSkipped.WithLabelValues(s.platform, "missing_title").Inc()
		logging.Debug().Str("platform", s.platform).Msg("skipping record without title")
		return events.CanonicalEvent{}, false
	}

	date, estimated := canonical.ParseEventDate(rec.date, timeNow())
	if estimated {
		metrics.EventsDateEstimated.WithLabelValues(s.platform).Inc()
	}

	// Without a per-event link, identity falls back to the listing page.
	idSource := rec.link
	idFallback := idSource == ""
	if idFallback {
		idSource = pageURL
	}

	e := events.CanonicalEvent{
		ExternalID:       canonical.ExternalID(s.platform, idSource, rec.title, date, req.City),
		Title:            rec.title,
		Category:         canonical.MapCategory(rec.category + " " + string(req.Category)),
		Venue:            rec.venue,
		City:             req.City,
		EventDate:        date,
		ImageURL:         rec.image,
		TicketURL:        rec.link,
		Price:            rec.price,
		SourcePlatform:   s.platform,
		DateEstimated:    estimated,
		IdentityFallback: idFallback,
	}
	canonical.Normalize(&e)
	return e, true
}

// scrapeListing is the complete HTML path: fetch, pick a strategy, extract
// records up to the request limit. Malformed records are skipped and
// logged; they never abort the batch.
func (s *scraper) scrapeListing(ctx context.Context, pageURL string, strategies []selectorStrategy, req events.FetchRequest) ([]events.CanonicalEvent, error) {
	doc, err := s.getDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	nodes, strat, err := s.matchRecords(doc, strategies)
	if err != nil {
		return nil, err
	}

	out := make([]events.CanonicalEvent, 0, req.Limit)
	nodes.EachWithBreak(func(_ int, node *goquery.Selection) bool {
		rec := extractRecord(node, strat, pageURL)
		e, ok := s.buildEvent(rec, req, pageURL)
		if !ok {
			return true // skip, keep going
		}
		if !withinWindow(&e, req) {
			return true
		}
		out = append(out, e)
		return len(out) < req.Limit
	})
	return out, nil
}

// citySlug turns "Navi Mumbai" into "navi-mumbai" for URL building.
func citySlug(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(city)), "-"))
}
