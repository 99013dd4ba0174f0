// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

const eventbriteAPIBody = `{
  "events": [
    {
      "id": "901234",
      "name": {"text": "Bandra Jazz Evening"},
      "description": {"text": "Live jazz with local artists."},
      "url": "https://www.eventbrite.com/e/bandra-jazz-evening-tickets-901234",
      "start": {"utc": "2026-09-12T18:30:00Z"},
      "logo": {"url": "https://img.evbuc.com/jazz.png"},
      "is_free": true,
      "venue": {"name": "The Quarter", "address": {"city": "Mumbai"}},
      "category": {"name": "Music"}
    },
    {
      "id": "901235",
      "name": {"text": "Cloud Native Meetup"},
      "url": "https://www.eventbrite.com/e/cloud-native-901235",
      "start": {"utc": "2026-09-13T10:00:00Z"},
      "venue": {"address": {}},
      "category": {"name": "Science & Technology"}
    },
    {
      "id": "901236",
      "name": {"text": ""},
      "start": {"utc": "2026-09-14T10:00:00Z"}
    }
  ]
}`

func TestEventbriteAPIFetch(t *testing.T) {
	var gotAuth, gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte(allowAllRobots))
			return
		}
		if r.URL.Path != "/events/search/" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		gotAuth.Store(r.Header.Get("Authorization"))
		gotQuery.Store(r.URL.Query().Get("location.address"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(eventbriteAPIBody))
	}))
	t.Cleanup(srv.Close)

	adapter := NewEventbrite(srv.URL, srv.URL, "tok-123", newTestDeps(t, srv))
	res := adapter.Fetch(context.Background(), events.FetchRequest{City: "mumbai", Limit: 10})
	if !res.Success {
		t.Fatalf("expected success, got error: %s", res.Error)
	}
	if auth := gotAuth.Load(); auth != "Bearer tok-123" {
		t.Errorf("Authorization = %v", auth)
	}
	if city := gotQuery.Load(); city != "mumbai" {
		t.Errorf("location.address = %v", city)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected 2 events (titleless skipped), got %d", len(res.Events))
	}

	jazz := res.Events[0]
	if jazz.Title != "Bandra Jazz Evening" {
		t.Errorf("title = %q", jazz.Title)
	}
	if jazz.Category != events.CategoryMusic {
		t.Errorf("category = %q", jazz.Category)
	}
	if jazz.Price != "Free" {
		t.Errorf("price = %q", jazz.Price)
	}
	if jazz.City != "Mumbai" {
		t.Errorf("city should come from the venue address, got %q", jazz.City)
	}
	if jazz.DateEstimated {
		t.Error("ISO start time should not be flagged as estimated")
	}
	if !strings.HasPrefix(jazz.ExternalID, PlatformEventbrite+"-") {
		t.Errorf("external id %q missing platform prefix", jazz.ExternalID)
	}

	tech := res.Events[1]
	if tech.Category != events.CategoryTech {
		t.Errorf("category = %q", tech.Category)
	}
	if tech.City != "mumbai" {
		t.Errorf("missing venue city should fall back to the request city, got %q", tech.City)
	}
	if tech.Venue != events.PlaceholderVenue {
		t.Errorf("expected placeholder venue, got %q", tech.Venue)
	}
}

func TestEventbriteAPIIdentityStableAcrossRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte(allowAllRobots))
			return
		}
		w.Write([]byte(eventbriteAPIBody))
	}))
	t.Cleanup(srv.Close)

	adapter := NewEventbrite(srv.URL, srv.URL, "tok", newTestDeps(t, srv))
	req := events.FetchRequest{City: "mumbai", Limit: 10}

	first := adapter.Fetch(context.Background(), req)
	second := adapter.Fetch(context.Background(), req)
	if !first.Success || !second.Success {
		t.Fatal("expected both fetches to succeed")
	}
	if first.Events[0].ExternalID != second.Events[0].ExternalID {
		t.Errorf("identity changed across runs: %q vs %q",
			first.Events[0].ExternalID, second.Events[0].ExternalID)
	}
}

func TestEventbriteFallsBackToScrapeOnAPIFailure(t *testing.T) {
	var apiCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/robots.txt":
			w.Write([]byte(allowAllRobots))
		case r.URL.Path == "/events/search/":
			apiCalls.Add(1)
			http.Error(w, "upstream broken", http.StatusBadGateway)
		default:
			// Listing page matching the third eventbrite strategy.
			w.Write([]byte(`<html><body><ul>
<li><div data-testid="search-event">
  <h2>Harbour Art Walk</h2>
  <p>tomorrow</p>
  <p>Gallery Row</p>
  <a href="/e/harbour-art-walk">go</a>
</div></li>
</ul></body></html>`))
		}
	}))
	t.Cleanup(srv.Close)

	adapter := NewEventbrite(srv.URL, srv.URL, "tok", newTestDeps(t, srv))
	res := adapter.Fetch(context.Background(), events.FetchRequest{City: "mumbai", Limit: 5})
	if !res.Success {
		t.Fatalf("expected scrape fallback to succeed, got error: %s", res.Error)
	}
	if apiCalls.Load() != 1 {
		t.Errorf("expected exactly one API attempt, got %d", apiCalls.Load())
	}
	if len(res.Events) != 1 || res.Events[0].Title != "Harbour Art Walk" {
		t.Fatalf("unexpected scraped events: %+v", res.Events)
	}
}

func TestEventbriteWithoutTokenSkipsAPI(t *testing.T) {
	var apiCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/robots.txt":
			w.Write([]byte(allowAllRobots))
		case r.URL.Path == "/events/search/":
			apiCalls.Add(1)
			w.Write([]byte(eventbriteAPIBody))
		default:
			w.Write([]byte(`<html><body><li><div data-testid="search-event">
<h2>Night Bazaar</h2><p>today</p><p>Old Fort</p><a href="/e/night-bazaar">go</a>
</div></li></body></html>`))
		}
	}))
	t.Cleanup(srv.Close)

	adapter := NewEventbrite(srv.URL, srv.URL, "", newTestDeps(t, srv))
	res := adapter.Fetch(context.Background(), events.FetchRequest{City: "mumbai"})
	if !res.Success {
		t.Fatalf("expected scrape to succeed, got error: %s", res.Error)
	}
	if apiCalls.Load() != 0 {
		t.Errorf("API should not be called without a token, got %d calls", apiCalls.Load())
	}
}
