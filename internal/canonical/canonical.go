// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package canonical assigns stable identities to events and applies the one
// normalization policy shared by every source adapter: category mapping,
// field defaulting, and date resolution.
//
// ExternalID is deliberately a pure function of stable listing fields so
// that re-ingesting the same listing in a later cycle produces the same
// identity and can be treated as an update rather than a new record.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
)

// ExternalID derives the deterministic event identity from stable fields.
// urlOrAPIID should be the API-provided id when the source exposes one, the
// canonical listing URL otherwise. The date contributes only its calendar
// day so that minor time corrections on the source side do not mint a new
// identity.
func ExternalID(platform, urlOrAPIID, title string, date time.Time, city string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(platform)),
		NormalizeURL(urlOrAPIID),
		normalizeText(title),
		date.UTC().Format("2006-01-02"),
		normalizeText(city),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return strings.ToLower(strings.TrimSpace(platform)) + "-" + hex.EncodeToString(sum[:])[:32]
}

// NormalizeURL reduces a listing URL to its canonical form: lowercase
// scheme/host, no query string, no fragment, no trailing slash. Tracking
// parameters would otherwise mint a fresh identity per ad campaign.
// Non-URL inputs (API ids) are returned trimmed and lowercased.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// normalizeText lowercases, trims, and collapses interior whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// categoryLookup maps source taxonomy substrings onto the internal
// vocabulary. Matching is first-hit on the ordered list below; more
// specific terms come before generic ones.
var categoryLookup = []struct {
	substr   string
	category events.Category
}{
	{"music", events.CategoryMusic},
	{"concert", events.CategoryMusic},
	{"gig", events.CategoryMusic},
	{"dj", events.CategoryMusic},
	{"tech", events.CategoryTech},
	{"software", events.CategoryTech},
	{"developer", events.CategoryTech},
	{"startup", events.CategoryBusiness},
	{"business", events.CategoryBusiness},
	{"network", events.CategoryBusiness},
	{"conference", events.CategoryBusiness},
	{"art", events.CategoryArts},
	{"theatre", events.CategoryArts},
	{"theater", events.CategoryArts},
	{"comedy", events.CategoryArts},
	{"film", events.CategoryArts},
	{"dance", events.CategoryArts},
	{"sport", events.CategorySports},
	{"cricket", events.CategorySports},
	{"football", events.CategorySports},
	{"marathon", events.CategorySports},
	{"run", events.CategorySports},
	{"food", events.CategoryFood},
	{"drink", events.CategoryFood},
	{"dining", events.CategoryFood},
	{"culinary", events.CategoryFood},
	{"health", events.CategoryHealth},
	{"wellness", events.CategoryHealth},
	{"yoga", events.CategoryHealth},
	{"fitness", events.CategoryHealth},
	{"education", events.CategoryEducation},
	{"workshop", events.CategoryEducation},
	{"course", events.CategoryEducation},
	{"seminar", events.CategoryEducation},
	{"lecture", events.CategoryEducation},
}

// MapCategory maps a source-specific category string into the internal
// vocabulary via substring matching, defaulting to the generic community
// tag when nothing matches.
func MapCategory(source string) events.Category {
	s := strings.ToLower(source)
	for _, entry := range categoryLookup {
		if strings.Contains(s, entry.substr) {
			return entry.category
		}
	}
	return events.CategoryCommunity
}

// Normalize applies defaults to an adapter-built event in place. Identity
// fields are never touched here, only gaps are filled.
func Normalize(e *events.CanonicalEvent) {
	e.Title = strings.TrimSpace(e.Title)
	e.City = strings.TrimSpace(e.City)
	e.Venue = strings.TrimSpace(e.Venue)
	if e.Venue == "" {
		e.Venue = events.PlaceholderVenue
	}
	if e.Category == "" {
		e.Category = events.CategoryCommunity
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
