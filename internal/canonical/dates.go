// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package canonical

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PlaceholderOffset is how far into the future a synthetic date lands when a
// source date cannot be parsed. Near-future keeps the record visible in
// discovery listings without pinning it to today.
const PlaceholderOffset = 7 * 24 * time.Hour

// absoluteLayouts are tried in order for fully-specified source dates.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02 January 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// dayMonthRe matches "14 June", "3rd Aug", "21st September" style fragments
// that listing sites emit without a year.
var dayMonthRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\b`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseEventDate resolves a source date string to a concrete instant
// relative to now. Supported forms: ISO/RFC3339 and common absolute
// layouts, the relative terms "today"/"tomorrow", and day-plus-month
// fragments without a year (resolved to the next occurrence).
//
// Unparseable input yields a synthetic near-future placeholder with
// estimated=true rather than an error: partial data is more useful than
// none for discovery use cases. Callers persist the flag so the choice can
// be revisited.
func ParseEventDate(raw string, now time.Time) (parsed time.Time, estimated bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return placeholderDate(now), true
	}

	switch strings.ToLower(s) {
	case "today", "tonight":
		return atEvening(now), false
	case "tomorrow":
		return atEvening(now.Add(24 * time.Hour)), false
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), false
		}
	}

	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthsByPrefix[strings.ToLower(m[2])[:3]]
		candidate := time.Date(now.Year(), month, day, 19, 0, 0, 0, time.UTC)
		// No year given: assume the next occurrence.
		if candidate.Before(now.AddDate(0, 0, -1)) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return candidate, false
	}

	return placeholderDate(now), true
}

// placeholderDate is the synthetic fallback: one week out, at noon UTC.
func placeholderDate(now time.Time) time.Time {
	d := now.UTC().Add(PlaceholderOffset)
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

// atEvening pins relative day terms to 19:00 local-equivalent UTC, a
// sensible default hour for listings that only say "today".
func atEvening(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 19, 0, 0, 0, time.UTC)
}
