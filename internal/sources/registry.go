// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/config"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
)

// Build constructs every enabled adapter from configuration, each wrapped
// in its circuit breaker. The returned order is stable so ingestion
// breakdowns and health reports list platforms consistently.
func Build(cfg config.SourcesConfig, deps Deps) []Fetcher {
	deps.applyDefaults()

	var out []Fetcher
	add := func(enabled bool, f Fetcher) {
		if !enabled {
			logging.Info().Str("platform", f.Platform()).Msg("Source disabled by configuration")
			return
		}
		out = append(out, WithBreaker(f))
	}

	add(cfg.Eventbrite.Enabled, NewEventbrite(cfg.Eventbrite.BaseURL, cfg.Eventbrite.APIBaseURL, cfg.Eventbrite.APIKey, deps))
	add(cfg.Meetup.Enabled, NewMeetup(cfg.Meetup.BaseURL, deps))
	add(cfg.AllEvents.Enabled, NewAllEvents(cfg.AllEvents.BaseURL, deps))
	add(cfg.District.Enabled, NewDistrict(cfg.District.BaseURL, deps))
	add(cfg.BookMyShow.Enabled, NewBookMyShow(cfg.BookMyShow.BaseURL, deps))
	return out
}
