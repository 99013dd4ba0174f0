// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express. Returns a single error listing every violation.
func (c *Config) Validate() error {
	var problems []string

	if err := getValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
			}
		} else {
			return fmt.Errorf("config validation: %w", err)
		}
	}

	if c.Database.Enabled && c.Database.URL == "" {
		problems = append(problems, "database.url: required when database.enabled is true")
	}
	if c.Ingest.Interval > 0 && len(c.Ingest.Cities) == 0 {
		problems = append(problems, "ingest.cities: required when a schedule interval is set")
	}
	for name, src := range map[string]SourceConfig{
		"eventbrite": c.Sources.Eventbrite,
		"meetup":     c.Sources.Meetup,
		"allevents":  c.Sources.AllEvents,
		"district":   c.Sources.District,
		"bookmyshow": c.Sources.BookMyShow,
	} {
		if src.Enabled && src.BaseURL == "" {
			problems = append(problems, fmt.Sprintf("sources.%s.base_url: required when enabled", name))
		}
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

// EnabledSources returns the names of all enabled platforms, mainly for
// startup logging.
func (c *Config) EnabledSources() []string {
	var out []string
	for _, s := range []struct {
		name string
		cfg  SourceConfig
	}{
		{"eventbrite", c.Sources.Eventbrite},
		{"meetup", c.Sources.Meetup},
		{"allevents", c.Sources.AllEvents},
		{"district", c.Sources.District},
		{"bookmyshow", c.Sources.BookMyShow},
	} {
		if s.cfg.Enabled {
			out = append(out, s.name)
		}
	}
	return out
}
