// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/theglocal/ingest.yaml",
	"/etc/theglocal/ingest.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8085,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Enabled:  false, // in-memory catalog by default
			URL:      "",
			MaxConns: 8,
		},
		Sources: SourcesConfig{
			Eventbrite: SourceConfig{
				Enabled:    true,
				BaseURL:    "https://www.eventbrite.com",
				APIBaseURL: "https://www.eventbriteapi.com/v3",
				APIKey:     "", // empty = scrape-only
			},
			Meetup: SourceConfig{
				Enabled: true,
				BaseURL: "https://www.meetup.com",
			},
			AllEvents: SourceConfig{
				Enabled: true,
				BaseURL: "https://allevents.in",
			},
			District: SourceConfig{
				Enabled: true,
				BaseURL: "https://www.district.in",
			},
			BookMyShow: SourceConfig{
				Enabled: true,
				BaseURL: "https://in.bookmyshow.com",
			},
		},
		Ingest: IngestConfig{
			Cities:   []string{"mumbai"},
			Interval: 6 * time.Hour,
			Limit:    20,
		},
		Dedup: DedupConfig{
			TitleSimilarity: 0.85,
			DateSkew:        2 * time.Hour,
		},
		Scraping: ScrapingConfig{
			UserAgent: "", // falls back to robots.DefaultUserAgent
			Spacing:   2 * time.Second,
			Workers:   1,
			RobotsTTL: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds configuration with layered precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// INGEST_CITIES -> ingest.cities, SOURCES_MEETUP_BASE_URL -> sources.meetup.base_url
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated when supplied via env.
var sliceConfigPaths = []string{
	"ingest.cities",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf paths.
//
// Examples:
//   - SERVER_PORT                 -> server.port
//   - DATABASE_URL                -> database.url
//   - SOURCES_EVENTBRITE_API_KEY  -> sources.eventbrite.api_key
//   - INGEST_CITIES               -> ingest.cities
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	prefixes := []string{"server", "database", "ingest", "dedup", "scraping", "logging"}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p+"_") {
			return p + "." + strings.TrimPrefix(key, p+"_")
		}
	}

	// Source vars carry a platform segment: SOURCES_<PLATFORM>_<FIELD>
	if strings.HasPrefix(key, "sources_") {
		rest := strings.TrimPrefix(key, "sources_")
		for _, platform := range []string{"eventbrite", "meetup", "allevents", "district", "bookmyshow"} {
			if strings.HasPrefix(rest, platform+"_") {
				return "sources." + platform + "." + strings.TrimPrefix(rest, platform+"_")
			}
		}
	}

	// Unknown vars map to no config path.
	return ""
}
