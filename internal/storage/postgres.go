// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
)

// schema creates the event catalog. Identity is (source_platform,
// external_id); re-ingesting the same listing updates in place.
const schema = `
CREATE TABLE IF NOT EXISTS discovered_events (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	external_id     TEXT NOT NULL,
	source_platform TEXT NOT NULL,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL,
	venue           TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL,
	event_date      TIMESTAMPTZ NOT NULL,
	image_url       TEXT NOT NULL DEFAULT '',
	ticket_url      TEXT NOT NULL DEFAULT '',
	price           TEXT NOT NULL DEFAULT '',
	date_estimated  BOOLEAN NOT NULL DEFAULT FALSE,
	identity_fallback BOOLEAN NOT NULL DEFAULT FALSE,
	raw_data        JSONB,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source_platform, external_id)
);
CREATE INDEX IF NOT EXISTS idx_discovered_events_city_date
	ON discovered_events (city, event_date);
CREATE INDEX IF NOT EXISTS idx_discovered_events_external
	ON discovered_events (external_id);
`

// PostgresStore is the pgx-backed EventStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url and ensures the schema exists.
func NewPostgresStore(ctx context.Context, url string, maxConns int32) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logging.Info().Int32("max_conns", cfg.MaxConns).Msg("Connected to Postgres event catalog")
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const upsertSQL = `
INSERT INTO discovered_events
	(external_id, source_platform, title, description, category, venue, city,
	 event_date, image_url, ticket_url, price, date_estimated,
	 identity_fallback, raw_data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (source_platform, external_id) DO UPDATE SET
	title             = EXCLUDED.title,
	description       = EXCLUDED.description,
	category          = EXCLUDED.category,
	venue             = EXCLUDED.venue,
	city              = EXCLUDED.city,
	event_date        = EXCLUDED.event_date,
	image_url         = EXCLUDED.image_url,
	ticket_url        = EXCLUDED.ticket_url,
	price             = EXCLUDED.price,
	date_estimated    = EXCLUDED.date_estimated,
	identity_fallback = EXCLUDED.identity_fallback,
	raw_data          = EXCLUDED.raw_data,
	updated_at        = now()
`

// Upsert implements EventStore using a single batched round trip.
func (s *PostgresStore) Upsert(ctx context.Context, batch []events.CanonicalEvent) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, e := range batch {
		var raw any
		if len(e.RawData) > 0 {
			raw = []byte(e.RawData)
		}
		b.Queue(upsertSQL,
			e.ExternalID, e.SourcePlatform, e.Title, e.Description,
			string(e.Category), e.Venue, e.City, e.EventDate,
			e.ImageURL, e.TicketURL, e.Price, e.DateEstimated,
			e.IdentityFallback, raw)
	}

	br := s.pool.SendBatch(ctx, b)
	defer br.Close()
	for i := range batch {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("upsert event %s: %w", batch[i].ExternalID, err)
		}
	}
	return len(batch), nil
}

const selectColumns = `
	id, external_id, source_platform, title, description, category, venue,
	city, event_date, image_url, ticket_url, price, date_estimated,
	identity_fallback, raw_data, created_at`

// List implements EventStore.
func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]events.CanonicalEvent, error) {
	q := "SELECT" + selectColumns + " FROM discovered_events WHERE 1=1"
	args := []any{}
	n := 0
	add := func(clause string, v any) {
		n++
		args = append(args, v)
		q += fmt.Sprintf(" AND %s $%d", clause, n)
	}
	if f.City != "" {
		add("lower(city) =", strings.ToLower(f.City))
	}
	if f.Category != "" {
		add("category =", string(f.Category))
	}
	if f.From != nil {
		add("event_date >=", *f.From)
	}
	if f.To != nil {
		add("event_date <=", *f.To)
	}
	q += " ORDER BY event_date ASC, external_id ASC"
	if f.Limit > 0 {
		n++
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", n)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetByExternalID implements EventStore.
func (s *PostgresStore) GetByExternalID(ctx context.Context, externalID string) (events.CanonicalEvent, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT"+selectColumns+" FROM discovered_events WHERE external_id = $1", externalID)
	if err != nil {
		return events.CanonicalEvent{}, fmt.Errorf("get event: %w", err)
	}
	defer rows.Close()

	found, err := scanEvents(rows)
	if err != nil {
		return events.CanonicalEvent{}, err
	}
	if len(found) == 0 {
		return events.CanonicalEvent{}, ErrNotFound
	}
	return found[0], nil
}

// All implements EventStore.
func (s *PostgresStore) All(ctx context.Context) ([]events.CanonicalEvent, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT"+selectColumns+" FROM discovered_events ORDER BY event_date ASC, external_id ASC")
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// DeleteByExternalIDs implements EventStore.
func (s *PostgresStore) DeleteByExternalIDs(ctx context.Context, externalIDs []string) (int, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM discovered_events WHERE external_id = ANY($1)", externalIDs)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Ping implements EventStore.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanEvents(rows pgx.Rows) ([]events.CanonicalEvent, error) {
	var out []events.CanonicalEvent
	for rows.Next() {
		var e events.CanonicalEvent
		var raw []byte
		err := rows.Scan(&e.ID, &e.ExternalID, &e.SourcePlatform, &e.Title,
			&e.Description, &e.Category, &e.Venue, &e.City, &e.EventDate,
			&e.ImageURL, &e.TicketURL, &e.Price, &e.DateEstimated,
			&e.IdentityFallback, &raw, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if len(raw) > 0 {
			e.RawData = raw
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return out, nil
}
