// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package events defines the shared data model for the event ingestion
// pipeline: the canonical event record produced by source adapters, the
// fetch request/result envelopes exchanged with them, and the per-platform
// health records reported by the monitor.
//
// Everything in this package is plain data. Behaviour lives in the packages
// that produce and consume these types (internal/sources, internal/canonical,
// internal/dedup, internal/health, internal/ingest).
package events
