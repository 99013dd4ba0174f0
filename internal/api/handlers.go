// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/health"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/ingest"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/storage"
)

// Handler serves the pipeline's HTTP operations.
type Handler struct {
	orch    *ingest.Orchestrator
	monitor *health.Monitor
	store   storage.EventStore
}

// NewHandler creates a Handler.
func NewHandler(orch *ingest.Orchestrator, monitor *health.Monitor, store storage.EventStore) *Handler {
	return &Handler{orch: orch, monitor: monitor, store: store}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness: the catalog must be reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "event catalog unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ingestRequest is the POST /ingest body.
type ingestRequest struct {
	City     string     `json:"city"`
	Category string     `json:"category,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

// Ingest triggers one synchronous ingestion pass for a city.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.City == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	metrics.IngestPassesTotal.WithLabelValues("api").Inc()
	result, err := h.orch.IngestCity(r.Context(), events.FetchRequest{
		City:     req.City,
		Category: events.Category(req.Category),
		Limit:    req.Limit,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
	if err != nil {
		logging.Error().Err(err).Str("city", req.City).Msg("Ingestion pass failed")
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListEvents serves the persisted catalog with optional filters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ListFilter{
		City:     q.Get("city"),
		Category: events.Category(q.Get("category")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}
	for param, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if v := q.Get(param); v != "" {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+param+" timestamp, want RFC3339")
				return
			}
			*dst = &ts
		}
	}

	evts, err := h.store.List(r.Context(), filter)
	if err != nil {
		logging.Error().Err(err).Msg("Event listing failed")
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events": evts,
		"count":  len(evts),
	})
}

// GetEvent serves one event by external id.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")
	e, err := h.store.GetByExternalID(r.Context(), externalID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case err != nil:
		logging.Error().Err(err).Str("external_id", externalID).Msg("Event lookup failed")
		writeError(w, http.StatusInternalServerError, "lookup failed")
	default:
		writeJSON(w, http.StatusOK, e)
	}
}

// PlatformHealth runs a health-check pass over every adapter.
func (h *Handler) PlatformHealth(w http.ResponseWriter, r *http.Request) {
	report := h.monitor.Check(r.Context())
	status := http.StatusOK
	if report.Overall == events.StatusDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// DedupCleanup runs a full-catalog dedup pass.
func (h *Handler) DedupCleanup(w http.ResponseWriter, r *http.Request) {
	res, err := h.orch.Cleanup(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Catalog cleanup failed")
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
