// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

// apiRequest accumulates query parameters for a structured API call.
type apiRequest struct {
	path   string
	params url.Values
}

func newAPIRequest(path string) *apiRequest {
	return &apiRequest{path: path, params: url.Values{}}
}

// addParam sets a parameter, skipping empty values.
func (r *apiRequest) addParam(key, value string) *apiRequest {
	if value != "" {
		r.params.Set(key, value)
	}
	return r
}

// addIntParam sets an integer parameter when positive.
func (r *apiRequest) addIntParam(key string, value int) *apiRequest {
	if value > 0 {
		r.params.Set(key, fmt.Sprintf("%d", value))
	}
	return r
}

func (r *apiRequest) buildURL(baseURL string) string {
	if len(r.params) == 0 {
		return baseURL + r.path
	}
	return fmt.Sprintf("%s%s?%s", baseURL, r.path, r.params.Encode())
}

// executeAPIRequest runs a structured API call through the source's rate
// limiter and decodes the JSON body into result. Non-2xx statuses and
// malformed bodies come back as errors so the adapter can fall through to
// its scraping path.
func executeAPIRequest[T any](ctx context.Context, s *scraper, req *apiRequest, baseURL, bearerToken string) (*T, error) {
	reqURL := req.buildURL(baseURL)

	var result T
	err := s.deps.Queue.Do(ctx, s.platform, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", s.deps.UserAgent)
		if bearerToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+bearerToken)
		}

		resp, err := s.deps.Client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
