// TheGlocal - Community Platform Event Discovery
// Copyright 2026 TheGlocal (ydvvpn197-netizen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ydvvpn197-netizen/theglocal-phase2-sub005

// Package dedup groups near-duplicate events and selects one representative
// per group by completeness.
//
// The engine is a pure batch computation: it takes a snapshot of events
// (one ingestion cycle's merged output, or the whole persisted catalog for
// a cleanup pass), holds no state between runs, and is safe to run
// concurrently with ingestion as long as the snapshot is consistent.
package dedup

import (
	"sort"
	"strings"
	"time"

	"github.com/agext/levenshtein"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/events"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/logging"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub005/internal/metrics"
)

// Config tunes the similarity judgment.
type Config struct {
	// TitleSimilarity is the fuzzy-match threshold in [0,1]. Default 0.85.
	TitleSimilarity float64

	// DateSkew is the tolerance when comparing event dates. Default 2h.
	DateSkew time.Duration
}

func (c *Config) applyDefaults() {
	if c.TitleSimilarity <= 0 {
		c.TitleSimilarity = 0.85
	}
	if c.DateSkew <= 0 {
		c.DateSkew = 2 * time.Hour
	}
}

// Group is one set of events judged to describe the same real-world event.
type Group struct {
	// Kept is the external id of the retained representative.
	Kept string `json:"kept"`

	// Removed lists the external ids marked for deletion.
	Removed []string `json:"removed"`

	// Score is the representative's completeness score.
	Score int `json:"score"`
}

// Report is the outcome of one dedup pass.
type Report struct {
	// Retained preserves input order minus the losers of each group.
	Retained []events.CanonicalEvent `json:"retained"`

	// Removed holds the full records marked for deletion; callers delete
	// the persisted ones (those with a storage id) from the catalog.
	Removed []events.CanonicalEvent `json:"removed"`

	Groups   []Group `json:"groups"`
	Examined int     `json:"examined"`
}

// Engine runs dedup passes. Stateless and safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg}
}

// sourceTrust weights platforms by how reliable their structured data has
// been in practice. API-backed sources rank above scrape-only ones.
var sourceTrust = map[string]int{
	"eventbrite": 10,
	"meetup":     8,
	"allevents":  6,
	"district":   6,
	"bookmyshow": 5,
}

// CompletenessScore rates how complete one event record is, 0 to 100.
// Higher scores win their duplicate group. Components: description, image,
// a specific venue, a stable (non-fallback) identity, a parsed (non-
// estimated) date, ticket URL, price, and source trust.
func CompletenessScore(e *events.CanonicalEvent) int {
	score := 0
	if strings.TrimSpace(e.Description) != "" {
		score += 20
	}
	if e.ImageURL != "" {
		score += 15
	}
	if e.HasSpecificVenue() {
		score += 15
	}
	if !e.IdentityFallback {
		score += 15
	}
	if !e.DateEstimated {
		score += 10
	}
	if e.TicketURL != "" {
		score += 10
	}
	if e.Price != "" {
		score += 5
	}
	score += sourceTrust[e.SourcePlatform]
	return score
}

// Run executes one dedup pass over batch. The input is not mutated.
func (eng *Engine) Run(batch []events.CanonicalEvent) Report {
	start := time.Now()
	report := Report{Examined: len(batch)}
	if len(batch) < 2 {
		report.Retained = append(report.Retained, batch...)
		return report
	}

	// Blocking key: city + calendar day. Pairwise comparison only happens
	// inside a block, keeping large batches tractable.
	blocks := make(map[string][]int)
	for i := range batch {
		key := blockKey(&batch[i])
		blocks[key] = append(blocks[key], i)
	}

	uf := newUnionFind(len(batch))
	for _, idxs := range blocks {
		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				if eng.similar(&batch[idxs[a]], &batch[idxs[b]]) {
					uf.union(idxs[a], idxs[b])
				}
			}
		}
	}

	// Collect transitive-closed groups in input order.
	members := make(map[int][]int)
	for i := range batch {
		root := uf.find(i)
		members[root] = append(members[root], i)
	}

	removed := make(map[int]bool)
	for i := range batch {
		if uf.find(i) != i {
			continue
		}
		group := members[i]
		if len(group) < 2 {
			continue
		}
		winner := eng.selectWinner(batch, group)
		g := Group{
			Kept:  batch[winner].ExternalID,
			Score: CompletenessScore(&batch[winner]),
		}
		for _, idx := range group {
			if idx == winner {
				continue
			}
			removed[idx] = true
			g.Removed = append(g.Removed, batch[idx].ExternalID)
		}
		sort.Strings(g.Removed)
		report.Groups = append(report.Groups, g)
	}

	for i := range batch {
		if removed[i] {
			report.Removed = append(report.Removed, batch[i])
		} else {
			report.Retained = append(report.Retained, batch[i])
		}
	}

	metrics.DedupGroupsFound.Add(float64(len(report.Groups)))
	metrics.DedupEventsRemoved.Add(float64(len(report.Removed)))
	metrics.DedupBatchDuration.Observe(time.Since(start).Seconds())
	if len(report.Groups) > 0 {
		logging.Info().
			Int("examined", report.Examined).
			Int("groups", len(report.Groups)).
			Int("removed", len(report.Removed)).
			Msg("Deduplication pass complete")
	}
	return report
}

func blockKey(e *events.CanonicalEvent) string {
	return normalizeText(e.City) + "|" + e.EventDate.UTC().Format("2006-01-02")
}

// similar is the pairwise duplicate judgment inside one block: fuzzy title
// match, date proximity within the skew tolerance, and venue agreement
// (a placeholder venue agrees with anything).
func (eng *Engine) similar(a, b *events.CanonicalEvent) bool {
	if titleSimilarity(a.Title, b.Title) < eng.cfg.TitleSimilarity {
		return false
	}
	diff := a.EventDate.Sub(b.EventDate)
	if diff < 0 {
		diff = -diff
	}
	if diff > eng.cfg.DateSkew {
		return false
	}
	if a.HasSpecificVenue() && b.HasSpecificVenue() &&
		normalizeText(a.Venue) != normalizeText(b.Venue) {
		return false
	}
	return true
}

// titleSimilarity returns a [0,1] fuzzy similarity over normalized titles.
func titleSimilarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, levenshtein.NewParams())
}

// normalizeText lowercases, strips punctuation, and collapses whitespace so
// "Summer Jazz Night!" and "summer jazz night" compare equal.
func normalizeText(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			sb.WriteRune(r)
		case r > 127:
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// selectWinner picks the group member with the highest completeness score,
// breaking ties on earliest CreatedAt then external id.
func (eng *Engine) selectWinner(batch []events.CanonicalEvent, group []int) int {
	winner := group[0]
	winScore := CompletenessScore(&batch[winner])
	for _, idx := range group[1:] {
		score := CompletenessScore(&batch[idx])
		switch {
		case score > winScore:
			winner, winScore = idx, score
		case score == winScore:
			w, c := &batch[winner], &batch[idx]
			if c.CreatedAt.Before(w.CreatedAt) ||
				(c.CreatedAt.Equal(w.CreatedAt) && c.ExternalID < w.ExternalID) {
				winner = idx
			}
		}
	}
	return winner
}

// unionFind is a plain disjoint-set with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	// Anchor groups at the lowest index so winners resolve
	// deterministically regardless of comparison order.
	if ra < rb {
		uf.parent[rb] = ra
	} else {
		uf.parent[ra] = rb
	}
}
