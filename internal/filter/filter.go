// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter evaluates a predicate language over a scanned beatmap
// library and aggregates library-wide statistics. A Criteria value carries
// an IsEmpty check so the planner can skip filtering work entirely when no
// criteria are set.
package filter

import (
	"strings"

	"github.com/osusync/bridge/internal/models"
)

// Criteria is a filter configuration. Unset numeric bounds are unbounded;
// unset sets/strings match everything.
type Criteria struct {
	StarRatingMin *float64
	StarRatingMax *float64
	Modes         map[models.GameMode]bool
	RankStatuses  map[models.RankedStatus]bool
	SearchQuery   string
	ArtistFilter  string
	MapperFilter  string
}

// WithStarRatingMin returns a copy of c with StarRatingMin set.
func (c Criteria) WithStarRatingMin(v float64) Criteria { c.StarRatingMin = &v; return c }

// WithStarRatingMax returns a copy of c with StarRatingMax set.
func (c Criteria) WithStarRatingMax(v float64) Criteria { c.StarRatingMax = &v; return c }

// WithModes returns a copy of c restricted to the given modes.
func (c Criteria) WithModes(modes ...models.GameMode) Criteria {
	c.Modes = make(map[models.GameMode]bool, len(modes))
	for _, m := range modes {
		c.Modes[m] = true
	}
	return c
}

// WithRankStatuses returns a copy of c restricted to the given statuses.
func (c Criteria) WithRankStatuses(statuses ...models.RankedStatus) Criteria {
	c.RankStatuses = make(map[models.RankedStatus]bool, len(statuses))
	for _, s := range statuses {
		c.RankStatuses[s] = true
	}
	return c
}

// WithSearchQuery returns a copy of c with SearchQuery set.
func (c Criteria) WithSearchQuery(q string) Criteria { c.SearchQuery = q; return c }

// WithArtistFilter returns a copy of c with ArtistFilter set.
func (c Criteria) WithArtistFilter(a string) Criteria { c.ArtistFilter = a; return c }

// WithMapperFilter returns a copy of c with MapperFilter set.
func (c Criteria) WithMapperFilter(m string) Criteria { c.MapperFilter = m; return c }

// IsEmpty reports whether c carries no criteria at all, letting callers
// skip filtering work entirely.
func (c Criteria) IsEmpty() bool {
	return c.StarRatingMin == nil && c.StarRatingMax == nil &&
		len(c.Modes) == 0 && len(c.RankStatuses) == 0 &&
		c.SearchQuery == "" && c.ArtistFilter == "" && c.MapperFilter == ""
}

// matchesDifficulty reports whether a single difficulty satisfies every
// criterion in c.
func (c Criteria) matchesDifficulty(d models.Difficulty) bool {
	if c.StarRatingMin != nil {
		if d.StarRating == nil || *d.StarRating < *c.StarRatingMin {
			return false
		}
	}
	if c.StarRatingMax != nil {
		if d.StarRating == nil || *d.StarRating > *c.StarRatingMax {
			return false
		}
	}
	if len(c.Modes) > 0 && !c.Modes[d.Mode] {
		return false
	}
	if len(c.RankStatuses) > 0 {
		if d.Status == nil || !c.RankStatuses[*d.Status] {
			return false
		}
	}
	if c.ArtistFilter != "" && !containsFold(d.Metadata.Artist, c.ArtistFilter) {
		return false
	}
	if c.MapperFilter != "" && !containsFold(d.Metadata.Creator, c.MapperFilter) {
		return false
	}
	if c.SearchQuery != "" {
		if !containsFold(d.Metadata.Title, c.SearchQuery) &&
			!containsFold(d.Metadata.Artist, c.SearchQuery) &&
			!tagsContainFold(d.Metadata.Tags, c.SearchQuery) {
			return false
		}
	}
	return true
}

// Matches reports whether set passes c: at least one of its difficulties
// satisfies all criteria. Empty criteria match everything.
func (c Criteria) Matches(set models.BeatmapSet) bool {
	if c.IsEmpty() {
		return true
	}
	for _, d := range set.Difficulties {
		if c.matchesDifficulty(d) {
			return true
		}
	}
	return false
}

// Filter returns the subset of sets that pass c, preserving order.
func Filter(sets []models.BeatmapSet, c Criteria) []models.BeatmapSet {
	if c.IsEmpty() {
		return sets
	}
	out := make([]models.BeatmapSet, 0, len(sets))
	for _, s := range sets {
		if c.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of sets in sets that pass c, without
// allocating a filtered slice.
func Count(sets []models.BeatmapSet, c Criteria) int {
	if c.IsEmpty() {
		return len(sets)
	}
	n := 0
	for _, s := range sets {
		if c.Matches(s) {
			n++
		}
	}
	return n
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func tagsContainFold(tags []string, needle string) bool {
	for _, t := range tags {
		if containsFold(t, needle) {
			return true
		}
	}
	return false
}
