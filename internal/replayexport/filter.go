// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package replayexport

import (
	"strings"

	"github.com/osusync/bridge/internal/models"
)

// Filter selects which replays an export run sees. The zero value
// matches every replay; unset fields are unbounded. It follows the same
// builder-and-IsEmpty shape as the beatmap filter's Criteria.
type Filter struct {
	// MinGrade is an inclusive threshold: GradeA admits A, S and SS.
	MinGrade *models.Grade
	// Modes restricts to the given game modes; empty admits all.
	Modes map[models.GameMode]bool
	// AfterUnix/BeforeUnix bound the score timestamp, inclusive.
	AfterUnix  *int64
	BeforeUnix *int64
	// PlayerName is a case-insensitive substring match.
	PlayerName string
	// BeatmapSearch is a case-insensitive substring match against the
	// beatmap title or artist, when either is known.
	BeatmapSearch string
}

// WithMinGrade returns a copy of f with MinGrade set.
func (f Filter) WithMinGrade(g models.Grade) Filter { f.MinGrade = &g; return f }

// WithModes returns a copy of f restricted to the given modes.
func (f Filter) WithModes(modes ...models.GameMode) Filter {
	f.Modes = make(map[models.GameMode]bool, len(modes))
	for _, m := range modes {
		f.Modes[m] = true
	}
	return f
}

// WithAfterUnix returns a copy of f admitting only replays at or after ts.
func (f Filter) WithAfterUnix(ts int64) Filter { f.AfterUnix = &ts; return f }

// WithBeforeUnix returns a copy of f admitting only replays at or before ts.
func (f Filter) WithBeforeUnix(ts int64) Filter { f.BeforeUnix = &ts; return f }

// WithDateRange returns a copy of f bounded to [after, before].
func (f Filter) WithDateRange(after, before int64) Filter {
	f.AfterUnix = &after
	f.BeforeUnix = &before
	return f
}

// WithPlayerName returns a copy of f with PlayerName set.
func (f Filter) WithPlayerName(name string) Filter { f.PlayerName = name; return f }

// WithBeatmapSearch returns a copy of f with BeatmapSearch set.
func (f Filter) WithBeatmapSearch(q string) Filter { f.BeatmapSearch = q; return f }

// IsEmpty reports whether f carries no criteria at all, letting callers
// skip filtering work entirely.
func (f Filter) IsEmpty() bool {
	return f.MinGrade == nil && len(f.Modes) == 0 &&
		f.AfterUnix == nil && f.BeforeUnix == nil &&
		f.PlayerName == "" && f.BeatmapSearch == ""
}

// Matches reports whether one replay satisfies every criterion in f.
func (f Filter) Matches(r models.ReplayDescriptor) bool {
	if f.MinGrade != nil && !r.Grade.MeetsThreshold(*f.MinGrade) {
		return false
	}
	if len(f.Modes) > 0 && !f.Modes[r.Mode] {
		return false
	}
	if f.AfterUnix != nil && r.TimestampUnix < *f.AfterUnix {
		return false
	}
	if f.BeforeUnix != nil && r.TimestampUnix > *f.BeforeUnix {
		return false
	}
	if f.PlayerName != "" &&
		!strings.Contains(strings.ToLower(r.Player), strings.ToLower(f.PlayerName)) {
		return false
	}
	if f.BeatmapSearch != "" {
		q := strings.ToLower(f.BeatmapSearch)
		titleHit := r.BeatmapTitle != nil && strings.Contains(strings.ToLower(*r.BeatmapTitle), q)
		artistHit := r.BeatmapArtist != nil && strings.Contains(strings.ToLower(*r.BeatmapArtist), q)
		if !titleHit && !artistHit {
			return false
		}
	}
	return true
}

// Apply returns the replays in rs that match f, preserving order. An
// empty filter returns rs unchanged.
func (f Filter) Apply(rs []models.ReplayDescriptor) []models.ReplayDescriptor {
	if f.IsEmpty() {
		return rs
	}
	out := make([]models.ReplayDescriptor, 0, len(rs))
	for _, r := range rs {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
