// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// ReplayDescriptor is the metadata for one recorded score, potentially
// backed by a replay file on disk.
type ReplayDescriptor struct {
	BeatmapMD5  string
	Player      string
	ReplayMD5   *string
	Score       uint64
	MaxCombo    uint32
	Count300    uint32
	Count100    uint32
	Count50     uint32
	CountMiss   uint32
	// TimestampUnix is seconds since the Unix epoch, converted from the
	// legacy format's 64-bit ticks-since-a-fixed-epoch timestamp.
	TimestampUnix int64
	Mode          GameMode
	Grade         Grade
	HasReplayFile bool
	ReplayPath    *string

	// Display-only fields, carried through for UI convenience.
	BeatmapTitle   *string
	BeatmapArtist  *string
	BeatmapVersion *string
}

// Accuracy computes hit-count weighted accuracy for osu!-mode scores. Other
// modes use mode-specific weightings the bridge does not implement; callers
// should only use this for display purposes, never for grade derivation
// across modes other than osu!.
func (r ReplayDescriptor) Accuracy() float64 {
	total := r.Count300 + r.Count100 + r.Count50 + r.CountMiss
	if total == 0 {
		return 0
	}
	weighted := float64(r.Count300)*300 + float64(r.Count100)*100 + float64(r.Count50)*50
	return weighted / (float64(total) * 300)
}
