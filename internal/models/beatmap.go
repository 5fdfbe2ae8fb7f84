// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"fmt"
	"strings"
)

// FileEntry is one physical file under a beatmap set's folder.
type FileEntry struct {
	Filename string
	Hash     string
	Size     int64
}

// BeatmapSet is a logical group of difficulties of one song. It exclusively
// owns its Difficulties; the duplicate index and filter engine hold only
// index-based references into a scan result, never pointers into this
// struct's fields.
type BeatmapSet struct {
	// OnlineSetID is nil when the set has no online identity, or when its
	// declared id was negative (treated as absent per the bridge's
	// boundary behaviour).
	OnlineSetID *int32
	Difficulties []Difficulty
	Files        []FileEntry
	// FolderName is the legacy on-disk folder name, when known.
	FolderName string
}

// GenerateFolderName builds the legacy-client folder-naming convention
// "<set_id?> <artist> - <title>", sanitising both fields for filesystem
// safety. Used when importing a modern-origin set into Stable, where no
// legacy folder name previously existed.
func (s BeatmapSet) GenerateFolderName() string {
	var artist, title string
	if len(s.Difficulties) > 0 {
		artist = s.Difficulties[0].Metadata.Artist
		title = s.Difficulties[0].Metadata.Title
	}
	name := SanitiseFilename(artist) + " - " + SanitiseFilename(title)
	if s.OnlineSetID != nil {
		return fmt.Sprintf("%d %s", *s.OnlineSetID, name)
	}
	return name
}

// SanitiseFilename replaces filesystem-hostile characters with underscores
// and trims surrounding whitespace, matching the legacy client's own
// folder-naming sanitiser.
func SanitiseFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return strings.TrimSpace(replacer.Replace(name))
}

// MD5Set returns the set of all difficulty MD5 hashes in s, for round-trip
// comparisons after export/import.
func (s BeatmapSet) MD5Set() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Difficulties))
	for _, d := range s.Difficulties {
		if d.MD5 != "" {
			out[d.MD5] = struct{}{}
		}
	}
	return out
}

// TotalSize returns the sum of all file sizes recorded for the set.
func (s BeatmapSet) TotalSize() int64 {
	var total int64
	for _, f := range s.Files {
		total += f.Size
	}
	return total
}

// MaxStarRating returns the highest known star rating across difficulties,
// or nil if none carry one.
func (s BeatmapSet) MaxStarRating() *float64 {
	var max *float64
	for _, d := range s.Difficulties {
		if d.StarRating == nil {
			continue
		}
		if max == nil || *d.StarRating > *max {
			v := *d.StarRating
			max = &v
		}
	}
	return max
}
