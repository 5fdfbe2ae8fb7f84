// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import (
	"sort"

	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/models"
)

// LibraryStats summarises one installation's scanned library.
type LibraryStats struct {
	SetCount        int
	DifficultyCount int
	TotalBytes      int64
	ByMode          map[models.GameMode]int
	ByRankStatus    map[models.RankedStatus]int
	// StarBuckets maps a one-star bucket (floor(star rating)) to a count
	// of difficulties whose star rating falls in [bucket, bucket+1).
	StarBuckets map[int]int
	MinStar     *float64
	AvgStar     *float64
	MaxStar     *float64
}

// ComputeLibraryStats aggregates counts, per-mode and per-rank-status
// breakdowns, and the one-star-bucket star-rating distribution for sets.
func ComputeLibraryStats(sets []models.BeatmapSet) LibraryStats {
	stats := LibraryStats{
		ByMode:       make(map[models.GameMode]int),
		ByRankStatus: make(map[models.RankedStatus]int),
		StarBuckets:  make(map[int]int),
	}

	var starSum float64
	var starCount int

	stats.SetCount = len(sets)
	for _, s := range sets {
		stats.TotalBytes += s.TotalSize()
		stats.DifficultyCount += len(s.Difficulties)
		for _, d := range s.Difficulties {
			stats.ByMode[d.Mode]++
			if d.Status != nil {
				stats.ByRankStatus[*d.Status]++
			}
			if d.StarRating != nil {
				bucket := int(*d.StarRating)
				stats.StarBuckets[bucket]++
				starSum += *d.StarRating
				starCount++
				if stats.MinStar == nil || *d.StarRating < *stats.MinStar {
					v := *d.StarRating
					stats.MinStar = &v
				}
				if stats.MaxStar == nil || *d.StarRating > *stats.MaxStar {
					v := *d.StarRating
					stats.MaxStar = &v
				}
			}
		}
	}

	if starCount > 0 {
		avg := starSum / float64(starCount)
		stats.AvgStar = &avg
	}

	return stats
}

// ComparisonStats is the cross-library comparison block: how much of the
// source's library is unique, how much is already in the target, and how
// many bytes are wasted by overlapping physical copies.
type ComparisonStats struct {
	UniqueToSource    int
	UniqueToTarget    int
	Common            int
	DuplicateEstimate int
	WastedBytes       int64
}

// Compare builds a duplicate index from target and classifies every
// source set against it under strategy, then does the symmetric pass for
// target against a source-built index. WastedBytes sums, for each
// duplicate pair, the smaller of the two physical copies' byte sizes —
// the bytes that unified storage (or a dedup pass) would reclaim.
func Compare(source, target []models.BeatmapSet, strategy dupindex.Strategy) ComparisonStats {
	targetIdx := dupindex.Build(&models.ScanResult{Sets: target})
	sourceIdx := dupindex.Build(&models.ScanResult{Sets: source})

	var stats ComparisonStats

	for _, s := range source {
		if targetIdx.IsDuplicate(s, strategy) {
			stats.Common++
			stats.DuplicateEstimate++
			if m, ok := targetIdx.Classify(s); ok {
				wasted := s.TotalSize()
				if other := m.ExistingSet.TotalSize(); other < wasted {
					wasted = other
				}
				stats.WastedBytes += wasted
			}
		} else {
			stats.UniqueToSource++
		}
	}

	for _, t := range target {
		if !sourceIdx.IsDuplicate(t, strategy) {
			stats.UniqueToTarget++
		}
	}

	return stats
}

// TopRecommendation is one entry in a Top-N recommendation list.
type TopRecommendation struct {
	Title      string
	Artist     string
	StarRating float64
}

// TopByStarRating returns up to n sets with the highest max star rating,
// descending. Sets with no star rating are excluded.
func TopByStarRating(sets []models.BeatmapSet, n int) []TopRecommendation {
	var candidates []TopRecommendation
	for _, s := range sets {
		max := s.MaxStarRating()
		if max == nil || len(s.Difficulties) == 0 {
			continue
		}
		candidates = append(candidates, TopRecommendation{
			Title:      s.Difficulties[0].Metadata.Title,
			Artist:     s.Difficulties[0].Metadata.Artist,
			StarRating: *max,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].StarRating > candidates[j].StarRating })
	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// TopUnsyncedPopularArtists returns up to n artists present in source but
// absent from target, ordered by how many source sets carry that artist,
// descending. "Popular" here means "most represented in source", the
// only popularity signal available without online catalogue access.
func TopUnsyncedPopularArtists(source, target []models.BeatmapSet, n int) []string {
	targetArtists := make(map[string]bool)
	for _, t := range target {
		for _, d := range t.Difficulties {
			targetArtists[normaliseArtist(d.Metadata.Artist)] = true
		}
	}

	counts := make(map[string]int)
	display := make(map[string]string)
	for _, s := range source {
		for _, d := range s.Difficulties {
			key := normaliseArtist(d.Metadata.Artist)
			if key == "" || targetArtists[key] {
				continue
			}
			counts[key]++
			display[key] = d.Metadata.Artist
		}
	}

	type entry struct {
		artist string
		count  int
	}
	var entries []entry
	for k, c := range counts {
		entries = append(entries, entry{artist: display[k], count: c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })

	var out []string
	for i, e := range entries {
		if n >= 0 && i >= n {
			break
		}
		out = append(out, e.artist)
	}
	return out
}

func normaliseArtist(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}
