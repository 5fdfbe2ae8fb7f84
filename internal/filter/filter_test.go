// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osusync/bridge/internal/models"
)

func star(v float64) *float64 { return &v }
func status(s models.RankedStatus) *models.RankedStatus { return &s }

func TestIsEmpty(t *testing.T) {
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, Criteria{}.WithSearchQuery("x").IsEmpty())
}

func TestFilterStarRatingAndMode(t *testing.T) {
	sets := []models.BeatmapSet{
		{Difficulties: []models.Difficulty{{Mode: models.ModeOsu, StarRating: star(4.5)}}},
		{Difficulties: []models.Difficulty{{Mode: models.ModeOsu, StarRating: star(2.0)}}},
		{Difficulties: []models.Difficulty{{Mode: models.ModeMania, StarRating: star(6.0)}}},
	}
	c := Criteria{}.WithStarRatingMin(4.0).WithModes(models.ModeOsu, models.ModeTaiko)
	got := Filter(sets, c)
	assert.Len(t, got, 1)
	assert.Equal(t, 3, Count(sets, Criteria{}))
	assert.Equal(t, 3, Count(sets, Criteria{}.WithStarRatingMin(0)))
}

func TestFilterRequiresOnlyOneDifficultyToPass(t *testing.T) {
	sets := []models.BeatmapSet{
		{Difficulties: []models.Difficulty{
			{StarRating: star(1.0)},
			{StarRating: star(7.0)},
		}},
	}
	c := Criteria{}.WithStarRatingMin(5.0)
	assert.Len(t, Filter(sets, c), 1)
}

func TestFilterRankStatusAndSearch(t *testing.T) {
	sets := []models.BeatmapSet{
		{Difficulties: []models.Difficulty{{Status: status(models.StatusRanked), Metadata: models.Metadata{Title: "Freedom Dive", Artist: "xi"}}}},
		{Difficulties: []models.Difficulty{{Status: status(models.StatusGraveyard), Metadata: models.Metadata{Title: "Other", Artist: "someone"}}}},
	}
	c := Criteria{}.WithRankStatuses(models.StatusRanked).WithSearchQuery("freedom")
	assert.Len(t, Filter(sets, c), 1)
}

func TestComputeLibraryStats(t *testing.T) {
	sets := []models.BeatmapSet{
		{
			Files:        []models.FileEntry{{Size: 100}},
			Difficulties: []models.Difficulty{{Mode: models.ModeOsu, StarRating: star(3.5)}},
		},
		{
			Files:        []models.FileEntry{{Size: 200}},
			Difficulties: []models.Difficulty{{Mode: models.ModeOsu, StarRating: star(5.2)}},
		},
	}
	stats := ComputeLibraryStats(sets)
	assert.Equal(t, 2, stats.SetCount)
	assert.Equal(t, int64(300), stats.TotalBytes)
	assert.Equal(t, 2, stats.ByMode[models.ModeOsu])
	assert.Equal(t, 1, stats.StarBuckets[3])
	assert.Equal(t, 1, stats.StarBuckets[5])
	assert.InDelta(t, 3.5, *stats.MinStar, 0.0001)
	assert.InDelta(t, 5.2, *stats.MaxStar, 0.0001)
}

func TestCompareWastedBytes(t *testing.T) {
	source := []models.BeatmapSet{
		{Files: []models.FileEntry{{Size: 100}}, Difficulties: []models.Difficulty{{MD5: "h1"}}},
		{Files: []models.FileEntry{{Size: 50}}, Difficulties: []models.Difficulty{{MD5: "h2"}}},
	}
	target := []models.BeatmapSet{
		{Files: []models.FileEntry{{Size: 80}}, Difficulties: []models.Difficulty{{MD5: "h1"}}},
	}
	cmp := Compare(source, target, 1<<0)
	assert.Equal(t, 1, cmp.Common)
	assert.Equal(t, 1, cmp.UniqueToSource)
	assert.Equal(t, int64(80), cmp.WastedBytes)
}
