// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package replayexport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osusync/bridge/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleReplays() []models.ReplayDescriptor {
	return []models.ReplayDescriptor{
		{
			Player:        "Cookiezi",
			Grade:         models.GradeSS,
			Mode:          models.ModeOsu,
			TimestampUnix: 1_600_000_000,
			BeatmapTitle:  strPtr("Bangin' Burst"),
			BeatmapArtist: strPtr("Camellia"),
		},
		{
			Player:        "WhiteCat",
			Grade:         models.GradeA,
			Mode:          models.ModeOsu,
			TimestampUnix: 1_700_000_000,
			BeatmapTitle:  strPtr("Another Song"),
			BeatmapArtist: strPtr("Nanahira"),
		},
		{
			Player:        "Mrekk",
			Grade:         models.GradeB,
			Mode:          models.ModeMania,
			TimestampUnix: 1_500_000_000,
		},
	}
}

func TestFilterEmptyMatchesEverything(t *testing.T) {
	var f Filter
	assert.True(t, f.IsEmpty())
	assert.Len(t, f.Apply(sampleReplays()), 3)
}

func TestFilterMinGradeIsInclusiveThreshold(t *testing.T) {
	f := Filter{}.WithMinGrade(models.GradeA)
	got := f.Apply(sampleReplays())
	// A admits A, S and SS; the B-grade replay is excluded.
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, r.Grade.MeetsThreshold(models.GradeA))
	}
}

func TestFilterModes(t *testing.T) {
	f := Filter{}.WithModes(models.ModeMania)
	got := f.Apply(sampleReplays())
	assert.Len(t, got, 1)
	assert.Equal(t, "Mrekk", got[0].Player)
}

func TestFilterDateRangeInclusive(t *testing.T) {
	f := Filter{}.WithDateRange(1_600_000_000, 1_650_000_000)
	got := f.Apply(sampleReplays())
	assert.Len(t, got, 1)
	assert.Equal(t, "Cookiezi", got[0].Player)
}

func TestFilterPlayerNameCaseInsensitiveSubstring(t *testing.T) {
	f := Filter{}.WithPlayerName("cookie")
	got := f.Apply(sampleReplays())
	assert.Len(t, got, 1)
	assert.Equal(t, "Cookiezi", got[0].Player)
}

func TestFilterBeatmapSearchMatchesTitleOrArtist(t *testing.T) {
	byArtist := Filter{}.WithBeatmapSearch("camellia").Apply(sampleReplays())
	assert.Len(t, byArtist, 1)

	byTitle := Filter{}.WithBeatmapSearch("another").Apply(sampleReplays())
	assert.Len(t, byTitle, 1)

	// A replay with no title/artist metadata can never match a search.
	none := Filter{}.WithBeatmapSearch("mrekk").Apply(sampleReplays())
	assert.Empty(t, none)
}

func TestFilterCriteriaCombine(t *testing.T) {
	f := Filter{}.WithMinGrade(models.GradeA).WithModes(models.ModeOsu).WithPlayerName("whitecat")
	got := f.Apply(sampleReplays())
	assert.Len(t, got, 1)
	assert.Equal(t, "WhiteCat", got[0].Player)
}
