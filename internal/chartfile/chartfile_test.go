// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package chartfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

const sampleChart = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[Metadata]
Title:Bangin' Burst
TitleUnicode:Bangin' Burst
Artist:Camellia
ArtistUnicode:Camellia
Creator:Sotarks
Version:Collab Extra
Source:
Tags:electronic speedcore
BeatmapID:456
BeatmapSetID:123

[Difficulty]
HPDrainRate:6
CircleSize:4
OverallDifficulty:8
ApproachRate:9.3
SliderMultiplier:1.4
SliderTickRate:2

[Events]
//Background and Video events
0,0,"bg.jpg",0,0
//Break Periods

[TimingPoints]
1000,300,4,2,0,60,1,0
50000,-100,4,2,0,60,0,0

[HitObjects]
100,100,1000,1,0,0:0:0:0:
200,200,126000,1,0,0:0:0:0:
`

func TestParseSampleChart(t *testing.T) {
	got, err := Parse([]byte(sampleChart), "bangin.osu")
	require.NoError(t, err)

	assert.Equal(t, "Bangin' Burst", got.Metadata.Title)
	assert.Equal(t, "Camellia", got.Metadata.Artist)
	assert.Equal(t, "Sotarks", got.Metadata.Creator)
	assert.Equal(t, "Collab Extra", got.Version)
	assert.Equal(t, []string{"electronic", "speedcore"}, got.Metadata.Tags)
	assert.Equal(t, int32(456), got.Metadata.OnlineBeatmapID)
	assert.Equal(t, int32(123), got.Metadata.OnlineSetID)

	assert.Equal(t, "audio.mp3", got.AudioFilename)
	assert.Equal(t, "bg.jpg", got.BackgroundFilename)
	assert.Equal(t, models.ModeOsu, got.Mode)

	assert.Equal(t, 9.3, got.ApproachRate)
	assert.Equal(t, 1.4, got.SliderMultiplier)

	// Length is the delta between first and last hit-object time, not the
	// last timestamp alone: 126000 - 1000 = 125000.
	assert.Equal(t, int64(125000), got.LengthMs)

	// BPM comes from the first timing point's beat length: 60000/300 = 200.
	assert.Equal(t, 200.0, got.BPM)

	require.Len(t, got.TimingPoints, 2)
	assert.True(t, got.TimingPoints[0].Uninherited)
	assert.False(t, got.TimingPoints[1].Uninherited)
}

func TestParseEmptyFileIsError(t *testing.T) {
	_, err := Parse(nil, "empty.osu")
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindParseFailure))
}

func TestParseMissingMetadataIsError(t *testing.T) {
	chart := "osu file format v14\n\n[General]\nAudioFilename: a.mp3\n"
	_, err := Parse([]byte(chart), "broken.osu")
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindParseFailure))
}

func TestParseIgnoresCommentsAndBlankLines(t *testing.T) {
	chart := "osu file format v14\n\n// a comment\n\n[Metadata]\nTitle:T\nArtist:A\n"
	got, err := Parse([]byte(chart), "c.osu")
	require.NoError(t, err)
	assert.Equal(t, "T", got.Metadata.Title)
	assert.Equal(t, "A", got.Metadata.Artist)
}

func TestParseNoTimingPointsLeavesBPMZero(t *testing.T) {
	chart := "osu file format v14\n\n[Metadata]\nTitle:T\nArtist:A\n"
	got, err := Parse([]byte(chart), "notiming.osu")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.BPM)
	assert.Empty(t, got.TimingPoints)
}
