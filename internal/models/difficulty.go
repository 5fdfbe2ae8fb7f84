// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// Metadata holds the textual identity of a difficulty, shared with its
// sibling difficulties in the same set.
type Metadata struct {
	Title        string
	TitleUnicode string
	Artist       string
	ArtistUnicode string
	Creator      string
	Source       string
	Tags         []string
	OnlineBeatmapID int32
	OnlineSetID     int32
}

// TimingPoint is one entry in a chart's timing-points section.
type TimingPoint struct {
	OffsetMs  float64
	BeatLength float64
	Uninherited bool
}

// Difficulty is one playable chart within a BeatmapSet.
type Difficulty struct {
	Metadata Metadata

	HPDrain          float64
	CircleSize       float64
	OverallDifficulty float64
	ApproachRate     float64
	SliderMultiplier float64
	SliderTickRate   float64

	// SHA256 and MD5 are always recomputed from the on-disk chart bytes,
	// never trusted from parsed content.
	SHA256 string
	MD5    string

	AudioFilename      string
	BackgroundFilename string

	LengthMs int64
	BPM      float64

	Mode    GameMode
	Version string

	StarRating *float64
	Status     *RankedStatus

	TimingPoints []TimingPoint

	// SourceFile is the chart's filename within the set's folder.
	SourceFile string

	// DuplicateWithinFolder marks a difficulty that lost a same-version-name
	// tie-break against a newer sibling chart in the same folder. It is
	// retained in the set, never dropped, only flagged.
	DuplicateWithinFolder bool
}

// NormalisedKey returns the lowercase "title|artist|creator" key used by
// the duplicate index's metadata strategy.
func (d Difficulty) NormalisedKey() string {
	return normaliseForKey(d.Metadata.Title) + "|" + normaliseForKey(d.Metadata.Artist) + "|" + normaliseForKey(d.Metadata.Creator)
}
