// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package legacydb parses the legacy osu!.db binary beatmap index: a
// length-prefixed stream of per-difficulty entries preceded by a small
// header. Each entry decodes into a Difficulty plus the folder name its
// physical files live under; the scanner groups entries back into
// BeatmapSets by folder/online-set-id, exactly as it would group freshly
// parsed chart files.
package legacydb

import (
	"github.com/osusync/bridge/internal/binfmt"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// noStarRatingMarker is the has_star_rating byte value marking the
// absence of a star-rating double in an entry.
const noStarRatingMarker = 0

// Header carries the file-level fields preceding the entry stream.
type Header struct {
	Version           int32
	FolderCount       int32
	LastModifiedTicks int64
	Permission        byte
	OwnerName         string
	EntryCount        int32
}

// Entry is one decoded difficulty, plus the legacy folder it lives in.
type Entry struct {
	FolderName         string
	AudioFilename      string
	BackgroundFilename string
	MD5                string
	Metadata           models.Metadata
	Version            string // diff/version name

	HPDrain          float64
	CircleSize       float64
	OverallDifficulty float64
	ApproachRate     float64
	SliderMultiplier float64
	SliderTickRate   float64

	LengthMs int32
	BPM      float64

	Mode   models.GameMode
	Status models.RankedStatus

	StarRating   *float64
	TimingPoints []models.TimingPoint
}

// Database is the fully decoded legacy index.
type Database struct {
	Header  Header
	Entries []Entry
}

// Parse decodes an osu!.db byte stream.
func Parse(buf []byte, path string) (*Database, error) {
	r := binfmt.NewReader(buf, path)

	hdr, err := parseHeader(r, path)
	if err != nil {
		return nil, err
	}
	if hdr.EntryCount < 0 {
		return nil, syncerr.ParseFailure(path, r.Offset(), "entry_count", syncerr.New(syncerr.KindParseFailure, "negative entry count"))
	}

	entries := make([]Entry, 0, hdr.EntryCount)
	for i := int32(0); i < hdr.EntryCount; i++ {
		e, err := parseEntry(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return &Database{Header: hdr, Entries: entries}, nil
}

func parseHeader(r *binfmt.Reader, path string) (Header, error) {
	var hdr Header
	var err error

	if hdr.Version, err = r.Int32("version"); err != nil {
		return hdr, err
	}
	if hdr.FolderCount, err = r.Int32("folder_count"); err != nil {
		return hdr, err
	}
	if hdr.LastModifiedTicks, err = r.Int64("last_modified"); err != nil {
		return hdr, err
	}
	if hdr.Permission, err = r.Byte("permission"); err != nil {
		return hdr, err
	}
	if hdr.OwnerName, err = r.String("owner_name"); err != nil {
		return hdr, err
	}
	if hdr.EntryCount, err = r.Int32("entry_count"); err != nil {
		return hdr, err
	}
	if hdr.FolderCount < 0 {
		return hdr, syncerr.ParseFailure(path, r.Offset(), "folder_count", syncerr.New(syncerr.KindParseFailure, "negative folder count"))
	}
	return hdr, nil
}

func parseEntry(r *binfmt.Reader) (Entry, error) {
	var e Entry
	var err error

	if e.FolderName, err = r.String("folder_name"); err != nil {
		return e, err
	}
	if e.AudioFilename, err = r.String("audio_filename"); err != nil {
		return e, err
	}
	if e.BackgroundFilename, err = r.String("background_filename"); err != nil {
		return e, err
	}
	if e.MD5, err = r.String("md5"); err != nil {
		return e, err
	}
	if e.Metadata.Title, err = r.String("title"); err != nil {
		return e, err
	}
	if e.Metadata.TitleUnicode, err = r.String("title_unicode"); err != nil {
		return e, err
	}
	if e.Metadata.Artist, err = r.String("artist"); err != nil {
		return e, err
	}
	if e.Metadata.ArtistUnicode, err = r.String("artist_unicode"); err != nil {
		return e, err
	}
	if e.Metadata.Creator, err = r.String("creator"); err != nil {
		return e, err
	}
	if e.Version, err = r.String("version"); err != nil {
		return e, err
	}
	if e.Metadata.Source, err = r.String("source"); err != nil {
		return e, err
	}
	tagString, err := r.String("tags")
	if err != nil {
		return e, err
	}
	e.Metadata.Tags = splitTags(tagString)

	if e.Metadata.OnlineBeatmapID, err = r.Int32("online_beatmap_id"); err != nil {
		return e, err
	}
	onlineSetID, err := r.Int32("online_set_id")
	if err != nil {
		return e, err
	}
	// A negative declared set id is treated as absent.
	if onlineSetID >= 0 {
		e.Metadata.OnlineSetID = onlineSetID
	} else {
		e.Metadata.OnlineSetID = 0
	}

	if e.HPDrain, err = r.Float64("hp_drain"); err != nil {
		return e, err
	}
	if e.CircleSize, err = r.Float64("circle_size"); err != nil {
		return e, err
	}
	if e.OverallDifficulty, err = r.Float64("overall_difficulty"); err != nil {
		return e, err
	}
	if e.ApproachRate, err = r.Float64("approach_rate"); err != nil {
		return e, err
	}
	if e.SliderMultiplier, err = r.Float64("slider_multiplier"); err != nil {
		return e, err
	}
	if e.SliderTickRate, err = r.Float64("slider_tick_rate"); err != nil {
		return e, err
	}

	hasStarRating, err := r.Bool("has_star_rating")
	if err != nil {
		return e, err
	}
	if hasStarRating {
		v, err := r.Float64("star_rating")
		if err != nil {
			return e, err
		}
		e.StarRating = &v
	}

	if e.LengthMs, err = r.Int32("length_ms"); err != nil {
		return e, err
	}
	if e.BPM, err = r.Float64("bpm"); err != nil {
		return e, err
	}

	modeByte, err := r.Byte("mode")
	if err != nil {
		return e, err
	}
	e.Mode = models.GameMode(modeByte)

	statusByte, err := r.Byte("status")
	if err != nil {
		return e, err
	}
	e.Status = decodeRankedStatus(statusByte)

	tpCount, err := r.Int32("timing_point_count")
	if err != nil {
		return e, err
	}
	if tpCount < 0 {
		return e, syncerr.New(syncerr.KindParseFailure, "negative timing point count")
	}
	e.TimingPoints = make([]models.TimingPoint, 0, tpCount)
	for i := int32(0); i < tpCount; i++ {
		tp, err := parseTimingPoint(r)
		if err != nil {
			return e, err
		}
		e.TimingPoints = append(e.TimingPoints, tp)
	}

	return e, nil
}

func parseTimingPoint(r *binfmt.Reader) (models.TimingPoint, error) {
	offset, err := r.Float64("timing_point_offset")
	if err != nil {
		return models.TimingPoint{}, err
	}
	beatLength, err := r.Float64("timing_point_beat_length")
	if err != nil {
		return models.TimingPoint{}, err
	}
	uninherited, err := r.Bool("timing_point_uninherited")
	if err != nil {
		return models.TimingPoint{}, err
	}
	return models.TimingPoint{OffsetMs: offset, BeatLength: beatLength, Uninherited: uninherited}, nil
}

// decodeRankedStatus maps the legacy single-byte status to the richer
// lifecycle enum. Byte value 2 is ambiguous in the real client across
// Graveyard/WIP/Pending; absent further information this decodes to
// Pending, the most common of the three in practice.
func decodeRankedStatus(b byte) models.RankedStatus {
	switch b {
	case 0:
		return models.StatusGraveyard
	case 1:
		return models.StatusWIP
	case 2:
		return models.StatusPending
	case 4:
		return models.StatusRanked
	case 5:
		return models.StatusApproved
	case 6:
		return models.StatusQualified
	case 7:
		return models.StatusLoved
	default:
		return models.StatusGraveyard
	}
}

func encodeRankedStatus(s models.RankedStatus) byte {
	switch s {
	case models.StatusGraveyard:
		return 0
	case models.StatusWIP:
		return 1
	case models.StatusPending:
		return 2
	case models.StatusRanked:
		return 4
	case models.StatusApproved:
		return 5
	case models.StatusQualified:
		return 6
	case models.StatusLoved:
		return 7
	default:
		return 0
	}
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				tags = append(tags, s[start:i])
			}
			start = i + 1
		}
	}
	return tags
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
