// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scoredb parses the legacy scores.db binary format into
// ReplayDescriptor records, grouped by the beatmap MD5 they were set on.
package scoredb

import (
	"github.com/osusync/bridge/internal/binfmt"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// dotnetTicksAtUnixEpoch is the number of .NET DateTime ticks (100ns
// intervals since 0001-01-01) elapsed at 1970-01-01, the fixed epoch the
// legacy format's timestamps are counted from.
const dotnetTicksAtUnixEpoch = 621355968000000000

const ticksPerSecond = 10_000_000

// ticksToUnixSeconds converts a legacy 64-bit tick count to Unix seconds.
func ticksToUnixSeconds(ticks int64) int64 {
	return (ticks - dotnetTicksAtUnixEpoch) / ticksPerSecond
}

// BeatmapScores groups the replay descriptors recorded against one
// beatmap MD5.
type BeatmapScores struct {
	BeatmapMD5 string
	Scores     []models.ReplayDescriptor
}

// Parse decodes a scores.db byte stream.
func Parse(buf []byte, path string) ([]BeatmapScores, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	r := binfmt.NewReader(buf, path)

	if _, err := r.Int32("version"); err != nil {
		return nil, err
	}

	beatmapCount, err := r.Int32("beatmap_count")
	if err != nil {
		return nil, err
	}
	if beatmapCount < 0 {
		return nil, syncerr.ParseFailure(path, r.Offset(), "beatmap_count", syncerr.New(syncerr.KindParseFailure, "negative beatmap count"))
	}

	results := make([]BeatmapScores, 0, beatmapCount)
	for i := int32(0); i < beatmapCount; i++ {
		md5, err := r.String("beatmap_md5")
		if err != nil {
			return nil, err
		}

		scoreCount, err := r.Int32("score_count")
		if err != nil {
			return nil, err
		}
		if scoreCount < 0 {
			return nil, syncerr.ParseFailure(path, r.Offset(), "score_count", syncerr.New(syncerr.KindParseFailure, "negative score count"))
		}

		scores := make([]models.ReplayDescriptor, 0, scoreCount)
		for j := int32(0); j < scoreCount; j++ {
			entry, err := parseScoreEntry(r, md5)
			if err != nil {
				return nil, err
			}
			scores = append(scores, entry)
		}

		results = append(results, BeatmapScores{BeatmapMD5: md5, Scores: scores})
	}

	return results, nil
}

func parseScoreEntry(r *binfmt.Reader, beatmapMD5 string) (models.ReplayDescriptor, error) {
	modeByte, err := r.Byte("mode")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	if _, err := r.Int32("mods"); err != nil {
		return models.ReplayDescriptor{}, err
	}

	player, err := r.String("player_name")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	ticks, err := r.Int64("timestamp")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	count300, err := r.UInt16("count_300")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}
	count100, err := r.UInt16("count_100")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}
	count50, err := r.UInt16("count_50")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}
	countMiss, err := r.UInt16("count_miss")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	score, err := r.Int64("score")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	maxCombo, err := r.UInt16("max_combo")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	replayMD5, err := r.String("replay_md5")
	if err != nil {
		return models.ReplayDescriptor{}, err
	}

	desc := models.ReplayDescriptor{
		BeatmapMD5:    beatmapMD5,
		Player:        player,
		Score:         uint64(score),
		MaxCombo:      uint32(maxCombo),
		Count300:      uint32(count300),
		Count100:      uint32(count100),
		Count50:       uint32(count50),
		CountMiss:     uint32(countMiss),
		TimestampUnix: ticksToUnixSeconds(ticks),
		Mode:          models.GameMode(modeByte),
	}
	if replayMD5 != "" {
		m := replayMD5
		desc.ReplayMD5 = &m
		desc.HasReplayFile = true
	}
	// The legacy score entry carries no explicit grade byte; derive one
	// from accuracy per the bridge's accuracy-bucket fallback.
	desc.Grade = models.GradeFromAccuracy(desc.Accuracy())

	return desc, nil
}
