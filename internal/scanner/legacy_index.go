// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package scanner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/osusync/bridge/internal/legacydb"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// ScanFromLegacyIndex reconstructs beatmap sets from root's osu!.db cache
// instead of walking Songs/ and re-parsing every chart file. It is a
// fast path beside Scan: the client already
// maintains this index continuously, so trusting it for a rescan is
// strictly cheaper than redoing the work on every sync. Per-entry fields
// come from the cache as-is; SHA256 is left empty since the index never
// records it, matching the conservative "recompute from disk, never
// trust parsed content" rule Difficulty.SHA256 documents — a caller that
// needs hash-backed duplicate detection should fall back to Scan.
func ScanFromLegacyIndex(root string) (*models.ScanResult, error) {
	start := time.Now()
	path := filepath.Join(root, "osu!.db")

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, syncerr.IO(path, err)
	}

	db, err := legacydb.Parse(buf, path)
	if err != nil {
		return nil, err
	}

	type group struct {
		setID *int32
		diffs []models.Difficulty
	}
	bySet := make(map[string]*group)
	var order []string

	for _, e := range db.Entries {
		g, ok := bySet[e.FolderName]
		if !ok {
			g = &group{}
			bySet[e.FolderName] = g
			order = append(order, e.FolderName)
		}
		if e.Metadata.OnlineSetID > 0 {
			id := e.Metadata.OnlineSetID
			g.setID = &id
		}
		g.diffs = append(g.diffs, entryToDifficulty(e))
	}

	sets := make([]models.BeatmapSet, 0, len(order))
	for _, folder := range order {
		g := bySet[folder]
		sets = append(sets, models.BeatmapSet{
			FolderName:   folder,
			OnlineSetID:  g.setID,
			Difficulties: g.diffs,
		})
	}

	return &models.ScanResult{
		Sets: sets,
		Timing: models.ScanTiming{
			TotalElapsed:  time.Since(start),
			ChartsParsed:  len(db.Entries),
			SetsAssembled: len(sets),
		},
	}, nil
}

func entryToDifficulty(e legacydb.Entry) models.Difficulty {
	status := e.Status
	return models.Difficulty{
		Metadata:           e.Metadata,
		HPDrain:            e.HPDrain,
		CircleSize:         e.CircleSize,
		OverallDifficulty:  e.OverallDifficulty,
		ApproachRate:       e.ApproachRate,
		SliderMultiplier:   e.SliderMultiplier,
		SliderTickRate:     e.SliderTickRate,
		MD5:                e.MD5,
		AudioFilename:      e.AudioFilename,
		BackgroundFilename: e.BackgroundFilename,
		LengthMs:           int64(e.LengthMs),
		BPM:                e.BPM,
		Mode:               e.Mode,
		Version:            e.Version,
		StarRating:         e.StarRating,
		Status:             &status,
		TimingPoints:       e.TimingPoints,
	}
}
