// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package replayexport copies .osr replay files referenced by parsed
// score-index entries into a plain directory tree, organised by
// beatmap, date, player or grade.
package replayexport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// Exporter copies replay files into OutputDir using Organisation to lay
// out sub-directories.
type Exporter struct {
	OutputDir    string
	Organisation Organisation
	Progress     ProgressFunc
}

// Export copies every replay in replays that has a file on disk.
// Replays without a backing file (HasReplayFile false, no ReplayPath, or
// the path no longer exists) are counted as skipped, not errored: a
// missing replay file is an expected, common case, not a malformed
// input.
func (e *Exporter) Export(replays []models.ReplayDescriptor) (Result, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return Result{}, syncerr.IO(e.OutputDir, err)
	}

	var result Result
	total := len(replays)

	for i, replay := range replays {
		if e.Progress != nil {
			e.Progress(Progress{
				CurrentReplay:    displayName(replay),
				ReplaysProcessed: i,
				TotalReplays:     total,
				BytesWritten:     result.BytesWritten,
			})
		}

		if !replay.HasReplayFile || replay.ReplayPath == nil {
			result.Skipped++
			continue
		}
		if _, err := os.Stat(*replay.ReplayPath); err != nil {
			result.Skipped++
			continue
		}

		dest := e.outputPath(replay)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			result.Errors = append(result.Errors, FileError{Replay: replayID(replay), Message: err.Error()})
			continue
		}

		n, err := copyFile(*replay.ReplayPath, dest)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Replay: replayID(replay), Message: err.Error()})
			continue
		}
		result.Exported++
		result.BytesWritten += n
	}

	if e.Progress != nil {
		e.Progress(Progress{CurrentReplay: "complete", ReplaysProcessed: total, TotalReplays: total, BytesWritten: result.BytesWritten})
	}

	return result, nil
}

func copyFile(src, dest string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, syncerr.IO(src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return 0, syncerr.IO(dest, err)
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, syncerr.IO(dest, err)
	}
	return n, nil
}

func (e *Exporter) outputPath(replay models.ReplayDescriptor) string {
	filename := e.generateFilename(replay)
	switch e.Organisation {
	case OrganisationByBeatmap:
		folder := replay.BeatmapMD5
		if replay.BeatmapTitle != nil {
			folder = models.SanitiseFilename(*replay.BeatmapTitle)
		}
		return filepath.Join(e.OutputDir, folder, filename)
	case OrganisationByDate:
		return filepath.Join(e.OutputDir, formatDate(replay.TimestampUnix), filename)
	case OrganisationByPlayer:
		return filepath.Join(e.OutputDir, models.SanitiseFilename(replay.Player), filename)
	case OrganisationByGrade:
		return filepath.Join(e.OutputDir, replay.Grade.String(), filename)
	default:
		return filepath.Join(e.OutputDir, filename)
	}
}

func (e *Exporter) generateFilename(replay models.ReplayDescriptor) string {
	if replay.BeatmapTitle != nil {
		artist := "Unknown"
		if replay.BeatmapArtist != nil {
			artist = *replay.BeatmapArtist
		}
		return fmt.Sprintf("%s - %s [%s] (%d).osr",
			models.SanitiseFilename(artist),
			models.SanitiseFilename(*replay.BeatmapTitle),
			replay.Grade.String(),
			replay.Score,
		)
	}
	return fmt.Sprintf("%s_%s_%d.osr", replay.BeatmapMD5, replay.Grade.String(), replay.Score)
}

func formatDate(unixSecs int64) string {
	if unixSecs <= 0 {
		return "Unknown"
	}
	return time.Unix(unixSecs, 0).UTC().Format("2006-01-02")
}

func displayName(replay models.ReplayDescriptor) string {
	if replay.BeatmapTitle != nil {
		return *replay.BeatmapTitle
	}
	return replay.BeatmapMD5
}

func replayID(replay models.ReplayDescriptor) string {
	if replay.ReplayMD5 != nil {
		return *replay.ReplayMD5
	}
	return replay.BeatmapMD5
}
