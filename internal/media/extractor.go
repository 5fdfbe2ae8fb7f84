// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package media extracts audio and background files out of beatmap sets
// into a plain directory tree, independent of the installation they came
// from.
package media

import (
	"os"
	"path/filepath"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// Extractor pulls audio and/or background files out of a sequence of
// beatmap sets and writes them under OutputDir, using Resolver to read
// each file's bytes regardless of which installation physically holds
// them.
type Extractor struct {
	Resolver     SourceResolver
	OutputDir    string
	Organisation Organisation
	Kind         Kind
	Progress     ProgressFunc
}

// Extract runs the configured extraction over sets. A failure reading or
// writing one file never aborts the run; it is recorded in
// Result.Errors and extraction continues with the next file.
func (e *Extractor) Extract(sets []models.BeatmapSet) (Result, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return Result{}, syncerr.IO(e.OutputDir, err)
	}

	var result Result
	written := make(map[string]bool) // dest path -> already written, for within-run dedup

	total := len(sets)
	for i, set := range sets {
		name := setDisplayName(set)
		if e.Progress != nil {
			e.Progress(Progress{
				CurrentSet:     name,
				SetsProcessed:  i,
				TotalSets:      total,
				FilesExtracted: result.TotalExtracted(),
				BytesWritten:   result.BytesWritten,
			})
		}

		if e.Kind.wantsAudio() {
			e.extractOne(set, audioFilenames(set), &result, written, true)
		}
		if e.Kind.wantsBackgrounds() {
			e.extractOne(set, backgroundFilenames(set), &result, written, false)
		}
	}

	if e.Progress != nil {
		e.Progress(Progress{
			CurrentSet:     "complete",
			SetsProcessed:  total,
			TotalSets:      total,
			FilesExtracted: result.TotalExtracted(),
			BytesWritten:   result.BytesWritten,
		})
	}

	return result, nil
}

func (e *Extractor) extractOne(set models.BeatmapSet, filenames []string, result *Result, written map[string]bool, isAudio bool) {
	for _, filename := range filenames {
		dest := e.outputPath(set, filename)
		if written[dest] {
			result.DuplicatesSkipped++
			continue
		}

		data, err := e.Resolver.Resolve(set, filename)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Path: filename, Message: err.Error()})
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			result.Errors = append(result.Errors, FileError{Path: dest, Message: err.Error()})
			continue
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			result.Errors = append(result.Errors, FileError{Path: dest, Message: err.Error()})
			continue
		}

		written[dest] = true
		result.BytesWritten += int64(len(data))
		if isAudio {
			result.AudioExtracted++
		} else {
			result.BackgroundsExtracted++
		}
	}
}

func (e *Extractor) outputPath(set models.BeatmapSet, filename string) string {
	switch e.Organisation {
	case OrganisationByArtist:
		artist := models.SanitiseFilename(setArtist(set))
		if artist == "" {
			artist = "Unknown Artist"
		}
		return filepath.Join(e.OutputDir, artist, filename)
	case OrganisationByBeatmap:
		return filepath.Join(e.OutputDir, sanitisedSetName(set), filename)
	default:
		return filepath.Join(e.OutputDir, filename)
	}
}

func setDisplayName(set models.BeatmapSet) string {
	if len(set.Difficulties) == 0 {
		return set.FolderName
	}
	return setArtist(set) + " - " + set.Difficulties[0].Metadata.Title
}

func setArtist(set models.BeatmapSet) string {
	if len(set.Difficulties) == 0 {
		return ""
	}
	return set.Difficulties[0].Metadata.Artist
}

func sanitisedSetName(set models.BeatmapSet) string {
	if len(set.Difficulties) == 0 {
		return models.SanitiseFilename(set.FolderName)
	}
	meta := set.Difficulties[0].Metadata
	return models.SanitiseFilename(meta.Artist) + " - " + models.SanitiseFilename(meta.Title)
}

// audioFilenames returns the distinct audio filenames referenced across
// set's difficulties, preserving first-seen order.
func audioFilenames(set models.BeatmapSet) []string {
	return distinctFilenames(set, func(d models.Difficulty) string { return d.AudioFilename })
}

// backgroundFilenames returns the distinct background filenames
// referenced across set's difficulties.
func backgroundFilenames(set models.BeatmapSet) []string {
	return distinctFilenames(set, func(d models.Difficulty) string { return d.BackgroundFilename })
}

func distinctFilenames(set models.BeatmapSet, pick func(models.Difficulty) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range set.Difficulties {
		name := pick(d)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
