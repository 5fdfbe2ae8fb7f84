// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scanner walks a legacy Songs/ directory and assembles beatmap
// sets from the folders it finds. Chart files parse in parallel across
// the whole scan, work-stealing over a pool sized to the available
// cores; the parallelism boundary is the chart file, not the folder, so
// one enormous set never serialises behind its siblings.
package scanner

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osusync/bridge/internal/chartfile"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

var (
	chartExtensions = map[string]bool{".osu": true}
	audioExtensions = map[string]bool{".mp3": true, ".ogg": true, ".wav": true}
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
)

// Options configures one scan.
type Options struct {
	// SkipHashing leaves MD5 and SHA256 empty on every difficulty, trading
	// correctness guarantees for speed on very large libraries.
	SkipHashing bool
}

type folderCandidate struct {
	path string
	name string
}

type classifiedFile struct {
	filename string
	fullPath string
	kind     fileKind
	size     int64
	modTime  time.Time
}

type fileKind int

const (
	kindChart fileKind = iota
	kindAudio
	kindImage
	kindAsset
)

func classify(ext string) fileKind {
	switch {
	case chartExtensions[ext]:
		return kindChart
	case audioExtensions[ext]:
		return kindAudio
	case imageExtensions[ext]:
		return kindImage
	default:
		return kindAsset
	}
}

type chartJob struct {
	candidateIdx int
	file         classifiedFile
}

type chartOutcome struct {
	candidateIdx int
	file         classifiedFile
	parsed       *chartfile.Parsed
	md5          string
	sha256       string
	err          error
}

// Scan walks root/Songs and returns an ordered list of beatmap sets. A
// missing or unreadable Songs/ directory is a top-level failure; anything
// that goes wrong with one folder or one chart file is recorded and the
// scan continues.
func Scan(ctx context.Context, root string, opts Options) (*models.ScanResult, error) {
	start := time.Now()
	songsPath := filepath.Join(root, "Songs")

	entries, err := os.ReadDir(songsPath)
	if err != nil {
		return nil, syncerr.IO(songsPath, err)
	}

	discoveryStart := time.Now()
	var candidates []folderCandidate
	candidateFiles := make(map[int][]classifiedFile)

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		idx := len(candidates)
		candidatePath := filepath.Join(songsPath, entry.Name())
		candidates = append(candidates, folderCandidate{path: candidatePath, name: entry.Name()})
		candidateFiles[idx] = classifyCandidateFiles(candidatePath)
	}

	var filesDiscovered int
	var jobs []chartJob
	for idx, files := range candidateFiles {
		filesDiscovered += len(files)
		for _, f := range files {
			if f.kind == kindChart {
				jobs = append(jobs, chartJob{candidateIdx: idx, file: f})
			}
		}
	}
	discoveryElapsed := time.Since(discoveryStart)

	parseStart := time.Now()
	outcomes, err := parseChartsParallel(ctx, jobs, opts)
	if err != nil {
		return nil, err
	}
	parseElapsed := time.Since(parseStart)

	outcomesByCandidate := make(map[int][]chartOutcome, len(candidates))
	for _, o := range outcomes {
		outcomesByCandidate[o.candidateIdx] = append(outcomesByCandidate[o.candidateIdx], o)
	}

	var sets []models.BeatmapSet
	var warnings []string

	for idx, candidate := range candidates {
		set, setWarnings := assembleSet(candidate, outcomesByCandidate[idx], candidateFiles[idx], opts)
		warnings = append(warnings, setWarnings...)
		if len(set.Difficulties) == 0 {
			continue
		}
		sets = append(sets, set)
	}

	return &models.ScanResult{
		Sets: sets,
		Timing: models.ScanTiming{
			TotalElapsed:     time.Since(start),
			DiscoveryElapsed: discoveryElapsed,
			ParseElapsed:     parseElapsed,
			FilesDiscovered:  filesDiscovered,
			ChartsParsed:     len(outcomes),
			SetsAssembled:    len(sets),
		},
		Warnings: warnings,
	}, nil
}

func classifyCandidateFiles(candidatePath string) []classifiedFile {
	entries, err := os.ReadDir(candidatePath)
	if err != nil {
		return nil
	}
	var files []classifiedFile
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, classifiedFile{
			filename: e.Name(),
			fullPath: filepath.Join(candidatePath, e.Name()),
			kind:     classify(strings.ToLower(filepath.Ext(e.Name()))),
			size:     info.Size(),
			modTime:  info.ModTime(),
		})
	}
	return files
}

// parseChartsParallel parses every chart job across a pool sized to the
// available cores. A chart's own parse failure never aborts the scan; it
// surfaces as an outcome with a non-nil err, recorded by the caller.
func parseChartsParallel(ctx context.Context, jobs []chartJob, opts Options) ([]chartOutcome, error) {
	outcomes := make([]chartOutcome, len(jobs))

	limit := runtime.NumCPU()
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outcomes[i] = parseOneChart(job, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, syncerr.Cancelled()
	}

	return outcomes, nil
}

func parseOneChart(job chartJob, opts Options) chartOutcome {
	out := chartOutcome{candidateIdx: job.candidateIdx, file: job.file}

	data, err := os.ReadFile(job.file.fullPath)
	if err != nil {
		out.err = syncerr.IO(job.file.fullPath, err)
		return out
	}

	parsed, err := chartfile.Parse(data, job.file.fullPath)
	if err != nil {
		out.err = err
		return out
	}
	out.parsed = parsed

	if !opts.SkipHashing {
		md5Sum := md5.Sum(data)
		out.md5 = hex.EncodeToString(md5Sum[:])
		sha := sha256.Sum256(data)
		out.sha256 = hex.EncodeToString(sha[:])
	}

	return out
}

func assembleSet(candidate folderCandidate, outcomes []chartOutcome, files []classifiedFile, opts Options) (models.BeatmapSet, []string) {
	var warnings []string
	set := models.BeatmapSet{FolderName: candidate.name}

	var groupSetID *int32
	type named struct {
		outcome chartOutcome
		diff    models.Difficulty
	}
	var byVersion = make(map[string][]int)
	var all []named

	for _, o := range outcomes {
		if o.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: chart parse failed: %v", filepath.Join(candidate.name, o.file.filename), o.err))
			continue
		}
		diff := models.Difficulty{
			Metadata:           o.parsed.Metadata,
			HPDrain:            o.parsed.HPDrain,
			CircleSize:         o.parsed.CircleSize,
			OverallDifficulty:  o.parsed.OverallDifficulty,
			ApproachRate:       o.parsed.ApproachRate,
			SliderMultiplier:   o.parsed.SliderMultiplier,
			SliderTickRate:     o.parsed.SliderTickRate,
			SHA256:             o.sha256,
			MD5:                o.md5,
			AudioFilename:      o.parsed.AudioFilename,
			BackgroundFilename: o.parsed.BackgroundFilename,
			LengthMs:           o.parsed.LengthMs,
			BPM:                o.parsed.BPM,
			Mode:               o.parsed.Mode,
			Version:            o.parsed.Version,
			TimingPoints:       o.parsed.TimingPoints,
			SourceFile:         o.file.filename,
		}

		if id := o.parsed.Metadata.OnlineSetID; id > 0 {
			if groupSetID == nil {
				groupSetID = &id
			} else if *groupSetID != id {
				warnings = append(warnings, fmt.Sprintf("%s: beatmap set id %d disagrees with %d already recorded for this folder", candidate.name, id, *groupSetID))
			}
		}

		idx := len(all)
		all = append(all, named{outcome: o, diff: diff})
		byVersion[diff.Version] = append(byVersion[diff.Version], idx)
	}

	for _, indices := range byVersion {
		if len(indices) < 2 {
			continue
		}
		sort.Slice(indices, func(i, j int) bool {
			return all[indices[i]].outcome.file.modTime.After(all[indices[j]].outcome.file.modTime)
		})
		for _, loserIdx := range indices[1:] {
			all[loserIdx].diff.DuplicateWithinFolder = true
		}
	}

	for _, n := range all {
		set.Difficulties = append(set.Difficulties, n.diff)
	}
	set.OnlineSetID = groupSetID

	for _, f := range files {
		entry := models.FileEntry{Filename: f.filename, Size: f.size}
		switch f.kind {
		case kindChart:
			for _, n := range all {
				if n.outcome.file.filename == f.filename {
					entry.Hash = n.diff.SHA256
				}
			}
		default:
			entry.Hash = cheapFingerprint(f.size, f.modTime)
		}
		set.Files = append(set.Files, entry)
	}

	return set, warnings
}

// cheapFingerprint derives a change-detection token from size and mtime
// for non-chart files. It is never used for correctness decisions, only
// to notice that a file has probably changed since last seen.
func cheapFingerprint(size int64, modTime time.Time) string {
	return fmt.Sprintf("%d-%d", size, modTime.UnixNano())
}
