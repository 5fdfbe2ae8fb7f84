// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chartfile parses the legacy .osu text chart format: key-value
// lines organised by [Section] headers. Only the fields the bridge
// consumes are decoded; everything else is skipped. A malformed chart
// file yields a structured error and never panics — the scanner degrades
// the owning set rather than aborting the whole walk.
package chartfile

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// Parsed is the subset of a .osu file the bridge cares about.
type Parsed struct {
	Metadata models.Metadata
	Version  string // diff name, from Metadata:Version

	AudioFilename      string
	BackgroundFilename string

	HPDrain           float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderMultiplier  float64
	SliderTickRate    float64

	Mode models.GameMode

	// LengthMs is last hit-object start time minus first, not the last
	// timestamp alone.
	LengthMs int64
	BPM      float64

	TimingPoints []models.TimingPoint
}

// Parse decodes raw .osu file bytes.
func Parse(buf []byte, path string) (*Parsed, error) {
	if len(buf) == 0 {
		return nil, syncerr.ParseFailure(path, 0, "file", syncerr.New(syncerr.KindParseFailure, "empty chart file"))
	}

	p := &Parsed{ApproachRate: 5, SliderMultiplier: 1, SliderTickRate: 1}
	section := ""
	var hitObjectTimes []int64
	var backgroundSet bool

	scanner := bufio.NewScanner(strings.NewReader(string(buf)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			continue
		}

		switch section {
		case "General":
			parseGeneral(p, line)
		case "Metadata":
			parseMetadata(p, line)
		case "Difficulty":
			parseDifficulty(p, line)
		case "Events":
			if !backgroundSet {
				if bg, ok := parseBackgroundEvent(line); ok {
					p.BackgroundFilename = bg
					backgroundSet = true
				}
			}
		case "TimingPoints":
			if tp, ok := parseTimingPoint(line); ok {
				p.TimingPoints = append(p.TimingPoints, tp)
			}
		case "HitObjects":
			if t, ok := parseHitObjectTime(line); ok {
				hitObjectTimes = append(hitObjectTimes, t)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, syncerr.ParseFailure(path, int64(lineNo), "file", err)
	}

	if len(hitObjectTimes) > 0 {
		p.LengthMs = hitObjectTimes[len(hitObjectTimes)-1] - hitObjectTimes[0]
	}
	if len(p.TimingPoints) > 0 && p.TimingPoints[0].BeatLength > 0 {
		p.BPM = 60000 / p.TimingPoints[0].BeatLength
	}

	if p.Metadata.Title == "" && p.Version == "" {
		return nil, syncerr.ParseFailure(path, 0, "Metadata", syncerr.New(syncerr.KindParseFailure, "no [Metadata] section found"))
	}

	return p, nil
}

func keyValue(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func parseGeneral(p *Parsed, line string) {
	k, v, ok := keyValue(line)
	if !ok {
		return
	}
	switch k {
	case "AudioFilename":
		p.AudioFilename = v
	case "Mode":
		if n, err := strconv.Atoi(v); err == nil {
			p.Mode = models.GameMode(n)
		}
	}
}

func parseMetadata(p *Parsed, line string) {
	k, v, ok := keyValue(line)
	if !ok {
		return
	}
	switch k {
	case "Title":
		p.Metadata.Title = v
	case "TitleUnicode":
		p.Metadata.TitleUnicode = v
	case "Artist":
		p.Metadata.Artist = v
	case "ArtistUnicode":
		p.Metadata.ArtistUnicode = v
	case "Creator":
		p.Metadata.Creator = v
	case "Version":
		p.Version = v
	case "Source":
		p.Metadata.Source = v
	case "Tags":
		if v != "" {
			p.Metadata.Tags = strings.Fields(v)
		}
	case "BeatmapID":
		if n, err := strconv.Atoi(v); err == nil {
			p.Metadata.OnlineBeatmapID = int32(n)
		}
	case "BeatmapSetID":
		if n, err := strconv.Atoi(v); err == nil {
			p.Metadata.OnlineSetID = int32(n)
		}
	}
}

func parseDifficulty(p *Parsed, line string) {
	k, v, ok := keyValue(line)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	switch k {
	case "HPDrainRate":
		p.HPDrain = f
	case "CircleSize":
		p.CircleSize = f
	case "OverallDifficulty":
		p.OverallDifficulty = f
	case "ApproachRate":
		p.ApproachRate = f
	case "SliderMultiplier":
		p.SliderMultiplier = f
	case "SliderTickRate":
		p.SliderTickRate = f
	}
}

// parseBackgroundEvent recognises the first type-0 event in the Events
// section, whose third field is the background filename in quotes.
func parseBackgroundEvent(line string) (string, bool) {
	parts := strings.SplitN(line, ",", 4)
	if len(parts) < 3 {
		return "", false
	}
	if parts[0] != "0" && parts[0] != "Background" {
		return "", false
	}
	filename := strings.Trim(strings.TrimSpace(parts[2]), "\"")
	if filename == "" {
		return "", false
	}
	return filename, true
}

func parseTimingPoint(line string) (models.TimingPoint, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return models.TimingPoint{}, false
	}
	offset, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.TimingPoint{}, false
	}
	beatLength, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.TimingPoint{}, false
	}
	uninherited := true
	if len(parts) >= 7 {
		if parts[6] == "0" {
			uninherited = false
		}
	}
	return models.TimingPoint{OffsetMs: offset, BeatLength: beatLength, Uninherited: uninherited}, true
}

func parseHitObjectTime(line string) (int64, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return 0, false
	}
	t, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return 0, false
	}
	return t, true
}
