// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/resolver"
	"github.com/osusync/bridge/internal/store"
	"github.com/osusync/bridge/internal/syncerr"
)

// Importer materialises one selected plan entry into the target
// installation's on-disk format. For LazerToStable, a set's files are
// written under a ".tmp-<uuid>" staging folder that an atomic rename
// commits. For StableToLazer, file bytes go straight into the content
// store (each file staged and renamed on its own), and the import
// manifest, staged under a ".tmp-<uuid>" name and renamed into place,
// is the commit point.
type Importer struct {
	SourceRoot string
	TargetRoot string
	Direction  Direction
}

// NewImporter returns an Importer for one sync run's direction.
func NewImporter(sourceRoot, targetRoot string, direction Direction) *Importer {
	return &Importer{SourceRoot: sourceRoot, TargetRoot: targetRoot, Direction: direction}
}

// ImportSet writes set's files into the target installation and returns
// the path it materialised the set under (a folder for LazerToStable, a
// manifest file for StableToLazer), honouring action for an
// ActionDuplicate entry (ActionImport entries always behave as if
// ActionKeepBoth were irrelevant: there is nothing to conflict with).
func (im *Importer) ImportSet(set models.BeatmapSet, action resolver.Action) (path string, err error) {
	switch im.Direction {
	case StableToLazer:
		return im.importStableToLazer(set, action)
	case LazerToStable:
		return im.importLazerToStable(set, action)
	default:
		return "", syncerr.Configuration("direction", "unrecognised sync direction")
	}
}

// manifestEntry is one file reference in a StableToLazer import manifest.
type manifestEntry struct {
	Filename string `json:"filename"`
	Hash     string `json:"hash"`
}

// importManifest is the sidecar the bridge drops into the target's
// import/ folder. The target client picks it up on its next launch and
// registers the set in its own embedded database; the bridge never
// writes to that database directly.
type importManifest struct {
	FolderName  string          `json:"folder_name"`
	OnlineSetID *int32          `json:"online_set_id,omitempty"`
	Files       []manifestEntry `json:"files"`
	ImportedAt  int64           `json:"imported_at_unix"`
}

func (im *Importer) importStableToLazer(set models.BeatmapSet, action resolver.Action) (string, error) {
	contentStore := store.New(im.TargetRoot)
	folder := filepath.Join(im.SourceRoot, "Songs", set.FolderName)

	var entries []manifestEntry
	for _, f := range set.Files {
		data, err := os.ReadFile(filepath.Join(folder, f.Filename))
		if err != nil {
			return "", syncerr.IO(filepath.Join(folder, f.Filename), err)
		}
		hash, _, err := contentStore.Write(data)
		if err != nil {
			return "", err
		}
		entries = append(entries, manifestEntry{Filename: f.Filename, Hash: hash})
	}

	dropDir := filepath.Join(im.TargetRoot, "import")
	if err := os.MkdirAll(dropDir, 0o755); err != nil {
		return "", syncerr.IO(dropDir, err)
	}

	manifestName := manifestFileName(set)
	manifestPath := filepath.Join(dropDir, manifestName)

	if action == resolver.ActionReplace {
		os.Remove(manifestPath)
	}
	if action == resolver.ActionKeepBoth {
		manifestPath = uniquify(manifestPath)
	}

	manifest := importManifest{
		FolderName:  set.FolderName,
		OnlineSetID: set.OnlineSetID,
		Files:       entries,
		ImportedAt:  time.Now().Unix(),
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return "", syncerr.Other("marshal import manifest", err)
	}

	tmp := filepath.Join(dropDir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", syncerr.IO(tmp, err)
	}
	if err := os.Rename(tmp, manifestPath); err != nil {
		os.Remove(tmp)
		return "", syncerr.IO(manifestPath, err)
	}

	return manifestPath, nil
}

func manifestFileName(set models.BeatmapSet) string {
	if set.OnlineSetID != nil {
		return fmt.Sprintf("%d.manifest.json", *set.OnlineSetID)
	}
	return models.SanitiseFilename(set.FolderName) + ".manifest.json"
}

func (im *Importer) importLazerToStable(set models.BeatmapSet, action resolver.Action) (string, error) {
	contentStore := store.New(im.SourceRoot)
	songsDir := filepath.Join(im.TargetRoot, "Songs")
	if err := os.MkdirAll(songsDir, 0o755); err != nil {
		return "", syncerr.IO(songsDir, err)
	}

	finalName := set.GenerateFolderName()
	finalPath := filepath.Join(songsDir, finalName)

	switch action {
	case resolver.ActionReplace:
		os.RemoveAll(finalPath)
	case resolver.ActionKeepBoth:
		finalPath = uniquify(finalPath)
	}

	if _, err := os.Stat(finalPath); err == nil {
		// Never overwrite an existing destination folder: return an
		// "already exists" error, which the engine records as a failed
		// set before it goes on with the next one.
		return "", syncerr.New(syncerr.KindOther, "destination folder already exists")
	}

	stagingDir := filepath.Join(songsDir, ".tmp-"+uuid.NewString())
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", syncerr.IO(stagingDir, err)
	}

	for _, f := range set.Files {
		if f.Hash == "" {
			continue
		}
		data, err := contentStore.Read(f.Hash)
		if err != nil {
			os.RemoveAll(stagingDir)
			return "", err
		}
		dest := filepath.Join(stagingDir, f.Filename)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			os.RemoveAll(stagingDir)
			return "", syncerr.IO(dest, err)
		}
	}

	if err := os.Rename(stagingDir, finalPath); err != nil {
		os.RemoveAll(stagingDir)
		return "", syncerr.IO(finalPath, err)
	}

	return finalPath, nil
}

// uniquify appends a short uniqueness suffix to path (before any
// extension) for the KeepBoth duplicate action.
func uniquify(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s (%s)%s", base, uuid.NewString()[:8], ext)
}
