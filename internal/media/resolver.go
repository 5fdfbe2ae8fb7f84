// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/store"
	"github.com/osusync/bridge/internal/syncerr"
)

// SourceResolver reads the bytes of one named file belonging to a
// beatmap set, abstracting over where a set's physical files actually
// live: a named folder on a legacy installation, or a content-addressed
// store on a modern one.
type SourceResolver interface {
	Resolve(set models.BeatmapSet, filename string) ([]byte, error)
}

// StableResolver reads files directly out of a legacy installation's
// Songs/<folder>/ directory.
type StableResolver struct {
	Root string
}

// Resolve implements SourceResolver.
func (r StableResolver) Resolve(set models.BeatmapSet, filename string) ([]byte, error) {
	if filename == "" {
		return nil, syncerr.New(syncerr.KindNotFound, "no filename recorded")
	}
	path := filepath.Join(r.Root, "Songs", set.FolderName, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syncerr.NotFound(path)
		}
		return nil, syncerr.IO(path, err)
	}
	return data, nil
}

// LazerResolver reads files out of a modern installation's content-
// addressed store, looking up the hash for filename among the set's
// recorded file entries.
type LazerResolver struct {
	Store *store.Store
}

// Resolve implements SourceResolver.
func (r LazerResolver) Resolve(set models.BeatmapSet, filename string) ([]byte, error) {
	if filename == "" {
		return nil, syncerr.New(syncerr.KindNotFound, "no filename recorded")
	}
	for _, f := range set.Files {
		if strings.EqualFold(f.Filename, filename) {
			return r.Store.Read(f.Hash)
		}
	}
	return nil, syncerr.NotFound(filename)
}
