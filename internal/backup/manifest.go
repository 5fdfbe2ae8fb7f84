// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/osusync/bridge/internal/syncerr"
)

const manifestSuffix = ".manifest.json"

// marshalInfo renders a backup_info.json payload.
func marshalInfo(info Info) ([]byte, error) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, syncerr.Wrap(syncerr.KindOther, "failed to marshal backup_info.json", err)
	}
	return data, nil
}

// manifestPathFor returns the sidecar manifest path for an archive path.
func manifestPathFor(archivePath string) string {
	return archivePath + manifestSuffix
}

// fingerprint computes a SHA-256 content fingerprint for path.
func fingerprint(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from a directory walk under the configured target root
	if err != nil {
		return "", syncerr.IO(path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", syncerr.IO(path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// walkTarget lists every regular file under root, relative-pathed and
// sorted, skipping dotfiles and the manifest/info sidecars a prior
// backup may have left alongside the root by mistake.
func walkTarget(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.HasSuffix(d.Name(), manifestSuffix) || d.Name() == infoEntryName {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, syncerr.IO(root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// buildManifestEntry stats and fingerprints one file under root.
func buildManifestEntry(root, relPath string) (ManifestEntry, error) {
	full := filepath.Join(root, filepath.FromSlash(relPath))
	info, err := os.Stat(full)
	if err != nil {
		return ManifestEntry{}, syncerr.IO(full, err)
	}
	fp, err := fingerprint(full)
	if err != nil {
		return ManifestEntry{}, err
	}
	return ManifestEntry{
		Path:               relPath,
		ModifiedUnixSecs:   info.ModTime().Unix(),
		ContentFingerprint: fp,
		Size:               info.Size(),
	}, nil
}

// writeManifest persists m as the sidecar for archivePath, atomically.
func writeManifest(archivePath string, m *Manifest) (string, error) {
	path := manifestPathFor(archivePath)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", syncerr.Wrap(syncerr.KindOther, "failed to marshal backup manifest", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // sidecar manifest, not secret material
		return "", syncerr.IO(tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return "", syncerr.IO(path, err)
	}
	return path, nil
}

// readManifest loads the sidecar manifest at path.
func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is constructed from a known backup destination directory
	if err != nil {
		return nil, syncerr.IO(path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, syncerr.Wrap(syncerr.KindParseFailure, "malformed backup manifest", err).WithPath(path)
	}
	return &m, nil
}

// latestManifest finds the most recently written *.manifest.json in dir,
// for an incremental backup's diff baseline. It returns (nil, "", nil)
// when dir holds no prior manifest.
func latestManifest(dir string) (*Manifest, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", syncerr.IO(dir, err)
	}

	var newestPath string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), manifestSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newestPath == "" || info.ModTime().After(newestMod) {
			newestPath = filepath.Join(dir, e.Name())
			newestMod = info.ModTime()
		}
	}
	if newestPath == "" {
		return nil, "", nil
	}

	m, err := readManifest(newestPath)
	if err != nil {
		return nil, "", err
	}
	return m, strings.TrimSuffix(filepath.Base(newestPath), manifestSuffix), nil
}
