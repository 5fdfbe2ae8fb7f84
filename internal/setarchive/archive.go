// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package setarchive reads and writes the single-set export archive: a
// zip holding one beatmap set's chart files, audio, backgrounds and
// assets at the top level, with storyboard assets keeping their relative
// sub-paths. Entries are written with the Store method so both clients
// can open the result; deflate-compressed archives are accepted on read.
package setarchive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/osusync/bridge/internal/chartfile"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// Extension is the conventional suffix for a set export archive.
const Extension = ".osz"

// Export packs the set's legacy folder under songsRoot into an archive in
// destDir and returns the archive path. The folder must contain at least
// one chart file. The archive is written to a temp name and renamed into
// place, so a failed export never leaves a partial archive behind.
func Export(set models.BeatmapSet, songsRoot, destDir string) (string, error) {
	folder := set.FolderName
	if folder == "" {
		folder = set.GenerateFolderName()
	}
	srcDir := filepath.Join(songsRoot, folder)
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return "", syncerr.NotFound(srcDir)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", syncerr.IO(destDir, err)
	}
	destPath := filepath.Join(destDir, models.SanitiseFilename(folder)+Extension)

	tmp := destPath + ".tmp"
	chartCount, err := writeArchive(tmp, srcDir)
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	if chartCount == 0 {
		os.Remove(tmp)
		return "", syncerr.InvalidArchive(destPath, "set folder contains no chart files")
	}
	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp)
		return "", syncerr.IO(destPath, err)
	}
	return destPath, nil
}

func writeArchive(archivePath, srcDir string) (chartCount int, err error) {
	out, err := os.Create(archivePath) //nolint:gosec // path derived from the caller's destDir
	if err != nil {
		return 0, syncerr.IO(archivePath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return syncerr.IO(path, err)
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return syncerr.IO(path, err)
		}
		if strings.EqualFold(filepath.Ext(rel), ".osu") {
			chartCount++
		}
		return addEntry(zw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		zw.Close()
		return 0, walkErr
	}
	if err := zw.Close(); err != nil {
		return 0, syncerr.IO(archivePath, err)
	}
	if err := out.Close(); err != nil {
		return 0, syncerr.IO(archivePath, err)
	}
	return chartCount, nil
}

func addEntry(zw *zip.Writer, fullPath, entryName string) error {
	src, err := os.Open(fullPath) //nolint:gosec // path comes from the walk over the set's own folder
	if err != nil {
		return syncerr.IO(fullPath, err)
	}
	defer src.Close()

	// Store, not deflate: the legacy client rejects compressed entries
	// in some code paths and stored archives stay seekable for both.
	w, err := zw.CreateHeader(&zip.FileHeader{Name: entryName, Method: zip.Store})
	if err != nil {
		return syncerr.Wrap(syncerr.KindIO, "failed to create archive entry", err).WithPath(entryName)
	}
	if _, err := io.Copy(w, src); err != nil {
		return syncerr.IO(fullPath, err)
	}
	return nil
}

// Import extracts archivePath into a new folder under songsRoot and
// returns the folder name. The folder name follows the legacy convention,
// derived from the first chart entry's metadata; when no chart parses,
// the archive's own basename is used. Extraction happens under a
// .tmp-<uuid> sibling that is renamed into place on success, so a failed
// import leaves nothing behind. An existing destination folder is never
// overwritten.
func Import(archivePath, songsRoot string) (string, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", syncerr.Wrap(syncerr.KindInvalidArchive, "not a valid zip archive", err).WithPath(archivePath)
	}
	defer rc.Close()

	var charts []*zip.File
	for _, zf := range rc.File {
		if !zf.FileInfo().IsDir() && strings.EqualFold(filepath.Ext(zf.Name), ".osu") {
			charts = append(charts, zf)
		}
	}
	if len(charts) == 0 {
		return "", syncerr.InvalidArchive(archivePath, "archive contains no chart files")
	}

	folder := folderNameFor(archivePath, charts[0])
	destDir := filepath.Join(songsRoot, folder)
	if _, err := os.Stat(destDir); err == nil {
		return "", syncerr.New(syncerr.KindOther, "destination folder already exists").WithPath(destDir)
	}

	tmpDir := filepath.Join(songsRoot, ".tmp-"+uuid.NewString())
	if err := os.MkdirAll(tmpDir, 0o750); err != nil {
		return "", syncerr.IO(tmpDir, err)
	}
	for _, zf := range rc.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if err := extractEntry(zf, tmpDir); err != nil {
			os.RemoveAll(tmpDir)
			return "", err
		}
	}
	if err := os.Rename(tmpDir, destDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", syncerr.IO(destDir, err)
	}
	return folder, nil
}

// folderNameFor derives the destination folder name from the first chart
// entry's metadata, falling back to the archive basename when the chart
// does not parse.
func folderNameFor(archivePath string, chart *zip.File) string {
	src, err := chart.Open()
	if err == nil {
		buf, readErr := io.ReadAll(io.LimitReader(src, 4<<20))
		src.Close()
		if readErr == nil {
			if parsed, parseErr := chartfile.Parse(buf, chart.Name); parseErr == nil {
				set := models.BeatmapSet{
					Difficulties: []models.Difficulty{{Metadata: parsed.Metadata}},
				}
				if id := parsed.Metadata.OnlineSetID; id > 0 {
					set.OnlineSetID = &id
				}
				if name := set.GenerateFolderName(); strings.TrimSpace(name) != "-" {
					return name
				}
			}
		}
	}
	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return models.SanitiseFilename(base)
}

func extractEntry(zf *zip.File, destRoot string) error {
	cleaned := filepath.Clean(filepath.FromSlash(zf.Name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return syncerr.InvalidArchive(zf.Name, "archive entry escapes destination root")
	}
	destPath := filepath.Join(destRoot, cleaned)
	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return syncerr.IO(destPath, err)
	}

	src, err := zf.Open()
	if err != nil {
		return syncerr.Wrap(syncerr.KindIO, "failed to read archive entry", err).WithPath(zf.Name)
	}
	defer src.Close()

	out, err := os.Create(destPath) //nolint:gosec // destPath is validated against destRoot above
	if err != nil {
		return syncerr.IO(destPath, err)
	}
	if _, err := io.Copy(out, src); err != nil { //nolint:gosec // set archives are local user data
		out.Close()
		return syncerr.IO(destPath, err)
	}
	if err := out.Close(); err != nil {
		return syncerr.IO(destPath, err)
	}
	return nil
}
