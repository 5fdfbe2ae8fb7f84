// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/osusync/bridge/internal/syncerr"
)

const infoEntryName = "backup_info.json"

// Restore extracts archivePath onto destRoot, overwriting any files that
// already exist there. backup_info.json is read for validation but not
// written to disk; every other entry is restored at its archived path.
func (m *Manager) Restore(ctx context.Context, archivePath, destRoot string, onProgress ProgressFunc) (*RestoreResult, error) {
	if onProgress == nil {
		onProgress = noopProgress
	}

	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, syncerr.Wrap(syncerr.KindInvalidArchive, "not a valid zip archive", err).WithPath(archivePath)
	}
	defer rc.Close()

	var hasInfo bool
	var contentEntries []*zip.File
	for _, zf := range rc.File {
		if zf.Name == infoEntryName {
			hasInfo = true
			continue
		}
		if zf.FileInfo().IsDir() {
			continue
		}
		contentEntries = append(contentEntries, zf)
	}
	if !hasInfo {
		return nil, syncerr.InvalidArchive(archivePath, "missing backup_info.json")
	}
	if len(contentEntries) == 0 {
		return nil, syncerr.InvalidArchive(archivePath, "archive contains no files")
	}

	if err := os.MkdirAll(destRoot, 0o750); err != nil {
		return nil, syncerr.IO(destRoot, err)
	}

	onProgress(Progress{Phase: PhaseScanning, FilesDone: 0})

	result := &RestoreResult{}
	for i, zf := range contentEntries {
		if err := ctx.Err(); err != nil {
			return nil, syncerr.Cancelled()
		}

		destPath, err := safeJoin(destRoot, zf.Name)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}

		n, err := extractEntry(zf, destPath)
		if err != nil {
			return nil, err
		}
		result.FilesRestored++
		result.BytesRestored += n

		onProgress(Progress{Phase: PhaseWriting, FilesDone: i + 1, BytesDone: result.BytesRestored, Current: zf.Name})
	}

	onProgress(Progress{Phase: PhaseDone, FilesDone: result.FilesRestored, BytesDone: result.BytesRestored})
	return result, nil
}

// safeJoin joins root and name, rejecting any entry whose relative path
// would escape root (a "zip slip" attempt).
func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", syncerr.InvalidArchive(name, "archive entry escapes destination root")
	}
	return filepath.Join(root, cleaned), nil
}

func extractEntry(zf *zip.File, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return 0, syncerr.IO(destPath, err)
	}

	src, err := zf.Open()
	if err != nil {
		return 0, syncerr.Wrap(syncerr.KindIO, "failed to read archive entry", err).WithPath(zf.Name)
	}
	defer src.Close()

	tmp := destPath + ".tmp"
	out, err := os.Create(tmp) //nolint:gosec // destPath is validated by safeJoin against the caller's destRoot
	if err != nil {
		return 0, syncerr.IO(tmp, err)
	}

	n, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tmp) //nolint:errcheck
		return n, syncerr.IO(destPath, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp) //nolint:errcheck
		return n, syncerr.IO(destPath, closeErr)
	}

	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return n, syncerr.IO(destPath, err)
	}
	return n, nil
}
