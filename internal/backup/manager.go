// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"archive/zip"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	kflate "github.com/klauspost/compress/flate"

	"github.com/osusync/bridge/internal/syncerr"
)

// Manager builds and restores library backups. It has no mutable state
// of its own; every call is independent and safe to run concurrently
// against different archives.
type Manager struct{}

// NewManager returns a ready-to-use Manager.
func NewManager() *Manager {
	return &Manager{}
}

func noopProgress(Progress) {}

// BuildBackup archives target (a Stable or Lazer library root) into
// destDir, named "<base>-<mode>-<timestamp>.zip". For ModeIncremental it
// diffs target against the most recent manifest already in destDir and
// archives only the files that are new or changed; if destDir holds no
// prior manifest it silently falls back to a full archive.
func (m *Manager) BuildBackup(ctx context.Context, target, destDir string, mode Mode, level CompressionLevel, onProgress ProgressFunc) (*Result, error) {
	if onProgress == nil {
		onProgress = noopProgress
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return nil, syncerr.NotFound(target)
	}
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, syncerr.IO(destDir, err)
	}

	onProgress(Progress{Phase: PhaseScanning})
	paths, err := walkTarget(target)
	if err != nil {
		return nil, err
	}

	var baseline *Manifest
	var baseName string
	isIncremental := false
	if mode == ModeIncremental {
		baseline, baseName, err = latestManifest(destDir)
		if err != nil {
			return nil, err
		}
		isIncremental = baseline != nil
	}

	entries := make([]ManifestEntry, 0, len(paths))
	var toArchive []string
	var baseIndex map[string]ManifestEntry
	if baseline != nil {
		baseIndex = baseline.byPath()
	}

	var totalSize int64
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, syncerr.Cancelled()
		}
		entry, err := buildManifestEntry(target, rel)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		totalSize += entry.Size

		if baseIndex != nil {
			if prior, ok := baseIndex[rel]; ok && prior.ContentFingerprint == entry.ContentFingerprint && prior.Size == entry.Size {
				continue
			}
		}
		toArchive = append(toArchive, rel)
	}

	timestamp := archiveTimestamp(ctx)
	archiveName := fmt.Sprintf("%s-%s-%s.zip", filepath.Base(target), mode, timestamp)
	archivePath := filepath.Join(destDir, archiveName)

	if err := m.writeArchive(ctx, archivePath, target, toArchive, level, len(paths), onProgress); err != nil {
		return nil, err
	}

	info2 := Info{
		Target:           target,
		Mode:             mode,
		CompressionLevel: level,
		FileCount:        len(toArchive),
		TotalSize:        totalSize,
		IsIncremental:    isIncremental,
		BaseBackup:       baseName,
		ToolVersion:      ToolVersion,
	}
	if err := m.appendInfo(archivePath, info2); err != nil {
		return nil, err
	}

	onProgress(Progress{Phase: PhaseVerifying, FilesDone: len(toArchive), BytesDone: totalSize})
	manifestPath, err := writeManifest(archivePath, &Manifest{Entries: entries})
	if err != nil {
		return nil, err
	}

	onProgress(Progress{Phase: PhaseDone, FilesDone: len(toArchive), BytesDone: totalSize})
	return &Result{Info: info2, ArchivePath: archivePath, ManifestPath: manifestPath}, nil
}

// archiveTimestamp is its own function so tests can't observe wall-clock
// flakiness across a run boundary; production always uses time.Now.
var archiveTimestamp = func(context.Context) string {
	return time.Now().UTC().Format("20060102T150405Z")
}

func (m *Manager) writeArchive(ctx context.Context, archivePath, target string, relPaths []string, level CompressionLevel, totalFiles int, onProgress ProgressFunc) error {
	tmp := archivePath + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // archivePath is constructed from a configured backup destination directory
	if err != nil {
		return syncerr.IO(tmp, err)
	}

	zw := zip.NewWriter(f)
	if level == CompressionBest {
		// klauspost/compress's deflate implementation packs tighter than
		// the standard library's at the same nominal level.
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return kflate.NewWriter(w, int(level))
		})
	} else {
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, int(level))
		})
	}

	onProgress(Progress{Phase: PhaseCompressing})
	var bytesDone int64
	for i, rel := range relPaths {
		if err := ctx.Err(); err != nil {
			zw.Close() //nolint:errcheck // aborting on cancellation
			f.Close()  //nolint:errcheck
			os.Remove(tmp)
			return syncerr.Cancelled()
		}

		full := filepath.Join(target, filepath.FromSlash(rel))
		n, err := addFileToZip(zw, full, rel)
		if err != nil {
			zw.Close() //nolint:errcheck
			f.Close()  //nolint:errcheck
			os.Remove(tmp)
			return err
		}
		bytesDone += n
		onProgress(Progress{Phase: PhaseCompressing, FilesDone: i + 1, BytesDone: bytesDone, Current: rel})
	}

	if err := zw.Close(); err != nil {
		f.Close() //nolint:errcheck
		os.Remove(tmp)
		return syncerr.Wrap(syncerr.KindIO, "failed to finalise archive", err).WithPath(archivePath)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return syncerr.IO(archivePath, err)
	}

	onProgress(Progress{Phase: PhaseWriting, FilesDone: len(relPaths), BytesDone: bytesDone})
	if err := os.Rename(tmp, archivePath); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return syncerr.IO(archivePath, err)
	}
	return nil
}

func addFileToZip(zw *zip.Writer, fullPath, relPath string) (int64, error) {
	src, err := os.Open(fullPath) //nolint:gosec // fullPath is derived from a directory walk under the configured target root
	if err != nil {
		return 0, syncerr.IO(fullPath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, syncerr.IO(fullPath, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, syncerr.Wrap(syncerr.KindOther, "failed to build zip header", err).WithPath(fullPath)
	}
	header.Name = relPath
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, syncerr.Wrap(syncerr.KindIO, "failed to add archive entry", err).WithPath(relPath)
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return n, syncerr.IO(fullPath, err)
	}
	return n, nil
}

// appendInfo adds backup_info.json as the final entry of the just-closed
// archive. archive/zip has no append mode, so this reopens the archive
// read-only, copies every entry into a fresh zip alongside backup_info,
// then swaps the two files in.
func (m *Manager) appendInfo(archivePath string, info Info) error {
	data, err := marshalInfo(info)
	if err != nil {
		return err
	}

	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return syncerr.Wrap(syncerr.KindInvalidArchive, "failed to reopen archive to add backup_info.json", err).WithPath(archivePath)
	}
	defer rc.Close()

	tmp := archivePath + ".withinfo.tmp"
	out, err := os.Create(tmp) //nolint:gosec // tmp path is derived from the caller's own archivePath
	if err != nil {
		return syncerr.IO(tmp, err)
	}
	zw := zip.NewWriter(out)

	for _, zf := range rc.File {
		w, err := zw.CreateHeader(&zf.FileHeader)
		if err != nil {
			zw.Close() //nolint:errcheck
			out.Close() //nolint:errcheck
			os.Remove(tmp)
			return syncerr.Wrap(syncerr.KindIO, "failed to copy archive entry", err).WithPath(zf.Name)
		}
		src, err := zf.Open()
		if err != nil {
			zw.Close() //nolint:errcheck
			out.Close() //nolint:errcheck
			os.Remove(tmp)
			return syncerr.Wrap(syncerr.KindIO, "failed to read archive entry", err).WithPath(zf.Name)
		}
		_, copyErr := io.Copy(w, src)
		src.Close()
		if copyErr != nil {
			zw.Close() //nolint:errcheck
			out.Close() //nolint:errcheck
			os.Remove(tmp)
			return syncerr.IO(zf.Name, copyErr)
		}
	}

	w, err := zw.Create("backup_info.json")
	if err != nil {
		zw.Close() //nolint:errcheck
		out.Close() //nolint:errcheck
		os.Remove(tmp)
		return syncerr.Wrap(syncerr.KindIO, "failed to add backup_info.json", err)
	}
	if _, err := w.Write(data); err != nil {
		zw.Close() //nolint:errcheck
		out.Close() //nolint:errcheck
		os.Remove(tmp)
		return syncerr.IO("backup_info.json", err)
	}

	if err := zw.Close(); err != nil {
		out.Close() //nolint:errcheck
		os.Remove(tmp)
		return syncerr.Wrap(syncerr.KindIO, "failed to finalise archive", err).WithPath(archivePath)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return syncerr.IO(archivePath, err)
	}
	rc.Close() //nolint:errcheck // reopen must release its read handle before the rename below

	if err := os.Rename(tmp, archivePath); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return syncerr.IO(archivePath, err)
	}
	return nil
}
