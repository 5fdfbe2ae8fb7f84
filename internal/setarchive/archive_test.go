// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package setarchive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/scanner"
	"github.com/osusync/bridge/internal/syncerr"
)

const exportChart = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[Metadata]
Title:Bangin' Burst
TitleUnicode:Bangin' Burst
Artist:Camellia
ArtistUnicode:Camellia
Creator:Sotarks
Version:Collab Extra
Source:
Tags:electronic speedcore
BeatmapID:456
BeatmapSetID:123

[Difficulty]
HPDrainRate:6
CircleSize:4
OverallDifficulty:8
ApproachRate:9.3
SliderMultiplier:1.4
SliderTickRate:2

[TimingPoints]
1000,300,4,2,0,60,1,0

[HitObjects]
100,100,1000,1,0,0:0:0:0:
`

func writeSourceSet(t *testing.T, songsRoot, folder string) {
	t.Helper()
	dir := filepath.Join(songsRoot, folder)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sb"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.osu"), []byte(exportChart), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("fake audio bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bg.jpg"), []byte("fake image bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sb", "spark.png"), []byte("storyboard asset"), 0o644))
}

func TestExportWritesStoredEntries(t *testing.T) {
	songsRoot := t.TempDir()
	folder := "123 Camellia - Bangin' Burst"
	writeSourceSet(t, songsRoot, folder)

	set := models.BeatmapSet{FolderName: folder}
	archivePath, err := Export(set, songsRoot, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Extension, filepath.Ext(archivePath))

	rc, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer rc.Close()

	names := make(map[string]uint16, len(rc.File))
	for _, zf := range rc.File {
		names[zf.Name] = zf.Method
	}
	assert.Equal(t, uint16(zip.Store), names["song.osu"])
	assert.Equal(t, uint16(zip.Store), names["audio.mp3"])
	assert.Contains(t, names, "sb/spark.png")
}

func TestExportImportRoundTripPreservesMD5Set(t *testing.T) {
	sourceRoot := t.TempDir()
	sourceSongs := filepath.Join(sourceRoot, "Songs")
	folder := "123 Camellia - Bangin' Burst"
	writeSourceSet(t, sourceSongs, folder)

	archivePath, err := Export(models.BeatmapSet{FolderName: folder}, sourceSongs, t.TempDir())
	require.NoError(t, err)

	scratchRoot := t.TempDir()
	scratchSongs := filepath.Join(scratchRoot, "Songs")
	require.NoError(t, os.MkdirAll(scratchSongs, 0o755))
	imported, err := Import(archivePath, scratchSongs)
	require.NoError(t, err)
	assert.Equal(t, folder, imported)

	// The round-trip law: the imported set's difficulty MD5 set equals
	// the source's, observed through a real scan of both trees.
	sourceScan, err := scanner.Scan(context.Background(), sourceRoot, scanner.Options{})
	require.NoError(t, err)
	scratchScan, err := scanner.Scan(context.Background(), scratchRoot, scanner.Options{})
	require.NoError(t, err)
	require.Len(t, sourceScan.Sets, 1)
	require.Len(t, scratchScan.Sets, 1)
	assert.Equal(t, sourceScan.Sets[0].MD5Set(), scratchScan.Sets[0].MD5Set())

	// Nothing temp-suffixed may survive a successful import.
	entries, err := os.ReadDir(scratchSongs)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestExportRejectsFolderWithoutCharts(t *testing.T) {
	songsRoot := t.TempDir()
	dir := filepath.Join(songsRoot, "no charts here")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("x"), 0o644))

	destDir := t.TempDir()
	_, err := Export(models.BeatmapSet{FolderName: "no charts here"}, songsRoot, destDir)
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindInvalidArchive))

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportMissingFolderIsNotFound(t *testing.T) {
	_, err := Export(models.BeatmapSet{FolderName: "never existed"}, t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindNotFound))
}

func TestImportRejectsArchiveWithoutCharts(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "empty.osz")
	out, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.Create("audio.mp3")
	require.NoError(t, err)
	_, err = w.Write([]byte("not a chart"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	_, err = Import(archivePath, t.TempDir())
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindInvalidArchive))
}

func TestImportAcceptsDeflateCompressedArchive(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "compressed.osz")
	out, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "song.osu", Method: zip.Deflate})
	require.NoError(t, err)
	_, err = w.Write([]byte(exportChart))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	songsRoot := t.TempDir()
	folder, err := Import(archivePath, songsRoot)
	require.NoError(t, err)
	assert.Equal(t, "123 Camellia - Bangin' Burst", folder)

	buf, err := os.ReadFile(filepath.Join(songsRoot, folder, "song.osu"))
	require.NoError(t, err)
	assert.Equal(t, exportChart, string(buf))
}

func TestImportRefusesExistingDestination(t *testing.T) {
	sourceRoot := t.TempDir()
	folder := "123 Camellia - Bangin' Burst"
	writeSourceSet(t, sourceRoot, folder)
	archivePath, err := Export(models.BeatmapSet{FolderName: folder}, sourceRoot, t.TempDir())
	require.NoError(t, err)

	songsRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(songsRoot, folder), 0o755))

	_, err = Import(archivePath, songsRoot)
	require.Error(t, err)
}

func TestImportRejectsEscapingEntry(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "slip.osz")
	out, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.Create("song.osu")
	require.NoError(t, err)
	_, err = w.Write([]byte(exportChart))
	require.NoError(t, err)
	w, err = zw.Create("../outside.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("escape attempt"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	songsRoot := t.TempDir()
	_, err = Import(archivePath, songsRoot)
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindInvalidArchive))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(songsRoot), "outside.txt"))
}
