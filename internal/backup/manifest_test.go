// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkTargetSkipsDotfilesAndSortsResults(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "b.osu"), "b")
	writeTestFile(t, filepath.Join(root, "a.osu"), "a")
	writeTestFile(t, filepath.Join(root, ".hidden"), "nope")
	writeTestFile(t, filepath.Join(root, ".git", "config"), "nope")

	paths, err := walkTarget(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.osu", "b.osu"}, paths)
}

func TestBuildManifestEntryComputesFingerprint(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "set", "a.osu"), "hello world")

	entry, err := buildManifestEntry(root, "set/a.osu")
	require.NoError(t, err)
	assert.Equal(t, "set/a.osu", entry.Path)
	assert.Equal(t, int64(len("hello world")), entry.Size)
	assert.NotEmpty(t, entry.ContentFingerprint)

	again, err := buildManifestEntry(root, "set/a.osu")
	require.NoError(t, err)
	assert.Equal(t, entry.ContentFingerprint, again.ContentFingerprint)
}

func TestWriteReadManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "backup.zip")
	m := &Manifest{Entries: []ManifestEntry{
		{Path: "a.osu", ModifiedUnixSecs: 100, ContentFingerprint: "abc", Size: 5},
	}}

	path, err := writeManifest(archivePath, m)
	require.NoError(t, err)
	assert.Equal(t, archivePath+manifestSuffix, path)

	loaded, err := readManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, loaded.Entries)
}

func TestLatestManifestReturnsNilWhenDirEmpty(t *testing.T) {
	dir := t.TempDir()
	m, name, err := latestManifest(dir)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, name)
}

func TestLatestManifestReturnsNilWhenDirMissing(t *testing.T) {
	m, name, err := latestManifest(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, name)
}

func TestLatestManifestFindsMostRecent(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "backup-full-1.zip")
	newer := filepath.Join(dir, "backup-full-2.zip")

	_, err := writeManifest(older, &Manifest{Entries: []ManifestEntry{{Path: "old.osu"}}})
	require.NoError(t, err)

	olderInfo, err := os.Stat(older + manifestSuffix)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(older+manifestSuffix, olderInfo.ModTime(), olderInfo.ModTime()))

	_, err = writeManifest(newer, &Manifest{Entries: []ManifestEntry{{Path: "new.osu"}}})
	require.NoError(t, err)
	newerInfo, err := os.Stat(newer + manifestSuffix)
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(newer+manifestSuffix, newerInfo.ModTime().Add(time.Hour), newerInfo.ModTime().Add(time.Hour)))

	m, base, err := latestManifest(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "new.osu", m.Entries[0].Path)
	assert.Equal(t, "backup-full-2.zip", base)
}
