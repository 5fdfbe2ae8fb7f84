// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package replayexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/models"
)

func writeReplayFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("replay-bytes"), 0o644))
	return path
}

func TestExporterExportsFlat(t *testing.T) {
	root := t.TempDir()
	path := writeReplayFile(t, root, "one.osr")

	replay := models.ReplayDescriptor{
		BeatmapMD5:    "abc123",
		Player:        "Alice",
		Score:         1000000,
		Grade:         models.GradeS,
		HasReplayFile: true,
		ReplayPath:    &path,
	}

	exporter := Exporter{OutputDir: filepath.Join(root, "out"), Organisation: OrganisationFlat}
	result, err := exporter.Export([]models.ReplayDescriptor{replay})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 0, result.Skipped)
}

func TestExporterSkipsMissingFile(t *testing.T) {
	root := t.TempDir()
	replay := models.ReplayDescriptor{BeatmapMD5: "abc123", HasReplayFile: false}

	exporter := Exporter{OutputDir: filepath.Join(root, "out"), Organisation: OrganisationFlat}
	result, err := exporter.Export([]models.ReplayDescriptor{replay})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Exported)
	assert.Equal(t, 1, result.Skipped)
}

func TestExporterByGradeOrganisation(t *testing.T) {
	root := t.TempDir()
	path := writeReplayFile(t, root, "two.osr")

	replay := models.ReplayDescriptor{
		BeatmapMD5:    "abc123",
		Grade:         models.GradeA,
		HasReplayFile: true,
		ReplayPath:    &path,
	}

	exporter := Exporter{OutputDir: filepath.Join(root, "out"), Organisation: OrganisationByGrade}
	_, err := exporter.Export([]models.ReplayDescriptor{replay})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "out", "A"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFormatDateUnknownForZero(t *testing.T) {
	assert.Equal(t, "Unknown", formatDate(0))
}
