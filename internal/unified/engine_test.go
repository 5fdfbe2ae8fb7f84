// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package unified

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuard struct {
	game string
	ok   bool
}

func (g fakeGuard) Running() (string, bool) { return g.game, g.ok }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSetupVerifyTeardownStableMaster(t *testing.T) {
	dir := t.TempDir()
	stableRoot := filepath.Join(dir, "stable")
	lazerRoot := filepath.Join(dir, "lazer")
	require.NoError(t, os.MkdirAll(filepath.Join(stableRoot, "Songs"), 0o755))
	writeFile(t, filepath.Join(stableRoot, "Songs", "map.osu"), "x")

	e := NewEngine(nil)
	cfg := Config{Mode: StableMaster, Resources: []Resource{ResourceBeatmaps}, StableRoot: stableRoot, LazerRoot: lazerRoot}

	warnings, err := e.Setup(cfg)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	verify := e.Verify()
	assert.Equal(t, 1, verify.Total)
	assert.Equal(t, 1, verify.Active)
	assert.Equal(t, float64(100), verify.HealthPercent())

	entries, err := os.ReadDir(filepath.Join(lazerRoot, "Songs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	warnings, err = e.Teardown()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = os.Lstat(filepath.Join(lazerRoot, "Songs"))
	assert.True(t, os.IsNotExist(err))

	stillThere, err := os.ReadDir(filepath.Join(stableRoot, "Songs"))
	require.NoError(t, err)
	assert.Len(t, stillThere, 1)
}

func TestSetupMigratesExistingDirectoryContents(t *testing.T) {
	dir := t.TempDir()
	stableRoot := filepath.Join(dir, "stable")
	lazerRoot := filepath.Join(dir, "lazer")
	require.NoError(t, os.MkdirAll(filepath.Join(stableRoot, "Songs"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(lazerRoot, "Songs"), 0o755))
	writeFile(t, filepath.Join(lazerRoot, "Songs", "existing.osz"), "data")

	e := NewEngine(nil)
	cfg := Config{Mode: StableMaster, Resources: []Resource{ResourceBeatmaps}, StableRoot: stableRoot, LazerRoot: lazerRoot}
	_, err := e.Setup(cfg)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(stableRoot, "Songs", "existing.osz"))
	assert.NoError(t, err)
}

func TestSetupRefusesWhenGameRunning(t *testing.T) {
	e := NewEngine(fakeGuard{game: "osu! (stable)", ok: true})
	_, err := e.Setup(Config{Mode: StableMaster, Resources: []Resource{ResourceBeatmaps}, StableRoot: "a", LazerRoot: "b"})
	require.Error(t, err)
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	dir := t.TempDir()
	stableRoot := filepath.Join(dir, "stable")
	lazerRoot := filepath.Join(dir, "lazer")
	require.NoError(t, os.MkdirAll(filepath.Join(stableRoot, "Songs"), 0o755))

	e := NewEngine(nil)
	cfg := Config{Mode: StableMaster, Resources: []Resource{ResourceBeatmaps}, StableRoot: stableRoot, LazerRoot: lazerRoot}
	_, err := e.Setup(cfg)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(stableRoot, "Songs")))

	verify := e.Verify()
	assert.Equal(t, 1, verify.Broken)
}

func TestTrueUnifiedCreatesBothLinks(t *testing.T) {
	dir := t.TempDir()
	stableRoot := filepath.Join(dir, "stable")
	lazerRoot := filepath.Join(dir, "lazer")
	sharedRoot := filepath.Join(dir, "shared")

	e := NewEngine(nil)
	cfg := Config{Mode: TrueUnified, Resources: []Resource{ResourceBeatmaps}, StableRoot: stableRoot, LazerRoot: lazerRoot, SharedRoot: sharedRoot}
	_, err := e.Setup(cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, len(e.Ledger()))
}
