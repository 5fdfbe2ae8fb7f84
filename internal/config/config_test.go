// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/resolver"
)

func TestDuplicateStrategyResolverDefault(t *testing.T) {
	cases := []struct {
		strategy DuplicateStrategy
		want     resolver.ConfiguredAction
	}{
		{DuplicateStrategySkip, resolver.ConfiguredSkip},
		{DuplicateStrategyReplace, resolver.ConfiguredReplace},
		{DuplicateStrategyKeepBoth, resolver.ConfiguredKeepBoth},
		{DuplicateStrategyAsk, resolver.ConfiguredAsk},
		{DuplicateStrategy("bogus"), resolver.ConfiguredAsk},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.strategy.ResolverDefault())
	}
}

func TestThemeNextCycles(t *testing.T) {
	assert.Equal(t, ThemeOcean, ThemeDefault.Next())
	assert.Equal(t, ThemeMonochrome, ThemeOcean.Next())
	assert.Equal(t, ThemeDefault, ThemeMonochrome.Next())
	assert.Equal(t, ThemeDefault, Theme("bogus").Next())
}

func TestConfigDerivedPathsEmptyWhenUnset(t *testing.T) {
	c := &Config{}
	assert.Empty(t, c.StableSongsPath())
	assert.Empty(t, c.LazerFilesPath())
	assert.Empty(t, c.LazerImportPath())
	assert.Empty(t, c.LazerRealmPath())
}

func TestConfigDerivedPathsJoinRoot(t *testing.T) {
	c := &Config{StablePath: "/stable", LazerPath: "/lazer"}
	assert.Equal(t, filepath.Join("/stable", "Songs"), c.StableSongsPath())
	assert.Equal(t, filepath.Join("/lazer", "files"), c.LazerFilesPath())
	assert.Equal(t, filepath.Join("/lazer", "import"), c.LazerImportPath())
	assert.Equal(t, filepath.Join("/lazer", "client.realm"), c.LazerRealmPath())
}

func TestValidateAcceptsUnsetPaths(t *testing.T) {
	c := defaultConfig()
	c.StablePath = ""
	c.LazerPath = ""
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsBadStablePath(t *testing.T) {
	c := defaultConfig()
	c.StablePath = t.TempDir() // exists but has no Songs/ subfolder
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "osu!stable")
}

func TestValidateRejectsBadLazerPath(t *testing.T) {
	c := defaultConfig()
	c.LazerPath = t.TempDir() // exists but missing client.realm and files/
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "osu!lazer")
}

func TestValidateAcceptsWellFormedPaths(t *testing.T) {
	stable := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(stable, "Songs"), 0o755))

	lazer := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(lazer, "files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(lazer, "client.realm"), []byte("x"), 0o644))

	c := defaultConfig()
	c.StablePath = stable
	c.LazerPath = lazer
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsBadEnum(t *testing.T) {
	c := defaultConfig()
	c.StablePath = ""
	c.LazerPath = ""
	c.DuplicateStrategy = DuplicateStrategy("not-a-real-strategy")
	assert.Error(t, c.Validate())
}
