// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists the bridge's configuration: the two
// installation paths, the default duplicate-handling strategy, and the
// UI theme preference that rides along for the UI layer to read.
// Layering: struct defaults, then an optional JSON file, then
// environment variables, highest priority last.
package config

import (
	"path/filepath"

	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/resolver"
)

// DuplicateStrategy is the persisted, user-facing duplicate handling
// default, serialised as a short lowercase string. It is deliberately
// distinct from the detection-side dupindex.Strategy: this one
// answers "what do we do about a match", dupindex.Strategy answers
// "how do we find one" — see resolver.ConfiguredAction, which this type
// maps onto for the sync engine's default resolver.
type DuplicateStrategy string

const (
	DuplicateStrategySkip     DuplicateStrategy = "skip"
	DuplicateStrategyReplace  DuplicateStrategy = "replace"
	DuplicateStrategyKeepBoth DuplicateStrategy = "keep_both"
	DuplicateStrategyAsk      DuplicateStrategy = "ask"
)

// ResolverDefault maps the persisted strategy onto the resolver
// package's runtime enum.
func (s DuplicateStrategy) ResolverDefault() resolver.ConfiguredAction {
	switch s {
	case DuplicateStrategySkip:
		return resolver.ConfiguredSkip
	case DuplicateStrategyReplace:
		return resolver.ConfiguredReplace
	case DuplicateStrategyKeepBoth:
		return resolver.ConfiguredKeepBoth
	default:
		return resolver.ConfiguredAsk
	}
}

// Theme is a UI colour-scheme preference. The core never reads it; it is
// serialised through configuration purely for the UI layer's benefit.
type Theme string

const (
	ThemeDefault    Theme = "default"
	ThemeOcean      Theme = "ocean"
	ThemeMonochrome Theme = "monochrome"
)

// Next cycles to the following theme, matching the original's
// ThemeName::next used by a theme-switcher hotkey.
func (t Theme) Next() Theme {
	switch t {
	case ThemeDefault:
		return ThemeOcean
	case ThemeOcean:
		return ThemeMonochrome
	default:
		return ThemeDefault
	}
}

// DetectionConfig controls how a sync plan decides a source set already
// exists on the target, wiring dupindex.Strategy through configuration
// rather than hardcoding it at the call site.
type DetectionConfig struct {
	// Strategy selects which signals count as a duplicate match. Stored
	// as a bitmask of dupindex.Strategy values.
	Strategy dupindex.Strategy `koanf:"strategy"`
}

// UnifiedConfig parameterises the unified-storage engine;
// a zero Mode means unified storage is not configured.
type UnifiedConfig struct {
	Mode          string `koanf:"mode" validate:"omitempty,oneof=true_unified stable_master lazer_master"`
	CollectionDir string `koanf:"collection_dir"`
	SkinDir       string `koanf:"skin_dir"`
}

// LoggingConfig controls the zerolog sink.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// Config is the bridge's full persisted configuration.
type Config struct {
	// StablePath is the osu!stable installation root (the directory that
	// contains Songs/), or empty if undetected/unconfigured.
	StablePath string `koanf:"stable_path"`
	// LazerPath is the osu!lazer data directory (the directory that
	// contains client.realm and files/), or empty if
	// undetected/unconfigured.
	LazerPath string `koanf:"lazer_path"`

	DuplicateStrategy DuplicateStrategy `koanf:"duplicate_strategy" validate:"oneof=skip replace keep_both ask"`
	Theme             Theme             `koanf:"theme" validate:"omitempty,oneof=default ocean monochrome"`

	SkipHashing bool `koanf:"skip_hashing"`

	Detection DetectionConfig `koanf:"detection"`
	Unified   UnifiedConfig   `koanf:"unified"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// defaultConfig returns a Config with auto-detected paths and
// conservative defaults, applied before the file and env layers.
func defaultConfig() *Config {
	return &Config{
		StablePath:        detectStablePath(),
		LazerPath:         detectLazerPath(),
		DuplicateStrategy: DuplicateStrategyAsk,
		Theme:             ThemeDefault,
		Detection:         DetectionConfig{Strategy: dupindex.Composite},
		Logging:           LoggingConfig{Level: "info", Format: "json"},
	}
}

// StableSongsPath returns the Songs/ folder under StablePath, or empty if
// StablePath is unset.
func (c *Config) StableSongsPath() string {
	if c.StablePath == "" {
		return ""
	}
	return filepath.Join(c.StablePath, "Songs")
}

// LazerFilesPath returns the content-addressed files/ directory under
// LazerPath, or empty if LazerPath is unset.
func (c *Config) LazerFilesPath() string {
	if c.LazerPath == "" {
		return ""
	}
	return filepath.Join(c.LazerPath, "files")
}

// LazerImportPath returns the import/ drop directory under LazerPath, or
// empty if LazerPath is unset.
func (c *Config) LazerImportPath() string {
	if c.LazerPath == "" {
		return ""
	}
	return filepath.Join(c.LazerPath, "import")
}

// LazerRealmPath returns the client.realm database path under LazerPath,
// or empty if LazerPath is unset.
func (c *Config) LazerRealmPath() string {
	if c.LazerPath == "" {
		return ""
	}
	return filepath.Join(c.LazerPath, "client.realm")
}
