// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment variable this package reads,
// e.g. SYNCTOOL_STABLE_PATH, SYNCTOOL_DUPLICATE_STRATEGY.
const envPrefix = "SYNCTOOL_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "SYNCTOOL_CONFIG_PATH"

// DefaultConfigFileName is the file name looked up under the OS config
// directory.
const DefaultConfigFileName = "config.json"

// DefaultPath returns the conventional config file location
// (os.UserConfigDir()/osu-sync/config.json), matching the original's
// dirs::config_dir().join("osu-sync").join("config.json").
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "osu-sync", DefaultConfigFileName), nil
}

// Load builds a Config from three layers, lowest to highest priority:
// built-in defaults (with auto-detected install paths), an optional JSON
// config file, and SYNCTOOL_-prefixed environment variables, highest
// priority last.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path (or DefaultPath if path is empty) as
// indented JSON, creating parent directories as needed, atomically via
// a temp-file-then-rename so a crash mid-write never corrupts the file
// a future Load would read.
func Save(cfg *Config, path string) error {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.Parser().Marshal(structToMap(cfg))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit config: %w", err)
	}
	return nil
}

// structToMap round-trips cfg through koanf's structs provider so Save
// and Load agree on field naming (the "koanf" struct tags) without
// hand-maintaining a parallel JSON-tagged struct.
func structToMap(cfg *Config) map[string]interface{} {
	k := koanf.New(".")
	_ = k.Load(structs.Provider(cfg, "koanf"), nil)
	return k.Raw()
}

func resolveConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p, nil
	}
	return DefaultPath()
}

// envTransformFunc converts SYNCTOOL_STABLE_PATH into stable_path and
// SYNCTOOL_UNIFIED_MODE into unified.mode: the first segment after the
// prefix maps to a top-level key and subsequent underscores to nesting only
// where a known nested field exists.
func envTransformFunc(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, nested := range []string{"detection_", "unified_", "logging_"} {
		if strings.HasPrefix(s, nested) {
			return strings.Replace(s, nested, strings.TrimSuffix(nested, "_")+".", 1)
		}
	}
	return s
}
