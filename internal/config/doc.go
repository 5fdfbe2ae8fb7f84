// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config loads and persists the bridge's configuration.

Three layers feed the final Config, lowest priority first: built-in
defaults (with auto-detected install paths), an optional JSON file at
os.UserConfigDir()/osu-sync/config.json, and SYNCTOOL_-prefixed
environment variables (SYNCTOOL_STABLE_PATH, SYNCTOOL_LAZER_PATH,
SYNCTOOL_DUPLICATE_STRATEGY, SYNCTOOL_THEME, ...). SYNCTOOL_CONFIG_PATH
overrides the file location.

Validate() runs struct-tag checks for the enum fields (duplicate
strategy, theme, unified mode, logging level/format) plus the one
business rule the tags can't express: a non-empty path must actually
look like the installation it claims to be.
*/
package config
