// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// detectStablePath looks for an osu!stable installation (a directory
// containing a Songs/ folder) in the handful of places it conventionally
// lives. It never errors: an undetected
// install just leaves StablePath empty for the user to fill in.
func detectStablePath() string {
	switch runtime.GOOS {
	case "windows":
		if local, err := os.UserCacheDir(); err == nil {
			if p := filepath.Join(local, "osu!"); validateStablePath(p) {
				return p
			}
		}
		for _, drive := range availableWindowsDrives() {
			for _, candidate := range []string{
				filepath.Join(drive, "osu!"),
				filepath.Join(drive, "osu"),
				filepath.Join(drive, "Games", "osu!"),
				filepath.Join(drive, "Games", "osu"),
				filepath.Join(drive, "Program Files", "osu!"),
				filepath.Join(drive, "Program Files (x86)", "osu!"),
			} {
				if validateStablePath(candidate) {
					return candidate
				}
			}
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			for _, candidate := range []string{
				filepath.Join(home, "Library", "Application Support", "osu-wine", "osu!"),
				filepath.Join(home, ".wine", "drive_c", "osu!"),
			} {
				if validateStablePath(candidate) {
					return candidate
				}
			}
		}
	default: // linux and other unix-likes: stable usually runs under Wine
		if home, err := os.UserHomeDir(); err == nil {
			for _, candidate := range []string{
				filepath.Join(home, ".wine", "drive_c", "osu!"),
				filepath.Join(home, ".local", "share", "osu-wine", "osu!"),
				filepath.Join(home, "Games", "osu!"),
			} {
				if validateStablePath(candidate) {
					return candidate
				}
			}
		}
	}
	return ""
}

// detectLazerPath looks for an osu!lazer data directory (one containing
// both client.realm and a files/ directory), ported from
// config::paths::detect_lazer_path.
func detectLazerPath() string {
	switch runtime.GOOS {
	case "windows":
		if appdata, err := os.UserConfigDir(); err == nil {
			if p := filepath.Join(appdata, "osu"); validateLazerPath(p) {
				return p
			}
		}
		if local, err := os.UserCacheDir(); err == nil {
			if p := filepath.Join(local, "osu"); validateLazerPath(p) {
				return p
			}
		}
		for _, drive := range availableWindowsDrives() {
			for _, candidate := range []string{
				filepath.Join(drive, "osu"),
				filepath.Join(drive, "osu!lazer"),
				filepath.Join(drive, "Games", "osu"),
				filepath.Join(drive, "Games", "osu!lazer"),
			} {
				if validateLazerPath(candidate) {
					return candidate
				}
			}
		}
	case "darwin":
		if data, err := os.UserConfigDir(); err == nil {
			if p := filepath.Join(data, "osu"); validateLazerPath(p) {
				return p
			}
		}
	default:
		if data, err := os.UserCacheDir(); err == nil {
			if p := filepath.Join(data, "osu"); validateLazerPath(p) {
				return p
			}
		}
	}
	return ""
}

// availableWindowsDrives enumerates drive letters that exist, mirroring
// the original's get_available_drives. On a non-Windows GOOS this is
// unreachable (callers gate on runtime.GOOS) so it never does anything.
func availableWindowsDrives() []string {
	var drives []string
	for letter := 'A'; letter <= 'Z'; letter++ {
		drive := string(letter) + `:\`
		if info, err := os.Stat(drive); err == nil && info.IsDir() {
			drives = append(drives, drive)
		}
	}
	return drives
}

// validateStablePath reports whether path looks like an osu!stable
// installation root.
func validateStablePath(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(path, "Songs"))
	return err == nil && info.IsDir()
}

// validateLazerPath reports whether path looks like an osu!lazer data
// directory.
func validateLazerPath(path string) bool {
	if path == "" {
		return false
	}
	if info, err := os.Stat(filepath.Join(path, "client.realm")); err != nil || info.IsDir() {
		return false
	}
	info, err := os.Stat(filepath.Join(path, "files"))
	return err == nil && info.IsDir()
}
