//go:build !windows

// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package unified

import (
	"os"

	"github.com/osusync/bridge/internal/syncerr"
)

// createLink always uses a symbolic link on Unix-like platforms; the
// engine never falls back to copying.
func createLink(link, target string) (LinkKind, error) {
	if err := os.Symlink(target, link); err != nil {
		return 0, syncerr.LinkCreation(link, target, err)
	}
	return KindSymlink, nil
}
