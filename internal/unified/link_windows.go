//go:build windows

// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package unified

import (
	"os"

	winio "github.com/Microsoft/go-winio"

	"github.com/osusync/bridge/internal/syncerr"
)

// createLink prefers a directory junction: it needs no elevated
// privileges and is transparent to applications. A symbolic link is the
// fallback, used only when junction creation itself fails; Windows
// symlinks require SeCreateSymbolicLinkPrivilege, so a failure there is
// reported as ElevationRequired rather than a bare link-creation error.
func createLink(link, target string) (LinkKind, error) {
	if err := winio.MakeJunction(link, target); err == nil {
		return KindJunction, nil
	}

	if err := os.Symlink(target, link); err != nil {
		if os.IsPermission(err) {
			return 0, syncerr.ElevationRequired(link)
		}
		return 0, syncerr.LinkCreation(link, target, err)
	}
	return KindSymlink, nil
}
