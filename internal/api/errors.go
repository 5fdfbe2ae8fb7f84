// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/osusync/bridge/internal/syncerr"

// errMissingField reports a required JSON field left empty.
func errMissingField(field string) error {
	return syncerr.New(syncerr.KindConfiguration, "missing required field: "+field)
}
