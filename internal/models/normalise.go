// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "strings"

// normaliseForKey lowercases a metadata field for use in a duplicate-index
// key. No further Unicode folding is applied, matching the normalised-key
// invariant: lowercase(title) + "|" + lowercase(artist) + "|" + lowercase(creator).
func normaliseForKey(s string) string {
	return strings.ToLower(s)
}
