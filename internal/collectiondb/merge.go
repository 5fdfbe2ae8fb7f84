// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package collectiondb

import "github.com/osusync/bridge/internal/models"

// Merge unions source into target by collection name: a name present in
// both gets the union of MD5s (target's own order first, then any new
// hashes from source); a name only in source is appended as a new
// collection. target is never shrunk — this models "share collections
// between installations", not "replace one with the other".
func Merge(target, source []models.Collection) (merged []models.Collection, entriesAdded int) {
	byName := make(map[string]int, len(target))
	merged = make([]models.Collection, len(target))
	copy(merged, target)
	for i, c := range merged {
		byName[c.Name] = i
	}

	for _, src := range source {
		idx, ok := byName[src.Name]
		if !ok {
			merged = append(merged, src)
			byName[src.Name] = len(merged) - 1
			entriesAdded += len(src.MD5s)
			continue
		}

		have := merged[idx].MD5Set()
		for _, h := range src.MD5s {
			if _, seen := have[h]; seen {
				continue
			}
			merged[idx].MD5s = append(merged[idx].MD5s, h)
			have[h] = struct{}{}
			entriesAdded++
		}
	}

	return merged, entriesAdded
}
