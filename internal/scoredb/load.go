// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package scoredb

import (
	"os"
	"path/filepath"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// LoadFromRoot reads and parses <root>/scores.db, then resolves each
// parsed entry's on-disk replay file under <root>/Data/r/, where the
// legacy client keeps score replays.
// A missing scores.db is not an error: an installation with no scores
// recorded yet simply yields no replays.
func LoadFromRoot(root string) ([]models.ReplayDescriptor, error) {
	path := filepath.Join(root, "scores.db")
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, syncerr.IO(path, err)
	}

	groups, err := Parse(buf, path)
	if err != nil {
		return nil, err
	}

	var out []models.ReplayDescriptor
	for _, g := range groups {
		out = append(out, g.Scores...)
	}
	resolveReplayPaths(root, out)
	return out, nil
}

// resolveReplayPaths fills in ReplayPath for every descriptor whose
// ReplayMD5 names a file actually present under Data/r/. HasReplayFile
// is left exactly as the binary format recorded it: the db's own flag
// and the file's physical presence are independent facts, and a replay
// exporter downstream is responsible for checking both before copying.
func resolveReplayPaths(root string, replays []models.ReplayDescriptor) {
	for i := range replays {
		if replays[i].ReplayMD5 == nil {
			continue
		}
		candidate := filepath.Join(root, "Data", "r", *replays[i].ReplayMD5+".osr")
		if _, err := os.Stat(candidate); err == nil {
			replays[i].ReplayPath = &candidate
		}
	}
}
