// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package sync

import (
	"github.com/osusync/bridge/internal/activity"
	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/filter"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/resolver"
)

// buildPlan classifies every source set against targetIdx: Skip if the
// filter criteria reject it or the set is on skipList, else Duplicate if
// the index hits under strategy, else Import. Filter/skip-list rejection
// takes precedence over duplicate detection: a Skip entry always
// has a filter or skip-list rejection, a Duplicate entry always hits the
// index, an Import entry does neither. skipList may be nil to disable
// the permanent skip list.
func buildPlan(sourceSets []models.BeatmapSet, targetIdx *dupindex.Index, criteria filter.Criteria, strategy dupindex.Strategy, skipList *activity.SkipList) Plan {
	plan := make(Plan, 0, len(sourceSets))

	for _, set := range sourceSets {
		entry := PlanEntry{
			Source:          set,
			EstimatedBytes:  set.TotalSize(),
			DifficultyCount: len(set.Difficulties),
		}

		switch {
		case !criteria.Matches(set):
			entry.Action = ActionSkip
		case skipList != nil && skipList.ShouldSkip(set.OnlineSetID, set.FolderName):
			entry.Action = ActionSkip
		case targetIdx.IsDuplicate(set, strategy):
			entry.Action = ActionDuplicate
			if m, ok := targetIdx.Classify(set); ok {
				entry.Match = &resolver.DuplicateInfo{
					Source:     set,
					Existing:   m.ExistingSet,
					MatchKind:  m.Kind,
					Confidence: m.Confidence,
				}
			}
		default:
			entry.Action = ActionImport
		}

		plan = append(plan, entry)
	}

	return plan
}
