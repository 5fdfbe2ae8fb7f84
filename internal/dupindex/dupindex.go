// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dupindex builds an in-memory side table over a scanned library
// that answers "does this set already exist in the target?" in O(1). It
// is built once from a models.ScanResult and consumed read-only for the
// lifetime of one sync.
package dupindex

import "github.com/osusync/bridge/internal/models"

// Strategy selects which of the three detection methods a duplicate
// lookup consults. This is the detection-method concept, distinct from
// a resolver's resolution default (Skip/Replace/KeepBoth/Ask): a set can
// be flagged a duplicate under one or more Strategy bits regardless of
// what the resolver later decides to do about it.
type Strategy uint8

const (
	// ByHash matches on any difficulty's MD5 being already present in
	// the target library.
	ByHash Strategy = 1 << iota
	// BySetID matches on the online beatmap set id being already present.
	BySetID
	// ByMetadata matches on the normalised "title|artist|creator" key.
	ByMetadata

	// Composite checks all three methods; any single hit is a duplicate.
	Composite = ByHash | BySetID | ByMetadata
)

// MatchKind names why a set was classified a duplicate, for the conflict
// resolver's DuplicateInfo.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExactHash
	MatchSameSetID
	MatchSameBeatmapID
	MatchMetadata
	MatchSimilar
)

// String returns the wire/display name for a match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExactHash:
		return "exact_hash"
	case MatchSameSetID:
		return "same_set_id"
	case MatchSameBeatmapID:
		return "same_beatmap_id"
	case MatchMetadata:
		return "metadata"
	case MatchSimilar:
		return "similar"
	default:
		return "none"
	}
}

// Index is the duplicate side table, built once from a scan result. The
// three tables are parallel hash sets; lookups are O(1) and the index is
// safe for concurrent read-only use once Build returns.
type Index struct {
	onlineSetIDs map[int32]int          // set id -> index into the backing scan's Sets
	md5s         map[string]int         // difficulty MD5 -> index into Sets
	metaKeys     map[string]int         // normalised title|artist|creator -> index into Sets
	sets         []models.BeatmapSet    // weak (index-based) reference into the scan's Sets
}

// Build constructs an Index from scan in O(n). The index holds only
// index-based references into scan.Sets; it never copies or mutates the
// scan result, which stays the sole owner of its sets.
func Build(scan *models.ScanResult) *Index {
	idx := &Index{
		onlineSetIDs: make(map[int32]int),
		md5s:         make(map[string]int),
		metaKeys:     make(map[string]int),
		sets:         scan.Sets,
	}
	for i, set := range scan.Sets {
		if set.OnlineSetID != nil {
			if _, exists := idx.onlineSetIDs[*set.OnlineSetID]; !exists {
				idx.onlineSetIDs[*set.OnlineSetID] = i
			}
		}
		for _, d := range set.Difficulties {
			if d.MD5 != "" {
				if _, exists := idx.md5s[d.MD5]; !exists {
					idx.md5s[d.MD5] = i
				}
			}
			key := d.NormalisedKey()
			if _, exists := idx.metaKeys[key]; !exists {
				idx.metaKeys[key] = i
			}
		}
	}
	return idx
}

// HasOnlineID reports whether id is present in the index.
func (idx *Index) HasOnlineID(id int32) bool {
	_, ok := idx.onlineSetIDs[id]
	return ok
}

// HasMD5 reports whether md5 is present in the index.
func (idx *Index) HasMD5(md5 string) bool {
	_, ok := idx.md5s[md5]
	return ok
}

// HasNormalisedMetadataKey reports whether key is present in the index.
func (idx *Index) HasNormalisedMetadataKey(key string) bool {
	_, ok := idx.metaKeys[key]
	return ok
}

// HasMD5OfAnyDifficulty reports whether any difficulty in set has an MD5
// already present in the index.
func (idx *Index) HasMD5OfAnyDifficulty(set models.BeatmapSet) bool {
	for _, d := range set.Difficulties {
		if d.MD5 != "" && idx.HasMD5(d.MD5) {
			return true
		}
	}
	return false
}

// HasAnyNormalisedMetadataKey reports whether any difficulty in set has a
// normalised metadata key already present in the index.
func (idx *Index) HasAnyNormalisedMetadataKey(set models.BeatmapSet) bool {
	for _, d := range set.Difficulties {
		if idx.HasNormalisedMetadataKey(d.NormalisedKey()) {
			return true
		}
	}
	return false
}

// IsDuplicate evaluates the composite predicate over set under the given
// strategy bits: a set is a duplicate iff at least one of the selected
// methods finds a match.
func (idx *Index) IsDuplicate(set models.BeatmapSet, strategy Strategy) bool {
	if strategy&BySetID != 0 && set.OnlineSetID != nil && idx.HasOnlineID(*set.OnlineSetID) {
		return true
	}
	if strategy&ByHash != 0 && idx.HasMD5OfAnyDifficulty(set) {
		return true
	}
	if strategy&ByMetadata != 0 && idx.HasAnyNormalisedMetadataKey(set) {
		return true
	}
	return false
}

// Match is the matched existing set plus why it matched, used to build a
// resolver.DuplicateInfo for the conflict resolver.
type Match struct {
	Kind          MatchKind
	Confidence    float64
	ExistingIndex int
	ExistingSet   models.BeatmapSet
}

// Classify finds the strongest match for set, or ok=false if none of the
// three methods hit. Precedence favours the strongest signal first: exact
// hash, then online set id, then metadata — matching the confidence
// ordering a caller would expect from DuplicateInfo.MatchKind.
func (idx *Index) Classify(set models.BeatmapSet) (m Match, ok bool) {
	for _, d := range set.Difficulties {
		if d.MD5 == "" {
			continue
		}
		if i, hit := idx.md5s[d.MD5]; hit {
			return Match{Kind: MatchExactHash, Confidence: 1.0, ExistingIndex: i, ExistingSet: idx.sets[i]}, true
		}
	}
	if set.OnlineSetID != nil {
		if i, hit := idx.onlineSetIDs[*set.OnlineSetID]; hit {
			return Match{Kind: MatchSameSetID, Confidence: 0.95, ExistingIndex: i, ExistingSet: idx.sets[i]}, true
		}
	}
	for _, d := range set.Difficulties {
		key := d.NormalisedKey()
		if i, hit := idx.metaKeys[key]; hit {
			return Match{Kind: MatchMetadata, Confidence: 0.7, ExistingIndex: i, ExistingSet: idx.sets[i]}, true
		}
	}
	return Match{}, false
}

// Len returns the number of sets the index was built from.
func (idx *Index) Len() int { return len(idx.sets) }
