// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// skipListFile is the persisted form of a SkipList: plain slices rather
// than sets, since goccy/go-json (like serde_json) has no native set
// type and duplicate entries are harmless.
type skipListFile struct {
	SetIDs      []int32  `json:"set_ids"`
	FolderNames []string `json:"folder_names"`
}

// SkipList is a persistent, permanent "never offer this set again"
// list: a beatmap set can
// be skipped by its online set id (when known) or by folder name (for
// sets with no online id).
type SkipList struct {
	mu          sync.Mutex
	path        string
	setIDs      map[int32]struct{}
	folderNames map[string]struct{}
}

// NewSkipList returns an empty SkipList that persists to path.
func NewSkipList(path string) *SkipList {
	return &SkipList{
		path:        path,
		setIDs:      make(map[int32]struct{}),
		folderNames: make(map[string]struct{}),
	}
}

// LoadSkipList reads path if it exists; a missing file yields an empty
// list rather than an error.
func LoadSkipList(path string) (*SkipList, error) {
	l := NewSkipList(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}

	var f skipListFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for _, id := range f.SetIDs {
		l.setIDs[id] = struct{}{}
	}
	for _, n := range f.FolderNames {
		l.folderNames[n] = struct{}{}
	}
	return l, nil
}

func (l *SkipList) saveLocked() error {
	if l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	f := skipListFile{}
	for id := range l.setIDs {
		f.SetIDs = append(f.SetIDs, id)
	}
	for n := range l.folderNames {
		f.FolderNames = append(f.FolderNames, n)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// AddSetID adds a beatmap set id to the skip list and persists it.
func (l *SkipList) AddSetID(id int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setIDs[id] = struct{}{}
	return l.saveLocked()
}

// AddFolderName adds a folder name to the skip list and persists it.
func (l *SkipList) AddFolderName(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.folderNames[name] = struct{}{}
	return l.saveLocked()
}

// RemoveSetID removes id from the skip list, reporting whether it was
// present, and persists the result.
func (l *SkipList) RemoveSetID(id int32) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.setIDs[id]; !ok {
		return false, nil
	}
	delete(l.setIDs, id)
	return true, l.saveLocked()
}

// RemoveFolderName removes name from the skip list, reporting whether it
// was present, and persists the result.
func (l *SkipList) RemoveFolderName(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.folderNames[name]; !ok {
		return false, nil
	}
	delete(l.folderNames, name)
	return true, l.saveLocked()
}

// ShouldSkip reports whether a set should be skipped, either by its
// online set id (setID non-nil) or by folder name.
func (l *SkipList) ShouldSkip(setID *int32, folderName string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if setID != nil {
		if _, ok := l.setIDs[*setID]; ok {
			return true
		}
	}
	if folderName != "" {
		if _, ok := l.folderNames[folderName]; ok {
			return true
		}
	}
	return false
}

// Len reports the total number of entries across both id and folder-name
// sets.
func (l *SkipList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.setIDs) + len(l.folderNames)
}

// Clear removes every entry and persists the empty list.
func (l *SkipList) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setIDs = make(map[int32]struct{})
	l.folderNames = make(map[string]struct{})
	return l.saveLocked()
}
