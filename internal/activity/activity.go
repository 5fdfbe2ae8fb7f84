// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity persists a small rolling history of what the bridge
// has done, for display in a UI's "recent activity" panel: an ndjson
// file, newest-first, capped at MaxEntries, one JSON object per line.
package activity

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// MaxEntries is the cap on persisted activity entries; the oldest are
// dropped beyond it.
const MaxEntries = 50

// Type classifies one activity entry.
type Type string

const (
	TypeScan           Type = "scan"
	TypeSync           Type = "sync"
	TypeExport         Type = "export"
	TypeBackup         Type = "backup"
	TypeRestore        Type = "restore"
	TypeMediaExtract   Type = "media_extract"
	TypeReplayExport   Type = "replay_export"
	TypeCollectionSync Type = "collection_sync"
	TypeError          Type = "error"
	TypeInfo           Type = "info"
)

// Entry is one recorded activity.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        Type      `json:"type"`
	Description string    `json:"description"`
	Details     string    `json:"details,omitempty"`
}

// Log is an in-memory, file-backed activity history. The zero value is
// not usable; construct with New or Load.
type Log struct {
	mu      sync.Mutex
	path    string
	entries []Entry // newest first
}

// New returns an empty Log that persists to path on every mutation.
func New(path string) *Log {
	return &Log{path: path}
}

// Load reads path if it exists, ignoring malformed lines, and returns a
// Log ready for further appends. A missing file is not an error.
func Load(path string) (*Log, error) {
	l := New(path)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() && len(l.entries) < MaxEntries {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		l.entries = append(l.entries, e)
	}
	return l, nil
}

// Add records a new entry at the front of the log, trims to MaxEntries,
// and persists the result. The in-memory log still reflects the new
// entry even if the save fails; the error is returned so the caller can
// log it without losing the activity itself.
func (l *Log) Add(typ Type, description, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{Timestamp: time.Now(), Type: typ, Description: description, Details: details}
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	return l.saveLocked()
}

func (l *Log) saveLocked() error {
	if l.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, e := range l.entries {
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, l.path)
}

// Entries returns a copy of the current entries, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns up to n of the most recent entries.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

// Len reports the current number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes all entries and persists the empty log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.saveLocked()
}
