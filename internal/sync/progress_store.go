// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package sync

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressKeyPrefix namespaces the sync engine's resumable-progress keys
// within a shared Badger database.
const progressKeyPrefix = "sync:progress:"

// State is the persisted checkpoint a crashed sync can report from on
// restart: how far a plan got before the process died. It is not used to
// resume an in-flight import automatically (the bridge never writes to
// the target's own database, so a half-imported set is simply re-planned
// and re-classified on the next sync); it exists so the caller can show
// "last run got to set 41 of 120" after an unclean shutdown.
type State struct {
	SessionID          string `json:"session_id"`
	LastCompletedIndex int    `json:"last_completed_index"`
	TotalCount         int    `json:"total_count"`
}

// ProgressStore persists sync.State to BadgerDB: a small key-value
// checkpoint updated after every unit of work, read back once at
// startup.
type ProgressStore struct {
	db *badger.DB
}

// NewProgressStore wraps an already-open Badger database.
func NewProgressStore(db *badger.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (p *ProgressStore) key(sessionID string) []byte {
	return []byte(progressKeyPrefix + sessionID)
}

// Save persists s, overwriting any previous checkpoint for the same
// session id.
func (p *ProgressStore) Save(s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal sync progress: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(p.key(s.SessionID), data)
	})
}

// Load returns the last saved checkpoint for sessionID, or ok=false if
// none was ever saved.
func (p *ProgressStore) Load(sessionID string) (s State, ok bool, err error) {
	loadErr := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(p.key(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if loadErr != nil {
		return State{}, false, fmt.Errorf("load sync progress: %w", loadErr)
	}
	return s, s.SessionID != "", nil
}

// Clear removes the checkpoint for sessionID, called once a sync reaches
// PhaseDone successfully.
func (p *ProgressStore) Clear(sessionID string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(p.key(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
