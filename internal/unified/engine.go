// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package unified

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/osusync/bridge/internal/syncerr"
)

// Engine owns the unified-storage ledger for the lifetime of one bridge
// process. It is single-owner: the ledger is never shared or mutated
// from more than one goroutine at a time, guarded by mu.
type Engine struct {
	mu     sync.Mutex
	ledger []LinkRecord
	guard  GameGuard
}

// GameGuard is consulted before every setup/teardown/repair operation.
// Running returns the name of a game that is currently open, or ok=false
// if neither installation's client is running.
type GameGuard interface {
	Running() (game string, ok bool)
}

// NewEngine returns an Engine with an empty ledger, guarded by guard. A
// nil guard disables the running-game check (used in tests).
func NewEngine(guard GameGuard) *Engine {
	return &Engine{guard: guard}
}

// Ledger returns a snapshot of the engine's current link records.
func (e *Engine) Ledger() []LinkRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LinkRecord, len(e.ledger))
	copy(out, e.ledger)
	return out
}

func (e *Engine) checkGameNotRunning() error {
	if e.guard == nil {
		return nil
	}
	if game, running := e.guard.Running(); running {
		return syncerr.GameRunning(game)
	}
	return nil
}

// resolvePairs computes the (link_path, target_path) pairs for cfg's mode
// and resource list, without touching the filesystem.
func resolvePairs(cfg Config) ([]LinkRecord, error) {
	var pairs []LinkRecord
	for _, r := range cfg.Resources {
		folder := resourceFolderName(r)
		var rec LinkRecord
		rec.Resource = r
		switch cfg.Mode {
		case StableMaster:
			rec.Source = SourceLazerRoot
			rec.LinkPath = filepath.Join(cfg.LazerRoot, folder)
			rec.TargetPath = filepath.Join(cfg.StableRoot, folder)
		case LazerMaster:
			rec.Source = SourceStableRoot
			rec.LinkPath = filepath.Join(cfg.StableRoot, folder)
			rec.TargetPath = filepath.Join(cfg.LazerRoot, folder)
		case TrueUnified:
			if cfg.SharedRoot == "" {
				return nil, syncerr.Configuration("shared_root", "true-unified mode requires a shared root")
			}
			shared := filepath.Join(cfg.SharedRoot, folder)
			pairs = append(pairs,
				LinkRecord{Source: SourceStableRoot, Resource: r, LinkPath: filepath.Join(cfg.StableRoot, folder), TargetPath: shared},
				LinkRecord{Source: SourceLazerRoot, Resource: r, LinkPath: filepath.Join(cfg.LazerRoot, folder), TargetPath: shared},
			)
			continue
		default:
			return nil, syncerr.Configuration("mode", "unrecognised unified-storage mode")
		}
		pairs = append(pairs, rec)
	}
	return pairs, nil
}

// Setup realises cfg's link graph. For each pair: an existing real
// directory at link_path has its contents moved into target_path first
// (existing data is never lost to a link), an existing link to
// target_path is left alone, and a link to anything else is skipped with
// a warning. Warnings are returned alongside a nil error; only a fatal
// per-pair failure (link creation itself failing) is returned as an
// error, after which Setup stops processing further pairs.
func (e *Engine) Setup(cfg Config) (warnings []string, err error) {
	if err := e.checkGameNotRunning(); err != nil {
		return nil, err
	}

	pairs, err := resolvePairs(cfg)
	if err != nil {
		return nil, err
	}

	var built []LinkRecord
	for _, rec := range pairs {
		warn, err := e.setupOne(&rec)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if err != nil {
			return warnings, syncerr.MigrationFailure(fmt.Sprintf("setup:%s:%s", rec.Source, rec.Resource), err)
		}
		if warn == "" {
			rec.Health = HealthActive
			built = append(built, rec)
		}
	}

	e.mu.Lock()
	e.ledger = append(e.ledger, built...)
	e.mu.Unlock()

	return warnings, nil
}

func (e *Engine) setupOne(rec *LinkRecord) (warning string, err error) {
	info, lstatErr := os.Lstat(rec.LinkPath)
	if lstatErr == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			existingTarget, readErr := os.Readlink(rec.LinkPath)
			if readErr == nil && samePath(existingTarget, rec.TargetPath) {
				return "", nil
			}
			return fmt.Sprintf("%s is already a link to a different target, skipping", rec.LinkPath), nil
		}
		if info.IsDir() {
			if err := migrateContents(rec.LinkPath, rec.TargetPath); err != nil {
				return "", err
			}
		} else {
			return fmt.Sprintf("%s exists and is not a directory, skipping", rec.LinkPath), nil
		}
	}

	if err := os.MkdirAll(rec.TargetPath, 0o755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(rec.LinkPath), 0o755); err != nil {
		return "", err
	}

	kind, err := createLink(rec.LinkPath, rec.TargetPath)
	if err != nil {
		return "", err
	}
	rec.LinkKind = kind
	return "", nil
}

// migrateContents moves every entry of src into dst (created if absent),
// then removes the now-empty src directory.
func migrateContents(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return err
		}
	}
	return os.Remove(src)
}

func samePath(a, b string) bool {
	ca, errA := filepath.Abs(a)
	cb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return filepath.Clean(ca) == filepath.Clean(cb)
}

// VerifyResult is the outcome of a full ledger sweep.
type VerifyResult struct {
	Total   int
	Active  int
	Broken  int
	Stale   int
	Entries []LinkRecord
}

// HealthPercent is Active/Total*100, or 100 if Total is 0.
func (v VerifyResult) HealthPercent() float64 {
	if v.Total == 0 {
		return 100
	}
	return float64(v.Active) / float64(v.Total) * 100
}

// Verify classifies every ledger entry as Active, Broken, or Stale and
// updates the ledger's own Health field in place.
func (e *Engine) Verify() VerifyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result VerifyResult
	for i := range e.ledger {
		e.ledger[i].Health = classifyHealth(e.ledger[i])
		result.Entries = append(result.Entries, e.ledger[i])
		result.Total++
		switch e.ledger[i].Health {
		case HealthActive:
			result.Active++
		case HealthBroken:
			result.Broken++
		case HealthStale:
			result.Stale++
		}
	}
	return result
}

func classifyHealth(rec LinkRecord) Health {
	info, err := os.Lstat(rec.LinkPath)
	if err != nil {
		return HealthStale
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return HealthStale
	}
	if _, err := os.Stat(rec.TargetPath); err != nil {
		return HealthBroken
	}
	return HealthActive
}

// RepairResult reports what Repair did for each broken/stale entry.
type RepairResult struct {
	Repaired []LinkRecord
	// Unresolved carries entries whose target no longer exists, left for
	// the user to decide rather than silently discarded.
	Unresolved []LinkRecord
}

// Repair recreates the link for every Broken or Stale ledger entry whose
// target still exists on disk. Entries whose target is gone are surfaced
// in Unresolved, never silently dropped.
func (e *Engine) Repair() (RepairResult, error) {
	if err := e.checkGameNotRunning(); err != nil {
		return RepairResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var result RepairResult
	for i := range e.ledger {
		rec := e.ledger[i]
		rec.Health = classifyHealth(rec)
		if rec.Health == HealthActive {
			continue
		}
		if _, err := os.Stat(rec.TargetPath); err != nil {
			result.Unresolved = append(result.Unresolved, rec)
			continue
		}
		os.Remove(rec.LinkPath)
		kind, err := createLink(rec.LinkPath, rec.TargetPath)
		if err != nil {
			return result, syncerr.MigrationFailure(fmt.Sprintf("repair:%s:%s", rec.Source, rec.Resource), err)
		}
		e.ledger[i].LinkKind = kind
		e.ledger[i].Health = HealthActive
		result.Repaired = append(result.Repaired, e.ledger[i])
	}
	return result, nil
}

// Teardown removes every ledger link, never the target it points to. An
// entry whose link path has been replaced by a real directory since
// setup is left alone and reported as a warning.
func (e *Engine) Teardown() (warnings []string, err error) {
	if err := e.checkGameNotRunning(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var remaining []LinkRecord
	for _, rec := range e.ledger {
		info, lstatErr := os.Lstat(rec.LinkPath)
		if lstatErr != nil {
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			warnings = append(warnings, fmt.Sprintf("%s is no longer a link, leaving it alone", rec.LinkPath))
			remaining = append(remaining, rec)
			continue
		}
		if err := os.Remove(rec.LinkPath); err != nil {
			return warnings, syncerr.MigrationFailure(fmt.Sprintf("teardown:%s:%s", rec.Source, rec.Resource), err)
		}
	}
	e.ledger = remaining
	return warnings, nil
}
