// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/osusync/bridge/internal/activity"
	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/filter"
	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/resolver"
	"github.com/osusync/bridge/internal/scanner"
	"github.com/osusync/bridge/internal/syncerr"
)

// Config parameterises one sync run.
type Config struct {
	SourceRoot  string
	TargetRoot  string
	Direction   Direction
	SkipHashing bool
	Filter      filter.Criteria
	Strategy    dupindex.Strategy
	Resolver    resolver.Resolver
	// SkipList permanently excludes sets by online set id or folder name,
	// independent of Filter. Nil disables it.
	SkipList *activity.SkipList
}

// Engine drives one sync through its phases: Preparing, Scanning
// source and target, Planning, Importing, Finalising. One Engine runs
// at most one sync at a time; a second Run call while one is active is
// refused.
type Engine struct {
	mu         sync.Mutex
	running    bool
	cancelFn   context.CancelFunc
	proceedCh  chan []int
	progress   *ProgressStore
	sessionID  string
}

// NewEngine returns an idle Engine. progressStore may be nil to disable
// resumable-progress checkpointing.
func NewEngine(progressStore *ProgressStore) *Engine {
	return &Engine{progress: progressStore}
}

// IsRunning reports whether a sync is currently in flight.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts one sync and returns a channel of Events: progress updates
// through Preparing/Scanning/Planning, then a PlanReady event the caller
// must answer with Proceed, then progress updates through
// Importing/Finalising, then exactly one terminal Done event. The
// channel is closed after the Done event.
func (e *Engine) Run(ctx context.Context, cfg Config) (<-chan Event, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, syncerr.New(syncerr.KindOther, "a sync is already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancelFn = cancel
	e.proceedCh = make(chan []int, 1)
	e.sessionID = uuid.NewString()
	e.mu.Unlock()

	events := make(chan Event, 8)
	go func() {
		defer func() {
			e.mu.Lock()
			e.running = false
			e.cancelFn = nil
			e.mu.Unlock()
			close(events)
		}()
		e.run(runCtx, cfg, events)
	}()

	return events, nil
}

// Proceed answers a PlanReady event, selecting which plan indices to
// import (in the given order). Calling it when no sync is waiting is a
// no-op.
func (e *Engine) Proceed(selection []int) {
	e.mu.Lock()
	ch := e.proceedCh
	e.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- selection:
	default:
	}
}

// Cancel requests cancellation. It returns immediately; the caller
// observes a Done(Cancelled=true) event once the in-flight set
// finishes.
func (e *Engine) Cancel() {
	e.mu.Lock()
	cancel := e.cancelFn
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *Engine) emit(events chan<- Event, phase Phase, idx, total int, name string) {
	events <- Event{Progress: &ProgressEvent{Phase: phase, CurrentIndex: idx, TotalCount: total, CurrentDisplayName: name}}
}

func (e *Engine) run(ctx context.Context, cfg Config, events chan<- Event) {
	e.emit(events, PhasePreparing, 0, 1, cfg.TargetRoot)
	if err := validateRoots(cfg); err != nil {
		events <- Event{Done: &Result{Errors: []PerSetError{{SetName: "preparing", Err: err}}}}
		return
	}
	e.emit(events, PhasePreparing, 1, 1, cfg.TargetRoot)

	e.emit(events, PhaseScanningSource, 0, 1, cfg.SourceRoot)
	sourceScan, err := scanner.Scan(ctx, cfg.SourceRoot, scanner.Options{SkipHashing: cfg.SkipHashing})
	if err != nil {
		events <- Event{Done: &Result{Errors: []PerSetError{{SetName: "scan_source", Err: err}}}}
		return
	}
	e.emit(events, PhaseScanningSource, 1, 1, cfg.SourceRoot)

	e.emit(events, PhaseScanningTarget, 0, 1, cfg.TargetRoot)
	targetScan, err := scanner.Scan(ctx, cfg.TargetRoot, scanner.Options{SkipHashing: cfg.SkipHashing})
	if err != nil {
		// A target without Songs/ is an empty library, not a failure: a
		// fresh Lazer root keeps its beatmaps under files/ and registers
		// imports on its next launch, so there is nothing to index yet.
		if _, statErr := os.Stat(filepath.Join(cfg.TargetRoot, "Songs")); os.IsNotExist(statErr) {
			targetScan = &models.ScanResult{}
		} else {
			events <- Event{Done: &Result{Errors: []PerSetError{{SetName: "scan_target", Err: err}}}}
			return
		}
	}
	e.emit(events, PhaseScanningTarget, 1, 1, cfg.TargetRoot)

	e.emit(events, PhasePlanning, 0, 1, "")
	targetIdx := dupindex.Build(targetScan)
	plan := buildPlan(sourceScan.Sets, targetIdx, cfg.Filter, cfg.Strategy, cfg.SkipList)
	e.emit(events, PhasePlanning, 1, 1, "")

	planCopy := plan
	events <- Event{PlanReady: &planCopy}

	var selection []int
	select {
	case selection = <-e.proceedCh:
	case <-ctx.Done():
		events <- Event{Done: &Result{Cancelled: true}}
		return
	}

	result := e.importSelected(ctx, cfg, plan, selection, events)

	e.emit(events, PhaseFinalising, 1, 1, "")
	if e.progress != nil && result.Failed == 0 && !result.Cancelled {
		_ = e.progress.Clear(e.sessionID)
	}
	events <- Event{Done: &result}
}

func (e *Engine) importSelected(ctx context.Context, cfg Config, plan Plan, selection []int, events chan<- Event) Result {
	var result Result
	importer := NewImporter(cfg.SourceRoot, cfg.TargetRoot, cfg.Direction)
	ctx = logging.ContextWithPhase(ctx, string(PhaseImporting))

	total := len(selection)
	for i, idx := range selection {
		if idx < 0 || idx >= len(plan) {
			continue
		}
		entry := plan[idx]
		if entry.Action == ActionSkip {
			result.Skipped++
			continue
		}

		name := entry.Source.GenerateFolderName()
		e.emit(events, PhaseImporting, i, total, name)

		setCtx := ctx
		if entry.Source.OnlineSetID != nil {
			setCtx = logging.ContextWithSetID(ctx, *entry.Source.OnlineSetID)
		}

		action := resolver.ActionReplace
		if entry.Action == ActionDuplicate {
			if entry.Match == nil || cfg.Resolver == nil {
				result.Skipped++
				continue
			}
			decision, err := cfg.Resolver.Resolve(setCtx, *entry.Match)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, PerSetError{SetName: name, Err: err})
				continue
			}
			if decision.Action == resolver.ActionSkip {
				result.Skipped++
				continue
			}
			action = decision.Action
		}

		if _, err := importer.ImportSet(entry.Source, action); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, PerSetError{SetName: name, Err: err})
			logging.Ctx(setCtx).Warn().Str("set", name).Err(err).Msg("set import failed")
		} else {
			result.Imported++
		}

		if e.progress != nil {
			_ = e.progress.Save(State{SessionID: e.sessionID, LastCompletedIndex: i, TotalCount: total})
		}

		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result
		default:
		}
	}

	return result
}

func validateRoots(cfg Config) error {
	if _, err := os.Stat(filepath.Join(cfg.SourceRoot, "Songs")); err != nil {
		return syncerr.IO(filepath.Join(cfg.SourceRoot, "Songs"), err)
	}
	if err := os.MkdirAll(cfg.TargetRoot, 0o755); err != nil {
		return syncerr.IO(cfg.TargetRoot, err)
	}
	probe := filepath.Join(cfg.TargetRoot, fmt.Sprintf(".write-probe-%s", uuid.NewString()))
	if err := os.WriteFile(probe, []byte("x"), 0o644); err != nil {
		return syncerr.IO(cfg.TargetRoot, err)
	}
	os.Remove(probe)
	return nil
}
