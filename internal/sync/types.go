// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sync implements the sync engine: a single-flight state machine
// that compares a source and target library, classifies each source set
// (import / skip / duplicate), resolves conflicts through a pluggable
// resolver.Resolver, and executes per-set imports with progress reporting
// and partial-failure recovery. Imports within one sync run serially, on
// a single dedicated goroutine, to preserve progress monotonicity and
// bound temp-disk usage.
package sync

import (
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/resolver"
)

// Direction selects which installation is the import source and which is
// the target.
type Direction int

const (
	// StableToLazer imports from the legacy folder layout into the
	// modern content-addressed store plus an import/ manifest drop.
	StableToLazer Direction = iota
	// LazerToStable imports from the content-addressed store into
	// freshly created Songs/<folder> directories.
	LazerToStable
)

// Phase is the sync engine's current state-machine node.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhasePreparing      Phase = "preparing"
	PhaseScanningSource Phase = "scanning_source"
	PhaseScanningTarget Phase = "scanning_target"
	PhasePlanning       Phase = "planning"
	PhaseImporting      Phase = "importing"
	PhaseFinalising     Phase = "finalising"
	PhaseDone           Phase = "done"
)

// Action is the planner's classification of one source set.
type Action int

const (
	ActionImport Action = iota
	ActionSkip
	ActionDuplicate
)

func (a Action) String() string {
	switch a {
	case ActionImport:
		return "import"
	case ActionSkip:
		return "skip"
	case ActionDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// PlanEntry is one (source_set, proposed action) pair in a dry-run plan.
type PlanEntry struct {
	Source          models.BeatmapSet
	Action          Action
	EstimatedBytes  int64
	DifficultyCount int
	// Match is populated when Action is ActionDuplicate, carrying why the
	// set matched for the conflict resolver.
	Match *resolver.DuplicateInfo
}

// Plan is the ordered dry-run plan produced by the Planning phase. It is
// idempotent for a given (source snapshot, target snapshot, filter
// criteria, duplicate strategy) tuple.
type Plan []PlanEntry

// ProgressEvent is emitted once per unit of work within a phase, with
// CurrentIndex strictly monotonically non-decreasing within that phase.
type ProgressEvent struct {
	Phase              Phase
	CurrentIndex       int
	TotalCount         int
	CurrentDisplayName string
}

// PerSetError records one set's import failure without aborting the sync.
type PerSetError struct {
	SetName string
	Err     error
}

// Result is the sync's terminal outcome. imported > 0 &&
// failed == 0 is strict success; imported > 0 && failed > 0 is partial.
// A fatal error while preparing or scanning ends the sync early with a
// Result that has no counts and one Errors entry named after that step.
type Result struct {
	Imported  int
	Skipped   int
	Failed    int
	Cancelled bool
	Errors    []PerSetError
}

// Success reports whether every selected import succeeded.
func (r Result) Success() bool { return r.Imported > 0 && r.Failed == 0 }

// Partial reports whether some but not all selected imports succeeded.
func (r Result) Partial() bool { return r.Imported > 0 && r.Failed > 0 }

// Event is one item in the lazy sequence a caller observes from Run. At
// most one of Progress, PlanReady or Done is non-nil; Done is always the
// last event of the sequence.
type Event struct {
	Progress  *ProgressEvent
	PlanReady *Plan
	Done      *Result
}
