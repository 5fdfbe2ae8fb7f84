// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver implements the pluggable conflict-resolution policies
// the sync engine consults when a source set is classified a duplicate.
// A Resolver is a single capability, Resolve, with four known
// implementations (Auto, Interactive, Sticky, Configured); there is no
// dynamic plugin registry.
package resolver

import (
	"context"
	"sync"

	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/models"
)

// Action is what the resolver decided to do about one duplicate.
type Action int

const (
	ActionSkip Action = iota
	ActionReplace
	ActionKeepBoth
)

// Decision is a Resolver's answer for one duplicate.
type Decision struct {
	Action     Action
	ApplyToAll bool
}

// DuplicateInfo describes one duplicate the planner found, carrying both
// sides of the match plus the confidence of the match.
type DuplicateInfo struct {
	Source        models.BeatmapSet
	Existing      models.BeatmapSet
	MatchKind     dupindex.MatchKind
	Confidence    float64
}

// Resolver answers the single question a sync engine asks about every
// duplicate: what to do about it.
type Resolver interface {
	Resolve(ctx context.Context, info DuplicateInfo) (Decision, error)
}

// Auto always returns the same action, with ApplyToAll set so the engine
// never asks again for the rest of the sync.
type Auto struct {
	Action Action
}

func (a Auto) Resolve(context.Context, DuplicateInfo) (Decision, error) {
	return Decision{Action: a.Action, ApplyToAll: true}, nil
}

// Callback is the caller-supplied decision function for Interactive,
// Sticky and an Ask-configured Resolver. The core imposes no timeout on
// it; a deadline, if the caller needs one, is the caller's own
// responsibility.
type Callback func(ctx context.Context, info DuplicateInfo) (Decision, error)

// Interactive delegates every duplicate to Callback and blocks until it
// replies. No decision is ever cached between calls.
type Interactive struct {
	Callback Callback
}

func (r Interactive) Resolve(ctx context.Context, info DuplicateInfo) (Decision, error) {
	return r.Callback(ctx, info)
}

// Sticky delegates to Callback until the first reply whose ApplyToAll is
// true, then replays that decision for the remainder of the sync without
// invoking Callback again. A Sticky value must not be copied after its
// first Resolve call; construct one per sync with NewSticky.
type Sticky struct {
	callback Callback
	mu       sync.Mutex
	cached   *Decision
}

// NewSticky returns a Sticky resolver wrapping callback, with no cached
// decision yet.
func NewSticky(callback Callback) *Sticky {
	return &Sticky{callback: callback}
}

func (r *Sticky) Resolve(ctx context.Context, info DuplicateInfo) (Decision, error) {
	r.mu.Lock()
	if r.cached != nil {
		d := *r.cached
		r.mu.Unlock()
		return d, nil
	}
	r.mu.Unlock()

	d, err := r.callback(ctx, info)
	if err != nil {
		return Decision{}, err
	}

	if d.ApplyToAll {
		r.mu.Lock()
		if r.cached == nil {
			cp := d
			r.cached = &cp
		}
		r.mu.Unlock()
	}
	return d, nil
}

// ConfiguredAction is the global default the Configured resolver applies,
// mirroring the persisted config.DuplicateStrategy field.
type ConfiguredAction int

const (
	ConfiguredSkip ConfiguredAction = iota
	ConfiguredReplace
	ConfiguredKeepBoth
	ConfiguredAsk
)

// Configured applies a fixed global default. When Default is
// ConfiguredAsk and no Callback is supplied, it degrades to Skip; when
// a Callback is supplied, Ask delegates to it exactly like Interactive.
type Configured struct {
	Default  ConfiguredAction
	Callback Callback
}

func (r Configured) Resolve(ctx context.Context, info DuplicateInfo) (Decision, error) {
	switch r.Default {
	case ConfiguredSkip:
		return Decision{Action: ActionSkip, ApplyToAll: true}, nil
	case ConfiguredReplace:
		return Decision{Action: ActionReplace, ApplyToAll: true}, nil
	case ConfiguredKeepBoth:
		return Decision{Action: ActionKeepBoth, ApplyToAll: true}, nil
	case ConfiguredAsk:
		if r.Callback == nil {
			return Decision{Action: ActionSkip, ApplyToAll: true}, nil
		}
		return r.Callback(ctx, info)
	default:
		return Decision{Action: ActionSkip, ApplyToAll: true}, nil
	}
}
