// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker supervises the bridge's long-running background
// services (the unified-storage game monitor, the local API server) under
// a suture tree, and carries the outbound half of the worker protocol as
// a broadcast Event bus. The tree has two layers: a "core" layer whose
// services restart independently, and an "api" layer on top. Scans and
// syncs are not services in the tree: they run on goroutines that the API
// handlers start through Dispatcher.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/osusync/bridge/internal/logging"
)

// Config carries the suture failure-accounting knobs.
type Config struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultConfig returns suture's own recommended defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5.0
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = 30.0
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// Bus is the supervised background of a running bridge instance: it owns
// the long-running services (watching for the game, serving the local
// API) and fans the Events published on it, by those services and by
// Dispatcher commands, out to any number of listeners.
type Bus struct {
	root *suture.Supervisor
	core *suture.Supervisor
	api  *suture.Supervisor

	mu        sync.RWMutex
	listeners map[int]chan Event
	nextID    int
}

// NewBus builds an idle Bus. Call AddCoreService/AddAPIService to
// populate it, then Serve to run it.
func NewBus(cfg Config) *Bus {
	cfg = cfg.withDefaults()

	handler := &sutureslog.Handler{Logger: slog.New(logging.NewSlogHandler())}
	eventHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}

	root := suture.New("osu-sync-bridge", rootSpec)
	core := suture.New("core", childSpec)
	api := suture.New("api", childSpec)
	root.Add(core)
	root.Add(api)

	return &Bus{root: root, core: core, api: api, listeners: make(map[int]chan Event)}
}

// AddCoreService adds a service to the core layer: the unified-storage
// game monitor service belongs here. A
// crash in this layer never takes down the API layer, so a client
// watching the bus keeps its connection through a core restart.
func (b *Bus) AddCoreService(svc suture.Service) suture.ServiceToken {
	return b.core.Add(svc)
}

// AddAPIService adds a service to the API layer: the local HTTP server.
func (b *Bus) AddAPIService(svc suture.Service) suture.ServiceToken {
	return b.api.Add(svc)
}

// Serve runs the supervisor tree until ctx is cancelled.
func (b *Bus) Serve(ctx context.Context) error {
	return b.root.Serve(ctx)
}

// Subscribe registers a new listener and returns a channel of Events
// plus an unsubscribe function. The channel is buffered; a slow listener
// that falls behind has the oldest unread event dropped rather than
// blocking publishers.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, 64)
	b.listeners[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.listeners[id]; ok {
			delete(b.listeners, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// Publish fans out ev to every current subscriber without blocking: a
// full subscriber channel has its oldest event dropped to make room.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.listeners {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
