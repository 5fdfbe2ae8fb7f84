// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"

	"github.com/osusync/bridge/internal/logging"
	ws "github.com/osusync/bridge/internal/websocket"
	"github.com/osusync/bridge/internal/worker"
)

// newEventHub creates a ws.Hub, starts it under ctx, and wires it to
// every Event the Bus publishes for the remainder of ctx's lifetime.
// This is the sole bridge between the worker protocol's outbound half
// (internal/worker.Bus) and connected UI websocket clients.
func newEventHub(ctx context.Context, bus *worker.Bus) *ws.Hub {
	hub := ws.NewHub()

	go func() {
		if err := hub.RunWithContext(ctx); err != nil && ctx.Err() == nil {
			logging.Warn().Err(err).Msg("websocket hub stopped unexpectedly")
		}
	}()

	events, unsubscribe := bus.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				hub.BroadcastWorkerEvent(ev)
			}
		}
	}()

	return hub
}
