// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"fmt"

	"github.com/osusync/bridge/internal/unified"
)

// GameMonitorService wraps a unified.GameMonitor as a supervised service,
// publishing a Log event onto the Bus for every launch/close transition
// it observes, translating the monitor's blocking event stream into
// suture's Serve(ctx) shape.
type GameMonitorService struct {
	monitor *unified.GameMonitor
	bus     *Bus
}

// NewGameMonitorService returns a service that watches monitor and
// reports transitions to bus.
func NewGameMonitorService(monitor *unified.GameMonitor, bus *Bus) *GameMonitorService {
	return &GameMonitorService{monitor: monitor, bus: bus}
}

// Serve implements suture.Service.
func (s *GameMonitorService) Serve(ctx context.Context) error {
	events := s.monitor.Watch(ctx)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			verb := "closed"
			if ev.Launched {
				verb = "launched"
			}
			s.bus.Publish(Event{Log: &LogEvent{
				Level:   "info",
				Message: fmt.Sprintf("%s %s", ev.Game, verb),
			}})
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for suture's logging.
func (s *GameMonitorService) String() string { return "game-monitor" }
