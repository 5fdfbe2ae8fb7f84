// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package unified

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// lazerPathMarkers are substrings of a running osu!.exe's image path that
// identify it as actually being the modern client rather than the
// legacy one — lazer ships itself as "osu!.exe" on some install methods,
// so the executable name alone cannot distinguish the two installations.
var lazerPathMarkers = []string{"osu!lazer", "osulazer", "osu-lazer", "dotnet", "osu.game", "appimage", ".local"}

// GameMonitor polls the process table for the legacy and modern game
// executables. It reports edge-triggered launch/closed transitions
// rather than a raw poll-and-block boolean, matching the original
// source's GameLaunchDetector.
type GameMonitor struct {
	pollInterval time.Duration

	mu         sync.Mutex
	stableSeen bool
	lazerSeen  bool
}

// NewGameMonitor returns a GameMonitor polling at interval. A zero
// interval defaults to one second.
func NewGameMonitor(interval time.Duration) *GameMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &GameMonitor{pollInterval: interval}
}

// Event is one edge-triggered launch/closed transition.
type Event struct {
	Game     string // "stable" or "lazer"
	Launched bool   // false means the game just closed
}

// snapshot is one poll's result: which of the two installations currently
// has a running process.
type snapshot struct {
	stable bool
	lazer  bool
}

func (m *GameMonitor) poll() snapshot {
	procs, err := process.Processes()
	if err != nil {
		return snapshot{}
	}

	var s snapshot
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		lower := strings.ToLower(name)
		if lower != "osu!.exe" && lower != "osu!" {
			continue
		}

		exe, _ := p.Exe()
		exeLower := strings.ToLower(exe)
		isLazer := false
		for _, marker := range lazerPathMarkers {
			if strings.Contains(exeLower, marker) {
				isLazer = true
				break
			}
		}
		if isLazer {
			s.lazer = true
		} else {
			s.stable = true
		}
	}
	return s
}

// Running reports whether either installation's client process is
// currently running, for the unified-storage engine's pre-operation
// guard. It does not consult or update edge-triggered state.
func (m *GameMonitor) Running() (game string, ok bool) {
	s := m.poll()
	switch {
	case s.stable:
		return "osu! (stable)", true
	case s.lazer:
		return "osu!lazer", true
	default:
		return "", false
	}
}

// Watch starts a polling loop and returns a channel of edge-triggered
// Launched/Closed events. The channel is closed when ctx is cancelled.
func (m *GameMonitor) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		ticker := time.NewTicker(m.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := m.poll()

				m.mu.Lock()
				wasStable, wasLazer := m.stableSeen, m.lazerSeen
				m.stableSeen, m.lazerSeen = s.stable, s.lazer
				m.mu.Unlock()

				if s.stable != wasStable {
					select {
					case events <- Event{Game: "stable", Launched: s.stable}:
					case <-ctx.Done():
						return
					}
				}
				if s.lazer != wasLazer {
					select {
					case events <- Event{Game: "lazer", Launched: s.lazer}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return events
}
