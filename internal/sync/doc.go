// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sync ties the scanner, dupindex, filter, resolver and store
// packages together into one Engine. Everything else in this repo exists
// to feed or observe this package: config picks the roots and strategy,
// the worker's Dispatcher runs an Engine on a goroutine per sync, and the API and
// websocket packages translate its Event stream onto the wire.
package sync
