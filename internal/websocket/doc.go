// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package websocket fans internal/worker's Event stream out to connected
UI clients over a hub-and-spoke gorilla/websocket connection. Hub owns
client registration and deterministic broadcast ordering; Client pumps
reads and writes for one connection. BroadcastWorkerEvent is the single
entry point the API layer uses to forward Bus events onto the wire.
*/
package websocket
