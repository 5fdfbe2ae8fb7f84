// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package metrics exposes Prometheus instrumentation for the bridge:
scan/sync/backup durations and counts, duplicate-detection outcomes,
unified-storage link health, and the local API/websocket surface.
Metrics are registered via promauto on import and served by whatever
handler wires up promhttp.Handler().
*/
package metrics
