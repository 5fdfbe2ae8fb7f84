// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// Live handles GET /api/v1/health/live: the process is up and serving
// requests at all. It never depends on any backing service; readiness
// is the probe that does.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "live"})
}

// Ready handles GET /api/v1/health/ready and always reports ready; it
// checks neither the worker Bus nor whether a sync is in flight.
// Readiness here is a formality — there is
// no database connection or upstream dependency to probe — but the
// endpoint is kept for parity with every other health surface in this
// codebase.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ready"})
}
