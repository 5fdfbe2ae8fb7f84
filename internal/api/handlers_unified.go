// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// UnifiedSetup handles POST /api/v1/unified/setup. Setup runs on the
// caller's goroutine rather than being dispatched async, since it is
// comparatively quick (a handful of link-creation syscalls, not a
// library-wide walk). The response is only an acknowledgement: any
// warnings arrive over the websocket as Log events, and a failure as an
// Error event.
func (h *Handler) UnifiedSetup(w http.ResponseWriter, r *http.Request) {
	var req unifiedSetupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.dispatcher.UnifiedSetup(cfg)
	respondOK(w, map[string]string{"accepted": "true"})
}

// UnifiedVerify handles GET /api/v1/unified/verify, returning the full
// health breakdown synchronously.
func (h *Handler) UnifiedVerify(w http.ResponseWriter, r *http.Request) {
	result := h.dispatcher.UnifiedVerify()
	respondOK(w, result)
}

// UnifiedTeardown handles POST /api/v1/unified/teardown.
func (h *Handler) UnifiedTeardown(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.UnifiedTeardown()
	respondOK(w, map[string]string{"accepted": "true"})
}
