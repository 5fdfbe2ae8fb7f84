// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// Scan handles POST /api/v1/scan. It runs synchronously relative to the
// worker.Bus (Dispatcher.Scan blocks until the scan completes) but the
// HTTP response is just an acknowledgement: the actual ScanCompleteEvent
// arrives over the websocket, matching every other long-running command
// on this surface.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Root == "" {
		respondError(w, r, errMissingField("root"))
		return
	}
	go h.dispatcher.Scan(h.ctx, req.Root, req.SkipHashing, req.UseLegacyIndex)
	respondOK(w, map[string]string{"root": req.Root, "accepted": "true"})
}

// StartSync handles POST /api/v1/sync/start. The sync runs on its own
// goroutine through to its Done event, pausing at PlanReady until Proceed
// (or Cancel) answers it; every intermediate event streams over the
// websocket.
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	var req startSyncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	cfg, err := req.toConfig(h.prompt)
	if err != nil {
		respondError(w, r, err)
		return
	}
	go h.dispatcher.StartSync(h.ctx, cfg)
	respondOK(w, map[string]string{"accepted": "true"})
}

// Proceed handles POST /api/v1/sync/proceed, answering a paused sync's
// PlanReady event with the caller's chosen plan-entry indices.
func (h *Handler) Proceed(w http.ResponseWriter, r *http.Request) {
	var req proceedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	h.dispatcher.Proceed(req.Selection)
	respondOK(w, map[string]string{"accepted": "true"})
}

// Cancel handles POST /api/v1/sync/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.dispatcher.Cancel()
	respondOK(w, map[string]string{"accepted": "true"})
}

// SyncCollections handles POST /api/v1/collections/sync, unioning
// source_root's collection.db into target_root's.
func (h *Handler) SyncCollections(w http.ResponseWriter, r *http.Request) {
	var req syncCollectionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.SourceRoot == "" {
		respondError(w, r, errMissingField("source_root"))
		return
	}
	if req.TargetRoot == "" {
		respondError(w, r, errMissingField("target_root"))
		return
	}
	go h.dispatcher.SyncCollections(req.SourceRoot, req.TargetRoot, req.LazerTarget)
	respondOK(w, map[string]string{"accepted": "true"})
}
