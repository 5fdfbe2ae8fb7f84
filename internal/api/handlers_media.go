// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// ExtractMedia handles POST /api/v1/media/extract. It scans root,
// extracts the requested media kind out of every discovered set and
// writes the files under output_dir; the outcome streams over the
// websocket as MediaExtractionDone, matching every other long-running
// command on this surface.
func (h *Handler) ExtractMedia(w http.ResponseWriter, r *http.Request) {
	var req extractMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Root == "" || req.OutputDir == "" {
		respondError(w, r, errMissingField("root/output_dir"))
		return
	}
	kind, org, err := req.toArgs()
	if err != nil {
		respondError(w, r, err)
		return
	}
	go h.dispatcher.ExtractMedia(h.ctx, req.Root, req.LazerSource, kind, org, req.OutputDir, req.SkipHashing)
	respondOK(w, map[string]string{"accepted": "true"})
}

// ExportReplays handles POST /api/v1/replays/export. It loads root's
// score index, narrows it through the request's filter fields (grade
// threshold, modes, date range, player, beatmap search) and copies
// every selected replay backed by an on-disk file under output_dir; the
// outcome streams over the websocket as ReplayExportDone.
func (h *Handler) ExportReplays(w http.ResponseWriter, r *http.Request) {
	var req exportReplaysRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Root == "" || req.OutputDir == "" {
		respondError(w, r, errMissingField("root/output_dir"))
		return
	}
	org, err := req.toOrganisation()
	if err != nil {
		respondError(w, r, err)
		return
	}
	flt, err := req.toFilter()
	if err != nil {
		respondError(w, r, err)
		return
	}
	go h.dispatcher.ExportReplays(req.Root, flt, org, req.OutputDir)
	respondOK(w, map[string]string{"accepted": "true"})
}
