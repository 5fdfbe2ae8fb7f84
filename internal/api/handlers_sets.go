// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// ExportSets handles POST /api/v1/sets/export. It scans root and packs
// the named set folders (every set when folders is omitted) into .osz
// archives under output_dir; the outcome streams over the websocket as
// SetExportDone.
func (h *Handler) ExportSets(w http.ResponseWriter, r *http.Request) {
	var req exportSetsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Root == "" || req.OutputDir == "" {
		respondError(w, r, errMissingField("root/output_dir"))
		return
	}
	go h.dispatcher.ExportSets(h.ctx, req.Root, req.Folders, req.OutputDir)
	respondOK(w, map[string]string{"accepted": "true"})
}

// ImportSets handles POST /api/v1/sets/import. It extracts each archive
// into root's Songs/ directory; the outcome streams over the websocket
// as SetImportDone.
func (h *Handler) ImportSets(w http.ResponseWriter, r *http.Request) {
	var req importSetsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if len(req.Archives) == 0 || req.Root == "" {
		respondError(w, r, errMissingField("archives/root"))
		return
	}
	go h.dispatcher.ImportArchives(req.Archives, req.Root)
	respondOK(w, map[string]string{"accepted": "true"})
}
